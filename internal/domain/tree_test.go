package domain

import "testing"

func TestJoin(t *testing.T) {
	tests := []struct {
		dir      string
		name     string
		expected string
	}{
		{"", "a", "a"},
		{"a", "b", "a/b"},
		{"a/b", "c.txt", "a/b/c.txt"},
	}

	for _, tt := range tests {
		if got := Join(tt.dir, tt.name); got != tt.expected {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.expected)
		}
	}
}

func TestTreeEqual_OrderInsensitive(t *testing.T) {
	a := Tree{
		"": {
			{Name: "x.txt", Kind: RecordFile, Digest: "AA"},
			{Name: "d", Kind: RecordDirectory},
		},
		"d": nil,
	}
	b := Tree{
		"": {
			{Name: "d", Kind: RecordDirectory},
			{Name: "x.txt", Kind: RecordFile, Digest: "AA"},
		},
		"d": {},
	}

	if !a.Equal(b) {
		t.Error("trees differing only in child order should be equal")
	}
}

func TestTreeEqual_Differences(t *testing.T) {
	base := Tree{
		"": {{Name: "x.txt", Kind: RecordFile, Digest: "AA"}},
	}

	digestChanged := Tree{
		"": {{Name: "x.txt", Kind: RecordFile, Digest: "BB"}},
	}
	if base.Equal(digestChanged) {
		t.Error("trees with differing digests should not be equal")
	}

	kindChanged := Tree{
		"":      {{Name: "x.txt", Kind: RecordDirectory}},
		"x.txt": nil,
	}
	if base.Equal(kindChanged) {
		t.Error("trees with differing kinds should not be equal")
	}

	extraKey := Tree{
		"":  {{Name: "x.txt", Kind: RecordFile, Digest: "AA"}},
		"d": nil,
	}
	if base.Equal(extraKey) {
		t.Error("trees with differing keys should not be equal")
	}
}

func TestTreePaths_Sorted(t *testing.T) {
	tr := Tree{"b": nil, "": nil, "a/c": nil, "a": nil}

	paths := tr.Paths()
	expected := []string{"", "a", "a/c", "b"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d", len(expected), len(paths))
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], expected[i])
		}
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{Operation{Kind: OpCreate, Path: "a"}, "create `a`"},
		{Operation{Kind: OpCopy, Path: "a/f.txt"}, "copy `a/f.txt`"},
		{Operation{Kind: OpDelete, Path: "extra.txt"}, "delete `extra.txt`"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestTreeSize(t *testing.T) {
	tr := Tree{
		"":  {{Name: "a", Kind: RecordDirectory}, {Name: "f", Kind: RecordFile, Digest: "AA"}},
		"a": {{Name: "g", Kind: RecordFile, Digest: "BB"}},
	}
	if tr.Size() != 3 {
		t.Errorf("Size() = %d, want 3", tr.Size())
	}
}
