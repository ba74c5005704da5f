package tree

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/Ning0612/Snapsync/internal/domain"
)

func newMemFs(t *testing.T, dirs []string, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return fs
}

func TestBuild_EmptyDirectory(t *testing.T) {
	fs := newMemFs(t, []string{"/src"}, nil)
	builder := NewBuilder(fs, DefaultOptions())

	tree, err := builder.Build(context.Background(), "/src")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(tree) != 1 {
		t.Fatalf("Expected only the root key, got %d keys", len(tree))
	}
	if _, ok := tree.Lookup(""); !ok {
		t.Error("root key missing from tree")
	}
}

func TestBuild_NestedTree(t *testing.T) {
	fs := newMemFs(t,
		[]string{"/src/a/b", "/src/empty"},
		map[string]string{
			"/src/top.txt":   "top",
			"/src/a/f.txt":   "content",
			"/src/a/b/g.txt": "deeper",
		},
	)
	builder := NewBuilder(fs, DefaultOptions())

	tree, err := builder.Build(context.Background(), "/src")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Every directory must have its own key
	for _, dir := range []string{"", "a", "a/b", "empty"} {
		if _, ok := tree.Lookup(dir); !ok {
			t.Errorf("directory key %q missing from tree", dir)
		}
	}

	rec, ok := tree.Find("", "a")
	if !ok || !rec.IsDir() {
		t.Errorf("expected directory record for a, got %+v (found=%v)", rec, ok)
	}
	if rec.Digest != "" {
		t.Errorf("directory record should carry no digest, got %s", rec.Digest)
	}

	rec, ok = tree.Find("a", "f.txt")
	if !ok || !rec.IsFile() {
		t.Fatalf("expected file record for a/f.txt, got %+v (found=%v)", rec, ok)
	}
	if len(rec.Digest) != 64 {
		t.Errorf("expected 64-char hex digest, got %q", rec.Digest)
	}

	if _, ok := tree.Find("a/b", "g.txt"); !ok {
		t.Error("expected file record for a/b/g.txt")
	}

	if records, _ := tree.Lookup("empty"); len(records) != 0 {
		t.Errorf("empty directory should have no children, got %d", len(records))
	}
}

func TestBuild_IdenticalContentSameDigest(t *testing.T) {
	fs := newMemFs(t, []string{"/src"}, map[string]string{
		"/src/one.txt": "same bytes",
		"/src/two.txt": "same bytes",
		"/src/odd.txt": "other bytes",
	})
	builder := NewBuilder(fs, DefaultOptions())

	tree, err := builder.Build(context.Background(), "/src")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	one, _ := tree.Find("", "one.txt")
	two, _ := tree.Find("", "two.txt")
	odd, _ := tree.Find("", "odd.txt")

	if one.Digest != two.Digest {
		t.Errorf("identical content should hash identically: %s != %s", one.Digest, two.Digest)
	}
	if one.Digest == odd.Digest {
		t.Error("differing content should not hash identically")
	}
}

func TestBuild_RootMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	builder := NewBuilder(fs, DefaultOptions())

	_, err := builder.Build(context.Background(), "/nope")
	if err == nil {
		t.Fatal("Expected error for missing root, got nil")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestBuild_RootIsFile(t *testing.T) {
	fs := newMemFs(t, nil, map[string]string{"/file.txt": "x"})
	builder := NewBuilder(fs, DefaultOptions())

	_, err := builder.Build(context.Background(), "/file.txt")
	if err == nil {
		t.Fatal("Expected error for file root, got nil")
	}
	if !errors.Is(err, domain.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory, got: %v", err)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	fs := newMemFs(t,
		[]string{"/src/d1", "/src/d2"},
		map[string]string{
			"/src/d1/a.txt": "aaa",
			"/src/d1/b.txt": "bbb",
			"/src/d2/c.txt": "ccc",
		},
	)
	builder := NewBuilder(fs, Options{Workers: 4})

	first, err := builder.Build(context.Background(), "/src")
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	second, err := builder.Build(context.Background(), "/src")
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	if !first.Equal(second) {
		t.Error("repeated builds of the same directory should be equal")
	}
}

func TestExists(t *testing.T) {
	fs := newMemFs(t, []string{"/src/a"}, map[string]string{"/src/a/f.txt": "x"})
	builder := NewBuilder(fs, DefaultOptions())

	ok, err := builder.Exists("/src", "a/f.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("expected a/f.txt to exist")
	}

	ok, err = builder.Exists("/src", "a/missing.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("expected a/missing.txt to be absent")
	}
}
