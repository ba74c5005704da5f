package tree

import (
	"context"
	"testing"

	"github.com/Ning0612/Snapsync/internal/testutil"
)

// TestBuild_OsFilesystem exercises the default (OS-backed) builder against a
// real directory
func TestBuild_OsFilesystem(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	testutil.CreateTestFile(t, dir, "top.txt", []byte("top"))
	testutil.CreateTestFile(t, dir, "a/nested.txt", []byte("nested"))
	testutil.CreateTestDir(t, dir, "a/empty")

	builder := NewDefaultBuilder()
	built, err := builder.Build(context.Background(), dir)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, key := range []string{"", "a", "a/empty"} {
		if _, ok := built.Lookup(key); !ok {
			t.Errorf("directory key %q missing from tree", key)
		}
	}

	rec, ok := built.Find("a", "nested.txt")
	if !ok || !rec.IsFile() || len(rec.Digest) != 64 {
		t.Errorf("unexpected record for a/nested.txt: %+v (found=%v)", rec, ok)
	}

	exists, err := builder.Exists(dir, "a/nested.txt")
	if err != nil || !exists {
		t.Errorf("Exists(a/nested.txt) = %v, %v; want true, nil", exists, err)
	}
}
