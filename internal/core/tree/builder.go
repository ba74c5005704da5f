package tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/afero"

	"github.com/Ning0612/Snapsync/internal/core/checksum"
	"github.com/Ning0612/Snapsync/internal/domain"
)

// Options configures the tree builder
type Options struct {
	// Workers is the number of concurrent hash workers (default: NumCPU)
	Workers int

	// BufferSize is passed through to the checksum calculator
	BufferSize int
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{
		Workers:    runtime.NumCPU(),
		BufferSize: checksum.DefaultOptions().BufferSize,
	}
}

// Builder walks a directory and produces its Tree model, hashing file
// content as it goes
type Builder struct {
	fs      afero.Fs
	calc    checksum.Calculator
	workers int
}

// fileJob is one pending hash computation discovered during the walk
type fileJob struct {
	parent string // relative directory path, "" for the root
	name   string
	path   string // full path for opening
}

// NewBuilder creates a builder over the given filesystem
func NewBuilder(fs afero.Fs, opts Options) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	return &Builder{
		fs:      fs,
		calc:    checksum.NewCalculator(checksum.Options{BufferSize: opts.BufferSize}),
		workers: opts.Workers,
	}
}

// NewDefaultBuilder creates a builder over the OS filesystem
func NewDefaultBuilder() *Builder {
	return NewBuilder(afero.NewOsFs(), DefaultOptions())
}

// ValidateRoot checks that root exists and is a directory. Callers that
// must reject a bad directory argument before doing any other work use this
// directly; Build performs the same check.
func (b *Builder) ValidateRoot(root string) error {
	info, err := b.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, root)
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNotDirectory, root)
	}
	return nil
}

// Build walks root and returns its Tree model. It fails if root does not
// exist, is not a directory, or any entry cannot be read or hashed; no
// partial tree is ever returned.
func (b *Builder) Build(ctx context.Context, root string) (domain.Tree, error) {
	if err := b.ValidateRoot(root); err != nil {
		return nil, err
	}

	tree := domain.NewTree()
	var files []fileJob

	// Directories are registered during the walk; file hashing is deferred
	// to the worker pool below.
	err := afero.Walk(b.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", p, err)
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)
		parent := parentOf(rel)

		if info.IsDir() {
			tree[rel] = nil
			tree[parent] = append(tree[parent], domain.Record{
				Name: info.Name(),
				Kind: domain.RecordDirectory,
			})
			return nil
		}

		files = append(files, fileJob{parent: parent, name: info.Name(), path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	digests, err := b.hashAll(ctx, files)
	if err != nil {
		return nil, err
	}

	// Single merge step: only this goroutine touches the tree.
	for i, job := range files {
		tree[job.parent] = append(tree[job.parent], domain.Record{
			Name:   job.name,
			Kind:   domain.RecordFile,
			Digest: digests[i],
		})
	}

	return tree, nil
}

// hashAll computes content digests for all jobs using a bounded worker pool.
// Digests land in a slot per job, so workers never share mutable state.
func (b *Builder) hashAll(ctx context.Context, files []fileJob) ([]string, error) {
	digests := make([]string, len(files))
	errs := make([]error, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := b.workers
	if workers > len(files) {
		workers = len(files)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				digests[i], errs[i] = b.hashFile(ctx, files[i].path)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", files[i].path, err)
		}
	}
	return digests, nil
}

// hashFile streams one file through the calculator
func (b *Builder) hashFile(ctx context.Context, path string) (string, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return b.calc.Calculate(ctx, f)
}

// parentOf returns the relative directory containing rel ("" for root
// children)
func parentOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	return dir
}

// Exists reports whether the relative path exists under root on the
// filesystem. The planner uses this to recheck reference-only paths against
// the live target, independently of the target tree.
func (b *Builder) Exists(root, rel string) (bool, error) {
	ok, err := afero.Exists(b.fs, filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", rel, err)
	}
	return ok, nil
}
