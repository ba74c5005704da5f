package state

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"

	"github.com/Ning0612/Snapsync/internal/domain"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible release
const snapshotVersion = 1

// envelope is the on-disk snapshot format. The fingerprint covers the
// canonical JSON encoding of the tree and is verified on load.
type envelope struct {
	Version     int         `json:"version"`
	Fingerprint string      `json:"fingerprint"`
	Tree        domain.Tree `json:"tree"`
}

// Store persists reference trees as snapshot files
type Store struct {
	fs afero.Fs
}

// NewStore creates a store over the given filesystem
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewDefaultStore creates a store over the OS filesystem
func NewDefaultStore() *Store {
	return NewStore(afero.NewOsFs())
}

// Save writes the tree to path, replacing any previous snapshot
func (s *Store) Save(path string, tree domain.Tree) error {
	canonical, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	env := envelope{
		Version:     snapshotVersion,
		Fingerprint: fingerprint(canonical),
		Tree:        tree,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot from path and returns its tree. A missing file maps
// to ErrStateNotFound; anything unreadable, version-incompatible or failing
// the fingerprint check maps to ErrStateCorrupt.
func (s *Store) Load(path string) (domain.Tree, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, path)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateCorrupt, path, err)
	}

	if env.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", domain.ErrStateCorrupt, path, env.Version)
	}

	canonical, err := json.Marshal(env.Tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateCorrupt, path, err)
	}
	if fingerprint(canonical) != env.Fingerprint {
		return nil, fmt.Errorf("%w: %s: fingerprint mismatch", domain.ErrStateCorrupt, path)
	}

	if err := validate(env.Tree); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateCorrupt, path, err)
	}

	return env.Tree, nil
}

// validate rejects snapshots that would make the planner resolve paths
// outside the target root or dereference missing directories. Snapshot files
// are external input; record names must stay single path segments.
func validate(tree domain.Tree) error {
	if tree == nil {
		return fmt.Errorf("empty tree")
	}
	if _, ok := tree[""]; !ok {
		return fmt.Errorf("missing root entry")
	}

	for dir, records := range tree {
		seen := make(map[string]bool, len(records))
		for _, r := range records {
			if !validName(r.Name) {
				return fmt.Errorf("invalid entry name %q under %q", r.Name, dir)
			}
			if r.Kind != domain.RecordFile && r.Kind != domain.RecordDirectory {
				return fmt.Errorf("invalid kind %d for entry %q under %q", r.Kind, r.Name, dir)
			}
			if seen[r.Name] {
				return fmt.Errorf("duplicate entry %q under %q", r.Name, dir)
			}
			seen[r.Name] = true

			if r.IsDir() {
				if _, ok := tree[domain.Join(dir, r.Name)]; !ok {
					return fmt.Errorf("directory %q has no child list", domain.Join(dir, r.Name))
				}
			}
		}
	}
	return nil
}

// validName reports whether name is a single, safe path segment
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// fingerprint computes the xxh3-128 hex of the canonical tree bytes
func fingerprint(data []byte) string {
	return fmt.Sprintf("%x", xxh3.Hash128(data).Bytes())
}
