package planner

import (
	"context"
	"sort"
	"strings"

	"github.com/Ning0612/Snapsync/internal/core/tree"
	"github.com/Ning0612/Snapsync/internal/domain"
)

// Planner computes the operations needed to make a target directory match a
// previously captured reference tree. It never performs any of them.
type Planner struct {
	builder *tree.Builder
}

// NewPlanner creates a planner that re-walks targets with the given builder
func NewPlanner(builder *tree.Builder) *Planner {
	return &Planner{builder: builder}
}

// NewDefaultPlanner creates a planner over the OS filesystem
func NewDefaultPlanner() *Planner {
	return NewPlanner(tree.NewDefaultBuilder())
}

// Plan re-walks targetRoot live, compares it against reference and returns
// the ordered operation list. Ordering guarantee: a create precedes every
// create/copy nested under it, and deletes of descendants precede the delete
// of their directory, so the list is safe to execute top to bottom.
//
// The reference's source directory is never touched; it may no longer exist.
func (p *Planner) Plan(ctx context.Context, reference domain.Tree, targetRoot string) ([]domain.Operation, error) {
	target, err := p.builder.Build(ctx, targetRoot)
	if err != nil {
		return nil, err
	}

	var ops []domain.Operation

	// Expansion of missing reference entries runs exactly once per parent
	// directory. The set is owned by this call, not global.
	visited := make(map[string]bool)

	for _, parent := range target.Paths() {
		records, _ := target.Lookup(parent)

		refChildren, ok := reference.Lookup(parent)
		if !ok {
			// The reference never described this directory; everything in it
			// goes. The directory's own delete is emitted under its parent.
			for _, rec := range records {
				ops = append(ops, domain.Operation{Kind: domain.OpDelete, Path: domain.Join(parent, rec.Name)})
			}
			continue
		}

		if !visited[parent] {
			visited[parent] = true

			// Reference entries absent from the live target are expanded
			// into create/copy sequences. Existence is rechecked on disk
			// rather than against the target tree, in case the walk and the
			// filesystem disagree.
			for _, ref := range refChildren {
				rel := domain.Join(parent, ref.Name)
				exists, err := p.builder.Exists(targetRoot, rel)
				if err != nil {
					return nil, err
				}
				if !exists {
					ops = expand(ops, reference, parent, ref)
				}
			}
		}

		for _, tgt := range records {
			rel := domain.Join(parent, tgt.Name)

			ref, found := reference.Find(parent, tgt.Name)
			switch {
			case !found:
				// Target has an entry the reference does not
				ops = append(ops, domain.Operation{Kind: domain.OpDelete, Path: rel})
			case ref.Kind != tgt.Kind:
				// File vs directory clash: remove first, a later pass plans
				// the replacement
				ops = append(ops, domain.Operation{Kind: domain.OpDelete, Path: rel})
			case tgt.IsFile() && ref.Digest != tgt.Digest:
				ops = append(ops, domain.Operation{Kind: domain.OpCopy, Path: rel})
			}
			// Matching directories and files with equal digests need nothing.
		}
	}

	sortOperations(ops)
	return ops, nil
}

// expand appends the operations for a reference record missing from the
// target: a create for a directory followed by the expansion of everything
// beneath it, or a single copy for a file. The directory's own create always
// lands before its descendants.
func expand(ops []domain.Operation, reference domain.Tree, parent string, rec domain.Record) []domain.Operation {
	rel := domain.Join(parent, rec.Name)

	if rec.IsDir() {
		ops = append(ops, domain.Operation{Kind: domain.OpCreate, Path: rel})
		children, _ := reference.Lookup(rel)
		for _, child := range children {
			ops = expand(ops, reference, rel, child)
		}
		return ops
	}

	return append(ops, domain.Operation{Kind: domain.OpCopy, Path: rel})
}

// sortOperations orders the plan for safe sequential execution:
// 1. create (shallow directories first)
// 2. copy
// 3. delete (deep entries first, so directories are emptied before removal)
func sortOperations(ops []domain.Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		orderI := kindOrder(ops[i].Kind)
		orderJ := kindOrder(ops[j].Kind)

		if orderI != orderJ {
			return orderI < orderJ
		}

		depthI := strings.Count(ops[i].Path, "/")
		depthJ := strings.Count(ops[j].Path, "/")

		if depthI != depthJ {
			// Deletes run bottom-up
			if ops[i].Kind == domain.OpDelete {
				return depthI > depthJ
			}
			return depthI < depthJ
		}

		// Finally sort by path for determinism
		return ops[i].Path < ops[j].Path
	})
}

// kindOrder returns the sort priority for operation kinds
func kindOrder(k domain.OperationKind) int {
	switch k {
	case domain.OpCreate:
		return 1
	case domain.OpCopy:
		return 2
	case domain.OpDelete:
		return 3
	default:
		return 99
	}
}
