package domain

import "fmt"

// OperationKind identifies a planned filesystem action
type OperationKind int

const (
	// OpCreate makes a directory; it precedes everything nested under it
	OpCreate OperationKind = iota
	// OpCopy copies file content from the reference entry to the target
	OpCopy
	// OpDelete removes a target entry; descendants are deleted first
	OpDelete
)

// String returns the string representation of the operation kind
func (k OperationKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpCopy:
		return "copy"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Operation is one planned, unexecuted action needed to reconcile the target
// toward the reference. The planner only reports operations; nothing here is
// ever applied to the filesystem.
type Operation struct {
	Kind OperationKind
	Path string // relative, forward-slash separated
}

// String renders the operation in output format: create `a/b`
func (o Operation) String() string {
	return fmt.Sprintf("%s `%s`", o.Kind, o.Path)
}
