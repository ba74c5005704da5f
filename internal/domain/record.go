package domain

// RecordKind discriminates the two entry kinds in a directory listing
type RecordKind int

const (
	RecordFile RecordKind = iota
	RecordDirectory
)

// String returns the string representation of the kind
func (k RecordKind) String() string {
	switch k {
	case RecordFile:
		return "file"
	case RecordDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Record is one named entry within a directory listing
type Record struct {
	// Name is the entry's base name (no path separators)
	Name string `json:"name"`

	// Kind indicates if this is a file or a directory
	Kind RecordKind `json:"kind"`

	// Digest is the uppercase hex SHA-256 of the file content
	// (empty for directories)
	Digest string `json:"digest,omitempty"`
}

// IsDir returns true if this record describes a directory
func (r Record) IsDir() bool {
	return r.Kind == RecordDirectory
}

// IsFile returns true if this record describes a regular file
func (r Record) IsFile() bool {
	return r.Kind == RecordFile
}
