package domain

import "errors"

// Filesystem errors
var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.New("path not found")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")
)

// State errors
var (
	// ErrStateNotFound indicates the reference state file does not exist
	ErrStateNotFound = errors.New("reference state not found")

	// ErrStateCorrupt indicates the persisted state is corrupt or incompatible
	ErrStateCorrupt = errors.New("reference state corrupt")
)

// Config errors
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)
