package models

import (
	"time"
)

// FileEntry represents a regular file discovered under a backup root
type FileEntry struct {
	// AbsolutePath is the full path on the filesystem
	AbsolutePath string
	// Name is the base name (final path component)
	Name string
	// RelativePath is the path relative to the root it was listed from
	RelativePath string
	// Size in bytes
	Size int64
	// ModTime is the last modification time
	ModTime time.Time
	// Permissions are the file mode bits
	Permissions uint32
}

// CopyStatus is the tri-state result of a single copy attempt
type CopyStatus string

const (
	// StatusCopied indicates the file content was duplicated at the destination
	StatusCopied CopyStatus = "copied"
	// StatusSkipped indicates a recoverable failure; the session continues
	StatusSkipped CopyStatus = "skipped"
	// StatusFailed indicates an unrecoverable failure; the session aborts
	StatusFailed CopyStatus = "failed"
)

// FailureKind categorizes why a copy did not succeed
type FailureKind string

const (
	// FailureNone is used for successful copies
	FailureNone FailureKind = ""
	// FailureSourceMissing indicates the source vanished after enumeration
	FailureSourceMissing FailureKind = "source_missing"
	// FailureDestinationExists indicates a file already sits at the destination path
	FailureDestinationExists FailureKind = "destination_exists"
	// FailureIO covers every other I/O error (permissions, disk full, device errors)
	FailureIO FailureKind = "io_failure"
)

// CopyOutcome records what happened to one missing file
type CopyOutcome struct {
	Source      string
	Destination string
	Status      CopyStatus
	Kind        FailureKind
	Err         error
	BytesCopied int64
	Duration    time.Duration
}

// Fatal reports whether the outcome must abort the session
func (o CopyOutcome) Fatal() bool {
	return o.Status == StatusFailed
}
