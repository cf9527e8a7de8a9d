package models

import (
	"time"
)

// BackupReport represents the results of a backup session
type BackupReport struct {
	// Session details
	SessionID  string
	SourceRoot string
	DestRoot   string
	Match      MatchPolicy
	DryRun     bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Missing lists the source files absent from the destination
	Missing []FileEntry

	// Failures holds every skipped or failed copy
	Failures []BackupError

	// Overall status
	Status BackupStatus
}

// Statistics holds backup session metrics
type Statistics struct {
	SourceFilesScanned int
	DestFilesScanned   int
	FilesExcluded      int
	FilesMissing       int
	FilesCopied        int
	FilesSkipped       int // Source vanished or destination appeared
	FilesErrored       int

	BytesScanned     int64
	BytesTransferred int64
}

// Record folds one copy outcome into the report
func (r *BackupReport) Record(outcome CopyOutcome) {
	switch outcome.Status {
	case StatusCopied:
		r.Stats.FilesCopied++
		r.Stats.BytesTransferred += outcome.BytesCopied
		return
	case StatusSkipped:
		r.Stats.FilesSkipped++
	case StatusFailed:
		r.Stats.FilesErrored++
	}

	msg := ""
	if outcome.Err != nil {
		msg = outcome.Err.Error()
	}
	r.Failures = append(r.Failures, BackupError{
		Source:      outcome.Source,
		Destination: outcome.Destination,
		Kind:        outcome.Kind,
		Error:       msg,
		Timestamp:   time.Now(),
	})
}

// BackupStatus represents the overall result
type BackupStatus string

const (
	// StatusSuccess indicates every missing file was copied
	StatusSuccess BackupStatus = "success"
	// StatusPartial indicates the session completed but some files were skipped
	StatusPartial BackupStatus = "partial"
	// StatusAborted indicates a fatal I/O error stopped the session
	StatusAborted BackupStatus = "aborted"
	// StatusCancelled indicates the session was cancelled
	StatusCancelled BackupStatus = "cancelled"
)

// BackupError represents a per-file failure
type BackupError struct {
	Source      string
	Destination string
	Kind        FailureKind
	Error       string
	Timestamp   time.Time
}

// ExitCode returns the process exit code for the backup status.
// Skipped files do not make a completed session fail.
func (s BackupStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusPartial:
		return 0
	case StatusAborted:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
