package models

import (
	"time"
)

// MatchPolicy defines how a source file is looked up in the destination tree
type MatchPolicy string

const (
	// MatchName matches on base name anywhere in the destination tree
	MatchName MatchPolicy = "name"
	// MatchPath matches on the path relative to the root
	MatchPath MatchPolicy = "path"
	// MatchDigest matches on SHA-256 content digest
	MatchDigest MatchPolicy = "digest"
)

// IsValid reports whether p is a known policy
func (p MatchPolicy) IsValid() bool {
	switch p {
	case MatchName, MatchPath, MatchDigest:
		return true
	default:
		return false
	}
}

// BackupSession describes one invocation of the backup procedure
type BackupSession struct {
	ID              string
	SourceRoot      string
	DestRoot        string
	Match           MatchPolicy
	ExcludePatterns []string
	DryRun          bool
	BandwidthLimit  int64 // bytes per second, 0 = unlimited
	BufferSize      int
	CreatedAt       time.Time
}

// Validate checks if the session configuration is valid
func (s *BackupSession) Validate() error {
	if s.SourceRoot == "" {
		return &ValidationError{Field: "SourceRoot", Message: "source root is required"}
	}
	if s.DestRoot == "" {
		return &ValidationError{Field: "DestRoot", Message: "destination root is required"}
	}
	if s.Match == "" {
		s.Match = MatchName
	}
	if !s.Match.IsValid() {
		return &ValidationError{Field: "Match", Message: "unknown match policy: " + string(s.Match)}
	}
	if s.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	if s.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
