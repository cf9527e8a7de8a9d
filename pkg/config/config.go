package config

import (
	"github.com/docker/go-units"

	"github.com/sdejongh/incrbackup/pkg/models"
	"github.com/sdejongh/incrbackup/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Backup  BackupConfig  `yaml:"backup"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Exclude []string      `yaml:"exclude"`
}

// BackupConfig holds backup-related settings
type BackupConfig struct {
	SourceRoot     string             `yaml:"source_root"`
	DestRoot       string             `yaml:"dest_root"`
	AutoConfirm    bool               `yaml:"auto_confirm"` // Skip the CONTINUE prompt
	Match          models.MatchPolicy `yaml:"match"`
	BufferSize     int                `yaml:"buffer_size"`
	BandwidthLimit string             `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress the final report
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	Path       string `yaml:"path"`
	MaxSize    string `yaml:"max_size"` // rotate the file past this size, e.g. "10MB"
	MaxBackups int    `yaml:"max_backups"`
	Console    bool   `yaml:"console"` // Mirror entries to stderr
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Backup: BackupConfig{
			Match:      models.MatchName,
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "info",
			Path:       DefaultLogPath,
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Exclude: []string{},
	}
}

// DefaultLogPath is where the backup log is written unless configured
const DefaultLogPath = "~/.local/share/incrbackup/backup.log"

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backup.Match == "" {
		c.Backup.Match = models.MatchName
	}
	if !c.Backup.Match.IsValid() {
		return &models.ValidationError{
			Field:   "backup.match",
			Message: "must be 'name', 'path', or 'digest'",
		}
	}

	if c.Backup.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "backup.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := ratelimit.ParseBandwidth(c.Backup.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "backup.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.Enabled && c.Logging.Path == "" {
		return &models.ValidationError{
			Field:   "logging.path",
			Message: "is required when logging is enabled",
		}
	}

	if _, err := c.Logging.MaxSizeBytes(); err != nil {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: err.Error(),
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_backups",
			Message: "cannot be negative",
		}
	}

	return nil
}

// MaxSizeBytes parses the rotation threshold; empty means no rotation
func (l LoggingConfig) MaxSizeBytes() (int64, error) {
	if l.MaxSize == "" {
		return 0, nil
	}
	return units.RAMInBytes(l.MaxSize)
}
