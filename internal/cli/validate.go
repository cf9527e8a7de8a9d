package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/incrbackup/internal/platform"
	"github.com/sdejongh/incrbackup/pkg/config"
	"github.com/sdejongh/incrbackup/pkg/models"
	"github.com/sdejongh/incrbackup/pkg/ratelimit"
)

// validateRoots rejects identical or nested backup roots
func validateRoots(source, dest string) error {
	if source == dest {
		return fmt.Errorf("source and destination cannot be the same: %s", source)
	}

	// Validate paths are not nested
	if isInside(source, dest) {
		return fmt.Errorf("destination cannot be inside source directory")
	}
	if isInside(dest, source) {
		return fmt.Errorf("source cannot be inside destination directory")
	}

	return nil
}

// isInside reports whether path lies strictly below root
func isInside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// resolveRoot validates a configured root, or prompts for one when none
// was given
func resolveRoot(prompter *Prompter, label, configured string) (string, error) {
	if configured == "" {
		return prompter.AskDirectory(label, platform.ValidateDirectory)
	}

	path, err := platform.ValidateDirectory(configured)
	if err != nil {
		return "", fmt.Errorf("%s directory: %w", strings.ToLower(label), err)
	}
	return path, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cmd *cobra.Command, flags *BackupFlags, cfg *config.Config) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if flags.Source != "" {
		cfg.Backup.SourceRoot = flags.Source
	}
	if flags.Dest != "" {
		cfg.Backup.DestRoot = flags.Dest
	}
	if changed("yes") {
		cfg.Backup.AutoConfirm = flags.Yes
	}
	if flags.Match != "" {
		cfg.Backup.Match = models.MatchPolicy(flags.Match)
	}
	if flags.Bandwidth != "" {
		cfg.Backup.BandwidthLimit = flags.Bandwidth
	}

	// Exclude patterns add to the configured ones
	if len(flags.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, flags.Exclude...)
	}

	// Output
	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}
	if changed("progress") {
		cfg.Output.Progress = flags.Progress
	}
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Logging
	if flags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.Path = flags.LogFile
	}
	if flags.NoLog {
		cfg.Logging.Enabled = false
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
	if changed("log-console") {
		cfg.Logging.Console = flags.LogConsole
	}

	return cfg.Validate()
}

// createSession creates a backup session from configuration
func createSession(cfg *config.Config, source, dest string, dryRun bool) (*models.BackupSession, error) {
	bandwidth, err := ratelimit.ParseBandwidth(cfg.Backup.BandwidthLimit)
	if err != nil {
		return nil, err
	}

	session := &models.BackupSession{
		ID:              uuid.New().String(),
		SourceRoot:      source,
		DestRoot:        dest,
		Match:           cfg.Backup.Match,
		ExcludePatterns: cfg.Exclude,
		DryRun:          dryRun,
		BandwidthLimit:  bandwidth,
		BufferSize:      cfg.Backup.BufferSize,
		CreatedAt:       time.Now(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}
