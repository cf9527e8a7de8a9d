package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/incrbackup/pkg/backup"
	"github.com/sdejongh/incrbackup/pkg/config"
	"github.com/sdejongh/incrbackup/pkg/output"
	"github.com/sdejongh/incrbackup/pkg/storage"
)

// BackupFlags holds backup and plan command flags
type BackupFlags struct {
	Source    string
	Dest      string
	Yes       bool
	DryRun    bool
	Match     string
	Exclude   []string
	Bandwidth string
	Progress  bool
	Output    string
	// Logging flags
	LogFile    string
	LogFormat  string
	LogLevel   string
	LogConsole bool
	NoLog      bool
}

// NewBackupCommand creates the backup command
func NewBackupCommand() *cobra.Command {
	flags := &BackupFlags{}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy files missing from the destination",
		Long: `Copy every source file that is missing from the destination directory.
Existing destination files are never modified or deleted.

By default a file counts as present when a file with the same name exists
anywhere in the destination tree (--match name). Use --match path to compare
relative paths or --match digest to compare content.

Source and destination are prompted for when not given, and the backup only
starts after typing CONTINUE (skip with --yes).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd, flags, flags.DryRun)
		},
	}

	addRootFlags(cmd, flags)
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "skip the CONTINUE confirmation")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "list missing files, don't copy")
	cmd.Flags().StringVarP(&flags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&flags.Progress, "progress", true, "show a progress bar on terminals")

	// Logging flags
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "log file path (default "+config.DefaultLogPath+")")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&flags.LogConsole, "log-console", false, "mirror log entries to stderr")
	cmd.Flags().BoolVar(&flags.NoLog, "no-log", false, "disable the log file")

	return cmd
}

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	flags := &BackupFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List files a backup would copy (dry-run)",
		Long: `Compare source and destination folders and list the files a backup
would copy, without performing any file operations. This is equivalent to
backup --dry-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.NoLog = true
			return runBackup(cmd, flags, true)
		},
	}

	addRootFlags(cmd, flags)

	return cmd
}

func addRootFlags(cmd *cobra.Command, flags *BackupFlags) {
	cmd.Flags().StringVarP(&flags.Source, "source", "s", "", "source directory path (prompted if empty)")
	cmd.Flags().StringVarP(&flags.Dest, "dest", "d", "", "destination directory path (prompted if empty)")
	cmd.Flags().StringVarP(&flags.Match, "match", "m", "", "match policy: name, path, digest (default name)")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: human, json")
}

func runBackup(cmd *cobra.Command, flags *BackupFlags, dryRun bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, flags, cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	formatter, err := output.NewFormatter(cfg.Output.Format)
	if err != nil {
		return err
	}

	prompter := NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	sourceRoot, err := resolveRoot(prompter, "Source", cfg.Backup.SourceRoot)
	if err != nil {
		return err
	}
	destRoot, err := resolveRoot(prompter, "Destination", cfg.Backup.DestRoot)
	if err != nil {
		return err
	}
	if err := validateRoots(sourceRoot, destRoot); err != nil {
		return err
	}

	if !dryRun && !cfg.Backup.AutoConfirm {
		ok, err := prompter.Confirm(sourceRoot, destRoot)
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Backup not confirmed, nothing was copied.")
			return nil
		}
	}

	// Create backup session
	session, err := createSession(cfg, sourceRoot, destRoot, dryRun)
	if err != nil {
		return fmt.Errorf("failed to create backup session: %w", err)
	}

	// Create logger
	logger, err := createLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Create storage backends
	source, err := storage.NewLocal(sourceRoot)
	if err != nil {
		return fmt.Errorf("failed to create source backend: %w", err)
	}
	defer source.Close()

	dest, err := storage.NewLocal(destRoot)
	if err != nil {
		return fmt.Errorf("failed to create destination backend: %w", err)
	}
	defer dest.Close()

	var progress output.Progress
	if cfg.Output.Progress && !dryRun && output.IsTerminal(os.Stderr) {
		progress = output.NewBarProgress(os.Stderr)
	}

	walker, err := backup.NewWalker(source, dest, logger, progress, session)
	if err != nil {
		return fmt.Errorf("failed to create backup walker: %w", err)
	}

	report, runErr := walker.Run(ctx)

	if !cfg.Output.Quiet {
		if err := formatter.Write(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if runErr != nil {
		return &ExitError{Code: report.Status.ExitCode(), Err: runErr}
	}
	return nil
}
