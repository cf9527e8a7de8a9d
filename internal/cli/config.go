package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/incrbackup/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the incrbackup configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func configPath() (string, error) {
	if globalFlags.ConfigFile != "" {
		return globalFlags.ConfigFile, nil
	}
	return config.DefaultConfigPath()
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source Root: %s\n", orUnset(cfg.Backup.SourceRoot))
			fmt.Fprintf(out, "Destination Root: %s\n", orUnset(cfg.Backup.DestRoot))
			fmt.Fprintf(out, "Auto Confirm: %t\n", cfg.Backup.AutoConfirm)
			fmt.Fprintf(out, "Match: %s\n", cfg.Backup.Match)
			fmt.Fprintf(out, "Bandwidth Limit: %s\n", orDefault(cfg.Backup.BandwidthLimit, "unlimited"))
			fmt.Fprintf(out, "Exclude: %s\n", orDefault(strings.Join(cfg.Exclude, ", "), "none"))
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log File: %s\n", orDefault(logPathIfEnabled(cfg.Logging), "disabled"))
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			expanded, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(expanded); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to replace it)", expanded)
			}

			if err := config.SaveToFile(config.Default(), expanded); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", expanded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func logPathIfEnabled(l config.LoggingConfig) string {
	if !l.Enabled {
		return ""
	}
	return l.Path
}

func orUnset(s string) string {
	return orDefault(s, "(prompted)")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
