package cli

import (
	"fmt"
	"io"

	"github.com/sdejongh/incrbackup/pkg/config"
	"github.com/sdejongh/incrbackup/pkg/logging"
)

// createLogger builds the logging collaborator from configuration: the
// rotating log file, the console mirror, both or neither
func createLogger(cfg config.LoggingConfig, console io.Writer) (logging.Logger, error) {
	format := logging.FormatText
	if cfg.Format == "json" {
		format = logging.FormatJSON
	}
	level := logging.ParseLevel(cfg.Level)

	var loggers []logging.Logger

	if cfg.Enabled {
		path, err := config.ExpandPath(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand log path: %w", err)
		}

		maxSize, err := cfg.MaxSizeBytes()
		if err != nil {
			return nil, fmt.Errorf("invalid log max size: %w", err)
		}

		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       path,
			Format:     format,
			Level:      level,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fileLogger)
	}

	if cfg.Console {
		loggers = append(loggers, logging.NewConsoleLogger(console, level, format))
	}

	return logging.Tee(loggers...), nil
}
