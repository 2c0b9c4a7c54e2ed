package config

import (
	"log/slog"
	"os"

	"github.com/secmon-lab/ascent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger selects verbosity and output format of the process logger
type Logger struct {
	Level  string
	Format string
}

// Flags returns CLI flags for Logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level [debug|info|warn|error]",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("ASCENT_LOG_LEVEL"),
			Destination: &l.Level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [auto|console|json]",
			Category:    "Logging",
			Value:       string(logging.FormatAuto),
			Sources:     cli.EnvVars("ASCENT_LOG_FORMAT"),
			Destination: &l.Format,
		},
	}
}

// Validate rejects unknown levels and formats
func (l *Logger) Validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	_, err := logging.ParseFormat(l.Format)
	return err
}

// Configure builds the logger writing to stdout
func (l *Logger) Configure() (*slog.Logger, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(l.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stdout, level, format), nil
}

// LogValue returns structured log value
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.Level),
		slog.String("format", l.Format),
	)
}
