package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

// Version is overwritten at build time with -ldflags
var Version = "dev"

// Run parses args and executes the selected subcommand
func Run(ctx context.Context, args []string) error {
	var logCfg config.Logger

	cmd := &cli.Command{
		Name:        "ascent",
		Usage:       "Cohort training administration service",
		Description: "Tracks cohorts, stakeholder effort and trainee feedback behind a web console.",
		Version:     Version,
		Flags:       logCfg.Flags(),
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			logger, err := logCfg.Configure()
			if err != nil {
				return nil, err
			}
			slog.SetDefault(logger)
			return ctxlog.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdWeeks(),
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		return goerr.Wrap(err, "ascent command failed")
	}
	return nil
}
