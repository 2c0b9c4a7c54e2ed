package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/cli/config"
	controller "github.com/secmon-lab/ascent/pkg/controller/http"
	"github.com/secmon-lab/ascent/pkg/service/realtime"
	"github.com/secmon-lab/ascent/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		firestoreCfg config.Firestore
		slackCfg     config.Slack
		authCfg      config.Auth
		policyCfg    config.Policy
	)

	flags := slices.Concat(
		serverCfg.Flags(),
		firestoreCfg.Flags(),
		slackCfg.Flags(),
		authCfg.Flags(),
		policyCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting ascent server",
				slog.Any("server", serverCfg),
				slog.Any("firestore", firestoreCfg),
				slog.Any("slack", slackCfg),
				slog.Any("auth", authCfg),
				slog.Any("policy", policyCfg),
			)

			policy, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Warn("Failed to close repository", "error", err)
				}
			}()

			opts := []usecase.Option{usecase.WithEffortPolicy(policy)}
			auth, err := authCfg.Configure(ctx, repo, opts...)
			if err != nil {
				return err
			}

			hub := realtime.NewHub()
			defer hub.Close()

			notificationOpts := []usecase.NotificationOption{
				usecase.WithPublisher(hub),
				usecase.WithNotificationOptions(opts...),
			}
			notifier, err := slackCfg.Configure(serverCfg.FrontendURL)
			if err != nil {
				return err
			}
			if notifier != nil {
				logger.Info("Forwarding notifications to Slack", "channel", slackCfg.ChannelID)
				notificationOpts = append(notificationOpts, usecase.WithNotifier(notifier))
			}
			notifications := usecase.NewNotificationUseCase(repo, notificationOpts...)

			server, err := controller.NewServer(ctx, serverCfg.Addr,
				usecase.New(repo, auth, notifications, opts...),
				controller.WithHub(hub),
				controller.WithFrontendURL(serverCfg.FrontendURL),
				controller.WithSecureCookie(serverCfg.SecureCookie),
				controller.WithCookieTTL(authCfg.TokenTTL),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
