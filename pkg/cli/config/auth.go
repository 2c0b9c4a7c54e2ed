package config

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds token signing and bootstrap account configuration
type Auth struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Flags returns CLI flags for Auth configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Secret for signing access tokens (random per process if not set)",
			Category:    "Auth",
			Sources:     cli.EnvVars("ASCENT_JWT_SECRET"),
			Destination: &a.JWTSecret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of access tokens",
			Category:    "Auth",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("ASCENT_TOKEN_TTL"),
			Destination: &a.TokenTTL,
		},
		&cli.StringFlag{
			Name:        "admin-email",
			Usage:       "E-mail of the admin account created on first start",
			Category:    "Auth",
			Sources:     cli.EnvVars("ASCENT_ADMIN_EMAIL"),
			Destination: &a.AdminEmail,
		},
		&cli.StringFlag{
			Name:        "admin-password",
			Usage:       "Password of the admin account created on first start",
			Category:    "Auth",
			Sources:     cli.EnvVars("ASCENT_ADMIN_PASSWORD"),
			Destination: &a.AdminPassword,
		},
		&cli.StringFlag{
			Name:        "admin-name",
			Usage:       "Display name of the bootstrap admin",
			Category:    "Auth",
			Value:       "Administrator",
			Sources:     cli.EnvVars("ASCENT_ADMIN_NAME"),
			Destination: &a.AdminName,
		},
	}
}

// Validate validates the auth configuration
func (a *Auth) Validate() error {
	if a.TokenTTL <= 0 {
		return goerr.New("token TTL must be positive", goerr.V("ttl", a.TokenTTL))
	}
	if (a.AdminEmail == "") != (a.AdminPassword == "") {
		return goerr.New("admin email and password must be set together")
	}
	if a.JWTSecret != "" && len(a.JWTSecret) < 32 {
		return goerr.New("JWT secret must be at least 32 bytes", goerr.V("length", len(a.JWTSecret)))
	}
	return nil
}

// Configure creates the auth use case and bootstraps the admin account when
// one is configured
func (a *Auth) Configure(ctx context.Context, repo interfaces.Repository, opts ...usecase.Option) (*usecase.Auth, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	secret := []byte(a.JWTSecret)
	if len(secret) == 0 {
		ctxlog.From(ctx).Warn("JWT secret is not set. Issued tokens become invalid on restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, goerr.Wrap(err, "failed to generate JWT secret")
		}
	}

	opts = append(opts, usecase.WithTokenTTL(a.TokenTTL))
	auth := usecase.NewAuth(repo, secret, opts...)

	if a.AdminEmail != "" {
		if _, err := auth.EnsureAdmin(ctx, a.AdminEmail, a.AdminPassword, a.AdminName); err != nil {
			return nil, err
		}
	}
	return auth, nil
}

// LogValue returns structured log value
func (a Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_jwt_secret", a.JWTSecret != ""),
		slog.Duration("token_ttl", a.TokenTTL),
		slog.String("admin_email", a.AdminEmail),
	)
}
