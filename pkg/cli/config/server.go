package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr         string
	FrontendURL  string
	SecureCookie bool
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("ASCENT_ADDR"),
			Destination: &s.Addr,
		},
		&cli.StringFlag{
			Name:        "frontend-url",
			Usage:       "Base URL of the console used in feedback links (if not set, detected from request headers)",
			Sources:     cli.EnvVars("ASCENT_FRONTEND_URL"),
			Destination: &s.FrontendURL,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Send the session cookie over HTTPS only",
			Sources:     cli.EnvVars("ASCENT_SECURE_COOKIE"),
			Destination: &s.SecureCookie,
		},
	}
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.String("frontend_url", s.FrontendURL),
		slog.Bool("secure_cookie", s.SecureCookie),
	)
}
