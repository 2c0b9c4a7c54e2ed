package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/frontend"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// WSHandler upgrades a request to a push channel for one user
type WSHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID types.UserID) error
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

type serverConfig struct {
	hub          WSHandler
	frontendURL  string
	secureCookie bool
	tokenTTL     time.Duration
	frontendFS   http.FileSystem
}

// ServerOption configures the HTTP server
type ServerOption func(*serverConfig)

// WithHub enables the notification push endpoint
func WithHub(hub WSHandler) ServerOption {
	return func(c *serverConfig) {
		c.hub = hub
	}
}

// WithFrontendURL sets the base URL used in shareable links
func WithFrontendURL(url string) ServerOption {
	return func(c *serverConfig) {
		c.frontendURL = url
	}
}

// WithSecureCookie marks the session cookie HTTPS only
func WithSecureCookie(secure bool) ServerOption {
	return func(c *serverConfig) {
		c.secureCookie = secure
	}
}

// WithCookieTTL sets the lifetime of the session cookie
func WithCookieTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.tokenTTL = ttl
	}
}

// WithFrontendFS serves the console from fsys instead of the embedded build
func WithFrontendFS(fsys http.FileSystem) ServerOption {
	return func(c *serverConfig) {
		c.frontendFS = fsys
	}
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, uc *usecase.UseCases, opts ...ServerOption) (*Server, error) {
	if uc == nil || uc.Auth == nil {
		return nil, goerr.New("use cases are required")
	}

	cfg := serverConfig{tokenTTL: 24 * time.Hour}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := chi.NewRouter()
	authMiddleware := NewMiddleware(uc.Auth)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	authHandler := NewAuthHandler(uc.Auth, uc.Users, cfg.tokenTTL, cfg.secureCookie)
	feedbackHandler := NewFeedbackHandler(uc.Feedback, cfg.frontendURL)

	router.Get("/health", handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
		})

		// Feedback forms are answered by trainees without an account
		r.Get("/feedback/session/{token}", feedbackHandler.HandleSession)
		r.Post("/feedback/session/{token}", feedbackHandler.HandleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Route("/user", func(r chi.Router) {
				r.Get("/me", authHandler.HandleUserMe)
				r.Put("/password", authHandler.HandleChangePassword)
			})
			r.Route("/users", func(r chi.Router) {
				r.Use(RequireRole(types.UserRoleAdmin))
				NewUserHandler(uc.Users).Routes(r)
			})
			r.Route("/stakeholders", NewStakeholderHandler(uc.Stakeholders).Routes)
			r.Route("/cohorts", NewCohortHandler(uc.Cohorts).Routes)
			r.Route("/candidates", NewCandidateHandler(uc.Candidates).Routes)
			r.Route("/efforts", NewEffortHandler(uc.Efforts).Routes)
			r.Route("/feedback", feedbackHandler.Routes)
			r.Route("/notifications", NewNotificationHandler(uc.Notifications).Routes)
			r.Route("/reports", NewReportHandler(uc.Reports).Routes)
			r.Route("/activities", NewActivityHandler(uc.Activities).Routes)
		})
	})

	if cfg.hub != nil {
		router.With(authMiddleware.RequireAuth).Get("/ws/notifications", func(w http.ResponseWriter, r *http.Request) {
			if err := cfg.hub.ServeWS(w, r, callerID(r)); err != nil {
				ctxlog.From(r.Context()).Debug("WebSocket session ended", "error", err)
			}
		})
	}

	fsys := cfg.frontendFS
	if fsys == nil {
		embedded, err := frontend.GetHTTPFS()
		if err != nil {
			ctxlog.From(ctx).Warn("Failed to get embedded frontend, using fallback", "error", err)
		}
		fsys = embedded
	}
	if fsys != nil {
		spa, err := NewSPAHandler(fsys)
		if err != nil {
			return nil, err
		}
		ctxlog.From(ctx).Info("Serving frontend")
		router.Handle("/*", spa)
	} else {
		router.Get("/*", handleFallbackHome)
	}

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ascent",
	})
}

// handleFallbackHome handles the root path when frontend is not available
func handleFallbackHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Ascent</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #1f3a5f;
            color: white;
        }
    </style>
</head>
<body>
    <div>
        <h1>Ascent</h1>
        <p>Cohort training administration</p>
        <p>The console has not been built. The API is served under /api.</p>
    </div>
</body>
</html>`)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write fallback home page", "error", err)
	}
}
