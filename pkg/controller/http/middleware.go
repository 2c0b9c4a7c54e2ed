package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// TokenCookieName is the cookie carrying the access token of browser sessions
const TokenCookieName = "ascent_token"

// Middleware resolves the caller from its access token
type Middleware struct {
	authUC usecase.AuthUseCase
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authUC usecase.AuthUseCase) *Middleware {
	return &Middleware{
		authUC: authUC,
	}
}

// tokenFromRequest reads the bearer token, falling back to the session cookie
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stores the caller
// in the request context
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := m.authUC.ValidateToken(r.Context(), tokenFromRequest(r))
		if err != nil {
			ctxlog.From(r.Context()).Debug("Token validation failed", "error", err)
			writeError(w, r, err)
			return
		}

		ctx := model.WithAuthContext(r.Context(), authCtx)
		ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("userID", authCtx.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows only callers holding one of roles. It must run after RequireAuth.
func RequireRole(roles ...types.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, _ := model.GetAuthContext(r.Context())
			if !authCtx.HasRole(roles...) {
				writeError(w, r, model.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// caller returns the authenticated user of the request
func caller(r *http.Request) *model.AuthContext {
	authCtx, _ := model.GetAuthContext(r.Context())
	return authCtx
}

func callerID(r *http.Request) types.UserID {
	if authCtx := caller(r); authCtx != nil {
		return authCtx.UserID
	}
	return ""
}

// LoggingMiddleware creates a chi-compatible logging middleware
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(ctxlog.With(r.Context(), ctxlog.From(ctx)))

			logger := ctxlog.From(r.Context())
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
