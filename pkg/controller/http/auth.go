package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUC   usecase.AuthUseCase
	users    usecase.UserManagement
	tokenTTL time.Duration
	secure   bool
}

// NewAuthHandler creates a new auth handler. secure marks the session cookie
// HTTPS only.
func NewAuthHandler(authUC usecase.AuthUseCase, users usecase.UserManagement, tokenTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		authUC:   authUC,
		users:    users,
		tokenTTL: tokenTTL,
		secure:   secure,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// HandleLogin verifies credentials and issues an access token, both in the
// body and as a cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, user, err := h.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	ctxlog.From(r.Context()).Info("User signed in", "userID", user.ID, "role", user.Role)
	writeJSON(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

// HandleLogout clears the session cookie. Tokens are stateless and expire on their own.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		MaxAge:   -1,
	})
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// HandleUserMe returns the signed-in user
func (h *AuthHandler) HandleUserMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

type passwordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// HandleChangePassword replaces the password of the signed-in user
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), callerID(r), req.Current, req.New); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
