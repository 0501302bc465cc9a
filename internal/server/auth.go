package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likeswap/internal/auth"
	"github.com/desertthunder/likeswap/internal/models"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "session_id"

// Authenticator runs the authorization-code flow. [auth.Exchanger] implements it.
type Authenticator interface {
	AuthorizationURL() (authURL, state string, err error)
	Complete(ctx context.Context, code, state string) (*auth.LoginResult, error)
}

// SessionResolver maps a session id to its user. [auth.SessionRegistry] implements it.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*models.User, error)
}

// LoginResponse is the body of GET /auth/login.
type LoginResponse struct {
	AuthURL string `json:"auth_url"`
}

// StatusResponse is the body of GET /auth/status.
type StatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// CallbackResponse is the body of GET /auth/callback.
type CallbackResponse struct {
	Success   bool         `json:"success"`
	SessionID string       `json:"session_id,omitempty"`
	User      *models.User `json:"user,omitempty"`
	Error     string       `json:"error,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	auth     Authenticator
	sessions SessionResolver
	logger   *log.Logger
	secure   bool
}

// NewAuthHandler creates an AuthHandler. secure marks the session cookie Secure.
func NewAuthHandler(a Authenticator, sessions SessionResolver, logger *log.Logger, secure bool) *AuthHandler {
	return &AuthHandler{auth: a, sessions: sessions, logger: logger, secure: secure}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/auth/login", "/auth/status", "/auth/callback"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/auth/login":
		h.login(w, r)
	case "/auth/status":
		h.status(w, r)
	case "/auth/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, _ *http.Request) {
	authURL, _, err := h.auth.AuthorizationURL()
	if err != nil {
		h.logger.Error("failed to issue authorization url", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{AuthURL: authURL})
}

func (h *AuthHandler) status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{})
		return
	}

	user, err := h.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Debug("session not resolved", "error", err)
		writeJSON(w, http.StatusOK, StatusResponse{})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Authenticated: true, User: user})
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		writeJSON(w, http.StatusBadRequest, CallbackResponse{
			Error:   e,
			Message: "User denied access or error occurred",
		})
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, CallbackResponse{
			Error:   "missing_code",
			Message: "No authorization code received",
		})
		return
	}

	result, err := h.auth.Complete(r.Context(), code, q.Get("state"))
	if err != nil {
		status, body := callbackError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("callback failed", "error", err)
		}
		writeJSON(w, status, body)
		return
	}

	session := result.Session
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID(),
		Path:     "/",
		Expires:  session.ExpiresAt(),
		MaxAge:   int(time.Until(session.ExpiresAt()).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, CallbackResponse{
		Success:   true,
		SessionID: session.ID(),
		User:      result.User,
	})
}

// callbackError maps a failed login to a status and body. State errors are client errors and
// provider failures are reported as a bad gateway.
func callbackError(err error) (int, CallbackResponse) {
	var authErr *auth.AuthError
	if !errors.As(err, &authErr) {
		return http.StatusInternalServerError, CallbackResponse{
			Error:   "internal_error",
			Message: "Failed to complete login",
		}
	}

	status := http.StatusBadGateway
	switch authErr.Code {
	case auth.CodeMissingState, auth.CodeInvalidState:
		status = http.StatusBadRequest
	}
	return status, CallbackResponse{Error: authErr.Code, Message: authErr.Message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
