package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/tabrima/storefront/app/api"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionName = "tabrima_session"
	// SessionMaxAge is one day, in seconds.
	SessionMaxAge = 24 * 60 * 60

	keyAdmin    = "admin"
	keyUsername = "username"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Options struct {
	Username string
	// PasswordHash is a bcrypt hash. When empty, Password is hashed at startup.
	PasswordHash string
	Password     string
	Secret       string
	Secure       bool
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// Authenticator checks the single admin account and keeps its login in a
// signed cookie session.
type Authenticator struct {
	store    *sessions.CookieStore
	username string
	hash     []byte
	logger   *slog.Logger
}

func New(opts Options, logger *slog.Logger) (*Authenticator, error) {
	hash := []byte(opts.PasswordHash)
	if len(hash) == 0 && opts.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	if len(hash) > 0 {
		if _, err := bcrypt.Cost(hash); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
	} else {
		logger.Warn("no admin password configured, admin login is disabled")
	}

	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Authenticator{
		store:    store,
		username: opts.Username,
		hash:     hash,
		logger:   logger,
	}, nil
}

// Verify reports whether username and password match the admin account.
func (a *Authenticator) Verify(username, password string) error {
	if len(a.hash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil || !userOK {
		return ErrInvalidCredentials
	}
	return nil
}

// session returns the request's session. A cookie that fails to decode
// yields a fresh session.
func (a *Authenticator) session(r *http.Request) *sessions.Session {
	s, err := a.store.Get(r, SessionName)
	if err != nil {
		a.logger.DebugContext(r.Context(), "discarding undecodable session", "error", err)
	}
	return s
}

// IsAdmin reports whether the request carries an admin session.
func (a *Authenticator) IsAdmin(r *http.Request) bool {
	ok, _ := a.session(r).Values[keyAdmin].(bool)
	return ok
}

func (a *Authenticator) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := a.Verify(req.Username, req.Password); err != nil {
		a.logger.WarnContext(r.Context(), "admin login rejected", "username", req.Username)
		api.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	s := a.session(r)
	s.Values[keyAdmin] = true
	s.Values[keyUsername] = req.Username
	if err := s.Save(r, w); err != nil {
		a.logger.ErrorContext(r.Context(), "save session", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	api.OKResponse(w, SessionResponse{Authenticated: true, Username: req.Username})
}

func (a *Authenticator) HandleLogout(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	s.Values = map[any]any{}
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		a.logger.ErrorContext(r.Context(), "clear session", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to end session")
		return
	}
	api.OKResponse(w, SessionResponse{Authenticated: false})
}

func (a *Authenticator) HandleSession(w http.ResponseWriter, r *http.Request) {
	s := a.session(r)
	ok, _ := s.Values[keyAdmin].(bool)
	if !ok {
		api.OKResponse(w, SessionResponse{Authenticated: false})
		return
	}
	username, _ := s.Values[keyUsername].(string)
	api.OKResponse(w, SessionResponse{Authenticated: true, Username: username})
}

// RequireAdmin rejects requests without an admin session.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.IsAdmin(r) {
			api.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
