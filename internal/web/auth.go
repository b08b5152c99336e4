package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/shared"
)

// CredentialStore finds an account and its password hash by username.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Credentials, error)
}

// AuthHandler serves login, logout and session introspection under /auth.
type AuthHandler struct {
	store    CredentialStore
	codec    *auth.SessionCodec
	ttl      time.Duration
	secure   bool
	session  server.Middleware
	throttle server.Middleware
}

// NewAuthHandler creates an [AuthHandler]. session guards /auth/me and /auth/ping,
// throttle guards /auth/login.
func NewAuthHandler(store CredentialStore, codec *auth.SessionCodec, cfg shared.AuthConfig, session, throttle server.Middleware) *AuthHandler {
	return &AuthHandler{
		store:    store,
		codec:    codec,
		ttl:      cfg.SessionTTL,
		secure:   cfg.CookieSecure,
		session:  session,
		throttle: throttle,
	}
}

func (h *AuthHandler) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodPost, Path: "/auth/login", Handler: http.HandlerFunc(h.login), Middleware: []server.Middleware{h.throttle}},
		{Method: http.MethodPost, Path: "/auth/logout", Handler: http.HandlerFunc(h.logout)},
		{Method: http.MethodGet, Path: "/auth/me", Handler: http.HandlerFunc(h.me), Middleware: []server.Middleware{h.session}},
		{Method: http.MethodGet, Path: "/auth/ping", Handler: http.HandlerFunc(h.ping), Middleware: []server.Middleware{h.session}},
	}
}

type loginUser struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type loginResponse struct {
	OK   bool      `json:"ok"`
	User loginUser `json:"user"`
}

type sessionUser struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	PersonID *int64      `json:"person_id"`
}

type meResponse struct {
	User sessionUser `json:"user"`
}

var errBadCredentials = shared.Unauthorized("invalid credentials")

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[models.LoginInput](r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	creds, err := h.store.GetByUsername(r.Context(), in.Username)
	if errors.Is(err, shared.ErrNotFound) {
		server.LoggerFrom(r.Context()).Warn("login failed", "username", in.Username, "reason", "unknown user")
		WriteError(w, r, errBadCredentials)
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if !auth.VerifyPassword(in.Token, creds.PasswordHash) {
		server.LoggerFrom(r.Context()).Warn("login failed", "username", in.Username, "reason", "wrong secret")
		WriteError(w, r, errBadCredentials)
		return
	}

	token, err := h.codec.Sign(auth.Claims{UserID: creds.ID, Role: creds.Role}, h.ttl)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to sign session: %w", err))
		return
	}

	http.SetCookie(w, h.cookie(token, int(h.ttl/time.Second)))
	WriteJSON(w, http.StatusOK, loginResponse{
		OK:   true,
		User: loginUser{ID: creds.ID, Username: creds.Username, Role: creds.Role},
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1))
	writeOK(w)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	WriteJSON(w, http.StatusOK, meResponse{User: sessionUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		PersonID: user.PersonID,
	}})
}

func (h *AuthHandler) ping(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

// cookie builds the session cookie. A negative maxAge deletes it.
func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
