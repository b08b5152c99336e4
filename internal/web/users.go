package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
)

// UserStore is the data access the user administration endpoints need.
type UserStore interface {
	Create(ctx context.Context, in *models.UserInput, passwordHash string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int64, in *models.UserInput, passwordHash string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UsersHandler serves /users. Every route requires the admin role.
type UsersHandler struct {
	store UserStore
	gate  server.Middleware
}

// NewUsersHandler creates a [UsersHandler] guarded by gate.
func NewUsersHandler(store UserStore, gate server.Middleware) *UsersHandler {
	return &UsersHandler{store: store, gate: gate}
}

func (h *UsersHandler) Routes() []server.Route {
	gated := []server.Middleware{h.gate}
	return []server.Route{
		{Method: http.MethodPost, Path: "/users", Handler: http.HandlerFunc(h.create), Middleware: gated},
		{Method: http.MethodGet, Path: "/users", Handler: http.HandlerFunc(h.list), Middleware: gated},
		{Method: http.MethodGet, Path: "/users/{id}", Handler: http.HandlerFunc(h.get), Middleware: gated},
		{Method: http.MethodPut, Path: "/users/{id}", Handler: http.HandlerFunc(h.update), Middleware: gated},
		{Method: http.MethodDelete, Path: "/users/{id}", Handler: http.HandlerFunc(h.delete), Middleware: gated},
	}
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[models.UserInput](r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(in.Token)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to hash user secret: %w", err))
		return
	}

	user, err := h.store.Create(r.Context(), in, hash)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// update replaces username, role and person; the secret changes only when a token is sent.
func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var in models.UserInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := in.ValidateUpdate(); err != nil {
		WriteError(w, r, err)
		return
	}

	var hash string
	if in.Token != "" {
		if hash, err = auth.HashPassword(in.Token); err != nil {
			WriteError(w, r, fmt.Errorf("failed to hash user secret: %w", err))
			return
		}
	}

	user, err := h.store.Update(r.Context(), id, &in, hash)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w)
}
