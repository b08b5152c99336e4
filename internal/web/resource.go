package web

import (
	"context"
	"net/http"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
)

// Store is a repository with an unfiltered listing.
type Store[T any, I any] interface {
	models.Repository[T, I]
	models.Lister[T]
}

// PatchFunc applies a partial update to the row with the given id.
type PatchFunc[T any, P any] func(ctx context.Context, id int64, p *P) (*T, error)

// resource serves create, list, get, replace and delete for one entity under base.
// Writes go through gate; reads are public.
type resource[T any, I any, PI validatable[I]] struct {
	base  string
	repo  models.Repository[T, I]
	list  func(r *http.Request) ([]T, error)
	gate  server.Middleware
	extra []server.Route
}

func newResource[T any, I any, PI validatable[I]](base string, store Store[T, I], gate server.Middleware) *resource[T, I, PI] {
	return &resource[T, I, PI]{
		base: base,
		repo: store,
		list: func(r *http.Request) ([]T, error) { return store.List(r.Context()) },
		gate: gate,
	}
}

func (h *resource[T, I, PI]) Routes() []server.Route {
	item := h.base + "/{id}"
	gated := []server.Middleware{h.gate}
	routes := []server.Route{
		{Method: http.MethodPost, Path: h.base, Handler: http.HandlerFunc(h.create), Middleware: gated},
		{Method: http.MethodGet, Path: h.base, Handler: http.HandlerFunc(h.index)},
		{Method: http.MethodGet, Path: item, Handler: http.HandlerFunc(h.show)},
		{Method: http.MethodPut, Path: item, Handler: http.HandlerFunc(h.update), Middleware: gated},
		{Method: http.MethodDelete, Path: item, Handler: http.HandlerFunc(h.destroy), Middleware: gated},
	}
	return append(routes, h.extra...)
}

func (h *resource[T, I, PI]) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput[I, PI](r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	item, err := h.repo.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (h *resource[T, I, PI]) index(w http.ResponseWriter, r *http.Request) {
	items, err := h.list(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *resource[T, I, PI]) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (h *resource[T, I, PI]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	in, err := decodeInput[I, PI](r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	item, err := h.repo.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (h *resource[T, I, PI]) destroy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	writeOK(w)
}

// patchRoute serves PATCH base/{id} with field-presence semantics.
func patchRoute[T any, P any, PP validatable[P]](base string, patch PatchFunc[T, P], gate server.Middleware) server.Route {
	return server.Route{
		Method: http.MethodPatch,
		Path:   base + "/{id}",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := pathID(r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			p, err := decodeInput[P, PP](r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			item, err := patch(r.Context(), id, p)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			WriteJSON(w, http.StatusOK, item)
		}),
		Middleware: []server.Middleware{gate},
	}
}
