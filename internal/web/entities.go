package web

import (
	"context"
	"net/http"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
)

// PersonStore is the data access the people endpoints need.
type PersonStore interface {
	Store[models.Person, models.PersonInput]
	Patch(ctx context.Context, id int64, p *models.PersonPatch) (*models.Person, error)
}

// MediaStore is the data access the media endpoints need.
type MediaStore interface {
	models.Repository[models.Media, models.MediaInput]
	List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
	Patch(ctx context.Context, id int64, p *models.MediaPatch) (*models.Media, error)
}

// NewPeopleHandler serves /people, including PATCH.
func NewPeopleHandler(store PersonStore, gate server.Middleware) server.Handler {
	h := newResource[models.Person, models.PersonInput]("/people", store, gate)
	h.extra = []server.Route{
		patchRoute[models.Person, models.PersonPatch]("/people", store.Patch, gate),
	}
	return h
}

// NewSystemsHandler serves /systems.
func NewSystemsHandler(store Store[models.System, models.SystemInput], gate server.Middleware) server.Handler {
	return newResource[models.System, models.SystemInput]("/systems", store, gate)
}

// NewLinesHandler serves /lines.
func NewLinesHandler(store Store[models.Line, models.LineInput], gate server.Middleware) server.Handler {
	return newResource[models.Line, models.LineInput]("/lines", store, gate)
}

// NewMediaHandler serves /media. Listing accepts platform, person_id, line_id, system_id,
// date_from and date_to query filters.
func NewMediaHandler(store MediaStore, gate server.Middleware) server.Handler {
	return &resource[models.Media, models.MediaInput, *models.MediaInput]{
		base: "/media",
		repo: store,
		list: func(r *http.Request) ([]models.Media, error) {
			var q queryErrors
			filter, err := parseFilter(r.URL.Query(), &q)
			if err != nil {
				return nil, err
			}
			return store.List(r.Context(), filter)
		},
		gate: gate,
		extra: []server.Route{
			patchRoute[models.Media, models.MediaPatch]("/media", store.Patch, gate),
		},
	}
}
