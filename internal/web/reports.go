package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
)

// MediaLister lists media matching a filter.
type MediaLister interface {
	List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
}

// ReportsHandler serves the per-person report as JSON or CSV.
type ReportsHandler struct {
	media MediaLister
}

func NewReportsHandler(media MediaLister) *ReportsHandler {
	return &ReportsHandler{media: media}
}

func (h *ReportsHandler) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/reports/by-person", Handler: http.HandlerFunc(h.byPerson)},
	}
}

// byPerson lists the media a person is linked to. A truthy csv_export returns a CSV attachment.
func (h *ReportsHandler) byPerson(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var q queryErrors
	if values.Get("person_id") == "" {
		q = append(q, models.FieldError{Field: "person_id", Rule: "required", Message: "person_id is required"})
	}
	asCSV := q.flag(values, "csv_export")
	filter, err := parseFilter(values, &q)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	items, err := h.media.List(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if !asCSV {
		WriteJSON(w, http.StatusOK, items)
		return
	}

	data, err := formatter.ExportToCSV(items)
	if err != nil {
		WriteError(w, r, fmt.Errorf("failed to render report: %w", err))
		return
	}
	w.Header().Set("Content-Type", formatter.FormatCSV.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+formatter.CSVFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
