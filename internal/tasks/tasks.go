package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// PersonGetter loads a person by id.
type PersonGetter interface {
	Get(ctx context.Context, id int64) (*models.Person, error)
}

// MediaLister lists media matching a filter.
type MediaLister interface {
	List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
}

// ReportEngine builds and exports per-person media reports.
type ReportEngine struct {
	people PersonGetter
	media  MediaLister
	logger *log.Logger
}

// NewReportEngine creates a [ReportEngine]. A nil logger falls back to the default logger.
func NewReportEngine(people PersonGetter, media MediaLister, logger *log.Logger) *ReportEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &ReportEngine{people: people, media: media, logger: logger}
}

// BuildReport loads a person and the media they are linked to, narrowed by filter.
//
// The person id of filter is replaced by personID.
func (e *ReportEngine) BuildReport(ctx context.Context, personID int64, filter models.MediaFilter) (*formatter.Report, error) {
	if personID <= 0 {
		return nil, fmt.Errorf("%w: person id must be positive", shared.ErrInvalidArgument)
	}
	filter.PersonID = &personID
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	person, err := e.people.Get(ctx, personID)
	if err != nil {
		return nil, err
	}

	items, err := e.media.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list media for person %d: %w", personID, err)
	}

	e.logger.Debug("report built", "person_id", personID, "media", len(items))
	return &formatter.Report{Person: person, Filter: filter, Items: items}, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
