package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

const mediaColumns = `m.id, m.title, m.description, m.platform, m.url, m.published_at, m.line_id, m.system_id, m.updated_at`

// MediaRepository implements [models.Repository] for [models.Media] persistence.
//
// Writes that touch both the media row and its person links run in one transaction.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new [MediaRepository] with the given database connection
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a media item with its links and returns the stored row
func (r *MediaRepository) Create(ctx context.Context, in *models.MediaInput) (*models.Media, error) {
	var media *models.Media
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO media (title, description, platform, url, published_at, line_id, system_id, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, in.Title, in.Description, in.Platform, in.URL, in.PublishedAt, in.LineID, in.SystemID)
		if err != nil {
			return classifyError("insert media", err)
		}

		id, err := lastInsertID(res)
		if err != nil {
			return err
		}

		if err := insertLinks(ctx, tx, id, in.People); err != nil {
			return err
		}

		media, err = getMedia(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

// Get retrieves a media item by ID with its links
func (r *MediaRepository) Get(ctx context.Context, id int64) (*models.Media, error) {
	return getMedia(ctx, r.db, id)
}

// List retrieves media matching every present filter, newest first.
//
// The person filter is an existence check so an item linked to the same person under
// both roles is returned once.
func (r *MediaRepository) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	var (
		where []string
		args  []any
	)

	if filter.Platform != "" {
		where = append(where, "m.platform = ?")
		args = append(args, filter.Platform)
	}
	if filter.PersonID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM media_person mp WHERE mp.media_id = m.id AND mp.person_id = ?)")
		args = append(args, *filter.PersonID)
	}
	if filter.LineID != nil {
		where = append(where, "m.line_id = ?")
		args = append(args, *filter.LineID)
	}
	if filter.SystemID != nil {
		where = append(where, "m.system_id = ?")
		args = append(args, *filter.SystemID)
	}
	if filter.DateFrom != "" {
		where = append(where, "m.published_at >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		where = append(where, "m.published_at <= ?")
		args = append(args, filter.DateTo)
	}

	query := `SELECT ` + mediaColumns + ` FROM media m`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.published_at DESC, m.id DESC"

	items, err := queryMedia(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}

	if err := attachLinks(ctx, r.db, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces every column of a media item and re-syncs its links
func (r *MediaRepository) Update(ctx context.Context, id int64, in *models.MediaInput) (*models.Media, error) {
	var media *models.Media
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE media
			SET title = ?, description = ?, platform = ?, url = ?, published_at = ?,
				line_id = ?, system_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, in.Title, in.Description, in.Platform, in.URL, in.PublishedAt, in.LineID, in.SystemID, id)
		if err != nil {
			return classifyError("update media", err)
		}
		if err := expectAffected(res, "media", id); err != nil {
			return err
		}

		if err := replaceLinks(ctx, tx, id, in.People); err != nil {
			return err
		}

		media, err = getMedia(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

// Patch updates only the members present in p. Links are replaced only when p carries people.
func (r *MediaRepository) Patch(ctx context.Context, id int64, p *models.MediaPatch) (*models.Media, error) {
	if p.Empty() {
		return r.Get(ctx, id)
	}

	var set setClause
	if p.Title.Set {
		set.add("title", p.Title.Value)
	}
	if p.Description.Set {
		set.add("description", p.Description.Ptr())
	}
	if p.Platform.Set {
		set.add("platform", p.Platform.Value)
	}
	if p.URL.Set {
		set.add("url", p.URL.Value)
	}
	if p.PublishedAt.Set {
		set.add("published_at", p.PublishedAt.Value)
	}
	if p.LineID.Set {
		set.add("line_id", p.LineID.Ptr())
	}
	if p.SystemID.Set {
		set.add("system_id", p.SystemID.Ptr())
	}

	var media *models.Media
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `UPDATE media SET ` + strings.Join(append(set.parts, "updated_at = CURRENT_TIMESTAMP"), ", ") + ` WHERE id = ?`
		res, err := tx.ExecContext(ctx, query, append(set.args, id)...)
		if err != nil {
			return classifyError("patch media", err)
		}
		if err := expectAffected(res, "media", id); err != nil {
			return err
		}

		if p.People.Set {
			if err := replaceLinks(ctx, tx, id, p.People.Value); err != nil {
				return err
			}
		}

		media, err = getMedia(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

// Delete removes a media item and its links
func (r *MediaRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "media", "media", id)
}

func getMedia(ctx context.Context, q querier, id int64) (*models.Media, error) {
	row := q.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media m WHERE m.id = ?`, id)

	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("media %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}

	items := []models.Media{*media}
	if err := attachLinks(ctx, q, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// queryMedia reads every row before returning so the connection is free for the link query.
func queryMedia(ctx context.Context, q querier, query string, args ...any) ([]models.Media, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	items := []models.Media{}
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, *media)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// attachLinks loads the person links of every item with a single query.
func attachLinks(ctx context.Context, q querier, items []models.Media) error {
	if len(items) == 0 {
		return nil
	}

	index := make(map[int64]int, len(items))
	placeholders := make([]string, len(items))
	args := make([]any, len(items))
	for i := range items {
		items[i].People = []models.MediaPersonLink{}
		index[items[i].ID] = i
		placeholders[i] = "?"
		args[i] = items[i].ID
	}

	query := `
		SELECT mp.media_id, mp.person_id, mp.role, p.name
		FROM media_person mp
		JOIN person p ON p.id = mp.person_id
		WHERE mp.media_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY mp.media_id, p.name, mp.person_id, mp.role
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query media people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mediaID int64
			link    models.MediaPersonLink
		)
		if err := rows.Scan(&mediaID, &link.PersonID, &link.Role, &link.PersonName); err != nil {
			return fmt.Errorf("failed to scan media person: %w", err)
		}
		if i, ok := index[mediaID]; ok {
			items[i].People = append(items[i].People, link)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, mediaID int64, links []models.MediaPersonLink) error {
	for _, link := range links {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO media_person (media_id, person_id, role) VALUES (?, ?, ?)`,
			mediaID, link.PersonID, link.Role,
		)
		if err != nil {
			return classifyError("insert media person", err)
		}
	}
	return nil
}

// replaceLinks deletes every link of the item and inserts links in their place.
func replaceLinks(ctx context.Context, tx *sql.Tx, mediaID int64, links []models.MediaPersonLink) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM media_person WHERE media_id = ?`, mediaID); err != nil {
		return classifyError("clear media people", err)
	}
	return insertLinks(ctx, tx, mediaID, links)
}

func scanMedia(s scanner) (*models.Media, error) {
	var m models.Media
	err := s.Scan(&m.ID, &m.Title, &m.Description, &m.Platform, &m.URL, &m.PublishedAt, &m.LineID, &m.SystemID, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
