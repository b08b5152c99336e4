package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// SystemRepository implements [models.Repository] for [models.System] persistence.
type SystemRepository struct {
	db *sql.DB
}

// NewSystemRepository creates a new [SystemRepository] with the given database connection
func NewSystemRepository(db *sql.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

func (r *SystemRepository) Create(ctx context.Context, in *models.SystemInput) (*models.System, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO system (name) VALUES (?)`, in.Name)
	if err != nil {
		return nil, classifyError("insert system", err)
	}

	id, err := lastInsertID(res)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *SystemRepository) Get(ctx context.Context, id int64) (*models.System, error) {
	var s models.System
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM system WHERE id = ?`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("system %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query system: %w", err)
	}
	return &s, nil
}

func (r *SystemRepository) List(ctx context.Context) ([]models.System, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM system ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer rows.Close()

	systems := []models.System{}
	for rows.Next() {
		var s models.System
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return systems, nil
}

func (r *SystemRepository) Update(ctx context.Context, id int64, in *models.SystemInput) (*models.System, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE system SET name = ? WHERE id = ?`, in.Name, id)
	if err != nil {
		return nil, classifyError("update system", err)
	}
	if err := expectAffected(res, "system", id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a system. Lines and media referencing it become unlinked.
func (r *SystemRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "system", "system", id)
}

const lineSelect = `
	SELECT l.id, l.name, l.system_id, s.name
	FROM line l
	LEFT JOIN system s ON s.id = l.system_id
`

// LineRepository implements [models.Repository] for [models.Line] persistence.
//
// Every returned line carries the name of its system.
type LineRepository struct {
	db *sql.DB
}

// NewLineRepository creates a new [LineRepository] with the given database connection
func NewLineRepository(db *sql.DB) *LineRepository {
	return &LineRepository{db: db}
}

func (r *LineRepository) Create(ctx context.Context, in *models.LineInput) (*models.Line, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO line (name, system_id) VALUES (?, ?)`, in.Name, in.SystemID)
	if err != nil {
		return nil, classifyError("insert line", err)
	}

	id, err := lastInsertID(res)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *LineRepository) Get(ctx context.Context, id int64) (*models.Line, error) {
	line, err := scanLine(r.db.QueryRowContext(ctx, lineSelect+` WHERE l.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("line %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query line: %w", err)
	}
	return line, nil
}

func (r *LineRepository) List(ctx context.Context) ([]models.Line, error) {
	rows, err := r.db.QueryContext(ctx, lineSelect+` ORDER BY l.name, l.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	lines := []models.Line{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, *line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *LineRepository) Update(ctx context.Context, id int64, in *models.LineInput) (*models.Line, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE line SET name = ?, system_id = ? WHERE id = ?`, in.Name, in.SystemID, id)
	if err != nil {
		return nil, classifyError("update line", err)
	}
	if err := expectAffected(res, "line", id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a line. Media referencing it become unlinked.
func (r *LineRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "line", "line", id)
}

func scanLine(s scanner) (*models.Line, error) {
	var l models.Line
	if err := s.Scan(&l.ID, &l.Name, &l.SystemID, &l.SystemName); err != nil {
		return nil, err
	}
	return &l, nil
}
