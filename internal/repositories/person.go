package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

const personColumns = `id, name, email, created_at`

// PersonRepository implements [models.Repository] for [models.Person] persistence.
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a new [PersonRepository] with the given database connection
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// Create inserts a new person and returns the stored row
func (r *PersonRepository) Create(ctx context.Context, in *models.PersonInput) (*models.Person, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO person (name, email) VALUES (?, ?)`, in.Name, in.Email)
	if err != nil {
		return nil, classifyError("insert person", err)
	}

	id, err := lastInsertID(res)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get retrieves a person by ID
func (r *PersonRepository) Get(ctx context.Context, id int64) (*models.Person, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM person WHERE id = ?`, id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("person %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query person: %w", err)
	}
	return person, nil
}

// List retrieves all people ordered by name
func (r *PersonRepository) List(ctx context.Context) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+personColumns+` FROM person ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return people, nil
}

// Update replaces the name and email of a person
func (r *PersonRepository) Update(ctx context.Context, id int64, in *models.PersonInput) (*models.Person, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE person SET name = ?, email = ? WHERE id = ?`, in.Name, in.Email, id)
	if err != nil {
		return nil, classifyError("update person", err)
	}
	if err := expectAffected(res, "person", id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Patch updates only the members present in p
func (r *PersonRepository) Patch(ctx context.Context, id int64, p *models.PersonPatch) (*models.Person, error) {
	var set setClause
	if p.Name.Set {
		set.add("name", p.Name.Value)
	}
	if p.Email.Set {
		set.add("email", p.Email.Ptr())
	}

	if set.empty() {
		return r.Get(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE person SET `+set.String()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return nil, classifyError("patch person", err)
	}
	if err := expectAffected(res, "person", id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes a person and, through the schema, every link to it
func (r *PersonRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "person", "person", id)
}

func scanPerson(s scanner) (*models.Person, error) {
	var p models.Person
	if err := s.Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
