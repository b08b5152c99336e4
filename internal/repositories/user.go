package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

const userColumns = `id, username, role, person_id, created_at`

// UserRepository persists [models.User] accounts.
//
// Password hashes are written by callers (see the auth package) and are only read back through [UserRepository.GetByUsername].
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with an already hashed secret
func (r *UserRepository) Create(ctx context.Context, in *models.UserInput, passwordHash string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user (username, password_hash, role, person_id) VALUES (?, ?, ?, ?)`,
		in.Username, passwordHash, in.Role, in.PersonID,
	)
	if err != nil {
		return nil, classifyError("insert user", err)
	}

	id, err := lastInsertID(res)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user and its password hash by normalized username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.Credentials, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM user WHERE username = ?`,
		models.NormalizeUsername(username),
	)

	var c models.Credentials
	err := row.Scan(&c.ID, &c.Username, &c.Role, &c.PersonID, &c.CreatedAt, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFound("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &c, nil
}

// List retrieves all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM user ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

// Update replaces username, role and person of a user. An empty passwordHash keeps the current secret.
func (r *UserRepository) Update(ctx context.Context, id int64, in *models.UserInput, passwordHash string) (*models.User, error) {
	var set setClause
	set.add("username", in.Username)
	set.add("role", in.Role)
	set.add("person_id", in.PersonID)
	if passwordHash != "" {
		set.add("password_hash", passwordHash)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE user SET `+set.String()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return nil, classifyError("update user", err)
	}
	if err := expectAffected(res, "user", id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// SetPasswordHash replaces the stored secret of a user
func (r *UserRepository) SetPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return classifyError("update user secret", err)
	}
	return expectAffected(res, "user", id)
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "user", "user", id)
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Username, &u.Role, &u.PersonID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
