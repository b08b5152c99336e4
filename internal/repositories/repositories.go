// package repositories provides persistence layer implementations for all model types.
//
// Each repository holds the shared *sql.DB pool, takes a context on every call
// and reports failures as classified [shared.Error] values.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/midias/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// conflictMessages maps raw SQLite constraint messages to messages safe for API callers.
// Order matters: the first matching pattern wins.
var conflictMessages = []struct {
	pattern string
	message string
}{
	{"UNIQUE constraint failed: line.name", "a line with this name already exists"},
	{"UNIQUE constraint failed: system.name", "a system with this name already exists"},
	{"UNIQUE constraint failed: person.email", "a person with this email already exists"},
	{"UNIQUE constraint failed: user.username", "a user with this username already exists"},
	{"UNIQUE constraint failed: media_person", "the same person is linked twice with the same role"},
	{"CHECK constraint failed: user_role_check", "invalid role (use 'admin' or 'user')"},
	{"CHECK constraint failed: media_platform_check", "invalid platform (use 'vimeo' or 'youtube')"},
	{"CHECK constraint failed: media_person_role_check", "invalid role (use 'responsavel' or 'participante')"},
	{"FOREIGN KEY constraint failed", "a referenced record does not exist"},
}

const genericConflict = "integrity constraint violated (check unique values and references)"

// classifyError turns SQLite constraint violations into [shared.ErrConflict] errors and
// wraps anything else with the attempted operation.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return shared.Conflict(conflictMessage(sqliteErr.Error()), err)
	}

	if _, ok := shared.AsError(err); ok {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func conflictMessage(raw string) string {
	for _, c := range conflictMessages {
		if strings.Contains(raw, c.pattern) {
			return c.message
		}
	}
	return genericConflict
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classifyError("commit transaction", err)
	}
	return nil
}

// expectAffected returns a not found error naming entity when res touched no rows.
func expectAffected(res sql.Result, entity string, id int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.NotFound("%s %d not found", entity, id)
	}
	return nil
}

// lastInsertID reads the generated id of an insert.
func lastInsertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// deleteByID removes one row from table, reporting a missing row as not found.
func deleteByID(ctx context.Context, q querier, table, entity string, id int64) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return classifyError("delete "+entity, err)
	}
	return expectAffected(res, entity, id)
}

// setClause accumulates the assignments of a partial UPDATE.
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.parts = append(s.parts, column+" = ?")
	s.args = append(s.args, value)
}

func (s *setClause) empty() bool {
	return len(s.parts) == 0
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}
