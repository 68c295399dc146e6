// Package postgres implements the store repositories on PostgreSQL through
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/store"
)

// New builds a store.Store over db. The schema is created by the migrations directory.
func New(db *sql.DB) *store.Store {
	return &store.Store{
		Institutions:  &institutionRepo{db: db},
		Faculties:     &facultyRepo{db: db},
		Courses:       &courseRepo{db: db},
		Companies:     &companyRepo{db: db},
		Jobs:          &jobRepo{db: db},
		Students:      &studentRepo{db: db},
		Registrations: &registrationRepo{db: db},
		Notifications: &notificationRepo{db: db},
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// readErr maps a failed read; sql.ErrNoRows becomes NOT_FOUND.
func readErr(err error, collection, id string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(collection, id)
	}
	return errors.NewStoreReadError(collection+".get", err)
}

// execOne runs a write that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, op, collection, id, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewStoreWriteError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreWriteError(op, err)
	}
	if n == 0 {
		return errors.NewNotFoundError(collection, id)
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
