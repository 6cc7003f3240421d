package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Common repository errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateEmail      = errors.New("faculty with this email already exists")
	ErrDuplicateCourseCode = errors.New("course with this code already exists")
	ErrDuplicateStudentID  = errors.New("student with this student id already exists")
	ErrHasDependents       = errors.New("record is still referenced by other data")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapNoRows converts pgx.ErrNoRows into ErrNotFound.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// weekdayOrder sorts day_of_week from Monday to Sunday.
const weekdayOrder = `array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], t.day_of_week)`
