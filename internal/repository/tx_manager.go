package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// TimetableStore is the timetable access available inside a schedule lock.
type TimetableStore interface {
	ListEntries(ctx context.Context, facultyID int) ([]model.TimetableEntry, error)
	GetByID(ctx context.Context, id, facultyID int) (*model.TimetableEntry, error)
	Create(ctx context.Context, e *model.TimetableEntry) error
	Update(ctx context.Context, e *model.TimetableEntry) error
}

// AttendanceWriter is the attendance access available inside a transaction.
type AttendanceWriter interface {
	CountRoster(ctx context.Context, courseID int, studentIDs []int) (int, error)
	UpsertBulk(ctx context.Context, timetableID int, date time.Time, marks []model.AttendanceMark) error
}

// TxManager runs units of work inside a single database transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithScheduleLock runs fn in a read-committed transaction holding a
// transaction-scoped advisory lock keyed by faculty. Writers for the same
// faculty are serialized, so the conflict check and the write see the same
// schedule. The lock is released on commit or rollback.
func (m *TxManager) WithScheduleLock(ctx context.Context, facultyID int, fn func(ctx context.Context, store TimetableStore) error) error {
	return pgx.BeginTxFunc(ctx, m.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, scheduleLockSpace, facultyID); err != nil {
			return err
		}
		return fn(ctx, NewTimetableRepository(tx))
	})
}

// WithAttendanceTx runs fn in a transaction so a bulk marking is stored
// completely or not at all.
func (m *TxManager) WithAttendanceTx(ctx context.Context, fn func(ctx context.Context, store AttendanceWriter) error) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewAttendanceRepository(tx))
	})
}

// scheduleLockSpace namespaces the advisory lock so it cannot collide with
// other int4 lock pairs.
const scheduleLockSpace int32 = 0x7474
