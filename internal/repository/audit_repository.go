package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facultrack/attendance-backend/internal/model"
)

// AuditRepository persists audit log entries.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Insert writes one audit entry. Changes are stored as JSONB.
func (r *AuditRepository) Insert(ctx context.Context, log *model.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (entity_type, entity_id, action, changes, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.EntityType, log.EntityID, string(log.Action), log.Changes, log.PerformedBy, log.At,
	)
	return err
}
