package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/model"
)

// AuditRecorder records changes to faculty-owned resources.
type AuditRecorder interface {
	Record(ctx context.Context, entry model.AuditLog)
}

// QueueAuditRecorder pushes audit entries onto a Redis list; the audit worker
// persists them. A failed push is logged and dropped.
type QueueAuditRecorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueueAuditRecorder creates a new QueueAuditRecorder.
func NewQueueAuditRecorder(rdb *redis.Client, log zerolog.Logger) *QueueAuditRecorder {
	return &QueueAuditRecorder{
		rdb: rdb,
		log: log.With().Str("component", "audit_recorder").Logger(),
	}
}

// Record enqueues the entry.
func (r *QueueAuditRecorder) Record(ctx context.Context, entry model.AuditLog) {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		r.log.Error().Err(err).Msg("Encode audit entry failed")
		return
	}
	if err := r.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, payload).Err(); err != nil {
		r.log.Warn().Err(err).
			Str("entity_type", entry.EntityType).
			Int("entity_id", entry.EntityID).
			Msg("Enqueue audit entry failed")
	}
}
