package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/model"
)

const retryDelay = 5 * time.Second

var errMalformed = errors.New("malformed audit payload")

// AuditWriter persists one audit entry.
type AuditWriter interface {
	Insert(ctx context.Context, log *model.AuditLog) error
}

// AuditWorker consumes persist_audit_queue and inserts entries into audit_logs.
type AuditWorker struct {
	writer AuditWriter
	rdb    *redis.Client
	queue  string
	log    zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(writer AuditWriter, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		writer: writer,
		rdb:    rdb,
		queue:  config.WorkerKey.PersistAuditQueue,
		log:    log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AuditWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	err = w.persist(ctx, result[1])
	switch {
	case err == nil:
	case errors.Is(err, errMalformed):
		w.log.Error().Err(err).Str("payload", result[1]).Msg("Dropping audit entry")
	default:
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		// Keep the entry and back off; the database may be restarting.
		w.rdb.RPush(context.Background(), w.queue, result[1])
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
		}
	}
}

// persist decodes one queued payload and writes it.
func (w *AuditWorker) persist(ctx context.Context, raw string) error {
	var entry model.AuditLog
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if entry.EntityType == "" || entry.Action == "" || entry.PerformedBy == 0 {
		return fmt.Errorf("%w: missing entity, action or actor", errMalformed)
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	return w.writer.Insert(ctx, &entry)
}

// drain persists what is left in the queue before shutdown.
func (w *AuditWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, w.queue).Result()
		if err != nil {
			break
		}

		if err := w.persist(ctx, raw); err != nil {
			if errors.Is(err, errMalformed) {
				w.log.Error().Err(err).Msg("Drain dropped malformed entry")
				continue
			}
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, w.queue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
