package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultrack/attendance-backend/internal/model"
)

type fakeWriter struct {
	inserted []model.AuditLog
	err      error
}

func (f *fakeWriter) Insert(_ context.Context, log *model.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, *log)
	return nil
}

func TestAuditWorkerPersist(t *testing.T) {
	writer := &fakeWriter{}
	w := NewAuditWorker(writer, nil, zerolog.Nop())

	err := w.persist(context.Background(), `{"entity_type":"timetable","entity_id":5,"action":"update","changes":{"start_time":"09:00"},"performed_by":1}`)
	require.NoError(t, err)

	require.Len(t, writer.inserted, 1)
	got := writer.inserted[0]
	assert.Equal(t, "timetable", got.EntityType)
	assert.Equal(t, 5, got.EntityID)
	assert.Equal(t, model.AuditUpdate, got.Action)
	assert.Equal(t, "09:00", got.Changes["start_time"])
	assert.False(t, got.At.IsZero())
}

func TestAuditWorkerPersistErrors(t *testing.T) {
	t.Run("malformed payloads are not retried", func(t *testing.T) {
		w := NewAuditWorker(&fakeWriter{}, nil, zerolog.Nop())

		for _, raw := range []string{`not json`, `{"entity_id":5}`, `{"entity_type":"course","action":"create"}`} {
			err := w.persist(context.Background(), raw)
			assert.True(t, errors.Is(err, errMalformed), raw)
		}
	})

	t.Run("store failures surface for retry", func(t *testing.T) {
		w := NewAuditWorker(&fakeWriter{err: errors.New("connection refused")}, nil, zerolog.Nop())

		err := w.persist(context.Background(), `{"entity_type":"course","entity_id":1,"action":"delete","performed_by":1}`)
		require.Error(t, err)
		assert.False(t, errors.Is(err, errMalformed))
	})
}
