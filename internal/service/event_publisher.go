package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

// EventPublisher broadcasts live events to a faculty's connected clients.
// Publishing is best effort and never fails the calling operation.
type EventPublisher interface {
	Publish(ctx context.Context, facultyID int, event ws.Event, data interface{})
}

// RedisEventPublisher publishes events on the faculty's Redis PubSub channel.
type RedisEventPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisEventPublisher creates a new RedisEventPublisher.
func NewRedisEventPublisher(rdb *redis.Client, log zerolog.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{
		rdb: rdb,
		log: log.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish encodes and sends the event.
func (p *RedisEventPublisher) Publish(ctx context.Context, facultyID int, event ws.Event, data interface{}) {
	payload, err := json.Marshal(ws.LiveEvent{
		Event:     event,
		FacultyID: facultyID,
		Data:      data,
		At:        time.Now().UTC(),
	})
	if err != nil {
		p.log.Error().Err(err).Str("event", string(event)).Msg("Encode event failed")
		return
	}

	channel := config.CacheKey.FacultyEventsChannel(facultyID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn().Err(err).Int("faculty_id", facultyID).Str("event", string(event)).Msg("Publish event failed")
	}
}
