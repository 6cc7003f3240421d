package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports liveness and runtime status.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// 200 when PostgreSQL and Redis answer, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database health check failed")
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis health check failed")
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	}

	response.Success(c, status, gin.H{"status": checks})
}

type systemStatus struct {
	Uptime     string `json:"uptime"`
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`

	DBTotalConns    int32 `json:"db_total_conns"`
	DBAcquiredConns int32 `json:"db_acquired_conns"`

	QueueAudit int64 `json:"queue_audit"`
}

// Status godoc
// GET /api/v1/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	st := systemStatus{
		Uptime:     formatDuration(time.Since(h.startTime)),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		NumGC:      ms.NumGC,
	}

	stat := h.pool.Stat()
	st.DBTotalConns = stat.TotalConns()
	st.DBAcquiredConns = stat.AcquiredConns()

	if n, err := h.rdb.LLen(c.Request.Context(), config.WorkerKey.PersistAuditQueue).Result(); err == nil {
		st.QueueAudit = n
	}

	response.Success(c, http.StatusOK, st)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
