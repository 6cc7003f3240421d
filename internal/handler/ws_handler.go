package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/response"
	ws "github.com/facultrack/attendance-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a faculty's live events over WebSocket.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// safeConn serializes writes; gorilla allows one concurrent writer.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *safeConn) typed(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ws.WriteTyped(s.conn, v)
}

func (s *safeConn) raw(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ws.WriteRaw(s.conn, payload)
}

func (s *safeConn) fail(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ws.WriteError(s.conn, msg)
}

// FacultyStream godoc
// WS /ws/v1/faculty/stream?token=...
// Forwards timetable and attendance events published for the faculty.
func (h *WSHandler) FacultyStream(c *gin.Context) {
	fid, ok := facultyID(c)
	if !ok {
		return
	}

	// Subscribe before upgrading so a Redis outage still gets a JSON error.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.FacultyEventsChannel(fid))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Int("faculty_id", fid).Msg("Subscribe failed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("faculty_id", fid).Logger()
	wsLog.Info().Msg("Faculty connected to live stream")

	out := &safeConn{conn: conn}
	if err := out.typed(ws.ReadyResponse{Event: ws.EventReady, FacultyID: fid}); err != nil {
		return
	}

	go h.readLoop(out, wsLog, cancel)

	events := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Live stream closed")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			// Payloads are already encoded LiveEvents.
			if err := out.raw([]byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// readLoop answers pings and cancels the stream when the client goes away.
func (h *WSHandler) readLoop(out *safeConn, wsLog zerolog.Logger, cancel context.CancelFunc) {
	defer cancel()

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(out.conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			if err := out.typed(ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			if err := out.fail("unknown action: " + string(msg.Action)); err != nil {
				return
			}
		}
	}
}
