package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadWait is how long a connection may stay silent before it is dropped.
	ReadWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteRaw sends an already encoded JSON message.
func WriteRaw(conn *websocket.Conn, payload []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(ReadWait))
	return conn.ReadJSON(v)
}
