package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyRequestID is the gin context key holding the request id.
	ContextKeyRequestID = "request_id"

	headerRequestID    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new
// one. Oversized or non-printable ids are replaced rather than echoed back.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
