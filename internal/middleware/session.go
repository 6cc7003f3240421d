package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
)

// SessionValidator reports whether a token's session is still active.
type SessionValidator interface {
	ValidateSession(ctx context.Context, facultyID int, jti string) error
}

// CheckActiveSession rejects tokens whose session was revoked by logout.
// Must run after RequireFacultyJWT or RequireFacultyWSAuth.
func CheckActiveSession(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := sessions.ValidateSession(c.Request.Context(), claims.FacultyID, claims.ID); err != nil {
			if errors.Is(err, service.ErrSessionRevoked) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			log.Error().Err(err).Int("faculty_id", claims.FacultyID).Msg("Session check failed")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
