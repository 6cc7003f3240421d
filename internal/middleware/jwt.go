package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/facultrack/attendance-backend/internal/response"
	"github.com/facultrack/attendance-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

var errTokenMissing = errors.New("authorization header required")

// TokenValidator parses and verifies a signed token.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*service.Claims, error)
}

// RequireFacultyJWT validates a faculty JWT from the Authorization header.
func RequireFacultyJWT(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := auth.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenErrCode(err))
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireFacultyWSAuth validates a faculty JWT from the query param ?token=...
// Browsers cannot set headers on WebSocket upgrade requests.
func RequireFacultyWSAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := auth.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenErrCode(err))
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// FacultyID returns the authenticated faculty's ID, or 0 when absent.
func FacultyID(c *gin.Context) int {
	if claims := GetClaims(c); claims != nil {
		return claims.FacultyID
	}
	return 0
}

func bearerToken(c *gin.Context) (string, error) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errTokenMissing
	}
	return strings.TrimSpace(parts[1]), nil
}

func tokenErrCode(err error) response.ErrCode {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return response.ErrTokenExpired
	}
	return response.ErrTokenInvalid
}
