package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailWithFields(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrScheduleConflict, map[string]string{"conflicting_entry_id": "7"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrScheduleConflict, body.Error.Code)
	assert.Equal(t, "Time slot conflicts with existing schedule", body.Error.Message)
	assert.Equal(t, "7", body.Error.Fields["conflicting_entry_id"])
	assert.Equal(t, "req-1", body.Metadata.RequestID)
	assert.Nil(t, body.Data)
}

func TestSuccessGeneratesRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Metadata.RequestID)
	assert.Nil(t, body.Error)
}

func TestGetMessageDefault(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage(ErrCode("NOPE")))
}

func TestRequestIDReplacesInvalidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		AbortFail(c, http.StatusUnauthorized, ErrTokenRequired)
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"printable", "abc-123", true},
		{"contains space", "abc 123", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", tt.header)
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.NotEmpty(t, got)
			}
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
