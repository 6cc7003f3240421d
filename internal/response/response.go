package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every JSON endpoint answers with. Exactly one of
// Data or Error is meaningful.
type Response struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody carries a machine readable code, its message and optional
// per-field details such as binding errors or a conflicting entry id.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ─── Writers ────────────────────────────────────────────────────────

// Success writes data with the given status.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope(c, data, nil))
}

// Fail writes an error envelope for code.
func Fail(c *gin.Context, status int, code ErrCode) {
	c.JSON(status, envelope(c, nil, errorBody(code, nil)))
}

// FailWithFields writes an error envelope with field-level details.
func FailWithFields(c *gin.Context, status int, code ErrCode, fields map[string]string) {
	c.JSON(status, envelope(c, nil, errorBody(code, fields)))
}

// AbortFail stops the handler chain and writes an error envelope.
func AbortFail(c *gin.Context, status int, code ErrCode) {
	c.AbortWithStatusJSON(status, envelope(c, nil, errorBody(code, nil)))
}

func errorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

func envelope(c *gin.Context, data interface{}, errBody *ErrorBody) Response {
	return Response{
		Data:  data,
		Error: errBody,
		Metadata: Metadata{
			RequestID: requestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// requestID falls back to a fresh id when RequestIDMiddleware did not run.
func requestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
