package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	MinLength int
	Skipper   func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// Content types that are already compressed or are binary downloads.
var incompressibleTypes = []string{
	"image/",
	"application/zip",
	"application/vnd.openxmlformats-officedocument.",
	"application/octet-stream",
}

// brotliWriter holds the first MinLength bytes, then decides once whether
// the response is worth compressing.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int
	buf       []byte
	decided   bool
	br        *brotli.Writer
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		return bw.out(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) < bw.minLength {
		return len(data), nil
	}

	bw.decide(true)
	if err := bw.drain(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush commits to a decision so streamed chunks reach the client.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		bw.decide(len(bw.buf) >= bw.minLength)
		_ = bw.drain()
	}
	if bw.br != nil {
		_ = bw.br.Flush()
	}
	bw.ResponseWriter.Flush()
}

// finish runs after the handler returns.
func (bw *brotliWriter) finish() error {
	if !bw.decided {
		bw.decide(false)
		if err := bw.drain(); err != nil {
			return err
		}
	}
	if bw.br != nil {
		return bw.br.Close()
	}
	return nil
}

func (bw *brotliWriter) decide(largeEnough bool) {
	bw.decided = true
	if !largeEnough || !bw.compressible() {
		return
	}

	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	bw.br = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
}

func (bw *brotliWriter) compressible() bool {
	switch bw.ResponseWriter.Status() {
	case http.StatusNoContent, http.StatusNotModified:
		return false
	}

	h := bw.ResponseWriter.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	for _, prefix := range incompressibleTypes {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return true
}

func (bw *brotliWriter) drain() error {
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.out(bw.buf)
	bw.buf = nil
	return err
}

func (bw *brotliWriter) out(data []byte) (int, error) {
	if bw.br != nil {
		return bw.br.Write(data)
	}
	return bw.ResponseWriter.Write(data)
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isUpgrade(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw

		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isUpgrade reports WebSocket handshakes, which must reach the handler unwrapped.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// acceptsBrotli honours q-values, so "br;q=0" counts as a refusal.
func acceptsBrotli(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		q := 1.0
		if key, val, ok := strings.Cut(strings.TrimSpace(params), "="); ok && strings.EqualFold(strings.TrimSpace(key), "q") {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				q = parsed
			}
		}
		return q > 0
	}
	return false
}
