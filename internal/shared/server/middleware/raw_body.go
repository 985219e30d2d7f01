package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"wallpaper-backend/internal/shared/server/respond"
)

const rawBodyKey = "rawBody"

// RawBody reads the request body verbatim, before anything can decode it, and
// stores the bytes on the context. The body is replaced with a fresh reader
// over the same bytes so later handlers still see the full payload.
//
// Signature checks over the payload depend on this running first, so it is
// attached per route rather than globally.
func RawBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Set(rawBodyKey, []byte{})
			c.Next()
			return
		}
		body := http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		raw, err := io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
				return
			}
			respond.Error(c, http.StatusBadRequest, "invalid_body", "unable to read request body", nil)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		c.Set(rawBodyKey, raw)
		c.Next()
	}
}

// RawBodyFromContext returns the bytes captured by RawBody, or nil when the
// middleware did not run for this route.
func RawBodyFromContext(c *gin.Context) []byte {
	if c == nil {
		return nil
	}
	val, ok := c.Get(rawBodyKey)
	if !ok {
		return nil
	}
	raw, _ := val.([]byte)
	return raw
}
