package restserver

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware makes sure every request carries an id, reusing the
// caller's id when it sent one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog is a gorilla/handlers LogFormatter that writes to zap instead of the writer
func (c *Controller) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	c.logger.Infow("http request",
		"request_id", p.Request.Header.Get(requestIDHeader),
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"bytes", p.Size,
		"duration", time.Since(p.TimeStamp),
		"remote", p.Request.RemoteAddr,
	)
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
