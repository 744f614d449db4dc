package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/pkg/observability"
)

const sessionIDKey = "session_id"

// SessionCookie identifies the browser session. A missing or malformed cookie
// starts a fresh session, which is the same as loading the page anew.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Session resolves the session id for the request and refreshes its cookie.
func Session(cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.Name)
		if err != nil || !validSessionID(id) {
			id = session.NewID()
		}
		c.Set(sessionIDKey, id)
		observability.AddAttrsToSpan(trace.SpanFromContext(c.Request.Context()),
			observability.WithSessionAttrs(id, RequestIDFromContext(c))...)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, id, int(cookie.TTL.Seconds()), "/", "", cookie.Secure, true)
		c.Next()
	}
}

// SessionID returns the session id resolved by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := ulid.ParseStrict(id)
	return err == nil
}
