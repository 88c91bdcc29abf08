package auth

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// sessionWriter wraps gin.ResponseWriter so that the session cookie is
// committed before the first byte of headers or body goes out.
type sessionWriter struct {
	gin.ResponseWriter
	sm            *SessionManager
	request       *http.Request
	headerWritten bool
	cookieWritten bool
}

func (w *sessionWriter) WriteHeader(code int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commitSession()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	if !w.headerWritten {
		w.headerWritten = true
		w.commitSession()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commitSession()
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) commitSession() {
	if w.cookieWritten {
		return
	}
	w.cookieWritten = true

	ctx := w.request.Context()
	switch w.sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(ctx)
		if err != nil {
			return
		}
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

// Hijack keeps the writer usable for connection upgrades.
func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// SessionLoadSave returns a Gin middleware that loads session data into the
// request context and commits changes on the way out. It must run before any
// session operation.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		sw := &sessionWriter{
			ResponseWriter: c.Writer,
			sm:             sm,
			request:        c.Request,
		}
		c.Writer = sw

		c.Next()

		// Commit the cookie even when the handler wrote nothing
		if !sw.headerWritten {
			sw.commitSession()
		}
	}
}
