package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "sessionid"
	contextKey = "session"
)

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// Middleware attaches a Session to every request, issuing a cookie when the
// client has none.
func Middleware(store Store, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.New().String()
		}

		setCookie(c, sid, cfg)
		sess := New(sid, store)
		sess.onRotate = func(id string) {
			dropCookie(c.Writer.Header(), CookieName)
			setCookie(c, id, cfg)
		}
		c.Set(contextKey, sess)
		c.Next()
	}
}

func setCookie(c *gin.Context, sid string, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sid, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
}

// dropCookie removes a pending Set-Cookie header for name.
func dropCookie(h http.Header, name string) {
	values := h.Values("Set-Cookie")
	h.Del("Set-Cookie")
	for _, v := range values {
		if !strings.HasPrefix(v, name+"=") {
			h.Add("Set-Cookie", v)
		}
	}
}

// FromContext returns the request session. It panics when Middleware is not installed.
func FromContext(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}
