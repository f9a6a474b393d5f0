package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "user_username"
)

// RequireAuth returns middleware that redirects unauthenticated
// requests to the login page, carrying the original path along.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserID).(uint)
		if !ok {
			c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}

		c.Set(sessionUserID, userID)
		if username, ok := session.Get(sessionUsername).(string); ok {
			c.Set(sessionUsername, username)
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID. It is only valid
// on routes behind RequireAuth.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(sessionUserID)
}

// CurrentUsername returns the authenticated user's display name.
func CurrentUsername(c *gin.Context) string {
	return c.GetString(sessionUsername)
}

// Flash queues a message for the next rendered page.
func Flash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	_ = session.Save()
}

// Flashes drains and returns the queued messages.
func Flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		_ = session.Save()
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
