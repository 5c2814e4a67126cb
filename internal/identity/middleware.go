package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

const callerContextKey = "caller"

// Middleware resolves the session cookie or bearer token. It never rejects a
// request: without a valid credential the request is simply anonymous and
// the operation decides. A cookie that fails verification is cleared.
func Middleware(v *Verifier, cookieName string, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		token, fromCookie := extractToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		caller, err := v.Verify(token)
		if err != nil {
			log.Debug("rejected session", slog.Bool("cookie", fromCookie), sl.Err(err))
			if fromCookie {
				ClearSession(c, cookieName)
			}
			c.Next()
			return
		}

		c.Set(callerContextKey, caller)
		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, bool) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, true
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1]), false
	}
	return "", false
}

// Caller returns the caller resolved by Middleware, or nil.
func Caller(c *gin.Context) *domain.Caller {
	value, ok := c.Get(callerContextKey)
	if !ok {
		return nil
	}
	caller, _ := value.(*domain.Caller)
	return caller
}

func SetSession(c *gin.Context, cookieName, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, token, maxAge, "/", "", secure, true)
}

func ClearSession(c *gin.Context, cookieName string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
}
