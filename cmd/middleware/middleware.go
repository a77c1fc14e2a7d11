package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventsphere/internal/auth"
	"eventsphere/internal/dto"
)

func LoggingMiddleware(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		} else if status >= 400 {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// token prefers the Authorization header and falls back to the session cookie.
func token(c *ginext.Context) (string, error) {
	if h := c.GetHeader("Authorization"); h != "" {
		return auth.BearerToken(h)
	}
	if v, err := c.Cookie(auth.CookieName); err == nil && v != "" {
		return v, nil
	}
	return "", auth.ErrNoToken
}

// RequireAuth rejects requests without a valid organizer token.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *ginext.Context) {
		raw, err := token(c)
		if err != nil {
			dto.UnauthenticatedError(c, err.Error())
			return
		}
		actor, err := tokens.Parse(raw)
		if err != nil {
			dto.UnauthenticatedError(c, err.Error())
			return
		}
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), actor))
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid token is present and lets
// anonymous requests through. A malformed or expired token is still an error.
func OptionalAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *ginext.Context) {
		raw, err := token(c)
		if errors.Is(err, auth.ErrNoToken) {
			c.Next()
			return
		}
		if err != nil {
			dto.UnauthenticatedError(c, err.Error())
			return
		}
		actor, err := tokens.Parse(raw)
		if err != nil {
			dto.UnauthenticatedError(c, err.Error())
			return
		}
		c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), actor))
		c.Next()
	}
}
