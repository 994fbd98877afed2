package middleware

import (
	"net/http"
	"time"

	"pixelfood/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const msgInterno = "Error interno del servidor"

// ErrorHandler answers for errors a handler attached with c.Error without
// writing a response. A backend outage becomes 502; anything else a generic
// 500. The error itself only reaches the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		if c.Writer.Written() {
			// The handler already answered; the error is informational.
			requestEvent(c, log.Warn()).Err(last.Err).Msg("request error after response")
			return
		}

		ev := requestEvent(c, log.Error()).Err(last.Err)
		if apierror.IsTransport(last.Err) {
			ev.Msg("backend unavailable")
			c.AbortWithStatusJSON(http.StatusBadGateway, apierror.New("Backend no disponible"))
			return
		}
		ev.Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgInterno))
	}
}

// Recovery turns a panic into a 500 and logs it with the request id.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestEvent(c, log.Error()).Interface("panic", r).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgInterno))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. Failed requests log at warn level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		requestEvent(c, ev).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func requestEvent(c *gin.Context, ev *zerolog.Event) *zerolog.Event {
	return ev.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
}
