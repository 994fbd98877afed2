package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pixelfood/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────

type ventana struct {
	count     int
	windowEnd time.Time
}

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	limit   int
	window  time.Duration
	mensaje string
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*ventana
}

// NewLimiter allows limit requests per window and IP. mensaje is the detail
// returned with the 429.
func NewLimiter(limit int, window time.Duration, mensaje string) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		now:     time.Now,
		entries: make(map[string]*ventana),
	}
}

// LoginLimiter: 20 attempts per minute per IP.
func LoginLimiter() *Limiter {
	return NewLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// APILimiter is the general limiter of the local API.
func APILimiter(limit int, window time.Duration) *Limiter {
	return NewLimiter(limit, window, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// allow records one request of ip and reports whether it is within the limit.
func (l *Limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &ventana{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Handler is the gin middleware.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// Purge drops expired windows and returns how many were removed.
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

const purgeInterval = 5 * time.Minute

// RunPurge purges expired entries every few minutes until ctx is done.
func (l *Limiter) RunPurge(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
