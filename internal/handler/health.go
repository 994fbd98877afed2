package handler

import (
	"context"
	"net/http"
	"time"

	"pixelfood/internal/infra"
	"pixelfood/internal/repository"

	"github.com/gin-gonic/gin"
)

// Health reports the backend circuit state and the session storage
// connectivity; never exposes credentials or internals.
func Health(breaker *infra.CircuitBreaker, store repository.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if store.Ping(ctx) != nil {
			storeStatus = "error"
		}
		backend := breaker.State()

		status := http.StatusOK
		if storeStatus != "connected" || backend == infra.CBOpen {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":       status == http.StatusOK,
			"sesiones": storeStatus,
			"backend":  backend.String(),
		})
	}
}
