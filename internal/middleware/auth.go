package middleware

import (
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	UsuarioKey = "usuario"
)

// Sesion is the part of the terminal session the route guard needs.
type Sesion interface {
	Estado() service.Estado
	Usuario() *model.Usuario
}

// RequireAccess gates a route group with policy.
//   - session not resolved yet: 503, no decision is taken
//   - anonymous: redirect to login
//   - denied: redirect to landing, no error body
func RequireAccess(s Sesion, policy guard.Policy, landing, login string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch s.Estado() {
		case service.EstadoPendiente:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("Sesion en verificacion"))
			return
		case service.EstadoAnonimo:
			c.Redirect(http.StatusFound, login)
			c.Abort()
			return
		}

		u := s.Usuario()
		if !guard.Allow(u, policy) {
			c.Redirect(http.StatusFound, landing)
			c.Abort()
			return
		}
		c.Set(UsuarioKey, u)
		c.Next()
	}
}

// RequireResolved only waits for the session to be resolved; anonymous
// visitors pass (login, public sections).
func RequireResolved(s Sesion) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Estado() == service.EstadoPendiente {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("Sesion en verificacion"))
			return
		}
		c.Next()
	}
}

// GetUsuario returns the user stored by RequireAccess, or nil.
func GetUsuario(c *gin.Context) *model.Usuario {
	v, ok := c.Get(UsuarioKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.Usuario)
	return u
}
