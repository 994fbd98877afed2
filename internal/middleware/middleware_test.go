package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pixelfood/internal/apierror"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sesionFija struct {
	estado service.Estado
	u      *model.Usuario
}

func (s sesionFija) Estado() service.Estado  { return s.estado }
func (s sesionFija) Usuario() *model.Usuario { return s.u }

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func guarded(s Sesion) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	policy := guard.Roles(model.RolAdministrador).And(guard.Permisos(model.PermVerMesas))
	r.GET("/admin/mesas", RequireAccess(s, policy, "/home", "/login"), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsuario(c).ID)
	})
	return r
}

func TestRequireAccess(t *testing.T) {
	admin := &model.Usuario{ID: "a-1", Rol: "Administrador", Permisos: model.NewPermisos(model.PermVerMesas)}
	empleado := &model.Usuario{ID: "e-1", Rol: model.RolEmpleado, Permisos: model.NewPermisos(model.PermVerMesas)}

	cases := []struct {
		name     string
		sesion   sesionFija
		status   int
		location string
	}{
		{"pending", sesionFija{estado: service.EstadoPendiente}, http.StatusServiceUnavailable, ""},
		{"anonymous", sesionFija{estado: service.EstadoAnonimo}, http.StatusFound, "/login"},
		{"denied", sesionFija{estado: service.EstadoAutenticado, u: empleado}, http.StatusFound, "/home"},
		{"allowed", sesionFija{estado: service.EstadoAutenticado, u: admin}, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(guarded(tc.sesion), http.MethodGet, "/admin/mesas")
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestRequireAccess_DenialHasNoBody(t *testing.T) {
	s := sesionFija{estado: service.EstadoAutenticado, u: &model.Usuario{ID: "c", Rol: model.RolCliente}}
	w := serve(guarded(s), http.MethodGet, "/admin/mesas")
	require.Equal(t, http.StatusFound, w.Code)
	assert.NotContains(t, w.Body.String(), "detail")
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, http.MethodGet, "/x")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewLimiter(2, time.Minute, "despacio")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(l.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x").Code)
	w := serve(r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "despacio")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Purge())
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x").Code)
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := serve(r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Error interno del servidor"}`, w.Body.String())
}

func TestErrorHandler_BackendOutageIs502(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(apierror.Transport(assert.AnError)) })
	r.GET("/escrito", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		_ = c.Error(assert.AnError)
	})

	w := serve(r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"detail":"Backend no disponible"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/escrito")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://caja.local", false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://otra.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://otra.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, parseOrigins(" http://a, ,http://b "))
}
