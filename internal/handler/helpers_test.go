package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pixelfood/internal/apierror"
	"pixelfood/internal/guard"
	"pixelfood/internal/middleware"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"guard denial has no body", guard.ErrDenegado, http.StatusForbidden, ""},
		{"backend rejection", &service.OperacionError{Mensaje: "mesa ocupada", Err: apierror.FromResponse(400, nil)}, http.StatusUnprocessableEntity, `{"detail":"mesa ocupada"}`},
		{"backend down", &service.OperacionError{Mensaje: "Error al crear", Err: apierror.Transport(errors.New("dial"))}, http.StatusBadGateway, `{"detail":"Error al crear"}`},
		{"wrapped local rejection", fmt.Errorf("submit: %w", service.ErrCarritoVacio), http.StatusBadRequest, `{"detail":"el carrito esta vacio"}`},
		{"state conflict", service.ErrPagoConfirmado, http.StatusConflict, `{"detail":"el pago ya fue confirmado"}`},
		{"unknown table", service.ErrMesaNoEncontrada, http.StatusNotFound, `{"detail":"mesa no encontrada"}`},
		{"mailing disabled", service.ErrEnvioNoDisponible, http.StatusServiceUnavailable, `{"detail":"envio de recibos no configurado"}`},
		{"anything else is a 500", errors.New("boom"), http.StatusInternalServerError, `{"detail":"Error interno del servidor"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.body == "" {
				assert.Empty(t, w.Body.String())
			} else {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRespondError_CanceledWritesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, context.Canceled) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, w.Body.String())
}
