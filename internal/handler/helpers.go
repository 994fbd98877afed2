package handler

import (
	"context"
	"errors"
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := dto.Validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(dto.Campos(err)))
		return false
	}
	return true
}

// Local rejections, by the status they answer with.
var (
	badRequest = []error{
		service.ErrCarritoVacio, service.ErrMesaRequerida, service.ErrTipoInvalido,
		service.ErrMesaNoDisponible, service.ErrClienteRequerido, service.ErrCamposReserva,
		service.ErrMetodoInvalido, service.ErrLoginInvalido,
	}
	conflict = []error{
		service.ErrTransicionInvalida, service.ErrPedidoCerrado, service.ErrPagoConfirmado,
		service.ErrPagoEnCurso, service.ErrPagoNoCargado, service.ErrReciboPendiente,
	}
)

// respondError maps a service error to the local API response.
//   - guard denial: bare 403, the control should not have been offered
//   - backend rejection: 422 with the backend message
//   - backend unreachable: 502 with the generic message
func respondError(c *gin.Context, err error) {
	if errors.Is(err, guard.ErrDenegado) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if errors.Is(err, context.Canceled) {
		c.Abort()
		return
	}

	var oe *service.OperacionError
	if errors.As(err, &oe) {
		status := http.StatusUnprocessableEntity
		if apierror.IsTransport(oe.Err) {
			status = http.StatusBadGateway
		}
		c.JSON(status, apierror.New(oe.Mensaje))
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(dto.Campos(ve)))
		return
	}

	if errors.Is(err, service.ErrMesaNoEncontrada) {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	if errors.Is(err, service.ErrEnvioNoDisponible) {
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
		return
	}
	for _, e := range badRequest {
		if errors.Is(err, e) {
			c.JSON(http.StatusBadRequest, apierror.New(e.Error()))
			return
		}
	}
	for _, e := range conflict {
		if errors.Is(err, e) {
			c.JSON(http.StatusConflict, apierror.New(e.Error()))
			return
		}
	}

	_ = c.Error(err)
}
