package handler

import (
	"net/http"

	"pixelfood/internal/dto"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct{ workflow *service.PedidoWorkflow }

func NewPedidosHandler(workflow *service.PedidoWorkflow) *PedidosHandler {
	return &PedidosHandler{workflow: workflow}
}

// Formulario returns the dishes and the tables currently free.
func (h *PedidosHandler) Formulario(c *gin.Context) {
	resp, err := h.workflow.CargarFormulario(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Enviar godoc
// @Summary Envia el carrito como pedido PENDIENTE
// @Tags pedidos
// @Accept json
// @Produce json
// @Param body body dto.SubmitPedidoRequest true "Tipo de servicio y mesa"
// @Success 201 {object} model.Pedido
// @Failure 400 {object} apierror.APIError
// @Router /v1/pedidos [post]
func (h *PedidosHandler) Enviar(c *gin.Context) {
	var req dto.SubmitPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.workflow.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) Listar(c *gin.Context) {
	resp, err := h.workflow.Pedidos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) CambiarEstado(c *gin.Context) {
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.workflow.CambiarEstado(c.Request.Context(), c.Param("id"), req.Estado); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PedidosHandler) AgregarItem(c *gin.Context) {
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.workflow.AgregarItems(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	h.Detalles(c)
}

func (h *PedidosHandler) Detalles(c *gin.Context) {
	resp, err := h.workflow.Detalles(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
