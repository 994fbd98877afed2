package handler

import (
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/dto"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

// InventarioHandler serves stock, recipes, reservations and the dashboard.
type InventarioHandler struct{ catalogo *service.Catalogo }

func NewInventarioHandler(catalogo *service.Catalogo) *InventarioHandler {
	return &InventarioHandler{catalogo: catalogo}
}

func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.catalogo.AjustarStock(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.catalogo.Ingredientes.Items())
}

// Alertas reloads the ingredients and returns those at or below the
// restock threshold.
func (h *InventarioHandler) Alertas(c *gin.Context) {
	if err := h.catalogo.Ingredientes.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.catalogo.AlertasStock())
}

func (h *InventarioHandler) Recetas(c *gin.Context) {
	resp, err := h.catalogo.RecetasDePlato(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reservar leaves field validation to the service, which answers with a
// single "all fields required" message.
func (h *InventarioHandler) Reservar(c *gin.Context) {
	var req dto.CrearReservaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := h.catalogo.CrearReserva(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *InventarioHandler) Resumen(c *gin.Context) {
	resp, err := h.catalogo.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
