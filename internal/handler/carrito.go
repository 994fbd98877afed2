package handler

import (
	"net/http"

	"pixelfood/internal/apierror"
	"pixelfood/internal/dto"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

type CarritoHandler struct {
	carrito  *service.Carrito
	catalogo *service.Catalogo
}

func NewCarritoHandler(carrito *service.Carrito, catalogo *service.Catalogo) *CarritoHandler {
	return &CarritoHandler{carrito: carrito, catalogo: catalogo}
}

func (h *CarritoHandler) Ver(c *gin.Context) {
	c.JSON(http.StatusOK, h.estado())
}

// Agregar adds one unit of a dish. The price is read from the backend now
// and kept for the life of the line.
func (h *CarritoHandler) Agregar(c *gin.Context) {
	var req dto.AgregarCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	plato, err := h.catalogo.Platos.Get(c.Request.Context(), req.PlatoID)
	if err != nil {
		respondError(c, err)
		return
	}
	if plato.ID == "" {
		c.JSON(http.StatusNotFound, apierror.New("Plato no encontrado"))
		return
	}
	h.carrito.Add(plato)
	c.JSON(http.StatusOK, h.estado())
}

func (h *CarritoHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.carrito.Update(c.Param("id"), req.Delta)
	c.JSON(http.StatusOK, h.estado())
}

func (h *CarritoHandler) Quitar(c *gin.Context) {
	h.carrito.Remove(c.Param("id"))
	c.JSON(http.StatusOK, h.estado())
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	h.carrito.Clear()
	c.JSON(http.StatusOK, h.estado())
}

func (h *CarritoHandler) estado() dto.CarritoResponse {
	return dto.CarritoResponse{
		Lineas:   h.carrito.Lines(),
		Cantidad: h.carrito.Len(),
		Total:    h.carrito.TotalRedondeado(),
	}
}
