package handler

import (
	"net/http"
	"path/filepath"

	"pixelfood/internal/dto"
	"pixelfood/internal/service"

	"github.com/gin-gonic/gin"
)

type PagoHandler struct {
	pago         *service.PagoSession
	businessName string
	storagePath  string
}

func NewPagoHandler(pago *service.PagoSession, businessName, storagePath string) *PagoHandler {
	return &PagoHandler{pago: pago, businessName: businessName, storagePath: storagePath}
}

// Cargar opens the payment view of one order.
func (h *PagoHandler) Cargar(c *gin.Context) {
	resp, err := h.pago.Cargar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagoHandler) Estado(c *gin.Context) {
	resp, err := h.pago.Estado()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary Confirma el pago del pedido cargado y emite la factura
// @Tags pago
// @Accept json
// @Produce json
// @Param body body dto.ConfirmarPagoRequest true "Metodo y referencia"
// @Success 201 {object} model.Recibo
// @Failure 409 {object} apierror.APIError
// @Router /v1/pago/confirmar [post]
func (h *PagoHandler) Confirmar(c *gin.Context) {
	var req dto.ConfirmarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	recibo, err := h.pago.Confirmar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recibo)
}

func (h *PagoHandler) Recibo(c *gin.Context) {
	recibo, err := h.pago.Recibo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recibo)
}

// ReciboPDF renders the receipt and sends it as a download.
func (h *PagoHandler) ReciboPDF(c *gin.Context) {
	path, err := h.pago.ReciboPDF(h.businessName, h.storagePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *PagoHandler) EnviarRecibo(c *gin.Context) {
	var req dto.EnviarReciboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.pago.EnviarRecibo(c.Request.Context(), req.Correo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
