package dto

import (
	"pixelfood/internal/model"

	"github.com/shopspring/decimal"
)

// CrearFacturaRequest is the body of POST /factura.
type CrearFacturaRequest struct {
	PedidoID       string          `json:"id_pedido"                 validate:"required"`
	MetodoID       string          `json:"id_metodo"                 validate:"required"`
	Total          decimal.Decimal `json:"total"                     validate:"gt=0"`
	ReferenciaPago string          `json:"referencia_pago,omitempty" validate:"max=120"`
}

// ConfirmarPagoRequest: an empty MetodoID keeps the preselected method.
type ConfirmarPagoRequest struct {
	MetodoID   string `json:"id_metodo"`
	Referencia string `json:"referencia" validate:"max=120"`
}

type EnviarReciboRequest struct {
	Correo string `json:"correo" validate:"required,email"`
}

// Desglose splits a tax-inclusive total for display. Only Total is
// authoritative.
type Desglose struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Impuesto decimal.Decimal `json:"impuesto"`
	Total    decimal.Decimal `json:"total"`
}

// PagoResponse is the state of the payment view.
type PagoResponse struct {
	PedidoID     string             `json:"id_pedido"`
	Desglose     Desglose           `json:"desglose"`
	Metodos      []model.MetodoPago `json:"metodos"`
	MetodoActual string             `json:"id_metodo"`
	Completado   bool               `json:"completado"`
	Recibo       *model.Recibo      `json:"recibo,omitempty"`
}
