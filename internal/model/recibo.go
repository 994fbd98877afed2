package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recibo is the completed-payment receipt shown (and optionally printed or
// mailed) after a PaymentSession is confirmed. Subtotal and Impuesto are a
// display-only split of Total; the amount charged is always Total.
type Recibo struct {
	Numero     string          `json:"numero"`
	PedidoID   string          `json:"id_pedido"`
	FacturaID  string          `json:"id_factura,omitempty"`
	Metodo     string          `json:"metodo"`
	Referencia string          `json:"referencia_pago,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Impuesto   decimal.Decimal `json:"impuesto"`
	Total      decimal.Decimal `json:"total"`
	EmitidoEn  time.Time       `json:"emitido_en"`
}
