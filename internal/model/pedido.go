package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EstadoPedido is an order status as understood by the backend.
type EstadoPedido string

const (
	EstadoPendiente  EstadoPedido = "PENDIENTE"
	EstadoPreparando EstadoPedido = "PREPARANDO"
	EstadoListo      EstadoPedido = "LISTO"
	EstadoEntregado  EstadoPedido = "ENTREGADO"
	EstadoPagado     EstadoPedido = "PAGADO"
	EstadoCancelado  EstadoPedido = "CANCELADO"
)

// transiciones is the order state machine. PAGADO and CANCELADO have no exits.
var transiciones = map[EstadoPedido][]EstadoPedido{
	EstadoPendiente:  {EstadoPreparando, EstadoCancelado},
	EstadoPreparando: {EstadoListo, EstadoCancelado},
	EstadoListo:      {EstadoEntregado, EstadoCancelado},
	EstadoEntregado:  {EstadoPagado},
}

// Valido reports whether e is one of the known statuses.
func (e EstadoPedido) Valido() bool {
	switch e {
	case EstadoPendiente, EstadoPreparando, EstadoListo, EstadoEntregado, EstadoPagado, EstadoCancelado:
		return true
	}
	return false
}

// EsTerminal reports whether no further transition is expected.
func (e EstadoPedido) EsTerminal() bool {
	return e == EstadoPagado || e == EstadoCancelado
}

// PuedeTransicionar reports whether the order may move from e to next.
func (e EstadoPedido) PuedeTransicionar(next EstadoPedido) bool {
	for _, s := range transiciones[e] {
		if s == next {
			return true
		}
	}
	return false
}

// Siguientes lists the statuses reachable from e.
func (e EstadoPedido) Siguientes() []EstadoPedido {
	return append([]EstadoPedido(nil), transiciones[e]...)
}

// TipoServicio: "LOCAL" (dine-in) | "PARA_LLEVAR" (takeaway)
type TipoServicio string

const (
	TipoLocal      TipoServicio = "LOCAL"
	TipoParaLlevar TipoServicio = "PARA_LLEVAR"
)

func (t TipoServicio) Valido() bool {
	return t == TipoLocal || t == TipoParaLlevar
}

// Pedido is an order as returned by the backend.
type Pedido struct {
	ID        string          `json:"id_pedido"`
	Fecha     time.Time       `json:"fecha"`
	Tipo      TipoServicio    `json:"tipo"`
	UsuarioID string          `json:"id_usuario"`
	MesaID    *string         `json:"id_mesa"`
	Total     decimal.Decimal `json:"total"`
	Estado    EstadoPedido    `json:"estado"`
	Mesa      *Mesa           `json:"mesa,omitempty"`
	Detalles  []DetallePedido `json:"detalles,omitempty"`
}

func (p Pedido) RecursoID() string { return p.ID }

// UnmarshalJSON falls back to "id" when the backend omits id_pedido.
func (p *Pedido) UnmarshalJSON(b []byte) error {
	type alias Pedido
	var raw struct {
		alias
		PlainID string `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Pedido(raw.alias)
	if p.ID == "" {
		p.ID = raw.PlainID
	}
	return nil
}

// DetallePedido is one line of a submitted order. Subtotal is computed by the
// backend; the terminal never sends prices.
type DetallePedido struct {
	ID       string          `json:"id_detalle"`
	PedidoID string          `json:"id_pedido"`
	PlatoID  string          `json:"id_plato"`
	Cantidad int             `json:"cantidad"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Plato    *Plato          `json:"plato,omitempty"`
}

func (d DetallePedido) RecursoID() string { return d.ID }

// Factura is the invoice issued when an order is paid.
type Factura struct {
	ID             string          `json:"id_factura"`
	MetodoID       string          `json:"id_metodo"`
	FechaEmision   time.Time       `json:"fecha_emision"`
	Total          decimal.Decimal `json:"total"`
	Pedido         *Pedido         `json:"pedido,omitempty"`
	MetodoPago     *MetodoPago     `json:"metodo_pago,omitempty"`
	ReferenciaPago string          `json:"referencia_pago,omitempty"`
}

func (f Factura) RecursoID() string { return f.ID }

// LineaCarrito is a cart line. Precio is the catalog price captured when the
// line was created and is never refreshed afterwards.
type LineaCarrito struct {
	PlatoID  string          `json:"id_plato"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad int             `json:"cantidad"`
}

// Subtotal is precio × cantidad, unrounded.
func (l LineaCarrito) Subtotal() decimal.Decimal {
	return l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}
