package dto

import (
	"pixelfood/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Backend payloads ────────────────────────────────────────────────────────

// ItemPedido references a dish and a quantity. Prices are never sent.
type ItemPedido struct {
	PlatoID  string `json:"id_plato" validate:"required"`
	Cantidad int    `json:"cantidad" validate:"required,gt=0"`
}

// CrearPedidoRequest is the body of POST /pedido. Total is a display
// estimate rounded to two decimals; the backend recomputes it.
type CrearPedidoRequest struct {
	Tipo      model.TipoServicio `json:"tipo"       validate:"required,oneof=LOCAL PARA_LLEVAR"`
	UsuarioID string             `json:"id_usuario" validate:"required"`
	MesaID    *string            `json:"id_mesa"    validate:"required_if=Tipo LOCAL"`
	Total     decimal.Decimal    `json:"total"      validate:"min=0"`
	Estado    model.EstadoPedido `json:"estado"     validate:"required"`
	Items     []ItemPedido       `json:"items"      validate:"required,min=1,dive"`
}

// CrearDetalleRequest is the body of POST /detalle_pedido.
type CrearDetalleRequest struct {
	PedidoID string `json:"id_pedido" validate:"required"`
	PlatoID  string `json:"id_plato"  validate:"required"`
	Cantidad int    `json:"cantidad"  validate:"required,gt=0"`
}

// ─── Local API ───────────────────────────────────────────────────────────────

// SubmitPedidoRequest is the checkout form: service type and, for dine-in,
// the chosen table.
type SubmitPedidoRequest struct {
	Tipo   model.TipoServicio `json:"tipo"    validate:"required,oneof=LOCAL PARA_LLEVAR"`
	MesaID string             `json:"id_mesa"`
}

type CambiarEstadoRequest struct {
	Estado model.EstadoPedido `json:"estado" validate:"required,oneof=PENDIENTE PREPARANDO LISTO ENTREGADO PAGADO CANCELADO"`
}

type AgregarItemRequest struct {
	PlatoID  string `json:"id_plato" validate:"required"`
	Cantidad int    `json:"cantidad" validate:"required,gt=0"`
}

// FormularioPedidoResponse is what the checkout form needs to render.
type FormularioPedidoResponse struct {
	Platos      []model.Plato `json:"platos"`
	MesasLibres []model.Mesa  `json:"mesas_libres"`
}

// DetallesPedidoResponse lists the consumption of one order.
type DetallesPedidoResponse struct {
	PedidoID  string                `json:"id_pedido"`
	Detalles  []model.DetallePedido `json:"detalles"`
	Consumido decimal.Decimal       `json:"consumido"`
}

// PedidoView is an order row with the actions the current user may take.
type PedidoView struct {
	model.Pedido
	Acciones []string `json:"acciones"`
}
