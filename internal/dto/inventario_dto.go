package dto

import (
	"pixelfood/internal/model"

	"github.com/shopspring/decimal"
)

// AjustarStockRequest is the body of PATCH /ingrediente/{id}/stock.
type AjustarStockRequest struct {
	Stock decimal.Decimal `json:"stock" validate:"min=0"`
}

// ResumenResponse is the dashboard summary.
type ResumenResponse struct {
	PedidosPorEstado map[model.EstadoPedido]int `json:"pedidos_por_estado"`
	PedidosActivos   int                        `json:"pedidos_activos"`
	MesasLibres      int                        `json:"mesas_libres"`
	MesasTotal       int                        `json:"mesas_total"`
	StockBajo        []model.Ingrediente        `json:"stock_bajo"`
}
