package dto

import (
	"pixelfood/internal/model"

	"github.com/shopspring/decimal"
)

type AgregarCarritoRequest struct {
	PlatoID string `json:"id_plato" validate:"required"`
}

// ActualizarCarritoRequest changes a line quantity by Delta (may be negative).
type ActualizarCarritoRequest struct {
	Delta int `json:"delta" validate:"required,min=-999,max=999"`
}

type CarritoResponse struct {
	Lineas   []model.LineaCarrito `json:"lineas"`
	Cantidad int                  `json:"cantidad"`
	Total    decimal.Decimal      `json:"total"`
}
