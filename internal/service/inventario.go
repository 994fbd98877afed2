package service

import (
	"context"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"
)

// AjustarStock sets the stock of one ingredient through the dedicated stock
// endpoint and refreshes the ingredient list.
func (c *Catalogo) AjustarStock(ctx context.Context, id string, req dto.AjustarStockRequest) error {
	return c.Ingredientes.PatchSub(ctx,
		guard.Permisos(model.PermEditarStockIngredientes), id, "stock", req)
}

// AlertasStock returns the ingredients at or below the restock threshold,
// from the last loaded list.
func (c *Catalogo) AlertasStock() []model.Ingrediente {
	out := []model.Ingrediente{}
	for _, i := range c.Ingredientes.Items() {
		if i.StockBajo() {
			out = append(out, i)
		}
	}
	return out
}

// RecetasDePlato lists the recipe lines of one dish.
func (c *Catalogo) RecetasDePlato(ctx context.Context, platoID string) ([]model.Receta, error) {
	if err := guard.Check(c.users.Usuario(), guard.Recursos[model.KindRecetas].Ver); err != nil {
		return nil, err
	}
	var list []model.Receta
	if err := c.recetasAPI.Sub(ctx, &list, "plato", platoID); err != nil {
		return nil, operacionError(err, msgErrorCargar)
	}
	if list == nil {
		list = []model.Receta{}
	}
	return list, nil
}
