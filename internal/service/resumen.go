package service

import (
	"context"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"

	"golang.org/x/sync/errgroup"
)

// Resumen builds the dashboard summary. Orders, tables and ingredients are
// reloaded in parallel; a store the user may not view is left out.
func (c *Catalogo) Resumen(ctx context.Context) (dto.ResumenResponse, error) {
	u := c.users.Usuario()
	res := dto.ResumenResponse{
		PedidosPorEstado: map[model.EstadoPedido]int{},
		StockBajo:        []model.Ingrediente{},
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		pedidos []model.Pedido
		mesas   []model.Mesa
	)
	if guard.Allow(u, guard.Permisos(model.PermVerPedidos)) {
		g.Go(func() (err error) {
			pedidos, err = c.Pedidos.List(gctx)
			return err
		})
	}
	if guard.Allow(u, guard.Recursos[model.KindMesas].Ver) {
		g.Go(func() (err error) {
			mesas, err = c.Mesas.List(gctx)
			return err
		})
	}
	verIngredientes := guard.Allow(u, guard.Recursos[model.KindIngredientes].Ver)
	if verIngredientes {
		g.Go(func() error {
			return c.Ingredientes.Refresh(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, p := range pedidos {
		res.PedidosPorEstado[p.Estado]++
		if !p.Estado.EsTerminal() {
			res.PedidosActivos++
		}
	}
	res.MesasTotal = len(mesas)
	res.MesasLibres = len(model.MesasLibres(mesas))
	if verIngredientes {
		res.StockBajo = c.AlertasStock()
	}
	return res, nil
}
