package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCarritoVacio       = errors.New("el carrito esta vacio")
	ErrMesaRequerida      = errors.New("selecciona una mesa libre")
	ErrTipoInvalido       = errors.New("tipo de servicio invalido")
	ErrTransicionInvalida = errors.New("transicion de estado no permitida")
	ErrPedidoCerrado      = errors.New("el pedido ya esta cerrado")
)

// PedidoWorkflow turns the cart into a submitted order and drives the order
// through its status machine.
type PedidoWorkflow struct {
	catalogo *Catalogo
	carrito  *Carrito
	users    UsuarioActual

	mu          sync.RWMutex
	mesasLibres []model.Mesa // nil until the first load
}

func NewPedidoWorkflow(catalogo *Catalogo, carrito *Carrito, users UsuarioActual) *PedidoWorkflow {
	return &PedidoWorkflow{catalogo: catalogo, carrito: carrito, users: users}
}

// CargarFormulario loads dishes and free tables in parallel.
func (w *PedidoWorkflow) CargarFormulario(ctx context.Context) (dto.FormularioPedidoResponse, error) {
	var (
		platos []model.Plato
		mesas  []model.Mesa
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		platos, err = w.catalogo.Platos.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		mesas, err = w.catalogo.Mesas.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.FormularioPedidoResponse{}, err
	}

	libres := model.MesasLibres(mesas)
	w.mu.Lock()
	w.mesasLibres = libres
	w.mu.Unlock()

	return dto.FormularioPedidoResponse{Platos: platos, MesasLibres: libres}, nil
}

// Submit sends the cart as a new PENDIENTE order and returns the order the
// backend created, whose id feeds the payment view. Every local rejection
// happens before any request; a remote rejection leaves the cart as it was.
func (w *PedidoWorkflow) Submit(ctx context.Context, req dto.SubmitPedidoRequest) (*model.Pedido, error) {
	u := w.users.Usuario()
	if err := guard.Check(u, guard.Recursos[model.KindPedidos].Crear); err != nil {
		return nil, err
	}
	lineas := w.carrito.Lines()
	if len(lineas) == 0 {
		return nil, ErrCarritoVacio
	}
	if !req.Tipo.Valido() {
		return nil, ErrTipoInvalido
	}

	var mesaID *string
	if req.Tipo == model.TipoLocal {
		if req.MesaID == "" {
			return nil, ErrMesaRequerida
		}
		ok, err := w.mesaLibre(ctx, req.MesaID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrMesaNoDisponible
		}
		id := req.MesaID
		mesaID = &id
	}

	total := decimal.Zero
	items := make([]dto.ItemPedido, 0, len(lineas))
	for _, l := range lineas {
		total = total.Add(l.Subtotal())
		items = append(items, dto.ItemPedido{PlatoID: l.PlatoID, Cantidad: l.Cantidad})
	}
	pedido := dto.CrearPedidoRequest{
		Tipo:      req.Tipo,
		UsuarioID: u.ID,
		MesaID:    mesaID,
		Total:     total.Round(2),
		Estado:    model.EstadoPendiente,
		Items:     items,
	}
	if err := dto.Validate.Struct(pedido); err != nil {
		return nil, fmt.Errorf("pedido invalido: %w", err)
	}
	attrs, err := AttrsFrom(pedido)
	if err != nil {
		return nil, err
	}

	creado, err := w.catalogo.Pedidos.CreateItem(ctx, attrs)
	if err != nil {
		return nil, err
	}

	w.carrito.Descontar(lineas)
	// The chosen table is no longer free; force a reload on next use.
	w.mu.Lock()
	w.mesasLibres = nil
	w.mu.Unlock()

	log.Info().Str("pedido", creado.ID).Str("usuario", u.ID).Str("tipo", string(req.Tipo)).Str("total", pedido.Total.StringFixed(2)).Msg("pedido enviado")
	return &creado, nil
}

// mesaLibre checks id against the last loaded free set, loading it once if
// the form was never loaded.
func (w *PedidoWorkflow) mesaLibre(ctx context.Context, id string) (bool, error) {
	w.mu.RLock()
	libres := w.mesasLibres
	w.mu.RUnlock()

	if libres == nil {
		mesas, err := w.catalogo.Mesas.List(ctx)
		if err != nil {
			return false, err
		}
		libres = model.MesasLibres(mesas)
		w.mu.Lock()
		w.mesasLibres = libres
		w.mu.Unlock()
	}
	for _, m := range libres {
		if m.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Pedidos lists orders with the row actions available to the current user.
func (w *PedidoWorkflow) Pedidos(ctx context.Context) ([]dto.PedidoView, error) {
	list, err := w.catalogo.Pedidos.List(ctx)
	if err != nil {
		return nil, err
	}
	u := w.users.Usuario()
	out := make([]dto.PedidoView, 0, len(list))
	for _, p := range list {
		// Clients only see their own orders.
		if u != nil && u.Rol.Is(model.RolCliente) && p.UsuarioID != u.ID {
			continue
		}
		out = append(out, dto.PedidoView{Pedido: p, Acciones: guard.ControlesPedido(u, p)})
	}
	return out, nil
}

// CambiarEstado is the standard edit path of an order: only the status is
// sent, and only along the status machine.
func (w *PedidoWorkflow) CambiarEstado(ctx context.Context, id string, estado model.EstadoPedido) error {
	policy := guard.Recursos[model.KindPedidos].Editar
	if estado == model.EstadoCancelado {
		policy = guard.Recursos[model.KindPedidos].Eliminar
	}
	if err := guard.Check(w.users.Usuario(), policy); err != nil {
		return err
	}
	if !estado.Valido() {
		return ErrTransicionInvalida
	}

	actual, err := w.catalogo.Pedidos.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actual.Estado.PuedeTransicionar(estado) {
		return fmt.Errorf("%w: %s → %s", ErrTransicionInvalida, actual.Estado, estado)
	}
	return w.catalogo.Pedidos.UpdateWithPolicy(ctx, policy, id, model.Attrs{"estado": estado})
}

// AgregarItems adds a line to an existing, still open order. The backend
// prices the line and updates the order total.
func (w *PedidoWorkflow) AgregarItems(ctx context.Context, pedidoID string, req dto.AgregarItemRequest) error {
	if err := guard.Check(w.users.Usuario(), guard.Recursos[model.KindDetallesPedido].Crear); err != nil {
		return err
	}
	actual, err := w.catalogo.Pedidos.Get(ctx, pedidoID)
	if err != nil {
		return err
	}
	if actual.Estado.EsTerminal() {
		return ErrPedidoCerrado
	}

	detalle := dto.CrearDetalleRequest{PedidoID: pedidoID, PlatoID: req.PlatoID, Cantidad: req.Cantidad}
	if err := dto.Validate.Struct(detalle); err != nil {
		return fmt.Errorf("detalle invalido: %w", err)
	}
	attrs, err := AttrsFrom(detalle)
	if err != nil {
		return err
	}
	if err := w.catalogo.Detalles.Create(ctx, attrs); err != nil {
		return err
	}
	if err := w.catalogo.Pedidos.Refresh(ctx); err != nil {
		log.Warn().Err(err).Str("pedido", pedidoID).Msg("refresh pedidos after add")
	}
	return nil
}

// Detalles returns the lines of one order and what has been consumed so far.
func (w *PedidoWorkflow) Detalles(ctx context.Context, pedidoID string) (dto.DetallesPedidoResponse, error) {
	all, err := w.catalogo.Detalles.List(ctx)
	if err != nil {
		return dto.DetallesPedidoResponse{}, err
	}
	res := dto.DetallesPedidoResponse{
		PedidoID:  pedidoID,
		Detalles:  []model.DetallePedido{},
		Consumido: decimal.Zero,
	}
	for _, d := range all {
		if d.PedidoID == pedidoID {
			res.Detalles = append(res.Detalles, d)
			res.Consumido = res.Consumido.Add(d.Subtotal)
		}
	}
	return res, nil
}
