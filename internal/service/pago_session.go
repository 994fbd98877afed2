package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/infra"
	"pixelfood/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrPagoNoCargado   = errors.New("no hay un pedido cargado para cobrar")
	ErrPagoConfirmado  = errors.New("el pago ya fue confirmado")
	ErrPagoEnCurso     = errors.New("el pago se esta procesando")
	ErrMetodoInvalido  = errors.New("metodo de pago invalido")
	ErrReciboPendiente = errors.New("no hay recibo emitido")

	ErrEnvioNoDisponible = errors.New("envio de recibos no configurado")
)

const msgErrorPago = "Error al procesar el pago"

// ReciboQueue delivers receipts asynchronously (e-mail).
type ReciboQueue interface {
	EnqueueRecibo(ctx context.Context, correo string, recibo model.Recibo) error
}

// Desglosar splits a tax-inclusive total: subtotal = total / (1 + rate),
// impuesto = total − subtotal. Display only.
func Desglosar(total decimal.Decimal, rate decimal.Decimal) dto.Desglose {
	subtotal := total.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
	return dto.Desglose{
		Subtotal: subtotal,
		Impuesto: total.Sub(subtotal),
		Total:    total,
	}
}

// PagoSession is the payment view of the terminal: one order at a time.
// The amount charged is always the backend total of the order.
type PagoSession struct {
	catalogo *Catalogo
	users    UsuarioActual
	queue    ReciboQueue
	taxRate  decimal.Decimal
	now      func() time.Time

	mu           sync.Mutex
	pedido       *model.Pedido
	metodos      []model.MetodoPago
	metodoActual string
	confirmando  bool
	recibo       *model.Recibo
}

func NewPagoSession(catalogo *Catalogo, users UsuarioActual, queue ReciboQueue, taxRate float64) *PagoSession {
	return &PagoSession{
		catalogo: catalogo,
		users:    users,
		queue:    queue,
		taxRate:  decimal.NewFromFloat(taxRate),
		now:      time.Now,
	}
}

// Cargar fetches the order total and the payment methods in parallel and
// preselects the first method. Any signed-in user may pay their own order;
// other orders need the cashier permission. Reloading an order that was
// already paid in this session keeps the completed state.
func (p *PagoSession) Cargar(ctx context.Context, pedidoID string) (dto.PagoResponse, error) {
	u := p.users.Usuario()
	if err := guard.Check(u, guard.Policy{}); err != nil {
		return dto.PagoResponse{}, err
	}

	var (
		pedido  model.Pedido
		metodos []model.MetodoPago
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pedido, err = p.catalogo.Pedidos.Get(gctx, pedidoID)
		return err
	})
	g.Go(func() (err error) {
		metodos, err = p.catalogo.MetodosPago.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dto.PagoResponse{}, err
	}
	if pedido.ID == "" {
		pedido.ID = pedidoID
	}
	if !guard.PuedePagar(u, pedido) {
		return dto.PagoResponse{}, guard.ErrDenegado
	}

	activos := make([]model.MetodoPago, 0, len(metodos))
	for _, m := range metodos {
		if m.Activo {
			activos = append(activos, m)
		}
	}
	if len(activos) == 0 {
		activos = metodos
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pedido == nil || p.pedido.ID != pedido.ID {
		p.recibo = nil
	}
	p.pedido = &pedido
	p.metodos = activos
	p.metodoActual = ""
	if len(activos) > 0 {
		p.metodoActual = activos[0].ID
	}
	return p.snapshot(), nil
}

// Estado returns the current payment view.
func (p *PagoSession) Estado() (dto.PagoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pedido == nil {
		return dto.PagoResponse{}, ErrPagoNoCargado
	}
	return p.snapshot(), nil
}

// Desglose splits the loaded order total.
func (p *PagoSession) Desglose(total decimal.Decimal) dto.Desglose {
	return Desglosar(total, p.taxRate)
}

// Confirmar issues the invoice for the loaded order and produces the
// receipt. A confirmed (or in-flight) payment cannot be confirmed again.
func (p *PagoSession) Confirmar(ctx context.Context, req dto.ConfirmarPagoRequest) (*model.Recibo, error) {
	u := p.users.Usuario()
	if err := guard.Check(u, guard.Recursos[model.KindFacturas].Crear); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.pedido == nil {
		p.mu.Unlock()
		return nil, ErrPagoNoCargado
	}
	if !guard.PuedePagar(u, *p.pedido) {
		p.mu.Unlock()
		return nil, guard.ErrDenegado
	}
	if p.recibo != nil {
		p.mu.Unlock()
		return nil, ErrPagoConfirmado
	}
	if p.confirmando {
		p.mu.Unlock()
		return nil, ErrPagoEnCurso
	}
	if p.pedido.Estado.EsTerminal() {
		p.mu.Unlock()
		return nil, ErrPedidoCerrado
	}
	metodoID := req.MetodoID
	if metodoID == "" {
		metodoID = p.metodoActual
	}
	metodo, ok := p.metodo(metodoID)
	if !ok {
		p.mu.Unlock()
		return nil, ErrMetodoInvalido
	}
	pedido := *p.pedido
	p.confirmando = true
	p.metodoActual = metodoID
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.confirmando = false
		p.mu.Unlock()
	}()

	factura := dto.CrearFacturaRequest{
		PedidoID:       pedido.ID,
		MetodoID:       metodo.ID,
		Total:          pedido.Total,
		ReferenciaPago: req.Referencia,
	}
	if err := dto.Validate.Struct(factura); err != nil {
		return nil, fmt.Errorf("factura invalida: %w", err)
	}
	attrs, err := AttrsFrom(factura)
	if err != nil {
		return nil, err
	}
	creada, err := p.catalogo.Facturas.CreateItem(ctx, attrs)
	if err != nil {
		var oe *OperacionError
		if errors.As(err, &oe) {
			return nil, operacionError(oe.Err, msgErrorPago)
		}
		return nil, err
	}

	d := p.Desglose(pedido.Total)
	now := p.now()
	recibo := &model.Recibo{
		Numero:     fmt.Sprintf("INV-%d", now.UnixMilli()),
		PedidoID:   pedido.ID,
		FacturaID:  creada.ID,
		Metodo:     metodo.Tipo,
		Referencia: req.Referencia,
		Subtotal:   d.Subtotal,
		Impuesto:   d.Impuesto,
		Total:      d.Total,
		EmitidoEn:  now,
	}

	// Another order may have been loaded while the invoice was in flight; the
	// receipt then belongs to nobody on screen.
	p.mu.Lock()
	if p.pedido != nil && p.pedido.ID == pedido.ID {
		p.recibo = recibo
	} else {
		log.Warn().Str("pedido", pedido.ID).Str("recibo", recibo.Numero).Msg("payment confirmed after another order was loaded")
	}
	p.mu.Unlock()

	if err := p.catalogo.Pedidos.Refresh(ctx); err != nil {
		log.Warn().Err(err).Str("pedido", pedido.ID).Msg("refresh pedidos after payment")
	}
	log.Info().Str("pedido", pedido.ID).Str("recibo", recibo.Numero).Str("total", recibo.Total.StringFixed(2)).Msg("pago confirmado")

	cp := *recibo
	return &cp, nil
}

// Reset forgets the loaded order and its receipt.
func (p *PagoSession) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pedido = nil
	p.metodos = nil
	p.metodoActual = ""
	p.recibo = nil
}

// Recibo returns the receipt of the confirmed payment.
func (p *PagoSession) Recibo() (*model.Recibo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.recibo == nil {
		return nil, ErrReciboPendiente
	}
	cp := *p.recibo
	return &cp, nil
}

// ReciboPDF renders the receipt and returns the file path.
func (p *PagoSession) ReciboPDF(businessName, storagePath string) (string, error) {
	r, err := p.Recibo()
	if err != nil {
		return "", err
	}
	return infra.GenerateReciboPDF(r, businessName, storagePath)
}

// EnviarRecibo queues the receipt for e-mail delivery.
func (p *PagoSession) EnviarRecibo(ctx context.Context, correo string) error {
	r, err := p.Recibo()
	if err != nil {
		return err
	}
	if p.queue == nil {
		return ErrEnvioNoDisponible
	}
	return p.queue.EnqueueRecibo(ctx, correo, *r)
}

// metodo must run under mu.
func (p *PagoSession) metodo(id string) (model.MetodoPago, bool) {
	for _, m := range p.metodos {
		if m.ID == id {
			return m, true
		}
	}
	return model.MetodoPago{}, false
}

// snapshot must run under mu.
func (p *PagoSession) snapshot() dto.PagoResponse {
	var recibo *model.Recibo
	if p.recibo != nil {
		cp := *p.recibo
		recibo = &cp
	}
	return dto.PagoResponse{
		PedidoID:     p.pedido.ID,
		Desglose:     p.Desglose(p.pedido.Total),
		Metodos:      append([]model.MetodoPago{}, p.metodos...),
		MetodoActual: p.metodoActual,
		Completado:   p.recibo != nil,
		Recibo:       recibo,
	}
}
