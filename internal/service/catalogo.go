package service

import (
	"context"

	"pixelfood/internal/infra"
	"pixelfood/internal/model"
)

// Coleccion is the kind-agnostic view of a Store used by the generic
// resource endpoints.
type Coleccion interface {
	Kind() model.Kind
	Listar(ctx context.Context) (any, error)
	Obtener(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, attrs model.Attrs) error
	Update(ctx context.Context, id string, attrs model.Attrs) error
	Remove(ctx context.Context, id string) error
	Snapshot() any
	Err() string
	Loading() bool
}

func (s *Store[T]) Listar(ctx context.Context) (any, error) { return s.List(ctx) }

func (s *Store[T]) Obtener(ctx context.Context, id string) (any, error) { return s.Get(ctx, id) }

// Snapshot is Items without the element type.
func (s *Store[T]) Snapshot() any { return s.Items() }

// Catalogo owns one Store per resource kind for the lifetime of the terminal.
type Catalogo struct {
	Categorias   *Store[model.Categoria]
	Platos       *Store[model.Plato]
	Ingredientes *Store[model.Ingrediente]
	Mesas        *Store[model.Mesa]
	Sucursales   *Store[model.Sucursal]
	MetodosPago  *Store[model.MetodoPago]
	Recetas      *Store[model.Receta]
	Usuarios     *Store[model.UsuarioRegistro]
	Roles        *Store[model.RolRegistro]
	Reservas     *Store[model.Reserva]
	Pedidos      *Store[model.Pedido]
	Detalles     *Store[model.DetallePedido]
	Facturas     *Store[model.Factura]

	recetasAPI *infra.ResourceAPI[model.Receta]
	users      UsuarioActual
	porKind    map[model.Kind]Coleccion
}

// NewCatalogo wires every store to its backend endpoint.
func NewCatalogo(client *infra.BackendClient, users UsuarioActual) *Catalogo {
	recetasAPI := infra.NewResourceAPI[model.Receta](client, "/recetas")

	c := &Catalogo{
		Categorias:   NewStore(model.KindCategorias, infra.NewResourceAPI[model.Categoria](client, "/categorias"), users),
		Platos:       NewStore(model.KindPlatos, infra.NewResourceAPI[model.Plato](client, "/platos"), users),
		Ingredientes: NewStore(model.KindIngredientes, infra.NewResourceAPI[model.Ingrediente](client, "/ingrediente"), users),
		Mesas:        NewStore(model.KindMesas, infra.NewResourceAPI[model.Mesa](client, "/mesas"), users),
		Sucursales:   NewStore(model.KindSucursales, infra.NewResourceAPI[model.Sucursal](client, "/sucursal"), users),
		MetodosPago:  NewStore(model.KindMetodosPago, infra.NewResourceAPI[model.MetodoPago](client, "/metodo_pago"), users),
		Recetas:      NewStore(model.KindRecetas, recetasAPI, users),
		Usuarios:     NewStore(model.KindUsuarios, infra.NewResourceAPI[model.UsuarioRegistro](client, "/usuario"), users),
		Roles:        NewStore(model.KindRoles, infra.NewResourceAPI[model.RolRegistro](client, "/rol").WithPut(), users),
		Reservas:     NewStore(model.KindReservas, infra.NewResourceAPI[model.Reserva](client, "/reserva"), users),
		Pedidos:      NewStore(model.KindPedidos, infra.NewResourceAPI[model.Pedido](client, "/pedido"), users),
		Detalles:     NewStore(model.KindDetallesPedido, infra.NewResourceAPI[model.DetallePedido](client, "/detalle_pedido").WithPut(), users),
		Facturas:     NewStore(model.KindFacturas, infra.NewResourceAPI[model.Factura](client, "/factura"), users),
		recetasAPI:   recetasAPI,
		users:        users,
	}

	c.porKind = map[model.Kind]Coleccion{}
	for _, col := range []Coleccion{
		c.Categorias, c.Platos, c.Ingredientes, c.Mesas, c.Sucursales, c.MetodosPago,
		c.Recetas, c.Usuarios, c.Roles, c.Reservas, c.Pedidos, c.Detalles, c.Facturas,
	} {
		c.porKind[col.Kind()] = col
	}
	return c
}

// Coleccion returns the store of kind.
func (c *Catalogo) Coleccion(kind model.Kind) (Coleccion, bool) {
	col, ok := c.porKind[kind]
	return col, ok
}
