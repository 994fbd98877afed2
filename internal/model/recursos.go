package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Recurso is any backend-managed entity exposed through uniform CRUD endpoints.
type Recurso interface {
	RecursoID() string
}

// Attrs is the named-attribute mapping sent to the backend on create/update.
type Attrs map[string]any

func init() {
	// The backend validates money fields as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// StockMinimoAlerta is the stock level at or below which an ingredient is flagged.
var StockMinimoAlerta = decimal.NewFromInt(5)

// Ingrediente is a stocked kitchen input.
type Ingrediente struct {
	ID           string          `json:"id_ingrediente"`
	Nombre       string          `json:"nombre"`
	UnidadMedida string          `json:"unidad_medida"`
	Stock        decimal.Decimal `json:"stock"`
}

func (i Ingrediente) RecursoID() string { return i.ID }

// StockBajo reports whether the ingredient needs restocking.
func (i Ingrediente) StockBajo() bool {
	return i.Stock.LessThanOrEqual(StockMinimoAlerta)
}

// EstadoMesa: "Libre" | "Ocupada" | "Reservada"
type EstadoMesa string

const (
	MesaLibre     EstadoMesa = "Libre"
	MesaOcupada   EstadoMesa = "Ocupada"
	MesaReservada EstadoMesa = "Reservada"
)

// Is compares table states ignoring case.
func (e EstadoMesa) Is(other EstadoMesa) bool {
	return strings.EqualFold(string(e), string(other))
}

// Mesa is a table. Its status is maintained by the backend; the terminal only
// reads it.
type Mesa struct {
	ID         string     `json:"id_mesa"`
	Numero     int        `json:"numero"`
	Capacidad  int        `json:"capacidad"`
	Estado     EstadoMesa `json:"estado"`
	SucursalID string     `json:"id_sucursal,omitempty"`
	Sucursal   *Sucursal  `json:"sucursal,omitempty"`
}

func (m Mesa) RecursoID() string { return m.ID }

func (m Mesa) Libre() bool { return m.Estado.Is(MesaLibre) }

// MesasLibres filters the tables currently marked Libre.
func MesasLibres(mesas []Mesa) []Mesa {
	out := make([]Mesa, 0, len(mesas))
	for _, m := range mesas {
		if m.Libre() {
			out = append(out, m)
		}
	}
	return out
}

// Sucursal is a restaurant branch.
type Sucursal struct {
	ID        string `json:"id_sucursal"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
}

func (s Sucursal) RecursoID() string { return s.ID }

// MetodoPago is a payment method offered at checkout.
type MetodoPago struct {
	ID          string `json:"id_metodo"`
	Tipo        string `json:"tipo"`
	Descripcion string `json:"descripcion,omitempty"`
	Activo      bool   `json:"activo"`
}

func (m MetodoPago) RecursoID() string { return m.ID }

// Receta is one recipe line: how much of an ingredient a dish consumes.
type Receta struct {
	ID            string          `json:"id_receta"`
	PlatoID       string          `json:"id_plato"`
	IngredienteID string          `json:"id_ingrediente"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Plato         *Plato          `json:"plato,omitempty"`
	Ingrediente   *Ingrediente    `json:"ingrediente,omitempty"`
}

func (r Receta) RecursoID() string { return r.ID }

// RolRegistro is the administrative record of a role.
type RolRegistro struct {
	ID          string `json:"id_rol"`
	Nombre      Rol    `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

func (r RolRegistro) RecursoID() string { return r.ID }

// UsuarioRegistro is the administrative record of a user account.
type UsuarioRegistro struct {
	ID        string       `json:"_id"`
	Nombre    string       `json:"nombre"`
	Apellido  string       `json:"apellido"`
	Correo    string       `json:"correo"`
	Telefono  string       `json:"telefono,omitempty"`
	Direccion string       `json:"direccion,omitempty"`
	RolID     string       `json:"rol_id,omitempty"`
	Rol       *RolRegistro `json:"rol,omitempty"`
}

func (u UsuarioRegistro) RecursoID() string { return u.ID }

// EstadoReservaConfirmada is the status assigned to reservations made at the terminal.
const EstadoReservaConfirmada = "CONFIRMADA"

// Reserva is a table reservation.
type Reserva struct {
	ID             string `json:"id_reserva"`
	FechaReserva   string `json:"fecha_reserva"` // YYYY-MM-DD
	Hora           string `json:"hora"`          // HH:MM
	NumeroPersonas int    `json:"numero_personas"`
	Estado         string `json:"estado"`
	UsuarioID      string `json:"id_usuario"`
	MesaID         string `json:"id_mesa"`
	SucursalID     string `json:"id_sucursal"`
	Mesa           *Mesa  `json:"mesa,omitempty"`
}

func (r Reserva) RecursoID() string { return r.ID }

// Kind names a resource collection of the backend.
type Kind string

const (
	KindCategorias     Kind = "categorias"
	KindPlatos         Kind = "platos"
	KindIngredientes   Kind = "ingredientes"
	KindMesas          Kind = "mesas"
	KindSucursales     Kind = "sucursales"
	KindMetodosPago    Kind = "metodos_pago"
	KindRecetas        Kind = "recetas"
	KindUsuarios       Kind = "usuarios"
	KindRoles          Kind = "roles"
	KindReservas       Kind = "reservas"
	KindPedidos        Kind = "pedidos"
	KindDetallesPedido Kind = "detalles_pedido"
	KindFacturas       Kind = "facturas"
)
