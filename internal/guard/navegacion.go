package guard

import "pixelfood/internal/model"

// Seccion is a navigable area of the UI and the policy that opens it.
type Seccion struct {
	Ruta   string `json:"ruta"`
	Titulo string `json:"titulo"`
	Grupo  string `json:"grupo"`
	Policy Policy `json:"-"`
}

var staff = Roles(model.RolAdministrador, model.RolEmpleado)

// Navegacion is the full section catalogue. Admin sections require a staff
// role and their own view permission.
var Navegacion = []Seccion{
	{Ruta: "/home", Titulo: "Inicio", Grupo: "general"},
	{Ruta: "/menu", Titulo: "Menú", Grupo: "general"},
	{Ruta: "/reservas", Titulo: "Reservar", Grupo: "general"},
	{Ruta: "/pedidos", Titulo: "Mis pedidos", Grupo: "general"},

	{Ruta: "/admin", Titulo: "Resumen", Grupo: "operaciones", Policy: staff},
	{Ruta: "/admin/pedidos", Titulo: "Pedidos", Grupo: "operaciones", Policy: staff.And(Permisos(model.PermVerPedidos))},
	{Ruta: "/admin/mesas", Titulo: "Mesas", Grupo: "operaciones", Policy: staff.And(Permisos(model.PermVerMesas))},
	{Ruta: "/admin/recetas", Titulo: "Recetas", Grupo: "operaciones", Policy: staff.And(Permisos(model.PermVerRecetas))},
	{Ruta: "/admin/categorias", Titulo: "Categorías", Grupo: "operaciones", Policy: staff.And(Permisos(model.PermVerCategorias))},
	{Ruta: "/admin/reservas", Titulo: "Reservas", Grupo: "operaciones", Policy: staff.And(Permisos(model.PermVerReservas))},

	{Ruta: "/admin/usuarios", Titulo: "Usuarios", Grupo: "logistica", Policy: staff.And(Permisos(model.PermGestionarUsuarios))},
	{Ruta: "/admin/platos", Titulo: "Platos", Grupo: "logistica", Policy: staff.And(Permisos(model.PermVerPlatos))},
	{Ruta: "/admin/sucursales", Titulo: "Sucursales", Grupo: "logistica", Policy: staff.And(Permisos(model.PermVerSucursales))},
	{Ruta: "/admin/ingredientes", Titulo: "Ingredientes", Grupo: "logistica", Policy: staff.And(Permisos(model.PermVerIngredientes))},
	{Ruta: "/admin/facturas", Titulo: "Facturas", Grupo: "logistica", Policy: staff.And(Permisos(model.PermVerFacturas))},
	{Ruta: "/admin/metodos-pago", Titulo: "Métodos de pago", Grupo: "logistica", Policy: staff.And(Permisos(model.PermVerMetodosPago))},
}

// VisibleSections returns only the sections u may open. Denied sections are
// left out entirely rather than returned disabled.
func VisibleSections(u *model.Usuario) []Seccion {
	out := make([]Seccion, 0, len(Navegacion))
	for _, s := range Navegacion {
		if Allow(u, s.Policy) {
			out = append(out, s)
		}
	}
	return out
}

// rutasSinMenu are routes reached from another screen, never from the menu.
var rutasSinMenu = map[string]Policy{
	// Payment is open to every signed-in user; PuedePagar scopes the order.
	"/caja": {},
}

// PolicyDe returns the policy of the section at ruta. Unknown routes are
// refused for everyone.
func PolicyDe(ruta string) Policy {
	for _, s := range Navegacion {
		if s.Ruta == ruta {
			return s.Policy
		}
	}
	if p, ok := rutasSinMenu[ruta]; ok {
		return p
	}
	return Roles(model.Rol("sin-acceso"))
}

// PuedePagar reports whether u may open and pay order p: staff holding
// ver_facturas may charge any order, anyone else only their own.
func PuedePagar(u *model.Usuario, p model.Pedido) bool {
	if u == nil {
		return false
	}
	if Allow(u, staff.And(Permisos(model.PermVerFacturas))) {
		return true
	}
	return p.UsuarioID != "" && p.UsuarioID == u.ID
}

// Acciones are the policies of the standard CRUD controls of one resource kind.
type Acciones struct {
	Ver      Policy
	Crear    Policy
	Editar   Policy
	Eliminar Policy
}

// Recursos maps every resource kind to its control policies.
var Recursos = map[model.Kind]Acciones{
	model.KindCategorias: {
		Ver:      Permisos(model.PermVerCategorias),
		Crear:    Permisos(model.PermCrearCategorias),
		Editar:   Permisos(model.PermEditarCategorias),
		Eliminar: Permisos(model.PermEliminarCategorias),
	},
	model.KindPlatos: {
		Ver:      Permisos(model.PermVerPlatos),
		Crear:    Permisos(model.PermCrearPlatos),
		Editar:   Permisos(model.PermEditarPlatos),
		Eliminar: Permisos(model.PermEliminarPlatos),
	},
	model.KindIngredientes: {
		Ver:      Permisos(model.PermVerIngredientes),
		Crear:    Permisos(model.PermCrearIngredientes),
		Editar:   Permisos(model.PermEditarIngredientes),
		Eliminar: Permisos(model.PermEliminarIngredientes),
	},
	model.KindMesas: {
		Ver:      Permisos(model.PermVerMesas),
		Crear:    Permisos(model.PermCrearMesas),
		Editar:   Permisos(model.PermEditarMesas),
		Eliminar: Permisos(model.PermEliminarMesas),
	},
	model.KindSucursales: {
		Ver:      Permisos(model.PermVerSucursales),
		Crear:    Permisos(model.PermCrearSucursales),
		Editar:   Permisos(model.PermEditarSucursales),
		Eliminar: Permisos(model.PermEliminarSucursales),
	},
	model.KindMetodosPago: {
		Ver:      Permisos(model.PermVerMetodosPago),
		Crear:    Roles(model.RolAdministrador).And(Permisos(model.PermVerMetodosPago)),
		Editar:   Roles(model.RolAdministrador).And(Permisos(model.PermVerMetodosPago)),
		Eliminar: Roles(model.RolAdministrador).And(Permisos(model.PermVerMetodosPago)),
	},
	model.KindRecetas: {
		Ver:      Permisos(model.PermVerRecetas),
		Crear:    Permisos(model.PermCrearRecetas),
		Editar:   Permisos(model.PermCrearRecetas),
		Eliminar: Permisos(model.PermEliminarRecetas),
	},
	model.KindUsuarios: {
		Ver:      Permisos(model.PermGestionarUsuarios),
		Crear:    Permisos(model.PermGestionarUsuarios),
		Editar:   Permisos(model.PermGestionarUsuarios),
		Eliminar: Permisos(model.PermGestionarUsuarios),
	},
	model.KindRoles: {
		Ver:      Permisos(model.PermGestionarUsuarios),
		Crear:    Roles(model.RolAdministrador).And(Permisos(model.PermGestionarUsuarios)),
		Editar:   Roles(model.RolAdministrador).And(Permisos(model.PermGestionarUsuarios)),
		Eliminar: Roles(model.RolAdministrador).And(Permisos(model.PermGestionarUsuarios)),
	},
	model.KindReservas: {
		// Any signed-in user may book a table; managing bookings is staff work.
		Ver:      Policy{},
		Crear:    Policy{},
		Editar:   staff.And(Permisos(model.PermVerReservas)),
		Eliminar: staff.And(Permisos(model.PermVerReservas)),
	},
	model.KindPedidos: {
		Ver:      Policy{},
		Crear:    Permisos(model.PermCrearPedidos),
		Editar:   Permisos(model.PermEditarPedidos),
		Eliminar: Permisos(model.PermCancelarPedidos),
	},
	model.KindDetallesPedido: {
		Ver:      Permisos(model.PermVerDetallesPedidos),
		Crear:    Permisos(model.PermVerDetallesPedidos),
		Editar:   Permisos(model.PermVerDetallesPedidos),
		Eliminar: Permisos(model.PermVerDetallesPedidos),
	},
	model.KindFacturas: {
		Ver:      Policy{},
		Crear:    Policy{},
		Editar:   Roles(model.RolAdministrador).And(Permisos(model.PermVerFacturas)),
		Eliminar: Roles(model.RolAdministrador).And(Permisos(model.PermVerFacturas)),
	},
}

// Control names a CRUD affordance.
type Control string

const (
	ControlCrear    Control = "crear"
	ControlEditar   Control = "editar"
	ControlEliminar Control = "eliminar"
)

// ControlesRecurso lists the controls u may see for kind. Unknown kinds expose
// nothing.
func ControlesRecurso(u *model.Usuario, kind model.Kind) []Control {
	a, ok := Recursos[kind]
	if !ok || !Allow(u, a.Ver) {
		return []Control{}
	}
	out := make([]Control, 0, 3)
	if Allow(u, a.Crear) {
		out = append(out, ControlCrear)
	}
	if Allow(u, a.Editar) {
		out = append(out, ControlEditar)
	}
	if Allow(u, a.Eliminar) {
		out = append(out, ControlEliminar)
	}
	return out
}

// ControlesPedido lists the row actions available on one order, mirroring the
// order table: consumption detail, charge (delivered orders only), edit (not
// for clients, not once paid) and void (pending orders only).
func ControlesPedido(u *model.Usuario, p model.Pedido) []string {
	out := []string{}
	if u == nil {
		return out
	}
	cliente := u.Rol.Is(model.RolCliente)
	if Allow(u, Permisos(model.PermVerDetallesPedidos)) {
		out = append(out, "detalle")
	}
	if Allow(u, Permisos(model.PermVerFacturas)) && p.Estado == model.EstadoEntregado {
		out = append(out, "cobrar")
	}
	if Allow(u, Permisos(model.PermEditarPedidos)) && !cliente && !p.Estado.EsTerminal() {
		out = append(out, "editar")
	}
	if Allow(u, Permisos(model.PermCancelarPedidos)) && p.Estado == model.EstadoPendiente {
		out = append(out, "anular")
	}
	return out
}
