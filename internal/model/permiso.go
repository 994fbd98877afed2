package model

import (
	"encoding/json"
	"sort"
)

// Permiso is a capability tag granted to a role by the backend.
type Permiso string

// Capability tags used by the terminal.
const (
	PermVerPedidos         Permiso = "ver_pedidos"
	PermCrearPedidos       Permiso = "crear_pedidos"
	PermEditarPedidos      Permiso = "editar_pedidos"
	PermCancelarPedidos    Permiso = "cancelar_pedidos"
	PermVerDetallesPedidos Permiso = "ver_detalles_pedidos"

	PermVerMesas      Permiso = "ver_mesas"
	PermCrearMesas    Permiso = "crear_mesas"
	PermEditarMesas   Permiso = "editar_mesas"
	PermEliminarMesas Permiso = "eliminar_mesas"

	PermVerCategorias      Permiso = "ver_categorias"
	PermCrearCategorias    Permiso = "crear_categorias"
	PermEditarCategorias   Permiso = "editar_categorias"
	PermEliminarCategorias Permiso = "eliminar_categorias"

	PermVerPlatos      Permiso = "ver_platos"
	PermCrearPlatos    Permiso = "crear_platos"
	PermEditarPlatos   Permiso = "editar_platos"
	PermEliminarPlatos Permiso = "eliminar_platos"

	PermVerIngredientes         Permiso = "ver_ingredientes"
	PermCrearIngredientes       Permiso = "crear_ingredientes"
	PermEditarIngredientes      Permiso = "editar_ingredientes"
	PermEliminarIngredientes    Permiso = "eliminar_ingredientes"
	PermEditarStockIngredientes Permiso = "editar_stock_ingredientes"

	PermVerRecetas      Permiso = "ver_recetas"
	PermCrearRecetas    Permiso = "crear_recetas"
	PermEliminarRecetas Permiso = "eliminar_recetas"

	PermVerSucursales      Permiso = "ver_sucursales"
	PermCrearSucursales    Permiso = "crear_sucursales"
	PermEditarSucursales   Permiso = "editar_sucursales"
	PermEliminarSucursales Permiso = "eliminar_sucursales"

	PermVerReservas    Permiso = "ver_reservas"
	PermVerFacturas    Permiso = "ver_facturas"
	PermVerMetodosPago Permiso = "ver_metodos_pago"

	PermGestionarUsuarios Permiso = "gestionar_usuarios"
)

// Permisos is a flat set of capability tags. The zero value is an empty set.
type Permisos map[Permiso]struct{}

func NewPermisos(ps ...Permiso) Permisos {
	set := make(Permisos, len(ps))
	for _, p := range ps {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is in the set. Tags are case-sensitive.
func (s Permisos) Has(p Permiso) bool {
	_, ok := s[p]
	return ok
}

// Any reports whether the set holds at least one of ps.
func (s Permisos) Any(ps ...Permiso) bool {
	for _, p := range ps {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// List returns the tags sorted, for stable output.
func (s Permisos) List() []Permiso {
	out := make([]Permiso, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Permisos) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON accepts a list of strings; null decodes to an empty set.
func (s *Permisos) UnmarshalJSON(b []byte) error {
	var list []Permiso
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*s = NewPermisos(list...)
	return nil
}
