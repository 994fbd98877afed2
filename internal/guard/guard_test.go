package guard

import (
	"testing"

	"pixelfood/internal/model"

	"github.com/stretchr/testify/assert"
)

func empleado(perms ...model.Permiso) *model.Usuario {
	return &model.Usuario{ID: "u-1", Nombre: "Ana", Rol: model.RolEmpleado, Permisos: model.NewPermisos(perms...)}
}

// ── Allow ─────────────────────────────────────────────────────────────────────

func TestAllow_NoUserAlwaysDenies(t *testing.T) {
	policies := []Policy{
		{},
		Roles(model.RolAdministrador),
		Permisos(model.PermVerPedidos),
		Roles(model.RolCliente).And(Permisos(model.PermVerMesas)),
	}
	for _, p := range policies {
		assert.False(t, Allow(nil, p))
	}
}

func TestAllow_EmptyPolicyAllowsAnyUser(t *testing.T) {
	assert.True(t, Allow(empleado(), Policy{}))
}

func TestAllow_RoleIsCaseInsensitive(t *testing.T) {
	u := &model.Usuario{Rol: model.Rol("Empleado")}
	assert.True(t, Allow(u, Roles("ADMINISTRADOR", "empleado")))
	assert.False(t, Allow(u, Roles(model.RolAdministrador)))
}

func TestAllow_PermissionsUseOrSemantics(t *testing.T) {
	u := empleado("b")
	assert.True(t, Allow(u, Permisos("a", "b")))
	assert.False(t, Allow(u, Permisos("a", "c")))
}

func TestAllow_RoleAndPermissionMustBothPass(t *testing.T) {
	u := empleado(model.PermVerPedidos)

	assert.True(t, Allow(u, Roles(model.RolEmpleado).And(Permisos(model.PermVerPedidos))))
	assert.False(t, Allow(u, Roles(model.RolAdministrador).And(Permisos(model.PermVerPedidos))))
	assert.False(t, Allow(u, Roles(model.RolEmpleado).And(Permisos(model.PermVerMesas))))
}

func TestPolicyAnd_RefusesToMergeSameKind(t *testing.T) {
	assert.Panics(t, func() { Permisos(model.PermVerMesas).And(Permisos(model.PermVerPedidos)) })
	assert.Panics(t, func() { Roles(model.RolEmpleado).And(Roles(model.RolAdministrador)) })
	assert.NotPanics(t, func() { Roles(model.RolEmpleado).And(Permisos(model.PermVerPedidos)) })
}

func TestAllow_EmpleadoScenario(t *testing.T) {
	u := empleado(model.PermVerPedidos)
	assert.False(t, Allow(u, Permisos(model.PermVerMesas)))
	assert.True(t, Allow(u, Permisos(model.PermVerPedidos)))
}

func TestCheck_ReturnsErrDenegado(t *testing.T) {
	assert.ErrorIs(t, Check(nil, Policy{}), ErrDenegado)
	assert.NoError(t, Check(empleado(), Policy{}))
}

// ── Navigation & controls ─────────────────────────────────────────────────────

func rutas(secs []Seccion) []string {
	out := make([]string, 0, len(secs))
	for _, s := range secs {
		out = append(out, s.Ruta)
	}
	return out
}

func TestVisibleSections_OmitsDeniedSections(t *testing.T) {
	got := rutas(VisibleSections(empleado(model.PermVerPedidos)))

	assert.Contains(t, got, "/admin/pedidos")
	assert.NotContains(t, got, "/admin/mesas")
	assert.NotContains(t, got, "/admin/usuarios")
}

func TestVisibleSections_ClienteSeesNoAdmin(t *testing.T) {
	cliente := &model.Usuario{Rol: model.RolCliente, Permisos: model.NewPermisos(model.PermVerPedidos)}
	got := rutas(VisibleSections(cliente))

	assert.Equal(t, []string{"/home", "/menu", "/reservas", "/pedidos"}, got)
}

func TestVisibleSections_Anonymous(t *testing.T) {
	assert.Empty(t, VisibleSections(nil))
}

func TestControlesRecurso(t *testing.T) {
	u := empleado(model.PermVerCategorias, model.PermCrearCategorias)
	assert.Equal(t, []Control{ControlCrear}, ControlesRecurso(u, model.KindCategorias))

	// Without the view permission nothing is exposed, not even disabled.
	assert.Empty(t, ControlesRecurso(u, model.KindMesas))
	assert.Empty(t, ControlesRecurso(u, model.Kind("desconocido")))
}

func TestControlesPedido(t *testing.T) {
	u := empleado(model.PermEditarPedidos, model.PermCancelarPedidos, model.PermVerFacturas)

	assert.Equal(t, []string{"editar", "anular"}, ControlesPedido(u, model.Pedido{Estado: model.EstadoPendiente}))
	assert.Equal(t, []string{"cobrar", "editar"}, ControlesPedido(u, model.Pedido{Estado: model.EstadoEntregado}))
	assert.Empty(t, ControlesPedido(u, model.Pedido{Estado: model.EstadoPagado}))
	assert.Empty(t, ControlesPedido(nil, model.Pedido{Estado: model.EstadoPendiente}))
}

func TestPolicyDe(t *testing.T) {
	cliente := &model.Usuario{Rol: model.RolCliente}
	cocina := empleado(model.PermVerPedidos)

	assert.True(t, Allow(cliente, PolicyDe("/menu")))
	assert.False(t, Allow(cliente, PolicyDe("/admin/pedidos")))
	assert.True(t, Allow(cocina, PolicyDe("/admin/pedidos")))
	assert.False(t, Allow(cocina, PolicyDe("/admin/facturas")))
	assert.False(t, Allow(cocina, PolicyDe("/no-existe")))
}

func TestPolicyDe_CajaOpenToAnySignedInUser(t *testing.T) {
	cliente := &model.Usuario{ID: "c-1", Rol: model.RolCliente}
	assert.True(t, Allow(cliente, PolicyDe("/caja")))
	assert.False(t, Allow(nil, PolicyDe("/caja")))
	for _, s := range VisibleSections(cliente) {
		assert.NotEqual(t, "/caja", s.Ruta)
	}
}

func TestPuedePagar(t *testing.T) {
	cliente := &model.Usuario{ID: "c-1", Rol: model.RolCliente, Permisos: model.NewPermisos(model.PermVerFacturas)}
	cajero := empleado(model.PermVerFacturas)
	mesero := empleado(model.PermVerPedidos)

	propio := model.Pedido{ID: "O1", UsuarioID: "c-1"}
	ajeno := model.Pedido{ID: "O2", UsuarioID: "c-9"}

	assert.True(t, PuedePagar(cliente, propio))
	assert.False(t, PuedePagar(cliente, ajeno), "ver_facturas alone does not open other people's orders")
	assert.True(t, PuedePagar(cajero, ajeno))
	assert.False(t, PuedePagar(mesero, ajeno))
	assert.False(t, PuedePagar(&model.Usuario{}, model.Pedido{ID: "O3"}), "orders without owner are staff only")
	assert.False(t, PuedePagar(nil, propio))
}
