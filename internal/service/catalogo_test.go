package service

import (
	"context"
	"net/http"
	"testing"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogo_ColeccionByKind(t *testing.T) {
	_, cat := newCatalogo(t, nil)

	for kind := range guard.Recursos {
		col, ok := cat.Coleccion(kind)
		require.True(t, ok, kind)
		assert.Equal(t, kind, col.Kind())
	}
	_, ok := cat.Coleccion("desconocido")
	assert.False(t, ok)
}

// ── Reservas ──────────────────────────────────────────────────────────────────

func seedMesas(fb *fakeBackend) {
	fb.seed("/mesas",
		map[string]any{"id_mesa": "M1", "numero": 1, "capacidad": 4, "estado": "Libre", "id_sucursal": "S1"},
		map[string]any{"id_mesa": "M2", "numero": 2, "capacidad": 2, "estado": "Reservada", "id_sucursal": "S1"},
	)
}

var reservaOK = dto.CrearReservaRequest{
	FechaReserva: "2026-05-01",
	Hora:         "21:30",
	MesaID:       "M1",
	SucursalID:   "S1",
}

func TestReserva_ClientBooksForThemselves(t *testing.T) {
	fb, cat := newCatalogo(t, staffCon(model.RolCliente))
	seedMesas(fb)

	req := reservaOK
	req.UsuarioID = "otro" // ignored for non-admins
	require.NoError(t, cat.CrearReserva(context.Background(), req))

	posts := fb.CallsTo(http.MethodPost, "/reserva")
	require.Len(t, posts, 1)
	assert.Equal(t, map[string]any{
		"id_usuario":      "u-1",
		"id_mesa":         "M1",
		"id_sucursal":     "S1",
		"fecha_reserva":   "2026-05-01",
		"hora":            "21:30",
		"numero_personas": float64(4),
		"estado":          "CONFIRMADA",
	}, posts[0].Body)
}

func TestReserva_AdminMustPickClient(t *testing.T) {
	fb, cat := newCatalogo(t, staffCon(model.RolAdministrador, model.PermVerReservas))
	seedMesas(fb)
	ctx := context.Background()

	assert.ErrorIs(t, cat.CrearReserva(ctx, reservaOK), ErrClienteRequerido)
	assert.Empty(t, fb.Calls())

	req := reservaOK
	req.UsuarioID = "cliente-9"
	require.NoError(t, cat.CrearReserva(ctx, req))
	assert.Equal(t, "cliente-9", fb.CallsTo(http.MethodPost, "/reserva")[0].Body["id_usuario"])
}

func TestReserva_Rejections(t *testing.T) {
	fb, cat := newCatalogo(t, staffCon(model.RolCliente))
	seedMesas(fb)
	ctx := context.Background()

	malFecha := reservaOK
	malFecha.FechaReserva = "01/05/2026"
	assert.ErrorIs(t, cat.CrearReserva(ctx, malFecha), ErrCamposReserva)

	ocupada := reservaOK
	ocupada.MesaID = "M2"
	assert.ErrorIs(t, cat.CrearReserva(ctx, ocupada), ErrMesaNoDisponible)

	inexistente := reservaOK
	inexistente.MesaID = "M9"
	assert.ErrorIs(t, cat.CrearReserva(ctx, inexistente), ErrMesaNoEncontrada)

	assert.Empty(t, fb.CallsTo(http.MethodPost, "/reserva"))
}

func TestReserva_AnonymousDenied(t *testing.T) {
	fb, cat := newCatalogo(t, nil)
	assert.ErrorIs(t, cat.CrearReserva(context.Background(), reservaOK), guard.ErrDenegado)
	assert.Empty(t, fb.Calls())
}

// ── Inventario ────────────────────────────────────────────────────────────────

func TestInventario_AjustarStockUsesStockEndpoint(t *testing.T) {
	u := staffCon(model.RolEmpleado, model.PermVerIngredientes, model.PermEditarStockIngredientes)
	fb, cat := newCatalogo(t, u)
	fb.seed("/ingrediente",
		map[string]any{"id_ingrediente": "I1", "nombre": "Tomate", "unidad_medida": "kg", "stock": 20},
		map[string]any{"id_ingrediente": "I2", "nombre": "Queso", "unidad_medida": "kg", "stock": 8},
	)
	ctx := context.Background()

	require.NoError(t, cat.AjustarStock(ctx, "I2", dto.AjustarStockRequest{Stock: dec("3")}))

	patches := fb.CallsTo(http.MethodPatch, "/ingrediente/I2/stock")
	require.Len(t, patches, 1)
	assert.EqualValues(t, 3, patches[0].Body["stock"])

	alertas := cat.AlertasStock()
	require.Len(t, alertas, 1)
	assert.Equal(t, "Queso", alertas[0].Nombre)
}

func TestInventario_AjustarStockNeedsStockPermission(t *testing.T) {
	u := staffCon(model.RolEmpleado, model.PermVerIngredientes, model.PermEditarIngredientes)
	fb, cat := newCatalogo(t, u)

	err := cat.AjustarStock(context.Background(), "I1", dto.AjustarStockRequest{Stock: dec("1")})
	assert.ErrorIs(t, err, guard.ErrDenegado)
	assert.Empty(t, fb.Calls())
}

func TestInventario_RecetasDePlato(t *testing.T) {
	fb, cat := newCatalogo(t, staffCon(model.RolEmpleado, model.PermVerRecetas))
	fb.seed("/recetas",
		map[string]any{"id_receta": "R1", "id_plato": "P1", "id_ingrediente": "I1", "cantidad": 0.2},
		map[string]any{"id_receta": "R2", "id_plato": "P2", "id_ingrediente": "I1", "cantidad": 0.5},
	)

	list, err := cat.RecetasDePlato(context.Background(), "P1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0.2", list[0].Cantidad.String())

	vacio, err := cat.RecetasDePlato(context.Background(), "P3")
	require.NoError(t, err)
	assert.NotNil(t, vacio)
	assert.Empty(t, vacio)
}

// ── Resumen ───────────────────────────────────────────────────────────────────

func TestResumen_CountsWhatTheUserMaySee(t *testing.T) {
	admin := staffCon(model.RolAdministrador, model.PermVerPedidos, model.PermVerMesas, model.PermVerIngredientes)
	fb, cat := newCatalogo(t, admin)
	seedMesas(fb)
	fb.seed("/pedido",
		map[string]any{"id_pedido": "O1", "estado": "PENDIENTE", "total": 1},
		map[string]any{"id_pedido": "O2", "estado": "PENDIENTE", "total": 1},
		map[string]any{"id_pedido": "O3", "estado": "PAGADO", "total": 1},
		map[string]any{"id_pedido": "O4", "estado": "LISTO", "total": 1},
	)
	fb.seed("/ingrediente",
		map[string]any{"id_ingrediente": "I1", "nombre": "Sal", "stock": 5},
		map[string]any{"id_ingrediente": "I2", "nombre": "Arroz", "stock": 50},
	)

	res, err := cat.Resumen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PedidosPorEstado[model.EstadoPendiente])
	assert.Equal(t, 1, res.PedidosPorEstado[model.EstadoPagado])
	assert.Equal(t, 3, res.PedidosActivos)
	assert.Equal(t, 2, res.MesasTotal)
	assert.Equal(t, 1, res.MesasLibres)
	require.Len(t, res.StockBajo, 1)
	assert.Equal(t, "Sal", res.StockBajo[0].Nombre)
}

func TestResumen_SkipsStoresWithoutViewPermission(t *testing.T) {
	fb, cat := newCatalogo(t, staffCon(model.RolEmpleado, model.PermVerPedidos))
	fb.seed("/pedido", map[string]any{"id_pedido": "O1", "estado": "LISTO", "total": 1})

	res, err := cat.Resumen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.PedidosActivos)
	assert.Empty(t, fb.CallsTo(http.MethodGet, "/mesas"))
	assert.Empty(t, fb.CallsTo(http.MethodGet, "/ingrediente"))
	assert.Empty(t, res.StockBajo)
}
