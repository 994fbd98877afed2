package repository

import (
	"context"
	"testing"

	"pixelfood/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSessionStore runs the same contract against every implementation.
func exerciseSessionStore(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "caja-1")
	assert.ErrorIs(t, err, ErrSesionNoEncontrada)

	require.NoError(t, store.Save(ctx, &model.SesionGuardada{
		TerminalID: "caja-1",
		Token:      "tok-1",
		Usuario:    []byte(`{"id_usuario":"u-1","nombre":"Ana","rol":"EMPLEADO","permisos":["ver_pedidos"]}`),
	}))

	got, err := store.Load(ctx, "caja-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
	assert.JSONEq(t, `{"id_usuario":"u-1","nombre":"Ana","rol":"EMPLEADO","permisos":["ver_pedidos"]}`, string(got.Usuario))

	// Save replaces the previous session of the same terminal.
	require.NoError(t, store.Save(ctx, &model.SesionGuardada{
		TerminalID: "caja-1",
		Token:      "tok-2",
		Usuario:    []byte(`{"id_usuario":"u-2","nombre":"Luis","rol":"ADMINISTRADOR","permisos":[]}`),
	}))
	got, err = store.Load(ctx, "caja-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.Token)

	// Other terminals are unaffected.
	_, err = store.Load(ctx, "caja-2")
	assert.ErrorIs(t, err, ErrSesionNoEncontrada)

	require.NoError(t, store.Clear(ctx, "caja-1"))
	_, err = store.Load(ctx, "caja-1")
	assert.ErrorIs(t, err, ErrSesionNoEncontrada)

	// Clearing an absent session is not an error.
	assert.NoError(t, store.Clear(ctx, "caja-1"))
	assert.NoError(t, store.Ping(ctx))
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, NewMemorySessionStore())
}

func TestMemorySessionStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Save(ctx, &model.SesionGuardada{TerminalID: "t", Token: "x", Usuario: []byte(`{}`)}))

	s, err := store.Load(ctx, "t")
	require.NoError(t, err)
	s.Usuario[0] = 'X'
	s.Token = "changed"

	again, err := store.Load(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "x", again.Token)
	assert.Equal(t, `{}`, string(again.Usuario))
}
