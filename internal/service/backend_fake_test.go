package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pixelfood/internal/infra"
	"pixelfood/internal/model"
	"pixelfood/internal/repository"

	"github.com/gin-gonic/gin"
)

// ── Fake REST backend ────────────────────────────────────────────────────────
// In-memory stand-in for the backend collaborator, built with gin the same way
// the terminal's own API is. Collections are keyed by path ("/mesas") and
// every request is recorded for assertions.

type llamada struct {
	Method string
	Path   string
	Body   map[string]any
	Auth   string
}

type fallo struct {
	status int
	body   string
}

type fakeBackend struct {
	mu     sync.Mutex
	data   map[string][]map[string]any
	calls  []llamada
	fallos map[string]fallo // "POST /categorias" → forced answer
	login  func(body map[string]any) (int, any)
	antes  func(method, path string) // runs after the answer is computed
	seq    int
	t      *testing.T
}

var idKeys = map[string]string{
	"/categorias":     "id_categoria",
	"/platos":         "id_plato",
	"/ingrediente":    "id_ingrediente",
	"/mesas":          "id_mesa",
	"/sucursal":       "id_sucursal",
	"/metodo_pago":    "id_metodo",
	"/recetas":        "id_receta",
	"/usuario":        "_id",
	"/rol":            "id_rol",
	"/reserva":        "id_reserva",
	"/pedido":         "id_pedido",
	"/detalle_pedido": "id_detalle",
	"/factura":        "id_factura",
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := &fakeBackend{
		data:   map[string][]map[string]any{},
		fallos: map[string]fallo{},
		t:      t,
	}
	r := gin.New()
	r.Any("/*path", fb.handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) seed(path string, items ...map[string]any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.data[path] = append(fb.data[path], items...)
}

func (fb *fakeBackend) fail(method, path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.fallos[method+" "+path] = fallo{status: status, body: body}
}

func (fb *fakeBackend) Calls() []llamada {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]llamada(nil), fb.calls...)
}

// CallsTo returns the recorded requests matching "METHOD /path".
func (fb *fakeBackend) CallsTo(method, path string) []llamada {
	out := []llamada{}
	for _, c := range fb.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (fb *fakeBackend) handle(c *gin.Context) {
	path := c.Param("path")
	raw, _ := io.ReadAll(c.Request.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	status, out := fb.answer(c.Request.Method, path, body, c.GetHeader("Authorization"))

	fb.mu.Lock()
	antes := fb.antes
	fb.mu.Unlock()
	if antes != nil {
		antes(c.Request.Method, path)
	}

	switch v := out.(type) {
	case nil:
		c.Status(status)
	case string:
		c.Data(status, "application/json", []byte(v))
	default:
		c.JSON(status, v)
	}
}

func (fb *fakeBackend) answer(method, path string, body map[string]any, auth string) (int, any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.calls = append(fb.calls, llamada{Method: method, Path: path, Body: body, Auth: auth})

	if f, ok := fb.fallos[method+" "+path]; ok {
		if f.body == "" {
			return f.status, nil
		}
		return f.status, f.body
	}

	if path == "/auth/login" && method == http.MethodPost {
		if fb.login == nil {
			return http.StatusUnauthorized, `{"message":"Credenciales incorrectas"}`
		}
		return fb.login(body)
	}

	seg := strings.Split(strings.Trim(path, "/"), "/")
	col := "/" + seg[0]
	key := idKeys[col]
	if key == "" {
		return http.StatusNotFound, `{"message":"Cannot ` + method + ` ` + path + `"}`
	}

	switch {
	case len(seg) == 1 && method == http.MethodGet:
		return http.StatusOK, copyItems(fb.data[col])

	case len(seg) == 1 && method == http.MethodPost:
		fb.seq++
		item := map[string]any{}
		for k, v := range body {
			item[k] = v
		}
		item[key] = fmt.Sprintf("%s-%d", strings.TrimPrefix(col, "/"), fb.seq)
		if col == "/pedido" {
			item["fecha"] = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
			delete(item, "items")
		}
		fb.data[col] = append(fb.data[col], item)
		return http.StatusCreated, item

	case len(seg) == 2:
		i := fb.index(col, key, seg[1])
		if i < 0 {
			return http.StatusNotFound, `{"message":"No encontrado"}`
		}
		switch method {
		case http.MethodGet:
			return http.StatusOK, fb.data[col][i]
		case http.MethodPatch, http.MethodPut:
			for k, v := range body {
				fb.data[col][i][k] = v
			}
			return http.StatusOK, fb.data[col][i]
		case http.MethodDelete:
			fb.data[col] = append(fb.data[col][:i], fb.data[col][i+1:]...)
			return http.StatusOK, nil
		}

	case len(seg) == 3 && method == http.MethodGet && seg[1] == "plato":
		out := []map[string]any{}
		for _, it := range fb.data[col] {
			if it["id_plato"] == seg[2] {
				out = append(out, it)
			}
		}
		return http.StatusOK, out

	case len(seg) == 3 && method == http.MethodPatch && seg[2] == "stock":
		i := fb.index(col, key, seg[1])
		if i < 0 {
			return http.StatusNotFound, `{"message":"No encontrado"}`
		}
		fb.data[col][i]["stock"] = body["stock"]
		return http.StatusOK, fb.data[col][i]
	}
	return http.StatusMethodNotAllowed, nil
}

// index must run under mu.
func (fb *fakeBackend) index(col, key, id string) int {
	for i, it := range fb.data[col] {
		if it[key] == id {
			return i
		}
	}
	return -1
}

func copyItems(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		cp := make(map[string]any, len(it))
		for k, v := range it {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// ── Harness ──────────────────────────────────────────────────────────────────

// usuarioFijo is a UsuarioActual that never changes.
type usuarioFijo struct{ u *model.Usuario }

func (f usuarioFijo) Usuario() *model.Usuario { return f.u }

func staffCon(rol model.Rol, perms ...model.Permiso) *model.Usuario {
	return &model.Usuario{ID: "u-1", Nombre: "Ana", Rol: rol, Permisos: model.NewPermisos(perms...)}
}

func newClient(srv *httptest.Server) *infra.BackendClient {
	return infra.NewBackendClient(srv.URL, 5*time.Second, nil)
}

func newCatalogo(t *testing.T, u *model.Usuario) (*fakeBackend, *Catalogo) {
	t.Helper()
	fb, srv := newFakeBackend(t)
	return fb, NewCatalogo(newClient(srv), usuarioFijo{u})
}

// newTerminal wires a real AuthSession (memory store) over the fake backend.
func newTerminal(t *testing.T) (*fakeBackend, *AuthSession, repository.SessionStore) {
	t.Helper()
	fb, srv := newFakeBackend(t)
	store := repository.NewMemorySessionStore()
	return fb, NewAuthSession("caja-test", store, newClient(srv)), store
}
