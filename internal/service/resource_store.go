package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"pixelfood/internal/apierror"
	"pixelfood/internal/guard"
	"pixelfood/internal/infra"
	"pixelfood/internal/model"

	"github.com/rs/zerolog/log"
)

// Fallback texts shown when the backend gives no structured message.
const (
	msgErrorCargar     = "Error al cargar datos"
	msgErrorCrear      = "Error al crear"
	msgErrorActualizar = "Error al actualizar"
	msgErrorEliminar   = "Error al eliminar"
)

// UsuarioActual exposes the signed-in user (nil when anonymous).
type UsuarioActual interface {
	Usuario() *model.Usuario
}

// OperacionError is a failed remote operation with the message to show.
type OperacionError struct {
	Mensaje string
	Err     error
}

func (e *OperacionError) Error() string { return e.Mensaje }
func (e *OperacionError) Unwrap() error { return e.Err }

func operacionError(err error, fallback string) *OperacionError {
	return &OperacionError{Mensaje: apierror.Message(err, fallback), Err: err}
}

// Store holds the collection of one resource kind. Every successful mutation
// is followed by a full Refresh; the collection is never patched locally.
type Store[T model.Recurso] struct {
	kind     model.Kind
	api      *infra.ResourceAPI[T]
	users    UsuarioActual
	acciones guard.Acciones

	// mu: mutations (write + refresh) hold it exclusively; plain reloads share
	// it, so a reload issued during a mutation waits for the post-write state.
	mu sync.RWMutex

	state   sync.RWMutex
	items   []T
	errMsg  string
	loading int
	issued  uint64
	applied uint64
}

// NewStore builds the store of kind over api. Mutations are checked against
// guard.Recursos[kind].
func NewStore[T model.Recurso](kind model.Kind, api *infra.ResourceAPI[T], users UsuarioActual) *Store[T] {
	return &Store[T]{
		kind:     kind,
		api:      api,
		users:    users,
		acciones: guard.Recursos[kind],
		items:    []T{},
	}
}

func (s *Store[T]) Kind() model.Kind { return s.kind }

// Items returns a copy of the last authoritative collection.
func (s *Store[T]) Items() []T {
	s.state.RLock()
	defer s.state.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Err returns the message of the last failed operation, or "".
func (s *Store[T]) Err() string {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.errMsg
}

// Loading reports whether a load is in flight.
func (s *Store[T]) Loading() bool {
	s.state.RLock()
	defer s.state.RUnlock()
	return s.loading > 0
}

// Get fetches one item directly from the backend.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	v, err := s.api.GetByID(ctx, id)
	if err != nil {
		return v, operacionError(err, msgErrorCargar)
	}
	return v, nil
}

// List reloads the collection and returns it.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.Items(), nil
}

// Refresh reloads the collection.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh(ctx)
}

// refresh must run under mu. Concurrent reloads may finish out of order, so
// each fetch takes a generation number and a response older than the last one
// applied is dropped.
func (s *Store[T]) refresh(ctx context.Context) error {
	s.state.Lock()
	s.issued++
	gen := s.issued
	s.loading++
	s.state.Unlock()

	list, err := s.api.GetAll(ctx)

	s.state.Lock()
	defer s.state.Unlock()
	s.loading--
	if gen < s.applied {
		log.Debug().Str("kind", string(s.kind)).Uint64("gen", gen).Msg("stale refresh discarded")
		return nil
	}
	s.applied = gen
	if err != nil {
		s.errMsg = apierror.Message(err, msgErrorCargar)
		return &OperacionError{Mensaje: s.errMsg, Err: err}
	}
	s.items = list
	s.errMsg = ""
	return nil
}

// Create sends attrs (sanitized) and refreshes. A failure is recorded in the
// store and returned.
func (s *Store[T]) Create(ctx context.Context, attrs model.Attrs) error {
	_, err := s.CreateItem(ctx, attrs)
	return err
}

// CreateItem is Create returning the entity echoed by the backend.
func (s *Store[T]) CreateItem(ctx context.Context, attrs model.Attrs) (T, error) {
	var zero T
	if err := guard.Check(s.users.Usuario(), s.acciones.Crear); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.api.Create(ctx, SanitizeAttrs(attrs))
	if err != nil {
		return zero, s.fail(err, msgErrorCrear)
	}
	s.refreshAfterMutation(ctx)
	return created, nil
}

// Update sends attrs (sanitized) for id and refreshes. A failure is recorded
// in the store and returned.
func (s *Store[T]) Update(ctx context.Context, id string, attrs model.Attrs) error {
	return s.UpdateWithPolicy(ctx, s.acciones.Editar, id, attrs)
}

// UpdateWithPolicy is Update gated by policy instead of the kind's edit
// policy, for narrower edits such as cancelling an order.
func (s *Store[T]) UpdateWithPolicy(ctx context.Context, policy guard.Policy, id string, attrs model.Attrs) error {
	if err := guard.Check(s.users.Usuario(), policy); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.api.Update(ctx, id, SanitizeAttrs(attrs)); err != nil {
		return s.fail(err, msgErrorActualizar)
	}
	s.refreshAfterMutation(ctx)
	return nil
}

// Remove deletes id and refreshes. A remote failure is recorded and logged
// but not returned, so the rest of the list keeps working. Only a guard
// denial is returned.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	if err := guard.Check(s.users.Usuario(), s.acciones.Eliminar); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.api.Remove(ctx, id); err != nil {
		_ = s.fail(err, msgErrorEliminar)
		log.Error().Err(err).Str("kind", string(s.kind)).Str("id", id).Msg("remove failed")
		return nil
	}
	s.refreshAfterMutation(ctx)
	return nil
}

// PatchSub runs a nested PATCH (e.g. /ingrediente/{id}/stock) as an update of
// this kind, followed by a refresh.
func (s *Store[T]) PatchSub(ctx context.Context, policy guard.Policy, id, sub string, body any) error {
	if err := guard.Check(s.users.Usuario(), policy); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.api.PatchSub(ctx, id, sub, body); err != nil {
		return s.fail(err, msgErrorActualizar)
	}
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *Store[T]) fail(err error, fallback string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	oe := operacionError(err, fallback)
	s.state.Lock()
	s.errMsg = oe.Mensaje
	s.state.Unlock()
	return oe
}

// refreshAfterMutation reloads after a successful write. A failed reload is
// left in Err(); the write itself already succeeded.
func (s *Store[T]) refreshAfterMutation(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		log.Warn().Err(err).Str("kind", string(s.kind)).Msg("refresh after mutation failed")
	}
}

// ── Payload sanitization ─────────────────────────────────────────────────────

// esClaveID reports whether key names an identifier: "id", "_id" or "id_*".
func esClaveID(key string) bool {
	return key == "id" || key == "_id" || strings.HasPrefix(key, "id_")
}

// SanitizeAttrs drops nil and empty-string values so server-side defaults are
// not overwritten. Identifier keys pass through unchanged, even when empty.
func SanitizeAttrs(attrs model.Attrs) model.Attrs {
	out := make(model.Attrs, len(attrs))
	for k, v := range attrs {
		if esClaveID(k) || !vacio(v) {
			out[k] = v
		}
	}
	return out
}

func vacio(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return true
		}
		if rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.String {
			return rv.Elem().String() == ""
		}
	}
	return false
}

// AttrsFrom converts a JSON-tagged struct into Attrs.
func AttrsFrom(v any) (model.Attrs, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("attrs: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var attrs model.Attrs
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("attrs: %w", err)
	}
	return attrs, nil
}
