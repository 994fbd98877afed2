// Package guard is the single authorization policy of the terminal.
//
// Allow is a pure function of the current user and a Policy. Every route,
// control and mutating action is gated through it; no other package compares
// roles or permission tags directly.
package guard

import (
	"errors"

	"pixelfood/internal/model"
)

// ErrDenegado is returned by operations refused locally by the guard. It is
// flow control: callers redirect or omit, they never show it as a message.
var ErrDenegado = errors.New("acceso denegado")

// Policy names the roles and/or permissions an action requires.
// An empty Roles or Permisos slice means "no requirement of that kind".
type Policy struct {
	Roles    []model.Rol
	Permisos []model.Permiso
}

// Roles builds a role-only policy.
func Roles(roles ...model.Rol) Policy { return Policy{Roles: roles} }

// Permisos builds a permission-only policy.
func Permisos(ps ...model.Permiso) Policy { return Policy{Permisos: ps} }

// And adds a role requirement to a permission requirement (or the other way
// round). Both sides may not carry permissions: Allow reads a permission list
// as "any of", so merging two lists would loosen either gate.
func (p Policy) And(other Policy) Policy {
	if len(p.Permisos) > 0 && len(other.Permisos) > 0 {
		panic("guard: And of two permission policies")
	}
	if len(p.Roles) > 0 && len(other.Roles) > 0 {
		panic("guard: And of two role policies")
	}
	return Policy{
		Roles:    append(append([]model.Rol(nil), p.Roles...), other.Roles...),
		Permisos: append(append([]model.Permiso(nil), p.Permisos...), other.Permisos...),
	}
}

// Allow decides access for u under p:
//   - no user: deny, whatever p says
//   - roles given: u's role must match one of them, ignoring case
//   - permisos given: u must hold at least one of them
//   - both given: both checks must pass
func Allow(u *model.Usuario, p Policy) bool {
	if u == nil {
		return false
	}
	if len(p.Roles) > 0 && !hasRole(u.Rol, p.Roles) {
		return false
	}
	if len(p.Permisos) > 0 && !u.Permisos.Any(p.Permisos...) {
		return false
	}
	return true
}

// Check is Allow returning ErrDenegado on denial.
func Check(u *model.Usuario, p Policy) error {
	if !Allow(u, p) {
		return ErrDenegado
	}
	return nil
}

func hasRole(r model.Rol, allowed []model.Rol) bool {
	for _, a := range allowed {
		if r.Is(a) {
			return true
		}
	}
	return false
}
