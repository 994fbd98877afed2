package model

import (
	"encoding/json"
	"strings"
)

// Rol is the closed set of roles known to the backend.
// Comparison is always case-insensitive: the backend has returned both
// "ADMINISTRADOR" and "Administrador" for the same role.
type Rol string

const (
	RolAdministrador Rol = "ADMINISTRADOR"
	RolEmpleado      Rol = "EMPLEADO"
	RolCliente       Rol = "CLIENTE"
)

// Roles lists every known role.
var Roles = []Rol{RolAdministrador, RolEmpleado, RolCliente}

// ParseRol normalizes a role name. Unknown names are returned upper-cased and
// reported with ok=false.
func ParseRol(s string) (Rol, bool) {
	norm := Rol(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range Roles {
		if r == norm {
			return r, true
		}
	}
	return norm, false
}

// Is compares two roles ignoring case.
func (r Rol) Is(other Rol) bool {
	return strings.EqualFold(string(r), string(other))
}

// UnmarshalJSON accepts a plain string or the `{ "nombre": ... }` object some
// backend endpoints embed instead.
func (r *Rol) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r, _ = ParseRol(s)
		return nil
	}
	var obj struct {
		Nombre string `json:"nombre"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r, _ = ParseRol(obj.Nombre)
	return nil
}
