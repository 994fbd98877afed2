package model

import (
	"encoding/json"
	"time"
)

// Usuario is the identity held by the terminal session.
// It only changes through an explicit login or logout.
type Usuario struct {
	ID       string   `json:"id_usuario"`
	Nombre   string   `json:"nombre"`
	Apellido string   `json:"apellido,omitempty"`
	Correo   string   `json:"correo"`
	Rol      Rol      `json:"rol"`
	Permisos Permisos `json:"permisos"`
}

// UnmarshalJSON resolves the id from whichever key the backend used
// (id_usuario, _id or id).
func (u *Usuario) UnmarshalJSON(b []byte) error {
	type alias Usuario
	var raw struct {
		alias
		MongoID string `json:"_id"`
		PlainID string `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = Usuario(raw.alias)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	if u.ID == "" {
		u.ID = raw.PlainID
	}
	if u.Permisos == nil {
		u.Permisos = Permisos{}
	}
	return nil
}

// SesionGuardada is the durable form of an authenticated terminal session.
type SesionGuardada struct {
	TerminalID string    `json:"terminal_id" gorm:"primaryKey;type:varchar(64)"`
	Token      string    `json:"token"       gorm:"not null"`
	Usuario    []byte    `json:"usuario"     gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (SesionGuardada) TableName() string { return "sesiones_terminal" }
