package dto

import (
	"pixelfood/internal/guard"
	"pixelfood/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest is both the local request body and the backend credential.
type LoginRequest struct {
	Correo     string `json:"correo"     validate:"required,min=3"`
	Contrasena string `json:"contrasena" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// LoginResponse is the backend answer to POST /auth/login.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	Usuario     model.Usuario `json:"usuario"`
}

// SesionResponse describes the terminal session to the UI.
type SesionResponse struct {
	Estado    string          `json:"estado"`
	Usuario   *model.Usuario  `json:"usuario"`
	Secciones []guard.Seccion `json:"secciones"`
}
