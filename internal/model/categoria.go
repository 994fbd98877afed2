package model

import "github.com/shopspring/decimal"

// Categoria groups dishes on the menu.
type Categoria struct {
	ID          string `json:"id_categoria"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

func (c Categoria) RecursoID() string { return c.ID }

// Plato is a dish on the menu. Precio is the live catalog price.
type Plato struct {
	ID          string          `json:"id_plato"`
	Nombre      string          `json:"nombre"`
	Descripcion string          `json:"descripcion,omitempty"`
	Precio      decimal.Decimal `json:"precio"`
	Disponible  bool            `json:"disponible"`
	CategoriaID string          `json:"id_categoria,omitempty"`
	Categoria   *Categoria      `json:"categoria,omitempty"`
}

func (p Plato) RecursoID() string { return p.ID }
