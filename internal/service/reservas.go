package service

import (
	"context"
	"errors"

	"pixelfood/internal/dto"
	"pixelfood/internal/guard"
	"pixelfood/internal/model"
)

var (
	ErrClienteRequerido = errors.New("debes seleccionar un cliente")
	ErrCamposReserva    = errors.New("todos los campos son obligatorios")
	ErrMesaNoDisponible = errors.New("la mesa no esta disponible")
	ErrMesaNoEncontrada = errors.New("mesa no encontrada")
)

// CrearReserva books a free table for the current user. Administrators book
// on behalf of the client given in req.UsuarioID. The party size is the
// table capacity.
func (c *Catalogo) CrearReserva(ctx context.Context, req dto.CrearReservaRequest) error {
	u := c.users.Usuario()
	if err := guard.Check(u, guard.Recursos[model.KindReservas].Crear); err != nil {
		return err
	}

	usuarioID := u.ID
	if u.Rol.Is(model.RolAdministrador) {
		usuarioID = req.UsuarioID
		if usuarioID == "" {
			return ErrClienteRequerido
		}
	}
	if err := dto.Validate.Struct(req); err != nil {
		return ErrCamposReserva
	}

	mesas, err := c.Mesas.List(ctx)
	if err != nil {
		return err
	}
	var mesa *model.Mesa
	for i := range mesas {
		if mesas[i].ID == req.MesaID {
			mesa = &mesas[i]
			break
		}
	}
	if mesa == nil {
		return ErrMesaNoEncontrada
	}
	if !mesa.Libre() {
		return ErrMesaNoDisponible
	}

	return c.Reservas.Create(ctx, model.Attrs{
		"id_usuario":      usuarioID,
		"id_mesa":         mesa.ID,
		"id_sucursal":     req.SucursalID,
		"fecha_reserva":   req.FechaReserva,
		"hora":            req.Hora,
		"numero_personas": mesa.Capacidad,
		"estado":          model.EstadoReservaConfirmada,
	})
}
