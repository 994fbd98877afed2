package dto

// CrearReservaRequest books a table. UsuarioID is only honoured for
// administrators booking on behalf of a client.
type CrearReservaRequest struct {
	FechaReserva string `json:"fecha_reserva" validate:"required,datetime=2006-01-02"`
	Hora         string `json:"hora"          validate:"required,datetime=15:04"`
	MesaID       string `json:"id_mesa"       validate:"required"`
	SucursalID   string `json:"id_sucursal"   validate:"required"`
	UsuarioID    string `json:"id_usuario"`
}
