package worker

// email_worker.go
// Renders the receipt PDF and mails it to the customer.

import (
	"context"
	"encoding/json"
	"fmt"

	"pixelfood/internal/infra"
	"pixelfood/internal/model"

	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibos.
type ReciboJobPayload struct {
	Correo string       `json:"correo"`
	Recibo model.Recibo `json:"recibo"`
}

// Sender delivers one message with an optional attachment. *infra.Mailer
// satisfies it.
type Sender interface {
	Configured() bool
	SendRecibo(to, subject, body, pdfPath string) error
}

// PDFRenderer writes the receipt to storagePath and returns the file path.
type PDFRenderer func(recibo *model.Recibo, businessName, storagePath string) (string, error)

// EmailWorker processes receipt jobs from QueueRecibos.
type EmailWorker struct {
	mailer       Sender
	render       PDFRenderer
	businessName string
	storagePath  string
}

func NewEmailWorker(mailer Sender, businessName, storagePath string) *EmailWorker {
	return &EmailWorker{
		mailer:       mailer,
		render:       infra.GenerateReciboPDF,
		businessName: businessName,
		storagePath:  storagePath,
	}
}

// Process renders the PDF and sends it. A transient SMTP failure returns an
// error so the pool retries; bad payloads are not retried.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %v: %w", err, ErrSinReintento)
	}
	if payload.Correo == "" {
		return fmt.Errorf("email_worker: empty correo: %w", ErrSinReintento)
	}
	if !w.mailer.Configured() {
		return fmt.Errorf("email_worker: SMTP not configured: %w", ErrSinReintento)
	}

	pdfPath, err := w.render(&payload.Recibo, w.businessName, w.storagePath)
	if err != nil {
		return fmt.Errorf("email_worker: render PDF: %w", err)
	}

	subject := fmt.Sprintf("%s — Recibo %s", w.businessName, payload.Recibo.Numero)
	body := fmt.Sprintf("Adjunto encontrarás tu comprobante de pago.\nPedido: %s\nTotal: $%s",
		payload.Recibo.PedidoID, payload.Recibo.Total.StringFixed(2))

	if err := w.mailer.SendRecibo(payload.Correo, subject, body, pdfPath); err != nil {
		return fmt.Errorf("email_worker: send: %w", err)
	}
	log.Info().Str("to", payload.Correo).Str("numero", payload.Recibo.Numero).Msg("email_worker: recibo sent successfully")
	return nil
}
