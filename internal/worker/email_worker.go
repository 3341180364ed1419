package worker

// email_worker.go processes QueueEmail: restock alerts and session reports
// sent over SMTP behind a circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	AttachPath string `json:"attach_path,omitempty"`
}

// Sender delivers one message. *infra.Mailer implements it.
type Sender interface {
	Send(to, subject, body, attachPath string) error
}

type EmailWorker struct {
	mailer Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends the message. Malformed payloads fail permanently; SMTP
// errors and an open breaker are retried.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(err)
	}
	if payload.ToEmail == "" {
		return Permanent(errors.New("email_worker: empty to_email"))
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachPath)
	})
	if err != nil {
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
