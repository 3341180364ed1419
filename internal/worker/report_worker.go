package worker

// report_worker.go processes QueueReports: renders the closing report PDF of
// a cash session and, when a report address is configured, mails it.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SessionReportPayload struct {
	SessionID string `json:"session_id"`
}

// SessionFinder loads a session with its movements.
type SessionFinder interface {
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
}

type ReportWorkerConfig struct {
	StoreName   string
	Location    *time.Location
	StoragePath string
	ReportEmail string // empty: only render
}

type ReportWorker struct {
	sessions   SessionFinder
	dispatcher *Dispatcher
	cfg        ReportWorkerConfig
}

func NewReportWorker(sessions SessionFinder, dispatcher *Dispatcher, cfg ReportWorkerConfig) *ReportWorker {
	return &ReportWorker{sessions: sessions, dispatcher: dispatcher, cfg: cfg}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SessionReportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(err)
	}
	id, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return Permanent(fmt.Errorf("report_worker: invalid session_id %q", payload.SessionID))
	}

	session, err := w.sessions.FindSessionByID(ctx, id)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return Permanent(err)
		}
		return err
	}
	path, err := infra.GenerateSessionReportPDF(w.cfg.StoreName, session, session.Movements, w.cfg.Location, w.cfg.StoragePath)
	if err != nil {
		return Permanent(err)
	}
	log.Info().Str("session_id", payload.SessionID).Str("path", path).Msg("report_worker: session report rendered")

	if w.cfg.ReportEmail == "" || w.dispatcher == nil {
		return nil
	}
	return w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail:    w.cfg.ReportEmail,
		Subject:    fmt.Sprintf("%s: cash session closed", w.cfg.StoreName),
		Body:       sessionSummary(session),
		AttachPath: path,
	})
}

func sessionSummary(s *model.CashSession) string {
	body := fmt.Sprintf("Session %s\nInitial amount: %s\n", s.ID, s.InitialAmount)
	if s.ExpectedAmount != nil && s.FinalAmount != nil && s.Difference != nil {
		body += fmt.Sprintf("Expected: %s\nCounted: %s\nDifference: %s\n", *s.ExpectedAmount, *s.FinalAmount, *s.Difference)
	}
	if s.DeviationLevel != nil {
		body += "Deviation: " + *s.DeviationLevel + "\n"
	}
	return body
}
