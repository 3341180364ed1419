package infra

// pdf.go renders the closing report of a cash session with go-pdf/fpdf:
// store header, session window, per-type movement totals, the movement list
// and the expected / counted / difference block. The file is written to
// storagePath/session_<id>.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/go-pdf/fpdf"
)

var movementLabels = map[string]string{
	model.MovementSupply:     "Supply",
	model.MovementWithdrawal: "Withdrawal",
	model.MovementSaleCashIn: "Sale (cash)",
}

// GenerateSessionReportPDF writes the closing report of a closed session and
// returns its path.
func GenerateSessionReportPDF(storeName string, session *model.CashSession, movements []model.CashMovement, loc *time.Location, storagePath string) (string, error) {
	if session.IsOpen() {
		return "", fmt.Errorf("pdf: session %s is still open", session.ID)
	}
	if loc == nil {
		loc = time.UTC
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("session_%s.pdf", session.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Cash session closing report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Session: "+session.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Opened: "+session.OpenTime.In(loc).Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if session.CloseTime != nil {
		pdf.CellFormat(contentW, 5, "Closed: "+session.CloseTime.In(loc).Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Movements ─────────────────────────────────────────────────────────────
	colTime := contentW * 0.18
	colType := contentW * 0.22
	colReason := contentW * 0.38
	colAmount := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colTime, 6, "Time", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colType, 6, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colReason, 6, "Reason", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 6, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	totals := map[string]money.Money{}
	for _, m := range movements {
		totals[m.Type] = totals[m.Type].Add(m.Amount)
		reason := ""
		if m.Reason != nil {
			reason = *m.Reason
		}
		if len(reason) > 40 {
			reason = reason[:39] + "..."
		}
		pdf.CellFormat(colTime, 5, m.CreatedAt.In(loc).Format("15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colType, 5, movementLabels[m.Type], "", 0, "L", false, 0, "")
		pdf.CellFormat(colReason, 5, reason, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 5, brl(m.Signed()), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := contentW - colAmount
	row := func(label string, v money.Money) {
		pdf.CellFormat(labelW, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 5, brl(v), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	row("Initial amount", session.InitialAmount)
	row("Supplies", totals[model.MovementSupply])
	row("Withdrawals", totals[model.MovementWithdrawal].Neg())
	row("Cash sales", totals[model.MovementSaleCashIn])

	pdf.SetFont("Helvetica", "B", 10)
	if session.ExpectedAmount != nil {
		row("Expected", *session.ExpectedAmount)
	}
	if session.FinalAmount != nil {
		row("Counted", *session.FinalAmount)
	}
	if session.Difference != nil {
		level := ""
		if session.DeviationLevel != nil {
			level = " (" + *session.DeviationLevel + ")"
		}
		row("Difference"+level, *session.Difference)
	}
	if session.Notes != nil && *session.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, "Notes: "+*session.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func brl(m money.Money) string {
	if m.IsNegative() {
		return "-R$ " + m.Abs().String()
	}
	return "R$ " + m.String()
}
