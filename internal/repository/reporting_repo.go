package repository

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SalesTotals aggregates non-training sales in a time window.
type SalesTotals struct {
	Count   int64       `db:"sales_count"`
	Revenue money.Money `db:"revenue"`
}

// DebtorRow is one customer with an outstanding credit balance.
type DebtorRow struct {
	ID      uuid.UUID   `db:"id"`
	Name    string      `db:"name"`
	Phone   *string     `db:"phone"`
	Balance money.Money `db:"balance"`
}

// ReportingRepository runs read-only aggregate queries. It may point at a read
// replica, so results can lag the primary slightly.
type ReportingRepository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)
	Debtors(ctx context.Context) ([]DebtorRow, error)
}

type reportingRepo struct{ db *sqlx.DB }

func NewReportingRepository(db *sqlx.DB) ReportingRepository { return &reportingRepo{db: db} }

const salesTotalsQuery = `
SELECT COUNT(*) AS sales_count, COALESCE(SUM(total_amount), 0)::bigint AS revenue
FROM sales
WHERE training_mode = false AND sale_date >= $1 AND sale_date < $2`

func (r *reportingRepo) SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error) {
	var totals SalesTotals
	err := r.db.GetContext(ctx, &totals, salesTotalsQuery, from, to)
	return totals, Translate(err, "sales totals")
}

const debtorsQuery = `
SELECT c.id, c.name, c.phone, SUM(s.credit_amount - s.credit_paid)::bigint AS balance
FROM customers c
JOIN sales s ON s.customer_id = c.id AND s.training_mode = false
GROUP BY c.id, c.name, c.phone
HAVING SUM(s.credit_amount - s.credit_paid) > 0
ORDER BY balance DESC, c.name ASC`

func (r *reportingRepo) Debtors(ctx context.Context) ([]DebtorRow, error) {
	rows := []DebtorRow{}
	err := r.db.SelectContext(ctx, &rows, debtorsQuery)
	return rows, Translate(err, "debtor")
}
