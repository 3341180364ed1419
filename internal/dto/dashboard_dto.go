package dto

import (
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/money"
)

// DashboardKPIs covers today's non-training sales in the store timezone.
type DashboardKPIs struct {
	TotalRevenue    money.Money `json:"total_revenue"`
	TotalSalesCount int64       `json:"total_sales_count"`
	AverageTicket   money.Money `json:"average_ticket"`
	Date            string      `json:"date"` // YYYY-MM-DD in the store timezone
}

type AuditEntryResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    string    `json:"action"`
	TableName string    `json:"table_name"`
	RecordID  string    `json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
}
