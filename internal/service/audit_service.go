package service

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions written by the services.
const (
	ActionLogin               = "login"
	ActionCreateUser          = "create_user"
	ActionUpdateUser          = "update_user"
	ActionOpenSession         = "open_session"
	ActionCashMovement        = "cash_movement"
	ActionCloseSession        = "close_session"
	ActionCreateSale          = "create_sale"
	ActionCreditPayment       = "credit_payment"
	ActionInventoryAdjust     = "inventory_adjust"
	ActionCreateInventoryItem = "create_inventory_item"
	ActionCreateCustomer      = "create_customer"
	ActionUpdateCustomer      = "update_customer"
	ActionCreateProduct       = "create_product"
	ActionUpdateProduct       = "update_product"
)

// AuditService appends to the audit log. Mutating services call Record as
// the last step of their transaction so the entry commits or rolls back with
// the change it describes.
type AuditService interface {
	Record(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, table, recordID string) error
	List(ctx context.Context, filter repository.AuditFilter) (*dto.Page[dto.AuditEntryResponse], error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action, table, recordID string) error {
	return s.repo.CreateTx(ctx, tx, &model.AuditLogEntry{
		UserID:   userID,
		Action:   action,
		Table:    table,
		RecordID: recordID,
	})
}

func (s *auditService) List(ctx context.Context, filter repository.AuditFilter) (*dto.Page[dto.AuditEntryResponse], error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:        e.ID.String(),
			UserID:    uuidString(e.UserID),
			Action:    e.Action,
			TableName: e.Table,
			RecordID:  e.RecordID,
			CreatedAt: e.CreatedAt,
		})
	}
	return &dto.Page[dto.AuditEntryResponse]{Data: out, Total: total, Page: pageOf(filter.Page), Limit: limitOf(filter.Page)}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseOptionalUUID(field string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validation("%s is not a valid id", field)
	}
	return &id, nil
}

func pageOf(p repository.Page) int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func limitOf(p repository.Page) int {
	switch {
	case p.Limit < 1:
		return 50
	case p.Limit > 500:
		return 500
	default:
		return p.Limit
	}
}
