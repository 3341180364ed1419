package repository

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditFilter selects audit entries.
type AuditFilter struct {
	UserID *uuid.UUID
	Table  string
	Action string
	From   *time.Time
	To     *time.Time
	Page
}

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, e *model.AuditLogEntry) error
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLogEntry, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) CreateTx(ctx context.Context, tx *gorm.DB, e *model.AuditLogEntry) error {
	err := conn(ctx, r.db, tx).Create(e).Error
	if err == nil {
		return nil
	}
	if translated := Translate(err, "audit entry"); IsRetryable(translated) {
		return translated
	}
	// Appending never fails for business reasons; anything else is storage.
	return apierror.Storage("audit log unavailable", err)
}

func (r *auditRepo) List(ctx context.Context, filter AuditFilter) ([]model.AuditLogEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLogEntry{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Table != "" {
		q = q.Where("table_name = ?", filter.Table)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Translate(err, "audit entry")
	}
	offset, limit := filter.normalize()
	var entries []model.AuditLogEntry
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, Translate(err, "audit entry")
}
