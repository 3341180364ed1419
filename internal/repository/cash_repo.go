package repository

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CashSessionFilter selects sessions for the history listing.
type CashSessionFilter struct {
	UserID *uuid.UUID
	Status string
	From   *time.Time
	To     *time.Time
	Page
}

type CashRepository interface {
	CreateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindSessionForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	FindOpenSessionByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.CashSession, error)
	UpdateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error
	CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error
	SumMovementsByType(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]money.Money, error)
	ListSessions(ctx context.Context, filter CashSessionFilter) ([]model.CashSession, int64, error)
	DB() *gorm.DB
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) DB() *gorm.DB { return r.db }

func (r *cashRepo) CreateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	return Translate(conn(ctx, r.db, tx).Create(s).Error, "cash session")
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, Translate(err, "cash session")
	}
	return &s, nil
}

func (r *cashRepo) FindSessionForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	if err := conn(ctx, r.db, tx).Clauses(forUpdate).First(&s, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "cash session")
	}
	return &s, nil
}

func (r *cashRepo) FindOpenSessionByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := conn(ctx, r.db, tx).
		Where("user_id = ? AND status = ?", userID, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, Translate(err, "open cash session")
	}
	return &s, nil
}

func (r *cashRepo) UpdateSession(ctx context.Context, tx *gorm.DB, s *model.CashSession) error {
	// Omit associations: movements are append-only and never rewritten here.
	return Translate(conn(ctx, r.db, tx).Omit("Movements").Save(s).Error, "cash session")
}

func (r *cashRepo) CreateMovement(ctx context.Context, tx *gorm.DB, m *model.CashMovement) error {
	return Translate(conn(ctx, r.db, tx).Create(m).Error, "cash movement")
}

func (r *cashRepo) SumMovementsByType(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (map[string]money.Money, error) {
	var rows []struct {
		Type  string
		Total money.Money
	}
	err := conn(ctx, r.db, tx).Model(&model.CashMovement{}).
		Select("type, COALESCE(SUM(amount), 0)::bigint AS total").
		Where("cash_session_id = ?", sessionID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, Translate(err, "cash movement")
	}
	sums := make(map[string]money.Money, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Total
	}
	return sums, nil
}

func (r *cashRepo) ListSessions(ctx context.Context, filter CashSessionFilter) ([]model.CashSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("open_time >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("open_time < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Translate(err, "cash session")
	}

	offset, limit := filter.normalize()
	var sessions []model.CashSession
	err := q.Order("open_time DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, Translate(err, "cash session")
}
