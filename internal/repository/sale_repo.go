package repository

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter selects sales for listing. Training sales are excluded unless
// IncludeTraining is set.
type SaleFilter struct {
	CashSessionID   *uuid.UUID
	CustomerID      *uuid.UUID
	From            *time.Time
	To              *time.Time
	IncludeTraining bool
	Page
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByClientRef(ctx context.Context, tx *gorm.DB, ref string) (*model.Sale, error)
	NextNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

// Create inserts the sale together with its items and payments.
func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return Translate(conn(ctx, r.db, tx).Omit("Customer", "Items.Product").Create(s).Error, "sale")
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Payments").
		Preload("Customer").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, Translate(err, "sale")
	}
	return &s, nil
}

func (r *saleRepo) FindByClientRef(ctx context.Context, tx *gorm.DB, ref string) (*model.Sale, error) {
	var s model.Sale
	err := conn(ctx, r.db, tx).Preload("Items").Preload("Payments").
		Where("client_ref = ?", ref).First(&s).Error
	if err != nil {
		return nil, Translate(err, "sale")
	}
	return &s, nil
}

func (r *saleRepo) NextNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	// Sequence keeps numbers unique across terminals without locking
	var num int64
	err := conn(ctx, r.db, tx).Raw("SELECT nextval('sale_number_seq')").Scan(&num).Error
	return num, Translate(err, "sale number")
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if !filter.IncludeTraining {
		q = q.Where("training_mode = false")
	}
	if filter.CashSessionID != nil {
		q = q.Where("cash_session_id = ?", *filter.CashSessionID)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		q = q.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("sale_date < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Translate(err, "sale")
	}

	offset, limit := filter.normalize()
	var sales []model.Sale
	err := q.Preload("Items").Preload("Payments").
		Order("sale_date DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error
	return sales, total, Translate(err, "sale")
}
