package repository

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter selects catalog products.
type ProductFilter struct {
	Search  string // description contains, case-insensitive
	Barcode string
	GroupID *uuid.UUID
	Active  string // "true" (default) | "false" | "all"
	Page
}

// ProductRepository defines the data access contract for catalog products.
// Services depend on this interface, not on the GORM implementation.
type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Product) error
	Update(ctx context.Context, tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// FindManyForUpdate locks the given products in id order so concurrent
	// sales over overlapping carts cannot deadlock. Missing ids are simply
	// absent from the result.
	FindManyForUpdate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	// UpdateStockTx adds delta (negative to decrement) to the product stock.
	UpdateStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta money.Quantity) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return Translate(conn(ctx, r.db, tx).Omit("Group").Create(p).Error, "product")
}

func (r *productRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return Translate(conn(ctx, r.db, tx).Omit("Group").Save(p).Error, "product")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Group").First(&p, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ? AND active = true", barcode).First(&p).Error
	if err != nil {
		return nil, Translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.Barcode != "" {
		q = q.Where("barcode = ?", filter.Barcode)
	}
	if filter.Search != "" {
		q = q.Where("description ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.GroupID != nil {
		q = q.Where("group_id = ?", *filter.GroupID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Translate(err, "product")
	}

	offset, limit := filter.normalize()
	var products []model.Product
	err := q.Order("description ASC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, Translate(err, "product")
}

func (r *productRepo) FindManyForUpdate(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, Translate(err, "product")
}

func (r *productRepo) UpdateStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta money.Quantity) error {
	return Translate(conn(ctx, r.db, tx).Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error, "product")
}
