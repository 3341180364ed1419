package repository

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository covers product groups and accepted payment methods.
type CatalogRepository interface {
	CreateGroup(ctx context.Context, g *model.ProductGroup) error
	ListGroups(ctx context.Context) ([]model.ProductGroup, error)
	FindGroupByID(ctx context.Context, id uuid.UUID) (*model.ProductGroup, error)
	FindGroupByName(ctx context.Context, name string) (*model.ProductGroup, error)
	UpdateGroup(ctx context.Context, g *model.ProductGroup) error

	CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
	// FindActivePaymentMethods returns the active methods among names.
	FindActivePaymentMethods(ctx context.Context, tx *gorm.DB, names []string) ([]model.PaymentMethod, error)
	SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) CreateGroup(ctx context.Context, g *model.ProductGroup) error {
	return Translate(r.db.WithContext(ctx).Create(g).Error, "product group")
}

func (r *catalogRepo) ListGroups(ctx context.Context) ([]model.ProductGroup, error) {
	var list []model.ProductGroup
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, Translate(err, "product group")
}

func (r *catalogRepo) FindGroupByID(ctx context.Context, id uuid.UUID) (*model.ProductGroup, error) {
	var g model.ProductGroup
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "product group")
	}
	return &g, nil
}

func (r *catalogRepo) FindGroupByName(ctx context.Context, name string) (*model.ProductGroup, error) {
	var g model.ProductGroup
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&g).Error; err != nil {
		return nil, Translate(err, "product group")
	}
	return &g, nil
}

func (r *catalogRepo) UpdateGroup(ctx context.Context, g *model.ProductGroup) error {
	return Translate(r.db.WithContext(ctx).Save(g).Error, "product group")
}

func (r *catalogRepo) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return Translate(r.db.WithContext(ctx).Create(m).Error, "payment method")
}

func (r *catalogRepo) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var list []model.PaymentMethod
	q := r.db.WithContext(ctx).Order("name asc")
	if activeOnly {
		q = q.Where("active = true")
	}
	err := q.Find(&list).Error
	return list, Translate(err, "payment method")
}

func (r *catalogRepo) FindActivePaymentMethods(ctx context.Context, tx *gorm.DB, names []string) ([]model.PaymentMethod, error) {
	var list []model.PaymentMethod
	err := conn(ctx, r.db, tx).Where("name IN ? AND active = true", names).Find(&list).Error
	return list, Translate(err, "payment method")
}

func (r *catalogRepo) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.PaymentMethod{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return Translate(res.Error, "payment method")
	}
	if res.RowsAffected == 0 {
		return Translate(gorm.ErrRecordNotFound, "payment method")
	}
	return nil
}
