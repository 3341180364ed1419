package repository

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerFilter selects customers by name, phone or cpf fragment.
type CustomerFilter struct {
	Search string
	Page
}

type CustomerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Customer) error
	Update(ctx context.Context, tx *gorm.DB, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// FindForUpdate locks the customer row; every balance change serializes on it.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error)
	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Customer) error {
	return Translate(conn(ctx, r.db, tx).Create(c).Error, "customer")
}

func (r *customerRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Customer) error {
	return Translate(conn(ctx, r.db, tx).Save(c).Error, "customer")
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "customer")
	}
	return &c, nil
}

func (r *customerRepo) FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := conn(ctx, r.db, tx).Clauses(forUpdate).First(&c, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "customer")
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR phone ILIKE ? OR cpf ILIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Translate(err, "customer")
	}
	offset, limit := filter.normalize()
	var customers []model.Customer
	err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&customers).Error
	return customers, total, Translate(err, "customer")
}

// CreditRepository reads and settles the credit portion of sales.
type CreditRepository interface {
	// OutstandingBalance sums credit_amount - credit_paid over the customer's sales.
	OutstandingBalance(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (money.Money, error)
	// ListOutstandingForUpdate locks the customer's unpaid credit sales ordered
	// by sale date (oldest first unless newestFirst).
	ListOutstandingForUpdate(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, newestFirst bool) ([]model.Sale, error)
	AddCreditPaidTx(ctx context.Context, tx *gorm.DB, saleID uuid.UUID, amount money.Money) error
	CreatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.CreditPayment) error
	ListPayments(ctx context.Context, customerID uuid.UUID) ([]model.CreditPayment, error)
}

type creditRepo struct{ db *gorm.DB }

func NewCreditRepository(db *gorm.DB) CreditRepository { return &creditRepo{db: db} }

func (r *creditRepo) OutstandingBalance(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (money.Money, error) {
	var balance money.Money
	err := conn(ctx, r.db, tx).Model(&model.Sale{}).
		Select("COALESCE(SUM(credit_amount - credit_paid), 0)::bigint").
		Where("customer_id = ? AND training_mode = false", customerID).
		Scan(&balance).Error
	return balance, Translate(err, "customer balance")
}

func (r *creditRepo) ListOutstandingForUpdate(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, newestFirst bool) ([]model.Sale, error) {
	order := "sale_date ASC, number ASC"
	if newestFirst {
		order = "sale_date DESC, number DESC"
	}
	var sales []model.Sale
	err := conn(ctx, r.db, tx).Clauses(forUpdate).
		Where("customer_id = ? AND training_mode = false AND credit_amount > credit_paid", customerID).
		Order(order).
		Find(&sales).Error
	return sales, Translate(err, "sale")
}

func (r *creditRepo) AddCreditPaidTx(ctx context.Context, tx *gorm.DB, saleID uuid.UUID, amount money.Money) error {
	return Translate(conn(ctx, r.db, tx).Model(&model.Sale{}).Where("id = ?", saleID).
		Update("credit_paid", gorm.Expr("credit_paid + ?", amount)).Error, "sale")
}

func (r *creditRepo) CreatePaymentTx(ctx context.Context, tx *gorm.DB, p *model.CreditPayment) error {
	return Translate(conn(ctx, r.db, tx).Create(p).Error, "credit payment")
}

func (r *creditRepo) ListPayments(ctx context.Context, customerID uuid.UUID) ([]model.CreditPayment, error) {
	var payments []model.CreditPayment
	err := r.db.WithContext(ctx).Preload("Allocations").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, Translate(err, "credit payment")
}
