package repository

import (
	"context"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryMovementFilter defines filters for listing inventory movements.
type InventoryMovementFilter struct {
	ItemID *uuid.UUID
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
}

type InventoryRepository interface {
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindItemForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error)
	UpdateItemQuantityTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity money.Quantity) error
	ListItems(ctx context.Context, groupID *uuid.UUID) ([]model.InventoryItem, error)
	ListBelowMinimum(ctx context.Context) ([]model.InventoryItem, error)

	CreateMovementTx(ctx context.Context, tx *gorm.DB, m *model.InventoryMovement) error
	// ListMovements returns movements newest first, at most filter.Limit rows.
	ListMovements(ctx context.Context, filter InventoryMovementFilter) ([]model.InventoryMovement, error)

	CreateGroup(ctx context.Context, g *model.InventoryGroup) error
	ListGroups(ctx context.Context) ([]model.InventoryGroup, error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error {
	return Translate(conn(ctx, r.db, tx).Omit("Group").Create(item).Error, "inventory item")
}

func (r *inventoryRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).Preload("Group").First(&item, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "inventory item")
	}
	return &item, nil
}

func (r *inventoryRepo) FindItemForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := conn(ctx, r.db, tx).Clauses(forUpdate).First(&item, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "inventory item")
	}
	return &item, nil
}

func (r *inventoryRepo) UpdateItemQuantityTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity money.Quantity) error {
	return Translate(conn(ctx, r.db, tx).Model(&model.InventoryItem{}).Where("id = ?", id).
		Updates(map[string]any{"current_quantity": quantity, "updated_at": time.Now()}).Error, "inventory item")
}

func (r *inventoryRepo) ListItems(ctx context.Context, groupID *uuid.UUID) ([]model.InventoryItem, error) {
	q := r.db.WithContext(ctx).Preload("Group").Order("name ASC")
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	var items []model.InventoryItem
	err := q.Find(&items).Error
	return items, Translate(err, "inventory item")
}

func (r *inventoryRepo) ListBelowMinimum(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("current_quantity < minimum_quantity").
		Order("name ASC").
		Find(&items).Error
	return items, Translate(err, "inventory item")
}

func (r *inventoryRepo) CreateMovementTx(ctx context.Context, tx *gorm.DB, m *model.InventoryMovement) error {
	return Translate(conn(ctx, r.db, tx).Omit("Item").Create(m).Error, "inventory movement")
}

func (r *inventoryRepo) ListMovements(ctx context.Context, filter InventoryMovementFilter) ([]model.InventoryMovement, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{}).Preload("Item")
	if filter.ItemID != nil {
		q = q.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}

	var movements []model.InventoryMovement
	err := q.Order("created_at DESC, id DESC").Limit(filter.Limit).Find(&movements).Error
	return movements, Translate(err, "inventory movement")
}

func (r *inventoryRepo) CreateGroup(ctx context.Context, g *model.InventoryGroup) error {
	return Translate(r.db.WithContext(ctx).Create(g).Error, "inventory group")
}

func (r *inventoryRepo) ListGroups(ctx context.Context) ([]model.InventoryGroup, error) {
	var groups []model.InventoryGroup
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	return groups, Translate(err, "inventory group")
}
