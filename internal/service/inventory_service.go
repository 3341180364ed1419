package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// InventoryService is the stock-room ledger. An item's current quantity
// always equals the signed sum of its movements.
type InventoryService interface {
	Adjust(ctx context.Context, itemID, userID uuid.UUID, movementType string, quantity money.Quantity, reason *string) (*dto.InventoryMovementResponse, error)
	ListMovements(ctx context.Context, filter repository.InventoryMovementFilter) ([]dto.InventoryMovementResponse, error)
	ListItemsBelowMinimum(ctx context.Context) ([]dto.InventoryItemResponse, error)

	CreateItem(ctx context.Context, userID uuid.UUID, req dto.InventoryItemRequest) (*dto.InventoryItemResponse, error)
	GetItem(ctx context.Context, id uuid.UUID) (*dto.InventoryItemResponse, error)
	ListItems(ctx context.Context, groupID *uuid.UUID) ([]dto.InventoryItemResponse, error)
	CreateGroup(ctx context.Context, req dto.InventoryGroupRequest) (*dto.InventoryGroupResponse, error)
	ListGroups(ctx context.Context) ([]dto.InventoryGroupResponse, error)
}

type inventoryService struct {
	repo       repository.InventoryRepository
	users      repository.UserRepository
	audit      AuditService
	dispatcher *worker.Dispatcher
	events     EventPublisher
	policy     TxPolicy
	alertEmail string
}

func NewInventoryService(
	repo repository.InventoryRepository,
	users repository.UserRepository,
	audit AuditService,
	dispatcher *worker.Dispatcher,
	events EventPublisher,
	policy TxPolicy,
	alertEmail string,
) InventoryService {
	return &inventoryService{
		repo:       repo,
		users:      users,
		audit:      audit,
		dispatcher: dispatcher,
		events:     events,
		policy:     policy,
		alertEmail: alertEmail,
	}
}

// ── Adjust ────────────────────────────────────────────────────────────────────
// Movement, quantity update and audit entry commit together under the item
// row lock. An out that would leave the item negative changes nothing.

func (s *inventoryService) Adjust(ctx context.Context, itemID, userID uuid.UUID, movementType string, quantity money.Quantity, reason *string) (*dto.InventoryMovementResponse, error) {
	if movementType != model.InventoryIn && movementType != model.InventoryOut {
		return nil, apierror.Validation("movement_type must be in or out")
	}
	if !quantity.IsPositive() {
		return nil, apierror.Validation("quantity must be greater than zero")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var (
		item *model.InventoryItem
		mov  model.InventoryMovement
	)
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		var err error
		item, err = s.repo.FindItemForUpdate(ctx, tx, itemID)
		if err != nil {
			return err
		}

		mov = model.InventoryMovement{
			ItemID:         itemID,
			Type:           movementType,
			Quantity:       quantity,
			QuantityBefore: item.CurrentQuantity,
			Reason:         reason,
			PerformedBy:    userID,
		}
		mov.QuantityAfter = item.CurrentQuantity.Add(mov.Signed())
		if mov.QuantityAfter.IsNegative() {
			return apierror.Conflict("insufficient stock: %s has %s %s, requested %s",
				item.Name, item.CurrentQuantity, item.UnitOfMeasure, quantity)
		}

		if err := s.repo.CreateMovementTx(ctx, tx, &mov); err != nil {
			return err
		}
		if err := s.repo.UpdateItemQuantityTx(ctx, tx, itemID, mov.QuantityAfter); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionInventoryAdjust, "inventory_items", itemID.String())
	})
	if err != nil {
		return nil, err
	}

	infra.InventoryAdjustmentsTotal.WithLabelValues(movementType).Inc()
	crossed := mov.QuantityBefore >= item.MinimumQuantity && mov.QuantityAfter < item.MinimumQuantity
	if crossed {
		enqueueEmail(ctx, s.dispatcher, s.alertEmail, worker.EmailJobPayload{
			Subject: fmt.Sprintf("Restock needed: %s (%s)", item.Name, item.Code),
			Body: fmt.Sprintf("%s dropped to %s %s, below the minimum of %s.",
				item.Name, mov.QuantityAfter, item.UnitOfMeasure, item.MinimumQuantity),
		})
	}

	item.CurrentQuantity = mov.QuantityAfter
	resp := inventoryMovementResponse(mov, item)
	publish(ctx, s.events, infra.EventInventoryAdjusted, itemID.String(), resp)
	return &resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter repository.InventoryMovementFilter) ([]dto.InventoryMovementResponse, error) {
	if filter.Type != "" && filter.Type != model.InventoryIn && filter.Type != model.InventoryOut {
		return nil, apierror.Validation("type must be in or out")
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultMovementLimit
	case filter.Limit > maxMovementLimit:
		filter.Limit = maxMovementLimit
	}
	movements, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, inventoryMovementResponse(m, m.Item))
	}
	return out, nil
}

func (s *inventoryService) ListItemsBelowMinimum(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	items, err := s.repo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	return inventoryItemResponses(items), nil
}

// ── Items & groups ────────────────────────────────────────────────────────────

// CreateItem records a non-zero initial quantity as an "in" movement.
func (s *inventoryService) CreateItem(ctx context.Context, userID uuid.UUID, req dto.InventoryItemRequest) (*dto.InventoryItemResponse, error) {
	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, apierror.Validation("name and code are required")
	}
	if req.InitialQuantity.IsNegative() || req.MinimumQuantity.IsNegative() {
		return nil, apierror.Validation("quantities must not be negative")
	}
	groupID, err := parseOptionalUUID("group_id", req.GroupID)
	if err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(req.UnitOfMeasure)
	if unit == "" {
		unit = "un"
	}

	item := model.InventoryItem{
		Name:            name,
		Code:            code,
		GroupID:         groupID,
		CurrentQuantity: req.InitialQuantity,
		MinimumQuantity: req.MinimumQuantity,
		UnitOfMeasure:   unit,
	}
	err = runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		if err := s.repo.CreateItem(ctx, tx, &item); err != nil {
			return err
		}
		if item.CurrentQuantity.IsPositive() {
			reason := "initial stock"
			if err := s.repo.CreateMovementTx(ctx, tx, &model.InventoryMovement{
				ItemID:        item.ID,
				Type:          model.InventoryIn,
				Quantity:      item.CurrentQuantity,
				QuantityAfter: item.CurrentQuantity,
				Reason:        &reason,
				PerformedBy:   userID,
			}); err != nil {
				return err
			}
		}
		return s.audit.Record(ctx, tx, &userID, ActionCreateInventoryItem, "inventory_items", item.ID.String())
	})
	if err != nil {
		return nil, err
	}
	resp := inventoryItemResponse(item)
	return &resp, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*dto.InventoryItemResponse, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := inventoryItemResponse(*item)
	return &resp, nil
}

func (s *inventoryService) ListItems(ctx context.Context, groupID *uuid.UUID) ([]dto.InventoryItemResponse, error) {
	items, err := s.repo.ListItems(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return inventoryItemResponses(items), nil
}

func (s *inventoryService) CreateGroup(ctx context.Context, req dto.InventoryGroupRequest) (*dto.InventoryGroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("name is required")
	}
	g := model.InventoryGroup{Name: name}
	if err := s.repo.CreateGroup(ctx, &g); err != nil {
		return nil, err
	}
	return &dto.InventoryGroupResponse{ID: g.ID.String(), Name: g.Name}, nil
}

func (s *inventoryService) ListGroups(ctx context.Context) ([]dto.InventoryGroupResponse, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.InventoryGroupResponse{ID: g.ID.String(), Name: g.Name})
	}
	return out, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func inventoryItemResponse(i model.InventoryItem) dto.InventoryItemResponse {
	resp := dto.InventoryItemResponse{
		ID:              i.ID.String(),
		Name:            i.Name,
		Code:            i.Code,
		GroupID:         uuidString(i.GroupID),
		CurrentQuantity: i.CurrentQuantity,
		MinimumQuantity: i.MinimumQuantity,
		UnitOfMeasure:   i.UnitOfMeasure,
		BelowMinimum:    i.BelowMinimum(),
	}
	if i.Group != nil {
		resp.GroupName = &i.Group.Name
	}
	return resp
}

func inventoryItemResponses(items []model.InventoryItem) []dto.InventoryItemResponse {
	out := make([]dto.InventoryItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, inventoryItemResponse(i))
	}
	return out
}

func inventoryMovementResponse(m model.InventoryMovement, item *model.InventoryItem) dto.InventoryMovementResponse {
	resp := dto.InventoryMovementResponse{
		ID:             m.ID.String(),
		ItemID:         m.ItemID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		PerformedBy:    m.PerformedBy.String(),
		CreatedAt:      m.CreatedAt,
	}
	if item != nil {
		resp.ItemName = item.Name
	}
	return resp
}
