package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	svc service.InventoryService
	loc *time.Location
}

func NewInventoryHandler(svc service.InventoryService, loc *time.Location) *InventoryHandler {
	return &InventoryHandler{svc: svc, loc: loc}
}

// adjust is shared by the REST route and the RPC endpoint.
func (h *InventoryHandler) adjust(c *gin.Context, req dto.AdjustInventoryRequest) (*dto.InventoryMovementResponse, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apierror.Validation("item_id must be a uuid")
	}
	// Operators always act as themselves; a manager may record a movement
	// on behalf of another user.
	userID := middleware.CurrentUserID(c)
	if req.UserID != nil {
		actor, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, apierror.Validation("user_id must be a uuid")
		}
		if actor != userID && middleware.GetClaims(c).Role != model.RoleManager {
			return nil, apierror.Forbidden("only managers may record movements for another user")
		}
		userID = actor
	}
	return h.svc.Adjust(c.Request.Context(), itemID, userID, req.MovementType, req.Quantity, req.Reason)
}

// Adjust godoc
// @Summary Record an inventory movement
// @Description An out movement larger than the current quantity is rejected and nothing changes.
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AdjustInventoryRequest true "Adjustment"
// @Success 201 {object} dto.InventoryMovementResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.adjust(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Movements godoc
// @Summary Inventory movements, newest first
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param item_id query string false "Item filter"
// @Param type query string false "in | out"
// @Param from query string false "From"
// @Param to query string false "To"
// @Param limit query int false "Max rows (default 50, max 500)"
// @Success 200 {array} dto.InventoryMovementResponse
// @Router /v1/inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	itemID, ok := uuidQuery(c, "item_id")
	if !ok {
		return
	}
	from, ok := timeQuery(c, "from", h.loc)
	if !ok {
		return
	}
	to, ok := timeQuery(c, "to", h.loc)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.ListMovements(c.Request.Context(), repository.InventoryMovementFilter{
		ItemID: itemID, Type: c.Query("type"), From: from, To: to, Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alerts godoc
// @Summary Items below their minimum quantity
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.InventoryItemResponse
// @Router /v1/inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.ListItemsBelowMinimum(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Items and groups ──────────────────────────────────────────────────────────

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req dto.InventoryItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateItem(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	groupID, ok := uuidQuery(c, "group_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListItems(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) CreateGroup(c *gin.Context) {
	var req dto.InventoryGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateGroup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventoryHandler) ListGroups(c *gin.Context) {
	resp, err := h.svc.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
