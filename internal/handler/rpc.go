package handler

import (
	"net/http"

	"github.com/Jottaaa12/pdv-web-admin/internal/dto"

	"github.com/gin-gonic/gin"
)

// RPCHandler exposes the ledger procedures under /v1/rpc with the same request
// and response shapes the dashboard client calls. Each procedure delegates to
// the REST handler that owns the service.
type RPCHandler struct {
	auth      *AuthHandler
	users     *UsersHandler
	dashboard *DashboardHandler
	inventory *InventoryHandler
	customers *CustomersHandler
}

func NewRPCHandler(auth *AuthHandler, users *UsersHandler, dashboard *DashboardHandler, inventory *InventoryHandler, customers *CustomersHandler) *RPCHandler {
	return &RPCHandler{auth: auth, users: users, dashboard: dashboard, inventory: inventory, customers: customers}
}

// Login godoc
// @Summary login procedure
// @Tags rpc
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/rpc/login [post]
func (h *RPCHandler) Login(c *gin.Context) { h.auth.Login(c) }

// GetDashboardKPIs godoc
// @Summary get_dashboard_kpis procedure
// @Tags rpc
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardKPIs
// @Router /v1/rpc/get_dashboard_kpis [post]
func (h *RPCHandler) GetDashboardKPIs(c *gin.Context) { h.dashboard.KPIs(c) }

// AdjustInventoryItem godoc
// @Summary adjust_inventory_item procedure
// @Tags rpc
// @Accept json
// @Security BearerAuth
// @Param body body dto.AdjustInventoryRequest true "Adjustment"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/rpc/adjust_inventory_item [post]
func (h *RPCHandler) AdjustInventoryItem(c *gin.Context) {
	var req dto.AdjustInventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, err := h.inventory.adjust(c, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyCreditPayment godoc
// @Summary apply_credit_payment procedure
// @Tags rpc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ApplyCreditPaymentRequest true "Payment"
// @Success 201 {object} dto.CreditPaymentResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/rpc/apply_credit_payment [post]
func (h *RPCHandler) ApplyCreditPayment(c *gin.Context) { h.customers.ApplyPayment(c) }

// UpsertUser godoc
// @Summary upsert_user procedure
// @Tags rpc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpsertUserRequest true "User"
// @Success 200 {object} dto.UserProfile
// @Failure 409 {object} apierror.APIError
// @Router /v1/rpc/upsert_user [post]
func (h *RPCHandler) UpsertUser(c *gin.Context) { h.users.Upsert(c) }
