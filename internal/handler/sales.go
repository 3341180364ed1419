package handler

import (
	"net/http"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc service.SaleService
	loc *time.Location
}

func NewSalesHandler(svc service.SaleService, loc *time.Location) *SalesHandler {
	return &SalesHandler{svc: svc, loc: loc}
}

// Create godoc
// @Summary Register a sale
// @Description Items, payments, stock decrements and the cash movement commit atomically. A repeated client_ref returns the sale already recorded.
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary A sale with its items and payments
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSaleWithItems(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List sales, newest first
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param cash_session_id query string false "Session filter"
// @Param customer_id query string false "Customer filter"
// @Param from query string false "From (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "To (RFC 3339 or YYYY-MM-DD)"
// @Param include_training query bool false "Include training-mode sales"
// @Success 200 {object} dto.Page[dto.SaleResponse]
// @Router /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	sessionID, ok := uuidQuery(c, "cash_session_id")
	if !ok {
		return
	}
	customerID, ok := uuidQuery(c, "customer_id")
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
	resp, err := h.svc.ListSales(c.Request.Context(), repository.SaleFilter{
		CashSessionID:   sessionID,
		CustomerID:      customerID,
		From:            from,
		To:              to,
		IncludeTraining: c.Query("include_training") == "true",
		Page:            pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
