package handler

import (
	"net/http"

	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomersHandler struct {
	customers service.CustomerService
	credit    service.CreditService
}

func NewCustomersHandler(customers service.CustomerService, credit service.CreditService) *CustomersHandler {
	return &CustomersHandler{customers: customers, credit: credit}
}

func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.customers.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.customers.Update(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetBlocked godoc
// @Summary Block or unblock a customer's credit purchases
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param body body dto.BlockCustomerRequest true "Blocked flag"
// @Success 200 {object} dto.CustomerResponse
// @Router /v1/customers/{id}/block [patch]
func (h *CustomersHandler) SetBlocked(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.BlockCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.customers.SetBlocked(c.Request.Context(), middleware.CurrentUserID(c), id, req.Blocked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.customers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) List(c *gin.Context) {
	resp, err := h.customers.List(c.Request.Context(), repository.CustomerFilter{
		Search: c.Query("search"), Page: pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Credit ────────────────────────────────────────────────────────────────────

// Balance godoc
// @Summary Outstanding credit balance of a customer
// @Tags credit
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/customers/{id}/balance [get]
func (h *CustomersHandler) Balance(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.credit.CurrentBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyPayment godoc
// @Summary Apply a payment against a customer's credit sales
// @Description The amount is allocated to outstanding sales oldest first. Amounts above the balance are rejected.
// @Tags credit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ApplyCreditPaymentRequest true "Payment"
// @Success 201 {object} dto.CreditPaymentResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/credit/payments [post]
func (h *CustomersHandler) ApplyPayment(c *gin.Context) {
	var req dto.ApplyCreditPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := middleware.CurrentUserID(c)
	resp, err := h.credit.ApplyPayment(c.Request.Context(), &actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) Payments(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.credit.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Debtors lists customers with an outstanding balance, largest first.
func (h *CustomersHandler) Debtors(c *gin.Context) {
	resp, err := h.credit.ListDebtors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
