package handler

import (
	"net/http"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type CashHandler struct {
	svc service.CashService
	loc *time.Location
}

func NewCashHandler(svc service.CashService, loc *time.Location) *CashHandler {
	return &CashHandler{svc: svc, loc: loc}
}

// Open godoc
// @Summary Open a cash session for the authenticated user
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening float"
// @Success 201 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash-sessions [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordMovement godoc
// @Summary Record a supply or withdrawal in an open session
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.CashMovementRequest true "Movement"
// @Success 201 {object} dto.CashMovementResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash-sessions/{id}/movements [post]
func (h *CashHandler) RecordMovement(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Close a session with the counted drawer amount
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.CloseSessionRequest true "Counted amount"
// @Success 200 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash-sessions/{id}/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active godoc
// @Summary The authenticated user's open session
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CashSessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash-sessions/active [get]
func (h *CashHandler) Active(c *gin.Context) {
	resp, err := h.svc.GetActive(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Session report with movement totals
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.CashSessionReport
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash-sessions/{id} [get]
func (h *CashHandler) Report(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History lists sessions, newest first.
func (h *CashHandler) History(c *gin.Context) {
	userID, ok := uuidQuery(c, "user_id")
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
	status := c.Query("status")
	if status != "" && status != model.SessionOpen && status != model.SessionClosed {
		respondError(c, apierror.Validation("status must be open or closed"))
		return
	}
	resp, err := h.svc.ListSessions(c.Request.Context(), repository.CashSessionFilter{
		UserID: userID, Status: status, From: from, To: to, Page: pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
