package handler

import (
	"net/http"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc   service.DashboardService
	audit service.AuditService
	loc   *time.Location
}

func NewDashboardHandler(svc service.DashboardService, audit service.AuditService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{svc: svc, audit: audit, loc: loc}
}

// KPIs godoc
// @Summary Today's revenue, sale count and average ticket
// @Description Training-mode sales are excluded. "Today" is the store timezone's calendar day.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardKPIs
// @Router /v1/dashboard/kpis [get]
func (h *DashboardHandler) KPIs(c *gin.Context) {
	resp, err := h.svc.KPIs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AuditLog godoc
// @Summary Audit entries, newest first
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Acting user"
// @Param table query string false "Table name"
// @Param action query string false "Action"
// @Success 200 {object} dto.Page[dto.AuditEntryResponse]
// @Router /v1/audit [get]
func (h *DashboardHandler) AuditLog(c *gin.Context) {
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
	resp, err := h.audit.List(c.Request.Context(), repository.AuditFilter{
		UserID: userID,
		Table:  c.Query("table"),
		Action: c.Query("action"),
		From:   from,
		To:     to,
		Page:   pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
