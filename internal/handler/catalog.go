package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/middleware"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// barcodeCacheTTL is short because the lookup also reports stock.
const barcodeCacheTTL = 30 * time.Second

type CatalogHandler struct {
	svc service.CatalogService
	rdb *redis.Client // optional barcode lookup cache
}

func NewCatalogHandler(svc service.CatalogService, rdb *redis.Client) *CatalogHandler {
	return &CatalogHandler{svc: svc, rdb: rdb}
}

func barcodeKey(barcode string) string { return "product:barcode:" + barcode }

// ── Products ──────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProduct(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateProduct(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.rdb != nil && resp.Barcode != nil {
		_ = h.rdb.Del(context.Background(), barcodeKey(*resp.Barcode)).Err()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductByBarcode godoc
// @Summary Look up a product by barcode
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/barcode/{barcode} [get]
func (h *CatalogHandler) ProductByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, barcodeKey(barcode)).Bytes(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal(cached, &resp) == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	resp, err := h.svc.GetProductByBarcode(ctx, barcode)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := h.rdb.Set(context.Background(), barcodeKey(barcode), b, barcodeCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("barcode cache write failed")
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	groupID, ok := uuidQuery(c, "group_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListProducts(c.Request.Context(), repository.ProductFilter{
		Search:  c.Query("search"),
		Barcode: c.Query("barcode"),
		GroupID: groupID,
		Active:  c.DefaultQuery("active", "true"),
		Page:    pageQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Groups ────────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateGroup(c *gin.Context) {
	var req dto.ProductGroupRequest
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

func (h *CatalogHandler) UpdateGroup(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateGroup(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListGroups(c *gin.Context) {
	resp, err := h.svc.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Payment methods ───────────────────────────────────────────────────────────

func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	var req dto.PaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePaymentMethod(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListPaymentMethods(c *gin.Context) {
	resp, err := h.svc.ListPaymentMethods(c.Request.Context(), c.Query("include_inactive") != "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *CatalogHandler) SetPaymentMethodActive(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SetPaymentMethodActive(c.Request.Context(), id, req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
