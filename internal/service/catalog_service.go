package service

import (
	"context"
	"strings"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService manages sellable products, their groups and the accepted
// payment methods.
type CatalogService interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, userID, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.Page[dto.ProductResponse], error)

	CreateGroup(ctx context.Context, req dto.ProductGroupRequest) (*dto.ProductGroupResponse, error)
	UpdateGroup(ctx context.Context, id uuid.UUID, req dto.ProductGroupRequest) (*dto.ProductGroupResponse, error)
	ListGroups(ctx context.Context) ([]dto.ProductGroupResponse, error)

	CreatePaymentMethod(ctx context.Context, req dto.PaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]dto.PaymentMethodResponse, error)
	SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error
}

type catalogService struct {
	products repository.ProductRepository
	catalog  repository.CatalogRepository
	audit    AuditService
	policy   TxPolicy
}

func NewCatalogService(products repository.ProductRepository, catalog repository.CatalogRepository, audit AuditService, policy TxPolicy) CatalogService {
	return &catalogService{products: products, catalog: catalog, audit: audit, policy: policy}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, userID uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p := model.Product{Active: true}
	if err := s.applyProductRequest(ctx, &p, req); err != nil {
		return nil, err
	}
	err := runTx(ctx, s.products.DB(), s.policy, func(tx *gorm.DB) error {
		if err := s.products.Create(ctx, tx, &p); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionCreateProduct, "products", p.ID.String())
	})
	if err != nil {
		return nil, err
	}
	return productResponse(&p), nil
}

// UpdateProduct holds the product row lock so a stock correction cannot
// overwrite a concurrent sale's decrement.
func (s *catalogService) UpdateProduct(ctx context.Context, userID, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	var p model.Product
	err := runTx(ctx, s.products.DB(), s.policy, func(tx *gorm.DB) error {
		locked, err := s.products.FindManyForUpdate(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return apierror.NotFound("product not found")
		}
		p = locked[0]
		if err := s.applyProductRequest(ctx, &p, req); err != nil {
			return err
		}
		if err := s.products.Update(ctx, tx, &p); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionUpdateProduct, "products", id.String())
	})
	if err != nil {
		return nil, err
	}
	return productResponse(&p), nil
}

func (s *catalogService) applyProductRequest(ctx context.Context, p *model.Product, req dto.ProductRequest) error {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return apierror.Validation("description is required")
	}
	if req.Price.IsNegative() {
		return apierror.Validation("price must not be negative")
	}
	if req.SaleType != model.SaleTypeUnit && req.SaleType != model.SaleTypeWeight {
		return apierror.Validation("sale_type must be unit or weight")
	}
	if req.SaleType == model.SaleTypeUnit && !req.Stock.IsWhole() {
		return apierror.Validation("stock of a unit product must be a whole number")
	}
	groupID, err := parseOptionalUUID("group_id", req.GroupID)
	if err != nil {
		return err
	}
	if groupID != nil {
		g, err := s.catalog.FindGroupByID(ctx, *groupID)
		if err != nil {
			return err
		}
		p.Group = g
	} else {
		p.Group = nil
	}

	p.Description = desc
	p.Barcode = blankToNil(req.Barcode)
	p.Price = req.Price
	p.SaleType = req.SaleType
	p.Stock = req.Stock
	p.AllowNegativeStock = req.AllowNegativeStock
	p.GroupID = groupID
	if req.Active != nil {
		p.Active = *req.Active
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productResponse(p), nil
}

func (s *catalogService) GetProductByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apierror.Validation("barcode is required")
	}
	p, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return productResponse(p), nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productResponse(&products[i]))
	}
	return &dto.Page[dto.ProductResponse]{Data: out, Total: total, Page: pageOf(filter.Page), Limit: limitOf(filter.Page)}, nil
}

// ── Groups ────────────────────────────────────────────────────────────────────

func (s *catalogService) CreateGroup(ctx context.Context, req dto.ProductGroupRequest) (*dto.ProductGroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("name is required")
	}
	if _, err := s.catalog.FindGroupByName(ctx, name); err == nil {
		return nil, apierror.Conflict("product group %q already exists", name)
	} else if !apierror.Is(err, apierror.KindNotFound) {
		return nil, err
	}
	g := model.ProductGroup{Name: name, Active: true}
	if req.Active != nil {
		g.Active = *req.Active
	}
	if err := s.catalog.CreateGroup(ctx, &g); err != nil {
		return nil, err
	}
	return groupResponse(g), nil
}

func (s *catalogService) UpdateGroup(ctx context.Context, id uuid.UUID, req dto.ProductGroupRequest) (*dto.ProductGroupResponse, error) {
	g, err := s.catalog.FindGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		g.Name = name
	}
	if req.Active != nil {
		g.Active = *req.Active
	}
	if err := s.catalog.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}
	return groupResponse(*g), nil
}

func (s *catalogService) ListGroups(ctx context.Context) ([]dto.ProductGroupResponse, error) {
	groups, err := s.catalog.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, *groupResponse(g))
	}
	return out, nil
}

// ── Payment methods ───────────────────────────────────────────────────────────

func (s *catalogService) CreatePaymentMethod(ctx context.Context, req dto.PaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	switch name {
	case "":
		return nil, apierror.Validation("name is required")
	case model.TenderCash, model.TenderCredit:
		return nil, apierror.Conflict("%s is a built-in tender", name)
	}
	m := model.PaymentMethod{Name: name, Active: true}
	if err := s.catalog.CreatePaymentMethod(ctx, &m); err != nil {
		return nil, err
	}
	return &dto.PaymentMethodResponse{ID: m.ID.String(), Name: m.Name, Active: m.Active}, nil
}

func (s *catalogService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]dto.PaymentMethodResponse, error) {
	methods, err := s.catalog.ListPaymentMethods(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, dto.PaymentMethodResponse{ID: m.ID.String(), Name: m.Name, Active: m.Active})
	}
	return out, nil
}

func (s *catalogService) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.catalog.SetPaymentMethodActive(ctx, id, active)
}

func productResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:                 p.ID.String(),
		Description:        p.Description,
		Barcode:            p.Barcode,
		Price:              p.Price,
		SaleType:           p.SaleType,
		Stock:              p.Stock,
		AllowNegativeStock: p.AllowNegativeStock,
		GroupID:            uuidString(p.GroupID),
		Active:             p.Active,
	}
	if p.Group != nil {
		resp.GroupName = &p.Group.Name
	}
	return resp
}

func groupResponse(g model.ProductGroup) *dto.ProductGroupResponse {
	return &dto.ProductGroupResponse{ID: g.ID.String(), Name: g.Name, Active: g.Active}
}
