package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SaleService interface {
	CreateSale(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	GetSaleWithItems(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) (*dto.Page[dto.SaleResponse], error)
}

// SalePolicy carries the configurable settlement rules.
type SalePolicy struct {
	Rounding                 money.RoundingMode
	AllowNegativeWeightStock bool
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	cash      repository.CashRepository
	customers repository.CustomerRepository
	credit    repository.CreditRepository
	catalog   repository.CatalogRepository
	audit     AuditService
	events    EventPublisher
	policy    TxPolicy
	rules     SalePolicy
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	cash repository.CashRepository,
	customers repository.CustomerRepository,
	credit repository.CreditRepository,
	catalog repository.CatalogRepository,
	audit AuditService,
	events EventPublisher,
	policy TxPolicy,
	rules SalePolicy,
) SaleService {
	return &saleService{
		repo:      repo,
		products:  products,
		cash:      cash,
		customers: customers,
		credit:    credit,
		catalog:   catalog,
		audit:     audit,
		events:    events,
		policy:    policy,
		rules:     rules,
	}
}

// saleLine is a request item resolved against its locked product row.
type saleLine struct {
	product  *model.Product
	quantity money.Quantity
	total    money.Money
}

// tenderSplit is the tender grouped by its effect on the ledgers.
type tenderSplit struct {
	total  money.Money
	cash   money.Money
	credit money.Money
	change money.Money
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// Locks session → customer → products (sorted by id), then writes stock,
// sale + items + payments, the sale_cash_in movement and the audit entry in one
// transaction. Any failure leaves every ledger untouched.

func (s *saleService) CreateSale(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	ctx, span := infra.StartSpan(ctx, "sale.create")
	defer span.End()

	resp, err := s.createSale(ctx, operatorID, req)
	if err != nil {
		span.RecordError(err)
		infra.SalesRejectedTotal.WithLabelValues(string(apierror.KindOf(err))).Inc()
		return nil, err
	}
	span.SetAttributes(attribute.String("sale_id", resp.ID), attribute.Int64("total", resp.TotalAmount.Int64()))
	return resp, nil
}

func (s *saleService) createSale(ctx context.Context, operatorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	sessionID, err := uuid.Parse(req.CashSessionID)
	if err != nil {
		return nil, apierror.Validation("cash_session_id is not a valid id")
	}
	customerID, err := parseOptionalUUID("customer_id", req.CustomerID)
	if err != nil {
		return nil, err
	}
	lineIDs, productIDs, err := parseSaleItems(req.Items)
	if err != nil {
		return nil, err
	}
	split, err := splitTender(req.Tender, customerID != nil)
	if err != nil {
		return nil, err
	}
	if err := s.checkTenderMethods(ctx, req.Tender); err != nil {
		return nil, err
	}

	if req.ClientRef != nil {
		if existing, err := s.repo.FindByClientRef(ctx, nil, *req.ClientRef); err == nil {
			return saleResponse(existing), nil
		} else if !apierror.Is(err, apierror.KindNotFound) {
			return nil, err
		}
	}

	var (
		sale  model.Sale
		lines []saleLine
	)
	err = runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		session, err := s.cash.FindSessionForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return apierror.State("cash session is closed")
		}

		var customer *model.Customer
		if customerID != nil {
			if customer, err = s.customers.FindForUpdate(ctx, tx, *customerID); err != nil {
				return err
			}
		}

		locked, err := s.products.FindManyForUpdate(ctx, tx, productIDs)
		if err != nil {
			return err
		}
		var total money.Money
		lines, total, err = s.resolveLines(req.Items, lineIDs, locked)
		if err != nil {
			return err
		}
		// A sale of zero-priced items is the only one settled without tender.
		if len(req.Tender) == 0 && total.IsPositive() {
			return apierror.Validation("a sale needs at least one tender line")
		}
		if split.total != total {
			return apierror.Validation("tender total %s does not match sale total %s", split.total, total)
		}

		if !req.TrainingMode {
			if err := s.checkStock(lines); err != nil {
				return err
			}
			if split.credit.IsPositive() {
				if err := s.checkCredit(ctx, tx, customer, split.credit); err != nil {
					return err
				}
			}
		}

		number, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		sale = model.Sale{
			Number:        number,
			CashSessionID: sessionID,
			UserID:        operatorID,
			CustomerID:    customerID,
			SaleDate:      time.Now().UTC(),
			TotalAmount:   total,
			ChangeAmount:  split.change,
			TrainingMode:  req.TrainingMode,
			ClientRef:     req.ClientRef,
		}
		if !req.TrainingMode {
			sale.CreditAmount = split.credit
		}
		for _, l := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:  l.product.ID,
				Quantity:   l.quantity,
				UnitPrice:  l.product.Price,
				TotalPrice: l.total,
			})
		}
		for _, t := range req.Tender {
			sale.Payments = append(sale.Payments, model.SalePayment{Method: t.Method, Amount: t.Amount, Received: t.Received})
		}
		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		if !req.TrainingMode {
			for _, l := range lines {
				if err := s.products.UpdateStockTx(ctx, tx, l.product.ID, -l.quantity); err != nil {
					return err
				}
			}
			if split.cash.IsPositive() {
				if err := s.cash.CreateMovement(ctx, tx, &model.CashMovement{
					CashSessionID: sessionID,
					Type:          model.MovementSaleCashIn,
					Amount:        split.cash,
					SaleID:        &sale.ID,
					UserID:        operatorID,
				}); err != nil {
					return err
				}
			}
		}
		return s.audit.Record(ctx, tx, &operatorID, ActionCreateSale, "sales", sale.ID.String())
	})
	if err != nil {
		// A concurrent retry with the same client_ref won the insert.
		if req.ClientRef != nil && apierror.Is(err, apierror.KindConflict) {
			if existing, findErr := s.repo.FindByClientRef(ctx, nil, *req.ClientRef); findErr == nil {
				return saleResponse(existing), nil
			}
		}
		return nil, err
	}

	infra.SalesCreatedTotal.WithLabelValues(strconv.FormatBool(sale.TrainingMode)).Inc()
	if !sale.TrainingMode {
		infra.SaleAmountCentavos.Observe(float64(sale.TotalAmount.Int64()))
	}
	log.Info().
		Str("sale_id", sale.ID.String()).
		Int64("number", sale.Number).
		Str("total", sale.TotalAmount.String()).
		Bool("training", sale.TrainingMode).
		Msg("sale created")

	for i := range sale.Items {
		sale.Items[i].Product = lines[i].product
	}
	resp := saleResponse(&sale)
	publish(ctx, s.events, infra.EventSaleCreated, sale.ID.String(), resp)
	return resp, nil
}

// parseSaleItems returns the product id of every line and the distinct ids
// sorted for locking.
func parseSaleItems(items []dto.SaleItemRequest) (lineIDs, lockIDs []uuid.UUID, err error) {
	if len(items) == 0 {
		return nil, nil, apierror.Validation("a sale needs at least one item")
	}
	seen := make(map[uuid.UUID]bool, len(items))
	lineIDs = make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, nil, apierror.Validation("items[%d].product_id is not a valid id", i)
		}
		if !item.Quantity.IsPositive() {
			return nil, nil, apierror.Validation("items[%d].quantity must be greater than zero", i)
		}
		lineIDs = append(lineIDs, id)
		if !seen[id] {
			seen[id] = true
			lockIDs = append(lockIDs, id)
		}
	}
	sort.Slice(lockIDs, func(i, j int) bool { return lockIDs[i].String() < lockIDs[j].String() })
	return lineIDs, lockIDs, nil
}

func splitTender(tender []dto.TenderRequest, hasCustomer bool) (tenderSplit, error) {
	var split tenderSplit
	for i, t := range tender {
		if t.Method == "" {
			return split, apierror.Validation("tender[%d].method is required", i)
		}
		if !t.Amount.IsPositive() {
			return split, apierror.Validation("tender[%d].amount must be greater than zero", i)
		}
		var err error
		if split.total, err = split.total.AddChecked(t.Amount); err != nil {
			return split, apierror.Validation("tender total is out of range")
		}

		switch t.Method {
		case model.TenderCash:
			split.cash = split.cash.Add(t.Amount)
			if t.Received != nil {
				if *t.Received < t.Amount {
					return split, apierror.Validation("tender[%d]: cash received %s is less than amount %s", i, *t.Received, t.Amount)
				}
				if split.change, err = split.change.AddChecked(t.Received.Sub(t.Amount)); err != nil {
					return split, apierror.Validation("change is out of range")
				}
			}
		case model.TenderCredit:
			if !hasCustomer {
				return split, apierror.Validation("credit tender requires a customer")
			}
			split.credit = split.credit.Add(t.Amount)
		default:
			if t.Received != nil {
				return split, apierror.Validation("tender[%d]: received applies to cash only", i)
			}
		}
	}
	return split, nil
}

// checkTenderMethods rejects methods other than cash and credit that are not
// active in payment_methods.
func (s *saleService) checkTenderMethods(ctx context.Context, tender []dto.TenderRequest) error {
	var names []string
	seen := map[string]bool{}
	for _, t := range tender {
		if t.Method == model.TenderCash || t.Method == model.TenderCredit || seen[t.Method] {
			continue
		}
		seen[t.Method] = true
		names = append(names, t.Method)
	}
	if len(names) == 0 {
		return nil
	}
	active, err := s.catalog.FindActivePaymentMethods(ctx, nil, names)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(active))
	for _, m := range active {
		known[m.Name] = true
	}
	for _, n := range names {
		if !known[n] {
			return apierror.Validation("unknown or inactive payment method %q", n)
		}
	}
	return nil
}

func (s *saleService) resolveLines(items []dto.SaleItemRequest, lineIDs []uuid.UUID, locked []model.Product) ([]saleLine, money.Money, error) {
	byID := make(map[uuid.UUID]*model.Product, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
	}

	lines := make([]saleLine, 0, len(items))
	var total money.Money
	for i, item := range items {
		p, ok := byID[lineIDs[i]]
		if !ok {
			return nil, 0, apierror.NotFound("product %s not found", lineIDs[i])
		}
		if !p.Active {
			return nil, 0, apierror.State("product %s is inactive", p.Description)
		}
		if p.SaleType == model.SaleTypeUnit && !item.Quantity.IsWhole() {
			return nil, 0, apierror.Validation("%s is sold by unit; quantity %s is not a whole number", p.Description, item.Quantity)
		}
		lineTotal, err := money.LineTotal(item.Quantity, p.Price, s.rules.Rounding)
		if err != nil {
			return nil, 0, apierror.Validation("items[%d]: line total is out of range", i)
		}
		if total, err = total.AddChecked(lineTotal); err != nil {
			return nil, 0, apierror.Validation("sale total is out of range")
		}
		lines = append(lines, saleLine{product: p, quantity: item.Quantity, total: lineTotal})
	}
	return lines, total, nil
}

// checkStock sums repeated lines per product before comparing with stock.
func (s *saleService) checkStock(lines []saleLine) error {
	wanted := make(map[uuid.UUID]money.Quantity, len(lines))
	for _, l := range lines {
		wanted[l.product.ID] = wanted[l.product.ID].Add(l.quantity)
	}
	for _, l := range lines {
		p := l.product
		if !p.Stock.Sub(wanted[p.ID]).IsNegative() || s.allowsNegativeStock(p) {
			continue
		}
		return apierror.Conflict("insufficient stock for %s: available %s, requested %s", p.Description, p.Stock, wanted[p.ID])
	}
	return nil
}

func (s *saleService) allowsNegativeStock(p *model.Product) bool {
	return p.AllowNegativeStock || (p.SaleType == model.SaleTypeWeight && s.rules.AllowNegativeWeightStock)
}

// checkCredit runs under the customer lock so two sales cannot both pass the
// limit check.
func (s *saleService) checkCredit(ctx context.Context, tx *gorm.DB, customer *model.Customer, amount money.Money) error {
	if customer.IsBlocked {
		return apierror.Conflict("customer blocked")
	}
	balance, err := s.credit.OutstandingBalance(ctx, tx, customer.ID)
	if err != nil {
		return err
	}
	if available := customer.CreditLimit.Sub(balance); available < amount {
		return apierror.Conflict("credit limit exceeded: available %s, requested %s", available, amount)
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) GetSaleWithItems(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) (*dto.Page[dto.SaleResponse], error) {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, apierror.Validation("from must be before to")
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *saleResponse(&sales[i]))
	}
	return &dto.Page[dto.SaleResponse]{Data: out, Total: total, Page: pageOf(filter.Page), Limit: limitOf(filter.Page)}, nil
}

func saleResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		CashSessionID: s.CashSessionID.String(),
		UserID:        s.UserID.String(),
		CustomerID:    uuidString(s.CustomerID),
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		ChangeAmount:  s.ChangeAmount,
		CreditAmount:  s.CreditAmount,
		CreditPaid:    s.CreditPaid,
		TrainingMode:  s.TrainingMode,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		Payments:      make([]dto.SalePaymentResponse, 0, len(s.Payments)),
	}
	for _, it := range s.Items {
		item := dto.SaleItemResponse{
			ID:         it.ID.String(),
			ProductID:  it.ProductID.String(),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
		if it.Product != nil {
			item.Description = it.Product.Description
		}
		resp.Items = append(resp.Items, item)
	}
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{Method: p.Method, Amount: p.Amount, Received: p.Received})
	}
	return resp
}
