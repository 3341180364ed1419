package service

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// Every fake reads and writes one memDB so cross-ledger effects (a sale's
// credit portion showing up in the customer balance) behave like the real
// schema. Rows are stored and returned by value.

type memDB struct {
	users        map[uuid.UUID]model.User
	sessions     map[uuid.UUID]model.CashSession
	cashMoves    []model.CashMovement
	products     map[uuid.UUID]model.Product
	groups       map[uuid.UUID]model.ProductGroup
	methods      map[uuid.UUID]model.PaymentMethod
	items        map[uuid.UUID]model.InventoryItem
	invGroups    map[uuid.UUID]model.InventoryGroup
	invMoves     []model.InventoryMovement
	sales        []model.Sale
	customers    map[uuid.UUID]model.Customer
	payments     []model.CreditPayment
	audit        []model.AuditLogEntry
	saleSeq      int64
	clock        time.Time
	failAuditFor string // action whose audit write fails
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uuid.UUID]model.User{},
		sessions:  map[uuid.UUID]model.CashSession{},
		products:  map[uuid.UUID]model.Product{},
		groups:    map[uuid.UUID]model.ProductGroup{},
		methods:   map[uuid.UUID]model.PaymentMethod{},
		items:     map[uuid.UUID]model.InventoryItem{},
		invGroups: map[uuid.UUID]model.InventoryGroup{},
		customers: map[uuid.UUID]model.Customer{},
		clock:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// atomically runs fn and puts every table back the way it was when fn fails,
// giving the nil-db transaction path rollback semantics.
func (m *memDB) atomically(fn func() error) error {
	saved := m.snapshot()
	if err := fn(); err != nil {
		*m = saved
		return err
	}
	return nil
}

func (m *memDB) snapshot() memDB {
	c := *m
	c.users = maps.Clone(m.users)
	c.sessions = maps.Clone(m.sessions)
	c.products = maps.Clone(m.products)
	c.groups = maps.Clone(m.groups)
	c.methods = maps.Clone(m.methods)
	c.items = maps.Clone(m.items)
	c.invGroups = maps.Clone(m.invGroups)
	c.customers = maps.Clone(m.customers)
	c.cashMoves = slices.Clone(m.cashMoves)
	c.invMoves = slices.Clone(m.invMoves)
	c.sales = slices.Clone(m.sales)
	c.payments = slices.Clone(m.payments)
	c.audit = slices.Clone(m.audit)
	return c
}

// tick returns strictly increasing timestamps so newest-first ordering is stable.
func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// ── Users ─────────────────────────────────────────────────────────────────────

type fakeUserRepo struct{ db *memDB }

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) DB() *gorm.DB { return nil }

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, u *model.User) error {
	for _, other := range r.db.users {
		if other.Username == u.Username {
			return apierror.Conflict("username already in use")
		}
	}
	ensureID(&u.ID)
	u.CreatedAt = r.db.tick()
	r.db.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *gorm.DB, u *model.User) error {
	if _, ok := r.db.users[u.ID]; !ok {
		return apierror.NotFound("user not found")
	}
	r.db.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, apierror.NotFound("user not found")
	}
	return &u, nil
}

func (r *fakeUserRepo) FindForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.User, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, _ *gorm.DB, username string) (*model.User, error) {
	for _, u := range r.db.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apierror.NotFound("user not found")
}

func (r *fakeUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.db.users {
		if u.Active || includeInactive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// ── Cash ──────────────────────────────────────────────────────────────────────

type fakeCashRepo struct{ db *memDB }

var _ repository.CashRepository = (*fakeCashRepo)(nil)

func (r *fakeCashRepo) DB() *gorm.DB { return nil }

func (r *fakeCashRepo) CreateSession(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	ensureID(&s.ID)
	r.db.sessions[s.ID] = *s
	return nil
}

func (r *fakeCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, apierror.NotFound("cash session not found")
	}
	s.Movements = nil
	for _, m := range r.db.cashMoves {
		if m.CashSessionID == id {
			s.Movements = append(s.Movements, m)
		}
	}
	return &s, nil
}

func (r *fakeCashRepo) FindSessionForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, apierror.NotFound("cash session not found")
	}
	return &s, nil
}

func (r *fakeCashRepo) FindOpenSessionByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.db.sessions {
		if s.UserID == userID && s.IsOpen() {
			s := s
			return &s, nil
		}
	}
	return nil, apierror.NotFound("cash session not found")
}

func (r *fakeCashRepo) UpdateSession(_ context.Context, _ *gorm.DB, s *model.CashSession) error {
	stored := *s
	stored.Movements = nil
	r.db.sessions[s.ID] = stored
	return nil
}

func (r *fakeCashRepo) CreateMovement(_ context.Context, _ *gorm.DB, m *model.CashMovement) error {
	ensureID(&m.ID)
	m.CreatedAt = r.db.tick()
	r.db.cashMoves = append(r.db.cashMoves, *m)
	return nil
}

func (r *fakeCashRepo) SumMovementsByType(_ context.Context, _ *gorm.DB, sessionID uuid.UUID) (map[string]money.Money, error) {
	sums := map[string]money.Money{}
	for _, m := range r.db.cashMoves {
		if m.CashSessionID == sessionID {
			sums[m.Type] = sums[m.Type].Add(m.Amount)
		}
	}
	return sums, nil
}

func (r *fakeCashRepo) ListSessions(_ context.Context, filter repository.CashSessionFilter) ([]model.CashSession, int64, error) {
	var out []model.CashSession
	for _, s := range r.db.sessions {
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime.After(out[j].OpenTime) })
	return out, int64(len(out)), nil
}

// ── Products & catalog ────────────────────────────────────────────────────────

type fakeProductRepo struct{ db *memDB }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

func (r *fakeProductRepo) Create(_ context.Context, _ *gorm.DB, p *model.Product) error {
	ensureID(&p.ID)
	stored := *p
	stored.Group = nil
	r.db.products[p.ID] = stored
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, _ *gorm.DB, p *model.Product) error {
	stored := *p
	stored.Group = nil
	r.db.products[p.ID] = stored
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.db.products[id]
	if !ok {
		return nil, apierror.NotFound("product not found")
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.db.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.Active {
			p := p
			return &p, nil
		}
	}
	return nil, apierror.NotFound("product not found")
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.db.products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) FindManyForUpdate(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStockTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta money.Quantity) error {
	p, ok := r.db.products[id]
	if !ok {
		return apierror.NotFound("product not found")
	}
	p.Stock = p.Stock.Add(delta)
	r.db.products[id] = p
	return nil
}

type fakeCatalogRepo struct{ db *memDB }

var _ repository.CatalogRepository = (*fakeCatalogRepo)(nil)

func (r *fakeCatalogRepo) CreateGroup(_ context.Context, g *model.ProductGroup) error {
	ensureID(&g.ID)
	r.db.groups[g.ID] = *g
	return nil
}

func (r *fakeCatalogRepo) ListGroups(_ context.Context) ([]model.ProductGroup, error) {
	var out []model.ProductGroup
	for _, g := range r.db.groups {
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindGroupByID(_ context.Context, id uuid.UUID) (*model.ProductGroup, error) {
	g, ok := r.db.groups[id]
	if !ok {
		return nil, apierror.NotFound("product group not found")
	}
	return &g, nil
}

func (r *fakeCatalogRepo) FindGroupByName(_ context.Context, name string) (*model.ProductGroup, error) {
	for _, g := range r.db.groups {
		if strings.EqualFold(g.Name, name) {
			g := g
			return &g, nil
		}
	}
	return nil, apierror.NotFound("product group not found")
}

func (r *fakeCatalogRepo) UpdateGroup(_ context.Context, g *model.ProductGroup) error {
	r.db.groups[g.ID] = *g
	return nil
}

func (r *fakeCatalogRepo) CreatePaymentMethod(_ context.Context, m *model.PaymentMethod) error {
	for _, other := range r.db.methods {
		if other.Name == m.Name {
			return apierror.Conflict("payment method already exists")
		}
	}
	ensureID(&m.ID)
	r.db.methods[m.ID] = *m
	return nil
}

func (r *fakeCatalogRepo) ListPaymentMethods(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var out []model.PaymentMethod
	for _, m := range r.db.methods {
		if m.Active || !activeOnly {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindActivePaymentMethods(_ context.Context, _ *gorm.DB, names []string) ([]model.PaymentMethod, error) {
	var out []model.PaymentMethod
	for _, m := range r.db.methods {
		for _, n := range names {
			if m.Name == n && m.Active {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) SetPaymentMethodActive(_ context.Context, id uuid.UUID, active bool) error {
	m, ok := r.db.methods[id]
	if !ok {
		return apierror.NotFound("payment method not found")
	}
	m.Active = active
	r.db.methods[id] = m
	return nil
}

// ── Inventory ─────────────────────────────────────────────────────────────────

type fakeInventoryRepo struct{ db *memDB }

var _ repository.InventoryRepository = (*fakeInventoryRepo)(nil)

func (r *fakeInventoryRepo) DB() *gorm.DB { return nil }

func (r *fakeInventoryRepo) CreateItem(_ context.Context, _ *gorm.DB, item *model.InventoryItem) error {
	for _, other := range r.db.items {
		if other.Code == item.Code {
			return apierror.Conflict("inventory item code already in use")
		}
	}
	ensureID(&item.ID)
	r.db.items[item.ID] = *item
	return nil
}

func (r *fakeInventoryRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.db.items[id]
	if !ok {
		return nil, apierror.NotFound("inventory item not found")
	}
	return &item, nil
}

func (r *fakeInventoryRepo) FindItemForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	return r.FindItemByID(ctx, id)
}

func (r *fakeInventoryRepo) UpdateItemQuantityTx(_ context.Context, _ *gorm.DB, id uuid.UUID, quantity money.Quantity) error {
	item := r.db.items[id]
	item.CurrentQuantity = quantity
	r.db.items[id] = item
	return nil
}

func (r *fakeInventoryRepo) ListItems(_ context.Context, groupID *uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.db.items {
		if groupID != nil && (item.GroupID == nil || *item.GroupID != *groupID) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeInventoryRepo) ListBelowMinimum(_ context.Context) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.db.items {
		if item.BelowMinimum() {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeInventoryRepo) CreateMovementTx(_ context.Context, _ *gorm.DB, m *model.InventoryMovement) error {
	ensureID(&m.ID)
	m.CreatedAt = r.db.tick()
	r.db.invMoves = append(r.db.invMoves, *m)
	return nil
}

func (r *fakeInventoryRepo) ListMovements(_ context.Context, filter repository.InventoryMovementFilter) ([]model.InventoryMovement, error) {
	var out []model.InventoryMovement
	for i := len(r.db.invMoves) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		m := r.db.invMoves[i]
		if filter.ItemID != nil && m.ItemID != *filter.ItemID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeInventoryRepo) CreateGroup(_ context.Context, g *model.InventoryGroup) error {
	ensureID(&g.ID)
	r.db.invGroups[g.ID] = *g
	return nil
}

func (r *fakeInventoryRepo) ListGroups(_ context.Context) ([]model.InventoryGroup, error) {
	var out []model.InventoryGroup
	for _, g := range r.db.invGroups {
		out = append(out, g)
	}
	return out, nil
}

// ── Sales ─────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct{ db *memDB }

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ClientRef != nil {
		for _, other := range r.db.sales {
			if other.ClientRef != nil && *other.ClientRef == *s.ClientRef {
				return apierror.Conflict("sale already registered")
			}
		}
	}
	ensureID(&s.ID)
	s.CreatedAt = r.db.tick()
	for i := range s.Items {
		ensureID(&s.Items[i].ID)
		s.Items[i].SaleID = s.ID
	}
	for i := range s.Payments {
		ensureID(&s.Payments[i].ID)
		s.Payments[i].SaleID = s.ID
	}
	r.db.sales = append(r.db.sales, *s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.db.sales {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, apierror.NotFound("sale not found")
}

func (r *fakeSaleRepo) FindByClientRef(_ context.Context, _ *gorm.DB, ref string) (*model.Sale, error) {
	for _, s := range r.db.sales {
		if s.ClientRef != nil && *s.ClientRef == ref {
			s := s
			return &s, nil
		}
	}
	return nil, apierror.NotFound("sale not found")
}

func (r *fakeSaleRepo) NextNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.db.saleSeq++
	return r.db.saleSeq, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for i := len(r.db.sales) - 1; i >= 0; i-- {
		s := r.db.sales[i]
		if s.TrainingMode && !filter.IncludeTraining {
			continue
		}
		if filter.CashSessionID != nil && s.CashSessionID != *filter.CashSessionID {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

// ── Customers & credit ────────────────────────────────────────────────────────

type fakeCustomerRepo struct{ db *memDB }

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func (r *fakeCustomerRepo) DB() *gorm.DB { return nil }

func (r *fakeCustomerRepo) Create(_ context.Context, _ *gorm.DB, c *model.Customer) error {
	if c.CPF != nil {
		for _, other := range r.db.customers {
			if other.CPF != nil && *other.CPF == *c.CPF {
				return apierror.Conflict("cpf already in use")
			}
		}
	}
	ensureID(&c.ID)
	r.db.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, _ *gorm.DB, c *model.Customer) error {
	r.db.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.db.customers[id]
	if !ok {
		return nil, apierror.NotFound("customer not found")
	}
	return &c, nil
}

func (r *fakeCustomerRepo) FindForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeCustomerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.db.customers {
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

type fakeCreditRepo struct{ db *memDB }

var _ repository.CreditRepository = (*fakeCreditRepo)(nil)

func (r *fakeCreditRepo) OutstandingBalance(_ context.Context, _ *gorm.DB, customerID uuid.UUID) (money.Money, error) {
	var total money.Money
	for _, s := range r.db.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID && !s.TrainingMode {
			total = total.Add(s.CreditOutstanding())
		}
	}
	return total, nil
}

func (r *fakeCreditRepo) ListOutstandingForUpdate(_ context.Context, _ *gorm.DB, customerID uuid.UUID, newestFirst bool) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.db.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID && !s.TrainingMode && s.CreditOutstanding().IsPositive() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].SaleDate.Before(out[j].SaleDate)
	})
	return out, nil
}

func (r *fakeCreditRepo) AddCreditPaidTx(_ context.Context, _ *gorm.DB, saleID uuid.UUID, amount money.Money) error {
	for i := range r.db.sales {
		if r.db.sales[i].ID == saleID {
			r.db.sales[i].CreditPaid = r.db.sales[i].CreditPaid.Add(amount)
			return nil
		}
	}
	return apierror.NotFound("sale not found")
}

func (r *fakeCreditRepo) CreatePaymentTx(_ context.Context, _ *gorm.DB, p *model.CreditPayment) error {
	ensureID(&p.ID)
	p.CreatedAt = r.db.tick()
	for i := range p.Allocations {
		ensureID(&p.Allocations[i].ID)
		p.Allocations[i].PaymentID = p.ID
	}
	r.db.payments = append(r.db.payments, *p)
	return nil
}

func (r *fakeCreditRepo) ListPayments(_ context.Context, customerID uuid.UUID) ([]model.CreditPayment, error) {
	var out []model.CreditPayment
	for i := len(r.db.payments) - 1; i >= 0; i-- {
		if r.db.payments[i].CustomerID == customerID {
			out = append(out, r.db.payments[i])
		}
	}
	return out, nil
}

// fakeReportingRepo computes the aggregates from the same store.
type fakeReportingRepo struct {
	db  *memDB
	err error
}

var _ repository.ReportingRepository = (*fakeReportingRepo)(nil)

func (r *fakeReportingRepo) SalesTotals(_ context.Context, from, to time.Time) (repository.SalesTotals, error) {
	var t repository.SalesTotals
	if r.err != nil {
		return t, r.err
	}
	for _, s := range r.db.sales {
		if s.TrainingMode || s.SaleDate.Before(from) || !s.SaleDate.Before(to) {
			continue
		}
		t.Count++
		t.Revenue = t.Revenue.Add(s.TotalAmount)
	}
	return t, nil
}

func (r *fakeReportingRepo) Debtors(ctx context.Context) ([]repository.DebtorRow, error) {
	credit := &fakeCreditRepo{db: r.db}
	var out []repository.DebtorRow
	for _, c := range r.db.customers {
		balance, _ := credit.OutstandingBalance(ctx, nil, c.ID)
		if balance.IsPositive() {
			out = append(out, repository.DebtorRow{ID: c.ID, Name: c.Name, Phone: c.Phone, Balance: balance})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	return out, nil
}

// ── Audit ─────────────────────────────────────────────────────────────────────

type fakeAuditRepo struct{ db *memDB }

var _ repository.AuditRepository = (*fakeAuditRepo)(nil)

func (r *fakeAuditRepo) CreateTx(_ context.Context, _ *gorm.DB, e *model.AuditLogEntry) error {
	if r.db.failAuditFor != "" && e.Action == r.db.failAuditFor {
		return apierror.Storage("storage unavailable", nil)
	}
	ensureID(&e.ID)
	e.CreatedAt = r.db.tick()
	r.db.audit = append(r.db.audit, *e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]model.AuditLogEntry, int64, error) {
	var out []model.AuditLogEntry
	for i := len(r.db.audit) - 1; i >= 0; i-- {
		e := r.db.audit[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Table != "" && e.Table != filter.Table {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *memDB) auditActions() []string {
	out := make([]string, 0, len(m.audit))
	for _, e := range m.audit {
		out = append(out, e.Action)
	}
	return out
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func (m *memDB) addUser(username, role string, active bool) model.User {
	u := model.User{ID: uuid.New(), Username: username, Name: username, Role: role, Active: active, PasswordHash: "x"}
	m.users[u.ID] = u
	return u
}

func (m *memDB) addOpenSession(userID uuid.UUID, initial money.Money) model.CashSession {
	s := model.CashSession{ID: uuid.New(), UserID: userID, InitialAmount: initial, Status: model.SessionOpen, OpenTime: m.tick()}
	m.sessions[s.ID] = s
	return s
}

func (m *memDB) addProduct(desc string, price money.Money, saleType string, stock money.Quantity) model.Product {
	p := model.Product{ID: uuid.New(), Description: desc, Price: price, SaleType: saleType, Stock: stock, Active: true}
	m.products[p.ID] = p
	return p
}

func (m *memDB) addCustomer(name string, limit money.Money) model.Customer {
	c := model.Customer{ID: uuid.New(), Name: name, CreditLimit: limit}
	m.customers[c.ID] = c
	return c
}

func (m *memDB) addPaymentMethod(name string, active bool) {
	pm := model.PaymentMethod{ID: uuid.New(), Name: name, Active: active}
	m.methods[pm.ID] = pm
}

// addCreditSale inserts a credit sale directly, bypassing the sales engine.
func (m *memDB) addCreditSale(customerID uuid.UUID, amount money.Money) model.Sale {
	m.saleSeq++
	s := model.Sale{
		ID:           uuid.New(),
		Number:       m.saleSeq,
		CustomerID:   &customerID,
		SaleDate:     m.tick(),
		TotalAmount:  amount,
		CreditAmount: amount,
	}
	m.sales = append(m.sales, s)
	return s
}

func (m *memDB) sale(id uuid.UUID) model.Sale {
	for _, s := range m.sales {
		if s.ID == id {
			return s
		}
	}
	return model.Sale{}
}

// recordingPublisher captures published events.
type recordingPublisher struct{ types []string }

func (p *recordingPublisher) Publish(_ context.Context, ev infra.Event) error {
	p.types = append(p.types, ev.Type)
	return nil
}
