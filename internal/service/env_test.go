package service

import (
	"testing"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/config"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"golang.org/x/crypto/bcrypt"
)

// testEnv wires every service against one in-memory store.
type testEnv struct {
	db        *memDB
	events    *recordingPublisher
	audit     AuditService
	auth      AuthService
	cash      CashService
	inventory InventoryService
	sales     SaleService
	credit    CreditService
	customers CustomerService
	catalog   CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, SalePolicy{Rounding: money.RoundHalfEven}, AllocateOldestFirst)
}

func newTestEnvWith(t *testing.T, rules SalePolicy, allocation string) *testEnv {
	t.Helper()
	db := newMemDB()
	prev := withoutDB
	withoutDB = db.atomically
	t.Cleanup(func() { withoutDB = prev })
	events := &recordingPublisher{}
	policy := TxPolicy{LockTimeout: time.Second, MaxRetries: 1}

	users := &fakeUserRepo{db: db}
	cashRepo := &fakeCashRepo{db: db}
	products := &fakeProductRepo{db: db}
	catalog := &fakeCatalogRepo{db: db}
	customers := &fakeCustomerRepo{db: db}
	credit := &fakeCreditRepo{db: db}

	audit := NewAuditService(&fakeAuditRepo{db: db})
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		BcryptCost:         bcrypt.MinCost,
	}

	return &testEnv{
		db:        db,
		events:    events,
		audit:     audit,
		auth:      NewAuthService(users, audit, cfg, policy),
		cash:      NewCashService(cashRepo, users, audit, nil, events, policy),
		inventory: NewInventoryService(&fakeInventoryRepo{db: db}, users, audit, nil, events, policy, ""),
		sales:     NewSaleService(&fakeSaleRepo{db: db}, products, cashRepo, customers, credit, catalog, audit, events, policy, rules),
		credit:    NewCreditService(credit, customers, catalog, &fakeReportingRepo{db: db}, audit, events, nil, policy, allocation),
		customers: NewCustomerService(customers, audit, policy),
		catalog:   NewCatalogService(products, catalog, audit, policy),
	}
}

func ptr[T any](v T) *T { return &v }
