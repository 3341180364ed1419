package infra

import (
	"fmt"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. When autoMigrate is
// set it runs AutoMigrate for every model and then applies the idempotent SQL
// patches GORM cannot express (sequences, partial indexes, check constraints,
// append-only triggers).
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// RunMigrations creates or updates all tables and applies schema patches.
// Integration tests call it directly against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.ProductGroup{},
		&model.PaymentMethod{},
		&model.Product{},
		&model.InventoryGroup{},
		&model.InventoryItem{},
		&model.InventoryMovement{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.CreditPayment{},
		&model.CreditAllocation{},
		&model.AuditLogEntry{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	log.Info().Msg("database schema up to date")
	return nil
}

// checkConstraint adds a named CHECK constraint unless it already exists.
func checkConstraint(table, name, expr string) string {
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[2]s') THEN
    ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
  END IF;
END $$`, table, name, expr)
}

// appendOnly installs the trigger that rejects UPDATE and DELETE on table.
func appendOnly(table string) string {
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_%[1]s_append_only') THEN
    CREATE TRIGGER trg_%[1]s_append_only
      BEFORE UPDATE OR DELETE ON %[1]s
      FOR EACH ROW EXECUTE FUNCTION reject_ledger_mutation();
  END IF;
END $$`, table)
}

// applySchemaPatches runs idempotent DDL statements; re-running on an already
// patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"sale number sequence", `CREATE SEQUENCE IF NOT EXISTS sale_number_seq START 1`},
		{"one open session per user", `CREATE UNIQUE INDEX IF NOT EXISTS uq_cash_sessions_open_user
		    ON cash_sessions (user_id) WHERE status = 'open'`},
		{"outstanding credit lookup", `CREATE INDEX IF NOT EXISTS idx_sales_credit_outstanding
		    ON sales (customer_id, sale_date) WHERE credit_amount > credit_paid`},

		{"cash session initial amount", checkConstraint("cash_sessions", "chk_cash_sessions_initial", "initial_amount >= 0")},
		{"cash session status", checkConstraint("cash_sessions", "chk_cash_sessions_status", "status IN ('open','closed')")},
		{"cash movement amount", checkConstraint("cash_movements", "chk_cash_movements_amount", "amount > 0")},
		{"cash movement type", checkConstraint("cash_movements", "chk_cash_movements_type", "type IN ('supply','withdrawal','sale_cash_in')")},
		{"product price", checkConstraint("products", "chk_products_price", "price >= 0")},
		{"inventory movement quantity", checkConstraint("inventory_movements", "chk_inventory_movements_quantity", "quantity > 0")},
		{"inventory movement type", checkConstraint("inventory_movements", "chk_inventory_movements_type", "type IN ('in','out')")},
		{"customer credit limit", checkConstraint("customers", "chk_customers_credit_limit", "credit_limit >= 0")},
		{"sale credit paid", checkConstraint("sales", "chk_sales_credit_paid", "credit_paid >= 0 AND credit_paid <= credit_amount")},
		{"credit payment amount", checkConstraint("credit_payments", "chk_credit_payments_amount", "amount > 0")},
		{"credit allocation amount", checkConstraint("credit_allocations", "chk_credit_allocations_amount", "amount > 0")},

		{"append-only trigger function", `CREATE OR REPLACE FUNCTION reject_ledger_mutation() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'table % is append-only', TG_TABLE_NAME USING ERRCODE = '23514';
END $$ LANGUAGE plpgsql`},
		{"audit log append-only", appendOnly("audit_log")},
		{"cash movements append-only", appendOnly("cash_movements")},
		{"inventory movements append-only", appendOnly("inventory_movements")},

		{"default payment methods", `INSERT INTO payment_methods (name, active, created_at)
		    VALUES ('pix', true, now()), ('debit_card', true, now()), ('credit_card', true, now())
		    ON CONFLICT (name) DO NOTHING`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
