package repository

import (
	"context"
	"errors"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the ledger reacts to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// uniqueViolations names the field behind each unique index.
var uniqueViolations = map[string]string{
	"uq_users_username":          "username already in use",
	"uq_products_barcode":        "barcode already in use",
	"uq_product_groups_name":     "product group name already in use",
	"uq_payment_methods_name":    "payment method already exists",
	"uq_inventory_items_code":    "inventory item code already in use",
	"uq_inventory_groups_name":   "inventory group name already in use",
	"uq_customers_cpf":           "cpf already in use",
	"uq_sales_client_ref":        "sale already registered",
	"uq_cash_sessions_open_user": "user already has an open session",
}

// ErrRetryable marks errors the transaction runner may retry.
var ErrRetryable = errors.New("transaction conflict, retryable")

// Translate converts gorm and Postgres errors into domain errors. entity names
// the resource in not-found messages. Domain errors pass through untouched.
func Translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	var domain *apierror.Error
	if errors.As(err, &domain) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("%s not found", entity)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apierror.Storage("operation cancelled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if msg, ok := uniqueViolations[pgErr.ConstraintName]; ok {
				return &apierror.Error{Kind: apierror.KindConflict, Reason: msg, Err: err}
			}
			return &apierror.Error{Kind: apierror.KindConflict, Reason: "duplicate " + entity, Err: err}
		case pgForeignKeyViolation:
			return &apierror.Error{Kind: apierror.KindNotFound, Reason: "referenced record not found", Err: err}
		case pgCheckViolation:
			return &apierror.Error{Kind: apierror.KindValidation, Reason: "value out of range for " + entity, Err: err}
		case pgLockNotAvailable:
			return &apierror.Error{Kind: apierror.KindConflict, Reason: "resource busy, try again", Err: err}
		case pgSerializationFailure, pgDeadlockDetected:
			return &apierror.Error{Kind: apierror.KindConflict, Reason: "resource busy, try again", Err: errors.Join(ErrRetryable, err)}
		}
	}
	return apierror.Storage("storage unavailable", err)
}

// IsRetryable reports whether err came from a serialization failure or deadlock.
func IsRetryable(err error) bool { return errors.Is(err, ErrRetryable) }
