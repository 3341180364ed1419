package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate is the row lock taken on every resource a mutation changes.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// conn returns tx when the caller runs inside a transaction, otherwise db.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Page is a 1-based page request shared by the list queries.
type Page struct {
	Page  int
	Limit int
}

// normalize clamps the page to sane bounds (default 50, max 500 per page).
func (p Page) normalize() (offset, limit int) {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return (page - 1) * limit, limit
}
