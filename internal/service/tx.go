package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TxPolicy bounds how long a transaction waits for row locks and how many
// times it is replayed after a serialization failure or deadlock.
type TxPolicy struct {
	LockTimeout time.Duration
	MaxRetries  int
}

func DefaultTxPolicy() TxPolicy {
	return TxPolicy{LockTimeout: 3 * time.Second, MaxRetries: 3}
}

// withoutDB runs the body of a transaction when no database is wired. Unit
// tests swap it for one that restores their in-memory store when the body
// fails.
var withoutDB = func(fn func() error) error { return fn() }

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) through withoutDB when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, policy TxPolicy, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return withoutDB(func() error { return fn(nil) })
	}
	attempts := policy.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = repository.Translate(db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if policy.LockTimeout > 0 {
				// SET does not take bind parameters.
				stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", policy.LockTimeout.Milliseconds())
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return fn(tx)
		}), "transaction")
		if err == nil || !repository.IsRetryable(err) || attempt == attempts {
			break
		}

		infra.TxRetriesTotal.Inc()
		log.Warn().Err(err).Int("attempt", attempt).Msg("transaction conflict, retrying")
		select {
		case <-ctx.Done():
			return repository.Translate(ctx.Err(), "transaction")
		case <-time.After(time.Duration(attempt*attempt) * 20 * time.Millisecond):
		}
	}
	return err
}
