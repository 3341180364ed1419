package worker

// restock_cron.go periodically mails a digest of inventory items below their
// minimum quantity. Ticks are skipped while the mail breaker is open.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/rs/zerolog/log"
)

// LowStockSource lists items whose quantity is under the minimum.
type LowStockSource interface {
	ListBelowMinimum(ctx context.Context) ([]model.InventoryItem, error)
}

type RestockCronConfig struct {
	Items      LowStockSource
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
	AlertEmail string
	StoreName  string
	Interval   time.Duration
}

// StartRestockCron ticks every cfg.Interval until ctx is cancelled.
func StartRestockCron(ctx context.Context, cfg RestockCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		log.Info().Dur("interval", cfg.Interval).Msg("restock_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("restock_cron: shutting down")
				return
			case <-ticker.C:
				if err := sendRestockDigest(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("restock_cron: digest failed")
				}
			}
		}
	}()
}

func sendRestockDigest(ctx context.Context, cfg RestockCronConfig) error {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("restock_cron: mail breaker open, skipping tick")
		return nil
	}
	items, err := cfg.Items.ListBelowMinimum(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return cfg.Dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: cfg.AlertEmail,
		Subject: fmt.Sprintf("%s: %d items below minimum", cfg.StoreName, len(items)),
		Body:    RestockDigest(items),
	})
}

// RestockDigest renders one line per item: code, name, current and minimum.
func RestockDigest(items []model.InventoryItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s  %s  %s / %s %s\n", it.Code, it.Name, it.CurrentQuantity, it.MinimumQuantity, it.UnitOfMeasure)
	}
	return b.String()
}
