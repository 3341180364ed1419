package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type DashboardService interface {
	KPIs(ctx context.Context) (*dto.DashboardKPIs, error)
}

type dashboardService struct {
	reporting repository.ReportingRepository
	rdb       *redis.Client // optional
	ttl       time.Duration
	loc       *time.Location
	now       func() time.Time
}

func NewDashboardService(reporting repository.ReportingRepository, rdb *redis.Client, ttl time.Duration, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{reporting: reporting, rdb: rdb, ttl: ttl, loc: loc, now: time.Now}
}

// KPIs aggregates today's non-training sales, where "today" is the calendar
// day in the store timezone. Results are cached for a few seconds; a cache
// failure falls through to the database.
func (s *dashboardService) KPIs(ctx context.Context) (*dto.DashboardKPIs, error) {
	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)
	date := from.Format("2006-01-02")
	key := "kpis:dashboard:" + date

	if kpis, ok := s.cached(ctx, key); ok {
		return kpis, nil
	}

	totals, err := s.reporting.SalesTotals(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	kpis := &dto.DashboardKPIs{
		TotalRevenue:    totals.Revenue,
		TotalSalesCount: totals.Count,
		AverageTicket:   money.Average(totals.Revenue, totals.Count, money.RoundHalfEven),
		Date:            date,
	}
	s.store(ctx, key, kpis)
	return kpis, nil
}

func (s *dashboardService) cached(ctx context.Context, key string) (*dto.DashboardKPIs, bool) {
	if s.rdb == nil || s.ttl <= 0 {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("kpi cache read failed")
		}
		return nil, false
	}
	var kpis dto.DashboardKPIs
	if err := json.Unmarshal(raw, &kpis); err != nil {
		return nil, false
	}
	return &kpis, true
}

func (s *dashboardService) store(ctx context.Context, key string, kpis *dto.DashboardKPIs) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(kpis)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kpi cache write failed")
	}
}
