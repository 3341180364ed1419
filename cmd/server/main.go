package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/config"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/router"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	reporting, err := infra.NewReportingDB(db, cfg.ReportingDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open reporting database")
	}

	if cfg.JaegerEndpoint != "" {
		tp, err := infra.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			log.Warn().Err(err).Msg("tracing disabled")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(ctx)
			}()
		}
	}

	var events service.EventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp := infra.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer kp.Close()
		events = kp
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	dispatcher := worker.NewDispatcher(rdb)

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueEmail, worker.NewEmailWorker(mailer, mailCB))
	pool.Register(worker.QueueReports, worker.NewReportWorker(repository.NewCashRepository(db), dispatcher, worker.ReportWorkerConfig{
		StoreName:   cfg.StoreName,
		Location:    cfg.Location(),
		StoragePath: cfg.PDFStoragePath,
		ReportEmail: cfg.ReportEmail,
	}))
	pool.Start(ctx, cfg.WorkerPoolSize)

	if cfg.AlertEmail != "" && cfg.RestockDigestMinutes > 0 {
		worker.StartRestockCron(ctx, worker.RestockCronConfig{
			Items:      repository.NewInventoryRepository(db),
			Dispatcher: dispatcher,
			CB:         mailCB,
			AlertEmail: cfg.AlertEmail,
			StoreName:  cfg.StoreName,
			Interval:   time.Duration(cfg.RestockDigestMinutes) * time.Minute,
		})
	}

	r := router.New(cfg, router.Deps{
		DB:        db,
		Redis:     rdb,
		Reporting: reporting,
		Events:    events,
		MailCB:    mailCB,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s listening on :%d", cfg.ServiceName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	pool.Wait()
	log.Info().Msg("server exited")
}
