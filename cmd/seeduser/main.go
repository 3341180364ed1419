// Command seeduser creates or resets the initial manager account.
// Usage: seeduser -username admin -password secret123
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/config"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"
	"github.com/Jottaaa12/pdv-web-admin/internal/router"
	"github.com/Jottaaa12/pdv-web-admin/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "admin", "manager username")
	password := flag.String("password", "", "manager password (at least 6 characters)")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, service.NewAuditService(repository.NewAuditRepository(db)), cfg, router.TxPolicy(cfg))
	ctx := context.Background()

	active := true
	req := dto.UpsertUserRequest{
		Username: *username,
		Name:     *name,
		Role:     model.RoleManager,
		Active:   &active,
	}
	if *password != "" {
		req.Password = password
	}
	if existing, err := users.FindByUsername(ctx, nil, *username); err == nil {
		id := existing.ID.String()
		req.ID = &id
	} else if !apierror.Is(err, apierror.KindNotFound) {
		log.Fatal().Err(err).Msg("lookup failed")
	}

	profile, err := auth.UpsertUser(ctx, nil, req)
	if err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}
	log.Info().Str("id", profile.ID).Str("username", profile.Username).Msg("manager account ready")
}
