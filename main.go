package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"teamup/internal/competition"
	"teamup/internal/config"
	"teamup/internal/httpapi"
	"teamup/internal/identity"
	"teamup/internal/postgres"
	"teamup/internal/roster"
	"teamup/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalw("connect database", "error", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Fatalw("ensure schema", "error", err)
	}

	users := identity.NewPG(db, cfg.BcryptCost, logger)
	comps := competition.NewPG(db, logger)
	teams := roster.NewEngine(roster.NewPG(db, logger), users, comps, logger)

	r := httpapi.NewRouter(&httpapi.Server{
		Users:  users,
		Comps:  comps,
		Teams:  teams,
		Tokens: token.NewManager(cfg.JWTSecret),
		Audit:  postgres.NewAuditLog(db, logger),
		Ping:   db.Ping,
		Logger: logger,
	})

	logger.Infow("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
