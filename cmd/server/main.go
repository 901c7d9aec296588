package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bankledger/internal/auth"
	"bankledger/internal/config"
	"bankledger/internal/httpapi"
	"bankledger/internal/ledger"
	"bankledger/internal/memstore"
	"bankledger/internal/postgres"
)

func main() {
	start := time.Now()
	cfg := config.Load()

	log := newLogger(cfg.Environment)
	defer log.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()

	var (
		store ledger.Store
		users auth.UserStore
	)
	if cfg.DatabaseURL == "" {
		// Dev mode: everything in memory, nothing survives a restart.
		log.Warn("DATABASE_URL is not set, using in-memory store")
		mem := memstore.New()
		store, users = mem, mem
	} else {
		log.Info("connecting to database", zap.Int("max_conns", cfg.DBMaxConns))
		pool, err := postgres.Connect(startCtx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			log.Fatal("database connect failed", zap.Error(err))
		}
		defer pool.Close()

		if cfg.Migrate {
			log.Info("running migrations")
			if err := postgres.Migrate(startCtx, pool); err != nil {
				log.Fatal("migrations failed", zap.Error(err))
			}
		}

		pg := postgres.NewStore(pool)
		store, users = pg, pg
	}

	proc := ledger.NewProcessor(store, log)
	authSvc := auth.NewService(users, []byte(cfg.JWTSecret), cfg.TokenTTL)

	app := httpapi.NewApp(
		httpapi.NewHandlers(proc),
		httpapi.NewAuthHandlers(authSvc),
		authSvc.Middleware(),
		log,
	)

	go func() {
		log.Info("listening",
			zap.String("port", cfg.Port),
			zap.Duration("startup", time.Since(start)),
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(environment string) *zap.Logger {
	if environment == "development" {
		log, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return log
	}
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return log
}
