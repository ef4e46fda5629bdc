package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/protonicfit/auth-api/internal/config"
	"github.com/protonicfit/auth-api/internal/database"
	"github.com/protonicfit/auth-api/internal/handler"
	"github.com/protonicfit/auth-api/internal/queue"
	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/router"
	"github.com/protonicfit/auth-api/internal/service"
	"github.com/protonicfit/auth-api/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	var store *repository.Store
	switch cfg.StoreDriver {
	case "memory":
		// Demo mode: everything lives in process memory.
		store = repository.NewMemoryStore()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		store = repository.NewMySQLStore(db)
	}

	sessions := session.NewManager(store.RefreshTokens, cfg.RefreshSecret, cfg.RefreshTTL)
	mailer := queue.NewMailer(cfg.FrontendURL)
	auth := service.NewAuthService(store, sessions, mailer, cfg)

	// Delivery worker for password-reset emails; reconnects on its own.
	go func() {
		if err := queue.StartResetEmailConsumer(); err != nil {
			log.Printf("reset-email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, handler.NewAuthHandler(auth), config.LoadRateLimitConfig(), config.NewRedisClient())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
