package main // Entry point package

import (
	"log"  // Logging library
	"time" // TTL conversions for cache entries

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/auth-service/internal/cache"
	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/database"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/mail"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/router"
	"github.com/iliyamo/auth-service/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	// Durable credential store.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Ephemeral cache.  A nil client disables cached lookups; durable
	// reads still serve every flow.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, user lookups will not be cached")
	}
	store := cache.New(rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	notifier := mail.NewNotifier(cfg.AmqpURL, cfg.UIEndpoint)
	userSvc := service.NewUserService(users, tokens, store, cfg.BcryptCost,
		time.Duration(cfg.UserCacheSec)*time.Second)
	codes := service.NewCodeManager(store, time.Duration(cfg.CodeTTLSec)*time.Second)
	authSvc := service.NewAuthService(userSvc, tokens, codes, notifier,
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	// Outbound mail consumer: delivers queued jobs over SMTP, or logs them
	// when no relay is configured.
	go func() {
		if err := queue.StartMailConsumer(cfg.AmqpURL, queue.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
		}); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, userSvc), handler.NewUserHandler(userSvc), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
