package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatherkit/registrar/internal/api"
	"github.com/gatherkit/registrar/internal/config"
	"github.com/gatherkit/registrar/internal/importer"
	"github.com/gatherkit/registrar/internal/mailer"
	"github.com/gatherkit/registrar/internal/mappingstore"
	"github.com/gatherkit/registrar/internal/registration"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}

	ctx := context.Background()

	// PostgreSQL
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	store := registration.NewStore(db)

	// Redis saved-mapping cache. Optional: the import flow degrades to
	// advisor-only suggestions without it.
	var mappings api.MappingStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — saved mappings disabled", cfg.Redis.Addr, err)
			redisClient.Close()
		} else {
			mappings = mappingstore.NewStore(redisClient, cfg.Redis.MappingTTL())
			log.Printf("Redis connected: %s (saved mappings enabled)", cfg.Redis.Addr)
		}
		pingCancel()
	}

	// SES confirmation mailer. Optional: without it the execute phase never
	// sends email regardless of the request flag.
	var confirmations importer.ConfirmationSender
	if cfg.SES.Enabled && cfg.SES.FromEmail != "" {
		sender, err := mailer.NewSender(ctx, cfg.SES.AccessKey, cfg.SES.SecretKey,
			cfg.SES.Region, cfg.SES.FromEmail, cfg.SES.FromName)
		if err != nil {
			log.Printf("Warning: SES mailer unavailable: %v — confirmation emails disabled", err)
		} else {
			confirmations = sender
			log.Printf("SES mailer initialized (region %s, from %s)", cfg.SES.Region, cfg.SES.FromEmail)
		}
	}

	server := api.NewServer(store,
		importer.NewValidator(store, store),
		importer.NewExecutor(store, store, store, confirmations),
		mappings)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Addr()
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	db.Close()

	log.Println("Server stopped")
}
