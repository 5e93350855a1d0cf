package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finz/api/internal/app"
	"finz/api/internal/config"
	"finz/api/internal/export"
	"finz/api/internal/idempotency"
	"finz/api/internal/invoices"
	"finz/api/internal/search"
	"finz/api/internal/session"
	"finz/api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	idemStore, err := idempotency.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer idemStore.Close()

	sessionStore, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis session store failed: %v", err)
	}
	defer sessionStore.Close()

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)

	service := app.New(cfg, dataStore, idemStore, sessionStore, searchService)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin).
		WithExporter(export.NewService())

	if cfg.S3AccessKey != "" {
		invoiceService, err := invoices.New(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, cfg.PresignTTL)
		if err != nil {
			log.Printf("WARNING: invoice storage unavailable: %v", err)
		} else {
			httpServer.WithInvoices(invoiceService)
		}
	}

	scheduler := cron.New()
	if meiliClient != nil {
		if _, err := scheduler.AddFunc(cfg.ReindexSchedule, func() {
			searchService.ReindexAll(context.Background())
		}); err != nil {
			log.Printf("WARNING: reindex schedule %q invalid: %v", cfg.ReindexSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		searchService.ReindexAll(ctx)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Finz API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
