package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thefortthatholds/storefront/api"
	"github.com/thefortthatholds/storefront/catalog"
	"github.com/thefortthatholds/storefront/checkout"
	"github.com/thefortthatholds/storefront/datastore"
	"github.com/thefortthatholds/storefront/delivery"
	"github.com/thefortthatholds/storefront/fulfillment"
	"github.com/thefortthatholds/storefront/notify"
	"github.com/thefortthatholds/storefront/payments"
	"github.com/thefortthatholds/storefront/reporting"
	rh "github.com/thefortthatholds/storefront/route-handlers"
	"github.com/thefortthatholds/storefront/storage"
	_ "github.com/lib/pq"
)

const (
	defaultPort         = "8080"
	defaultBaseURL      = "http://localhost:8080"
	defaultSendGridFrom = "books@thefortthatholds.xyz"
	defaultSendGridName = "The Fort That Holds"
	dbPingTimeout       = 5 * time.Second
	shutdownTimeout     = 15 * time.Second
	dbMaxOpenConns      = 25
	dbMaxIdleConns      = 25
	dbConnMaxLifetime   = 5 * time.Minute
)

type config struct {
	port                string
	databaseURL         string
	baseURL             string
	catalogPath         string
	booksDir            string
	stripeSecretKey     string
	stripeWebhookSecret string
	sendGridAPIKey      string
	sendGridFromEmail   string
	sendGridFromName    string
}

func main() {
	cfg := loadConfig()

	store, dbCloser, err := setupEntitlementStore(cfg.databaseURL)
	if err != nil {
		log.Fatalf("Entitlement store setup failed: %v", err)
	}
	if dbCloser != nil {
		defer dbCloser()
	}

	cat, err := loadCatalog(cfg.catalogPath)
	if err != nil {
		log.Fatalf("Catalog setup failed: %v", err)
	}
	log.Printf("Catalog loaded with %d items", cat.Len())

	gateway := payments.NewStripeGateway(cfg.stripeSecretKey)
	fees := payments.DefaultFeeSchedule
	notifier := setupNotifier(cfg)
	files := storage.NewLocalFileStore(cfg.booksDir)

	checkoutService := checkout.NewService(cat, gateway, fees, cfg.baseURL)
	fulfillmentService := fulfillment.NewService(cat, store, notifier, fees, cfg.baseURL)
	deliveryService := delivery.NewService(cat, store, files, delivery.DefaultTokenValidity)
	reportingService := reporting.NewService(store, fees)

	checkoutHandler := rh.NewCheckoutHandler(checkoutService)
	webhookHandler := rh.NewPaymentWebhookHandler(fulfillmentService, cfg.stripeWebhookSecret)
	downloadHandler := rh.NewDownloadHandler(deliveryService)
	salesHandler := rh.NewSalesHandler(reportingService)

	router := api.SetupRoutes(checkoutHandler, webhookHandler, downloadHandler, salesHandler)

	startServer(cfg.port, router)
}

func loadConfig() config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
		log.Println("WARNING: BASE_URL not set, download links will use the default local URL.")
	}

	stripeSecretKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeSecretKey == "" {
		log.Println("WARNING: STRIPE_SECRET_KEY not set. Checkout session creation will fail at runtime.")
	}

	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if stripeWebhookSecret == "" {
		log.Println("WARNING: STRIPE_WEBHOOK_SECRET not set. Webhook signatures will not be verified.")
	}

	sendGridFrom := os.Getenv("SENDGRID_FROM_EMAIL")
	if sendGridFrom == "" {
		sendGridFrom = defaultSendGridFrom
	}

	sendGridName := os.Getenv("SENDGRID_FROM_NAME")
	if sendGridName == "" {
		sendGridName = defaultSendGridName
	}

	return config{
		port:                port,
		databaseURL:         os.Getenv("DB_CONNECTION_STRING"),
		baseURL:             baseURL,
		catalogPath:         os.Getenv("CATALOG_PATH"),
		booksDir:            os.Getenv("BOOKS_DIR"),
		stripeSecretKey:     stripeSecretKey,
		stripeWebhookSecret: stripeWebhookSecret,
		sendGridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		sendGridFromEmail:   sendGridFrom,
		sendGridFromName:    sendGridName,
	}
}

// setupEntitlementStore returns the Postgres-backed store when a database URL
// is configured, otherwise an in-memory store that does not survive restarts.
func setupEntitlementStore(databaseURL string) (datastore.EntitlementStore, func(), error) {
	if databaseURL == "" {
		log.Println("WARNING: DB_CONNECTION_STRING not set, using in-memory entitlement store. Purchases will NOT survive a restart.")
		return datastore.NewMemoryEntitlementStore(), nil, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return datastore.NewEntitlementRepository(db), func() { db.Close() }, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		log.Println("CATALOG_PATH not set, using built-in catalog.")
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func setupNotifier(cfg config) notify.Notifier {
	if cfg.sendGridAPIKey == "" {
		log.Println("WARNING: SENDGRID_API_KEY not set. Download links will be logged instead of emailed.")
		return notify.LogNotifier{}
	}
	return notify.NewEmailNotifier(cfg.sendGridAPIKey, cfg.sendGridFromEmail, cfg.sendGridFromName)
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
