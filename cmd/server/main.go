package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "shelfspace-backend/internal/api/http"
	"shelfspace-backend/internal/config"
	"shelfspace-backend/internal/gateway/tap"
	"shelfspace-backend/internal/logger"
	"shelfspace-backend/internal/repository/postgres"
	"shelfspace-backend/internal/security"
	"shelfspace-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ShelfSpace Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authMW := httpapi.NewAuthMiddleware(tokenManager)

	// Initialize Payment Gateway
	tapClient := tap.NewClient(cfg.Tap.BaseURL, cfg.Tap.SecretKey)

	// Initialize Notification Channels
	whatsappSender := service.NewKarzounClient(cfg.Karzoun.BaseURL, cfg.Karzoun.APIToken, cfg.Karzoun.SenderID)
	emailSvc := service.NewSendGridService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notifier := service.NewLifecycleNotifier(
		whatsappSender,
		emailSvc,
		store.NotificationRepository,
		service.KarzounTemplates{
			NewRequest: cfg.Karzoun.NewRequestTemplate,
			Invoice:    cfg.Karzoun.InvoiceTemplate,
		},
		cfg.Site.URL,
	)

	// Initialize Services
	authSvc := service.NewAuthService(store.ProfileRepository, tokenManager)
	rentalSvc := service.NewRentalService(
		store.RentalRequestRepository,
		store.ShelfRepository,
		store.BranchRepository,
		store.ProfileRepository,
		notifier,
	)
	paymentSvc := service.NewPaymentService(
		tapClient,
		store.RentalRequestRepository,
		store.PaymentRepository,
		store.SettingsRepository,
		rentalSvc,
		cfg.Site.URL,
	)
	marketSvc := service.NewMarketplaceService(store.BranchRepository, store.ShelfRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize Handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authSvc),
		Rental:       httpapi.NewRentalHandler(rentalSvc),
		Payment:      httpapi.NewPaymentHandler(paymentSvc),
		Webhook:      httpapi.NewWebhookHandler(paymentSvc, cfg.Tap.WebhookSecret),
		Marketplace:  httpapi.NewMarketplaceHandler(marketSvc),
		Notification: httpapi.NewNotificationHandler(noteSvc),
		AuthMW:       authMW,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
