package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/givebridge/backend/internal/config"
	"github.com/givebridge/backend/internal/handler"
	"github.com/givebridge/backend/internal/logging"
	"github.com/givebridge/backend/internal/mailer"
	"github.com/givebridge/backend/internal/receipt"
	"github.com/givebridge/backend/internal/repository"
	"github.com/givebridge/backend/internal/service"
	pkgstripe "github.com/givebridge/backend/pkg/stripe"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()

	// Stores: PostgreSQL when configured, file/memory fallbacks otherwise
	// so the API runs keyless in development.
	var pool *pgxpool.Pool
	var contactRepo repository.ContactRepository
	var donationRepo repository.DonationRepository
	var eventRepo repository.WebhookEventRepository
	var subscriberStore repository.SubscriberStore
	var expressionStore repository.ExpressionStore

	if cfg.DatabaseURL != "" {
		var err error
		pool, err = repository.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()

		contactRepo = repository.NewPgContactRepository(pool)
		donationRepo = repository.NewPgDonationRepository(pool)
		eventRepo = repository.NewPgWebhookEventRepository(pool)
		subscriberStore = repository.NewPgSubscriberRepository(pool)
		expressionStore = repository.NewPgExpressionRepository(pool)
	} else {
		slog.Warn("DATABASE_URL not set; using file/memory stores")
		contactRepo = repository.NewMemoryContactRepository()
		donationRepo = nil // gateway-only mode: ledger disabled
		eventRepo = repository.NewMemoryWebhookEventRepository()
		fileStore, err := repository.NewFileSubscriberStore(filepath.Join(cfg.DataDir, "newsletter_subscribers.json"))
		if err != nil {
			logging.Fatal("failed to open subscriber store", "error", err)
		}
		subscriberStore = fileStore
		expressionStore = repository.NewMemoryExpressionStore()
	}

	receipts, err := receipt.NewGenerator(cfg.ReceiptDir, receipt.Org{
		Name:    "Givebridge Foundation",
		TaxLine: "Registered charity. Donations may be tax deductible; keep this receipt for your records.",
		Email:   "hello@givebridge.org",
		Website: "https://givebridge.org",
	})
	if err != nil {
		logging.Fatal("failed to init receipt generator", "error", err)
	}

	mail := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.Mail)
	stripeClient := pkgstripe.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	donationService := service.NewDonationService(stripeClient, donationRepo, receipts, mail, cfg.MinDonationAmount, cfg.MaxDonationAmount)
	eventHandler := service.NewLedgerEventHandler(donationRepo, receipts, mail)
	webhookService := service.NewWebhookService(stripeClient, eventRepo, eventHandler)
	contactService := service.NewContactService(contactRepo, mail)
	newsletterService := service.NewNewsletterService(subscriberStore, mail)
	expressionService := service.NewExpressionService(expressionStore, mail)
	outreachService := service.NewOutreachService(mail)

	production := cfg.IsProduction()
	var ping func() error
	if pool != nil {
		ping = func() error { return pool.Ping(context.Background()) }
	}
	healthHandler := handler.NewHealthHandler(ping)
	donationHandler := handler.NewDonationHandler(donationService, production)
	webhookHandler := handler.NewWebhookHandler(webhookService, production)
	contactHandler := handler.NewContactHandler(contactService, production)
	newsletterHandler := handler.NewNewsletterHandler(newsletterService, production)
	expressionHandler := handler.NewExpressionHandler(expressionService, production)
	outreachHandler := handler.NewOutreachHandler(outreachService, production)
	devHandler := handler.NewDevHandler(mail, production)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("GET /api/donations/health", healthHandler.DonationsHealth)
	mux.HandleFunc("GET /api/webhooks/health", healthHandler.WebhooksHealth)

	mux.HandleFunc("POST /api/donations/create-payment-intent", donationHandler.CreatePaymentIntent)
	mux.HandleFunc("POST /api/donations/confirm-payment", donationHandler.ConfirmPayment)
	mux.HandleFunc("GET /api/donations/payment-intent/{id}", donationHandler.GetPaymentIntent)
	mux.HandleFunc("POST /api/donations/refund", donationHandler.Refund)
	mux.HandleFunc("GET /api/donations/receipt/{paymentIntentId}", donationHandler.Receipt)
	mux.HandleFunc("POST /api/donations/test-email", devHandler.TestEmail)

	// Webhooks authenticate via signature, not CORS/session.
	mux.HandleFunc("POST /api/webhooks/stripe", webhookHandler.Stripe)
	mux.HandleFunc("POST /api/webhooks/test", webhookHandler.Test)

	mux.HandleFunc("POST /api/contact", contactHandler.Submit)
	mux.HandleFunc("GET /api/admin/contacts", contactHandler.List)
	mux.HandleFunc("POST /api/newsletter/subscribe", newsletterHandler.Subscribe)
	mux.HandleFunc("POST /api/newsletter/unsubscribe", newsletterHandler.Unsubscribe)
	mux.HandleFunc("POST /api/expressions-of-interest", expressionHandler.Submit)
	mux.HandleFunc("GET /api/expressions-of-interest", expressionHandler.List)
	mux.HandleFunc("POST /api/expressions-of-interest/send-notification", expressionHandler.SendNotification)
	mux.HandleFunc("POST /api/volunteers", outreachHandler.Volunteer)
	mux.HandleFunc("POST /api/enrollments", outreachHandler.Enroll)

	rateLimiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	chain := handler.SecurityHeaders(
		handler.CORS(cfg.CORSOrigins)(
			rateLimiter.Middleware(
				handler.MaxBody(cfg.MaxBodyBytes)(mux))))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // PDF generation can outlast the default
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
