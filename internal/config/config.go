// Package config loads all process configuration from environment
// variables exactly once at startup. Nothing else in the codebase reads
// the environment directly; handlers and services receive the resolved
// values through injection.
package config

import (
	"os"
	"strconv"
	"strings"
)

// MailConfig carries the sender/recipient routing for transactional mail,
// resolved once so no per-call environment branching is needed.
type MailConfig struct {
	// From is the sender address, e.g. "Givebridge <donations@givebridge.org>".
	From string
	// AdminRecipients receive contact/volunteer/enrollment notifications.
	AdminRecipients []string
	// Sandbox reroutes every outgoing mail to SandboxRecipient.
	Sandbox          bool
	SandboxRecipient string
}

// Config is the process-wide static configuration.
type Config struct {
	Env  string // "production" | "development" | "test"
	Port string

	DatabaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	ResendAPIKey string
	Mail         MailConfig

	CORSOrigins []string

	RateLimitPerMinute int
	MaxBodyBytes       int64

	ReceiptDir string
	DataDir    string

	// Donation amount bounds in major currency units.
	MinDonationAmount float64
	MaxDonationAmount float64
}

// Load reads the environment into a Config, applying defaults suitable
// for local development.
func Load() Config {
	cfg := Config{
		Env:                 getenv("ENV", "development"),
		Port:                getenv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		RateLimitPerMinute:  getenvInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxBodyBytes:        int64(getenvInt("MAX_BODY_BYTES", 1<<20)),
		ReceiptDir:          getenv("RECEIPT_DIR", "./uploads/receipts"),
		DataDir:             getenv("DATA_DIR", "./data"),
		MinDonationAmount:   1.00,
		MaxDonationAmount:   10000.00,
	}

	cfg.Mail = MailConfig{
		From:             getenv("MAIL_FROM", "Givebridge <onboarding@resend.dev>"),
		AdminRecipients:  splitList(os.Getenv("MAIL_ADMIN")),
		Sandbox:          os.Getenv("MAIL_SANDBOX") == "true" || cfg.Env != "production",
		SandboxRecipient: getenv("MAIL_SANDBOX_RECIPIENT", "delivered@resend.dev"),
	}

	cfg.CORSOrigins = splitList(getenv("CORS_ORIGINS", "http://localhost:4321"))
	return cfg
}

// IsProduction reports whether the process runs with production behavior
// (generic error bodies, real mail recipients).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
