package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config holds runtime configuration sourced from env vars and the
// optional catalog file.
type Config struct {
	Port        string
	PublicURL   string
	CORSOrigins []string

	DatabaseURL string

	JWTSecret     string
	JWKSURL       string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AgentDevOTP   string
	AgentOTPTTL   time.Duration
	BcryptCost    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	PaymentProvider       string
	StripeSecretKey       string
	StripeWebhookSecret   string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	MailAPIURL     string
	MailServiceID  string
	MailTemplateID string
	MailPublicKey  string
	MailFrom       string

	WorkerConcurrency  int
	ReservationTTL     time.Duration
	LocationRateLimit  int
	LocationRateWindow time.Duration

	Catalog *Catalog
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: could not read .env file: %v", err)
	}

	cfg := &Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		PublicURL:   strings.TrimRight(fallback(os.Getenv("PUBLIC_URL"), "http://localhost:3000"), "/"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWKSURL:       strings.TrimSpace(os.Getenv("JWKS_URL")),
		AccessTTL:     minutes("ACCESS_TOKEN_TTL_MINUTES", 60),
		RefreshTTL:    minutes("REFRESH_TOKEN_TTL_MINUTES", 7*24*60),
		AgentDevOTP:   strings.TrimSpace(os.Getenv("AGENT_DEV_OTP")),
		AgentOTPTTL:   minutes("AGENT_OTP_TTL_MINUTES", 10),
		BcryptCost:    integer("BCRYPT_COST", 10),

		RedisAddr:     fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       integer("REDIS_DB", 0),

		MinioEndpoint:  fallback(os.Getenv("MINIO_ENDPOINT"), "localhost:9000"),
		MinioAccessKey: fallback(os.Getenv("MINIO_ACCESS_KEY"), "minioadmin"),
		MinioSecretKey: fallback(os.Getenv("MINIO_SECRET_KEY"), "minioadmin"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		MinioBucket:    fallback(os.Getenv("MINIO_BUCKET"), "genzip-uploads"),

		PaymentProvider:       strings.ToLower(fallback(os.Getenv("PAYMENT_PROVIDER"), "stripe")),
		StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		MailAPIURL:     fallback(os.Getenv("MAIL_API_URL"), "https://api.emailjs.com/api/v1.0/email/send"),
		MailServiceID:  os.Getenv("MAIL_SERVICE_ID"),
		MailTemplateID: os.Getenv("MAIL_TEMPLATE_ID"),
		MailPublicKey:  os.Getenv("MAIL_PUBLIC_KEY"),
		MailFrom:       fallback(os.Getenv("MAIL_FROM"), "GenZip <no-reply@genzip.in>"),

		WorkerConcurrency:  integer("WORKER_CONCURRENCY", 5),
		ReservationTTL:     minutes("RESERVATION_TTL_MINUTES", 30),
		LocationRateLimit:  integer("LOCATION_RATE_LIMIT", 10),
		LocationRateWindow: minutes("LOCATION_RATE_WINDOW_MINUTES", 1),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	if cfg.AgentDevOTP != "" {
		log.Printf("WARNING: AGENT_DEV_OTP is set, every agent OTP is the fixed development code")
	}
	if cfg.PaymentProvider != "stripe" && cfg.PaymentProvider != "razorpay" {
		return nil, fmt.Errorf("PAYMENT_PROVIDER must be stripe or razorpay, got %q", cfg.PaymentProvider)
	}

	catalog := DefaultCatalog()
	if path := strings.TrimSpace(os.Getenv("GENZIP_CONFIG")); path != "" {
		loaded, err := LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	cfg.Catalog = catalog

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func integer(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v >= 0 {
		return v
	}
	return def
}

func minutes(key string, def int) time.Duration {
	if v := integer(key, def); v > 0 {
		return time.Duration(v) * time.Minute
	}
	return time.Duration(def) * time.Minute
}
