package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	S3           S3Config
	Promo        PromoConfig
	Payment      PaymentConfig
	Notification NotificationConfig
	Captcha      CaptchaConfig
	Cart         CartConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
	// JWTSecret verifies access tokens issued by the auth backend. Empty disables user lookup.
	JWTSecret string
}

// S3Config holds AWS S3 configuration for promo code files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "promos/")
}

// PromoConfig lists the gzipped promo code files.
type PromoConfig struct {
	Files []string
}

// PaymentConfig holds gateway credentials. A gateway with no secret is not registered.
type PaymentConfig struct {
	Currency       string
	CallbackURL    string // storefront order-success page
	TimeoutSeconds int

	PaystackSecretKey string
	PaystackBaseURL   string

	MoolreUser          string
	MoolrePublicKey     string
	MoolreAccountNumber string
	MoolreBaseURL       string

	StripeSecretKey string
	StripeBaseURL   string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string
}

// NotificationConfig points at the messaging provider.
type NotificationConfig struct {
	WebhookURL     string
	Token          string
	TimeoutSeconds int
	MaxRetries     int
}

// CaptchaConfig holds reCAPTCHA server-side verification settings.
type CaptchaConfig struct {
	Secret   string
	MinScore float64
}

// CartConfig bounds the in-memory cart store.
type CartConfig struct {
	IdleTTLMinutes       int
	MaxLines             int
	SweepIntervalMinutes int
}

// Load loads configuration from environment variables, reading a .env file first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey:    getEnv("API_KEY", ""),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "promos/"),
		},
		Promo: PromoConfig{
			Files: getEnvAsList("PROMO_FILES", nil),
		},
		Payment: PaymentConfig{
			Currency:            getEnv("STORE_CURRENCY", "GHS"),
			CallbackURL:         getEnv("PAYMENT_CALLBACK_URL", "http://localhost:3000/order-success"),
			TimeoutSeconds:      getEnvAsInt("PAYMENT_TIMEOUT_SECONDS", 15),
			PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			MoolreUser:          getEnv("MOOLRE_API_USER", ""),
			MoolrePublicKey:     getEnv("MOOLRE_API_PUBKEY", ""),
			MoolreAccountNumber: getEnv("MOOLRE_ACCOUNT_NUMBER", ""),
			MoolreBaseURL:       getEnv("MOOLRE_BASE_URL", "https://api.moolre.com"),
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeBaseURL:       getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			PayPalClientID:      getEnv("PAYPAL_CLIENT_ID", ""),
			PayPalClientSecret:  getEnv("PAYPAL_CLIENT_SECRET", ""),
			PayPalBaseURL:       getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		Notification: NotificationConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			Token:          getEnv("NOTIFY_TOKEN", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
			MaxRetries:     getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
		},
		Captcha: CaptchaConfig{
			Secret:   getEnv("RECAPTCHA_SECRET", ""),
			MinScore: getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0.5),
		},
		Cart: CartConfig{
			IdleTTLMinutes:       getEnvAsInt("CART_IDLE_TTL_MINUTES", 1440),
			MaxLines:             getEnvAsInt("CART_MAX_LINES", 50),
			SweepIntervalMinutes: getEnvAsInt("CART_SWEEP_INTERVAL_MINUTES", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if len(c.Payment.Currency) != 3 {
		return fmt.Errorf("invalid store currency: %q (must be a 3-letter ISO code)", c.Payment.Currency)
	}

	if c.Payment.TimeoutSeconds < 1 {
		return fmt.Errorf("payment timeout must be at least 1 second")
	}

	if c.Payment.MoolreUser != "" && (c.Payment.MoolrePublicKey == "" || c.Payment.MoolreAccountNumber == "") {
		return fmt.Errorf("moolre public key and account number are required when a moolre user is set")
	}

	if (c.Payment.PayPalClientID == "") != (c.Payment.PayPalClientSecret == "") {
		return fmt.Errorf("paypal client id and secret must be set together")
	}

	if c.Notification.MaxRetries < 0 {
		return fmt.Errorf("notification max retries cannot be negative")
	}

	if c.Captcha.MinScore < 0 || c.Captcha.MinScore > 1 {
		return fmt.Errorf("invalid recaptcha min score: %v (must be between 0 and 1)", c.Captcha.MinScore)
	}

	if c.Cart.IdleTTLMinutes < 1 || c.Cart.SweepIntervalMinutes < 1 {
		return fmt.Errorf("cart idle TTL and sweep interval must be at least 1 minute")
	}

	if c.Cart.MaxLines < 1 {
		return fmt.Errorf("cart max lines must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
