package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Storage     StorageConfig
	Database    DatabaseConfig
	Paystack    PaystackConfig
	Notify      NotifyConfig
	Auth        AuthConfig
	Redis       RedisConfig
}

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type StorageConfig struct {
	Driver   string
	BoltPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

type NotifyConfig struct {
	ResendAPIKey  string
	ResendBaseURL string
	From          string
	SellerEmail   string
	Timeout       time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_DRIVER", DriverPostgres)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	gatewayTimeout, err := getDurationOrViper("GATEWAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := getDurationOrViper("NOTIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDurationOrViper("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := getDurationOrViper("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Storage: StorageConfig{
			Driver:   getEnvOrViper("STORAGE_DRIVER", DriverPostgres),
			BoltPath: getEnvOrViper("BOLT_PATH", "storefront.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnvOrViper("PAYSTACK_SECRET_KEY", ""),
			BaseURL:     getEnvOrViper("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: getEnvOrViper("PAYSTACK_CALLBACK_URL", ""),
			Timeout:     gatewayTimeout,
		},
		Notify: NotifyConfig{
			ResendAPIKey:  getEnvOrViper("RESEND_API_KEY", ""),
			ResendBaseURL: getEnvOrViper("RESEND_BASE_URL", "https://api.resend.com"),
			From:          getEnvOrViper("NOTIFY_FROM", "orders@anchorfit.store"),
			SellerEmail:   getEnvOrViper("SELLER_EMAIL", ""),
			Timeout:       notifyTimeout,
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrViper("JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
		},
		Redis: RedisConfig{
			Addr:           getEnvOrViper("REDIS_ADDR", ""),
			IdempotencyTTL: idempotencyTTL,
		},
	}

	// Validate required fields
	if cfg.Paystack.SecretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Storage.Driver != DriverPostgres && cfg.Storage.Driver != DriverBolt {
		return nil, fmt.Errorf("STORAGE_DRIVER must be postgres or bolt, got %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrViper(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
