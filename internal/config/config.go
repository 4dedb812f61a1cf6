package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/vault"
)

type Config struct {
	HTTP_ADDR     string
	BASE_URL      string
	LOG_LEVEL     string
	COOKIE_SECURE bool

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	APP_SECRET_KEY       string
	VAULT_ENCRYPTION_KEY string

	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_USER     string
	SMTP_PASSWORD string
	SMTP_FROM     string

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	config := &Config{
		HTTP_ADDR: getEnvDefault("HTTP_ADDR", ":8080"),
		BASE_URL:  getEnvDefault("BASE_URL", "http://localhost:8080"),
		LOG_LEVEL: os.Getenv("LOG_LEVEL"),
		// set COOKIE_SECURE=false for plain-HTTP local development
		COOKIE_SECURE: getEnvDefault("COOKIE_SECURE", "true") != "false",

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		APP_SECRET_KEY:       os.Getenv("APP_SECRET_KEY"),
		VAULT_ENCRYPTION_KEY: os.Getenv("VAULT_ENCRYPTION_KEY"),

		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     getEnvDefault("SMTP_PORT", "587"),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     getEnvDefault("SMTP_FROM", "no-reply@dropmate.app"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
	}

	MustNonEmpty(config.APP_SECRET_KEY, "APP_SECRET_KEY")

	return config, nil
}

// VaultKey returns the AES key protecting supplier credentials. A dedicated
// VAULT_ENCRYPTION_KEY is preferred; without one the session-signing secret
// is reused, which keeps the vault usable in development but ties its
// decryptability to APP_SECRET_KEY rotation. That fallback is logged loudly.
func (c *Config) VaultKey(l *slog.Logger) []byte {
	if c.VAULT_ENCRYPTION_KEY != "" {
		return vault.DeriveKey(c.VAULT_ENCRYPTION_KEY)
	}
	l.Warn("VAULT_ENCRYPTION_KEY is not set, falling back to APP_SECRET_KEY; rotating the app secret will break decryption of stored supplier credentials")
	return vault.DeriveKey(c.APP_SECRET_KEY)
}

func InitDB(c *Config) (*gorm.DB, error) {
	MustNonEmpty(c.DB_HOST, "DB_HOST")
	MustNonEmpty(c.DB_NAME, "DB_NAME")

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.EbayStore{},
		&models.SupplierVault{},
		&models.Product{},
		&models.Order{},
		&models.RefreshToken{},
	)
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		slog.Error("missing required env", "name", envName)
		os.Exit(1)
	}
}

func getEnvDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
