package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/deanAirre/saisoku-admin/pkg/database"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("SAISOKU_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("SAISOKU_JWT_ISSUER")
	if issuer == "" {
		issuer = "saisoku-admin"
	}

	ttl := 24 * time.Hour
	if h := getEnvInt("SAISOKU_JWT_TTL_HOURS", 0); h > 0 {
		ttl = time.Duration(h) * time.Hour
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: ttl,
	}
}

type ServerConfig struct {
	Addr   string
	AppEnv string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:   getEnv("SAISOKU_HTTP_ADDR", ":8080"),
		AppEnv: getEnv("APP_ENV", "development"),
	}
}

func LoadDatabaseConfig() database.Config {
	return database.Config{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnv("POSTGRES_PORT", "5432"),
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:          getEnv("POSTGRES_DB", "saisoku"),
		SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
		MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(getEnvInt("POSTGRES_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
	}
}

type StorageConfig struct {
	PhotoBucket     string
	ReceiptBucket   string
	CredentialsFile string
}

func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		PhotoBucket:     getEnv("SAISOKU_PHOTO_BUCKET", "saisokuphotos"),
		ReceiptBucket:   getEnv("SAISOKU_RECEIPT_BUCKET", "order-receipts"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
