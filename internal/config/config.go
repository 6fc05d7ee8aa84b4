package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisURL string
	CartTTL  time.Duration

	DeliveryFee   decimal.Decimal
	BusinessPhone string
	CountryCode   string

	UploadDir     string
	PublicBaseURL string

	// OrderSoftFailPersistence reports checkout success even when the order
	// insert failed.
	OrderSoftFailPersistence bool
	LogLevel                 string

	// AdminEmail and AdminPassword seed the first back-office account.
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	fee, err := getDecimalEnv("DELIVERY_FEE", "2.00")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:                     getEnvOrDefault("PORT", "8080"),
		MongoURI:                 getEnvOrDefault("MONGO_URI", ""),
		DBName:                   getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:                getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:           getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL:          getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		RedisURL:                 getEnvOrDefault("REDIS_URL", ""),
		CartTTL:                  getDurationEnv("CART_TTL", 24, time.Hour),
		DeliveryFee:              fee,
		BusinessPhone:            getEnvOrDefault("BUSINESS_PHONE", ""),
		CountryCode:              getEnvOrDefault("COUNTRY_CODE", "55"),
		UploadDir:                getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		PublicBaseURL:            strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", ""), "/"),
		OrderSoftFailPersistence: getBoolEnv("ORDER_SOFT_FAIL_PERSISTENCE", false),
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "info"),
		AdminEmail:               strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPassword:            getEnvOrDefault("ADMIN_PASSWORD", ""),
	}

	for _, req := range []struct{ key, value string }{
		{"MONGO_URI", cfg.MongoURI},
		{"JWT_SECRET", cfg.JWTSecret},
		{"BUSINESS_PHONE", cfg.BusinessPhone},
	} {
		if req.value == "" {
			return Config{}, fmt.Errorf("ENV %s is required", req.key)
		}
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDecimalEnv(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnvOrDefault(key, defaultValue)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("ENV %s: %w", key, err)
	}
	if value.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("ENV %s must not be negative", key)
	}
	return value.Round(2), nil
}
