package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	PaystackSecretKey  string
	PaystackWebhookKey string
	PaymentCallbackURL string
	Currency           string

	DeliveryFee float64
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "littledough"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),

		PaystackSecretKey:  getEnvOrDefault("PAYSTACK_SECRET_KEY", ""),
		PaystackWebhookKey: getEnvOrDefault("PAYSTACK_WEBHOOK_KEY", ""),
		PaymentCallbackURL: getEnvOrDefault("PAYMENT_CALLBACK_URL", ""),
		Currency:           getEnvOrDefault("CURRENCY", "NGN"),

		DeliveryFee: getFloatEnv("DELIVERY_FEE", 1500),
	}

	// Paystack signs webhooks with the account secret key unless a
	// dedicated key is configured.
	if AppEnv.PaystackWebhookKey == "" {
		AppEnv.PaystackWebhookKey = AppEnv.PaystackSecretKey
	}
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

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}
