package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBPort              string
	AppPort             string
	AppEnv              string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	RedisAddr           string
	KafkaBrokers        string
	KafkaTopic          string
	UploadDir           string
	ClientOrigin        string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		DBPort:              os.Getenv("DB_PORT"),
		AppPort:             getEnv("APP_PORT", "5000"),
		AppEnv:              os.Getenv("APP_ENV"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		KafkaBrokers:        os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "customer-notifications"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		ClientOrigin:        getEnv("CLIENT_ORIGIN", "*"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
