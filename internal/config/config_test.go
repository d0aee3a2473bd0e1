package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		// t.Setenv sets the environment variable for the duration of the test
		// and automatically restores it afterwards.
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_SECRET", "jwt_secret")
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("KAFKA_BROKERS", "localhost:9092")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
		assert.Equal(t, "whsec_123", cfg.StripeWebhookSecret)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "localhost:9092", cfg.KafkaBrokers)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("KAFKA_TOPIC", "")
		t.Setenv("UPLOAD_DIR", "")

		cfg := LoadConfig()

		assert.Equal(t, "5000", cfg.AppPort)
		assert.Equal(t, "customer-notifications", cfg.KafkaTopic)
		assert.Equal(t, "./uploads", cfg.UploadDir)
	})
}
