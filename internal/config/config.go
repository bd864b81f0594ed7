package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the metering service.
type Config struct {
	Database    DatabaseConfig
	Cache       CacheConfig
	Queue       QueueConfig
	Provider    ProviderConfig
	Pricing     PricingConfig
	Credentials CredentialsConfig
	LogLevel    string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig holds credential cache settings
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// QueueConfig holds usage queue settings
type QueueConfig struct {
	BatchSize     int
	BatchTimeout  time.Duration
	UseRedis      bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ProviderConfig holds provider probe settings
type ProviderConfig struct {
	ProbeTimeout  time.Duration
	OpenAIBaseURL string
	ImageBaseURL  string
	AzureEndpoint string
	GoogleBaseURL string
}

// PricingConfig holds pricing table settings
type PricingConfig struct {
	// FilePath points to an optional YAML pricing override file
	FilePath string
}

// CredentialsConfig holds credential store settings
type CredentialsConfig struct {
	// EncryptionKey is the base64-encoded AES-256 key for credential
	// values at rest
	EncryptionKey string
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encryptionKey := os.Getenv("CREDENTIAL_ENCRYPTION_KEY")
	if encryptionKey == "" {
		return nil, fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CREDENTIAL_CACHE_SIZE", 256),
			TTL:  getEnvDuration("CREDENTIAL_CACHE_TTL", 15*time.Minute),
		},
		Queue: QueueConfig{
			BatchSize:     getEnvInt("USAGE_QUEUE_BATCH_SIZE", 100),
			BatchTimeout:  getEnvDuration("USAGE_QUEUE_BATCH_TIMEOUT", 5*time.Second),
			UseRedis:      getEnvString("USAGE_QUEUE_USE_REDIS", "false") == "true",
			RedisAddr:     getEnvString("REDIS_ADDRESS", "localhost:6379"),
			RedisPassword: getEnvString("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Provider: ProviderConfig{
			ProbeTimeout:  getEnvDuration("PROVIDER_PROBE_TIMEOUT", 10*time.Second),
			OpenAIBaseURL: getEnvString("OPENAI_BASE_URL", ""),
			ImageBaseURL:  getEnvString("IMAGE_GENERATION_BASE_URL", ""),
			AzureEndpoint: getEnvString("AZURE_OPENAI_ENDPOINT", ""),
			GoogleBaseURL: getEnvString("GOOGLE_AI_BASE_URL", ""),
		},
		Pricing: PricingConfig{
			FilePath: getEnvString("PRICING_FILE", ""),
		},
		Credentials: CredentialsConfig{
			EncryptionKey: encryptionKey,
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	return cfg, nil
}
