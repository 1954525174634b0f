package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	MinIO      MinIOConfig
	S3         S3Config
	AI         AIConfig
	OpenRouter OpenRouterConfig
	Bedrock    BedrockConfig
	Sync       SyncConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Config struct {
	Region   string // S3_REGION
	Endpoint string // S3_ENDPOINT (for MinIO/LocalStack compatibility)
}

// AIConfig controls the primary metadata-extraction tier of the transformer.
type AIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	RateBurst  int
}

type OpenRouterConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	BaseURLEmbeddings string
	Dimensions        int
}

type BedrockConfig struct {
	Region  string
	ModelID string
}

type SyncConfig struct {
	Concurrency     int
	LockTTL         time.Duration
	ProcessedMaxAge time.Duration
	LogCap          int
	Interval        time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "emailpilot"),
			Password: getEnv("DB_PASSWORD", "emailpilot"),
			Name:     getEnv("DB_NAME", "emailpilot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "emailpilot"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "emailpilot123"),
			Bucket:    getEnv("MINIO_BUCKET", "emailpilot-artifacts"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:   getEnv("S3_REGION", "us-east-1"),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		AI: AIConfig{
			APIKey:     getEnv("AI_API_KEY", ""),
			Model:      getEnv("AI_MODEL", "anthropic/claude-3.5-haiku"),
			BaseURL:    getEnv("AI_BASE_URL", ""),
			Timeout:    time.Duration(getEnvInt("AI_TIMEOUT_SECS", 25)) * time.Second,
			RatePerSec: getEnvFloat("AI_RATE_PER_SEC", 2),
			RateBurst:  getEnvInt("AI_RATE_BURST", 4),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:            getEnv("OPENROUTER_API_KEY", ""),
			Model:             getEnv("OPENROUTER_MODEL", ""),
			BaseURL:           getEnv("OPENROUTER_BASE_URL", ""),
			BaseURLEmbeddings: getEnv("OPENROUTER_BASE_URL_EMBEDDINGS", ""),
			Dimensions:        getEnvInt("OPENROUTER_DIMENSIONS", 0),
		},
		Bedrock: BedrockConfig{
			Region:  getEnv("BEDROCK_REGION", ""),
			ModelID: getEnv("BEDROCK_MODEL_ID", "cohere.embed-english-v4"),
		},
		Sync: SyncConfig{
			Concurrency:     getEnvInt("SYNC_CONCURRENCY", 4),
			LockTTL:         time.Duration(getEnvInt("SYNC_LOCK_TTL_SECS", 1800)) * time.Second,
			ProcessedMaxAge: time.Duration(getEnvInt("SYNC_PROCESSED_MAX_AGE_DAYS", 180)) * 24 * time.Hour,
			LogCap:          getEnvInt("SYNC_LOG_CAP", 500),
			Interval:        time.Duration(getEnvInt("SYNC_INTERVAL_SECS", 900)) * time.Second,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
