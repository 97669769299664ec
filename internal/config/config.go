package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth. Endpoints are open when no key is configured.
	APIKey string

	// Downstream chunk index. Delivery is skipped when no URL is set.
	IndexURL    string
	IndexAPIKey string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentDeliver int
	DeliverBatchSize     int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultMaxTokens int
	TokenEncoding    string
	Tokenizer        string // "tiktoken" or "estimate"

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("SEMCHUNK_API_KEY"),

		IndexURL:    os.Getenv("INDEX_URL"),
		IndexAPIKey: os.Getenv("INDEX_API_KEY"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDeliver: envInt("MAX_CONCURRENT_DELIVER", 10),
		DeliverBatchSize:     envInt("DELIVER_BATCH_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultMaxTokens: envInt("DEFAULT_MAX_TOKENS", 500),
		TokenEncoding:    envOr("TOKEN_ENCODING", "cl100k_base"),
		Tokenizer:        envOr("TOKENIZER", "tiktoken"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentDeliver <= 0 {
		cfg.MaxConcurrentDeliver = 10
	}
	if cfg.DeliverBatchSize <= 0 {
		cfg.DeliverBatchSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DefaultMaxTokens <= 0 {
		return fmt.Errorf("DEFAULT_MAX_TOKENS must be a positive integer, got %d", c.DefaultMaxTokens)
	}
	switch c.Tokenizer {
	case "tiktoken", "estimate":
	default:
		return fmt.Errorf("TOKENIZER must be tiktoken or estimate, got %q", c.Tokenizer)
	}
	if c.IndexURL == "" && c.IndexAPIKey != "" {
		return fmt.Errorf("INDEX_API_KEY set without INDEX_URL")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
