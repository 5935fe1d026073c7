package config

import (
	"os"
	"strings"
	"time"

	"streamreport/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Env              string
	LogLevel         string
	APIBaseURL       string
	APIToken         string
	AssetRoot        string
	ProgressInterval time.Duration
	RequestTimeout   time.Duration
	Locale           string
	OutputFormat     string
	DatabaseURL      string
	ObjectStoreType  string
	LocalStoreDir    string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	ReportQueueURL   string
	StubPort         string
	StubAnalyzeDelay time.Duration
	StubStoreDir     string
}

const (
	defaultProgressInterval = 3 * time.Second
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Env:              normalizeEnv(getEnv("ENV", "dev")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		APIToken:         os.Getenv("API_TOKEN"),
		AssetRoot:        getEnv("ASSET_ROOT", "/static/uploads"),
		ProgressInterval: getDuration("PROGRESS_INTERVAL", defaultProgressInterval),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 0),
		Locale:           normalizeLocale(getEnv("LOCALE", "ja")),
		OutputFormat:     normalizeFormat(getEnv("OUTPUT_FORMAT", "text")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "none")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./exports"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		ReportQueueURL:   getEnv("REPORT_QUEUE_URL", ""),
		StubPort:         getEnv("STUB_PORT", "5000"),
		StubAnalyzeDelay: getDuration("STUB_ANALYZE_DELAY", 0),
		StubStoreDir:     getEnv("STUB_STORE_DIR", "./static/uploads"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{
			"key":     key,
			"value":   raw,
			"default": def.String(),
		})
		return def
	}
	return val
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeLocale(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "en-us", "english":
		return "en"
	default:
		return "ja"
	}
}

func normalizeFormat(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "html":
		return "html"
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	default:
		return "text"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}
