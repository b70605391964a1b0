package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Usage    UsageConfig
	Analysis AnalysisConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	SecurityLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret string
}

type StorageConfig struct {
	Driver     string // "local" or "s3"
	LocalDir   string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
}

// UploadConfig overrides the upload rule tables. Zero values and empty lists
// keep the built-in defaults.
type UploadConfig struct {
	MaxFileSizeBytes    int64
	MaxFiles            int
	AllowedMimeTypes    []string
	DangerousExtensions []string
}

type UsageConfig struct {
	// CacheDriver is "memory" or "redis". The memory cache is process local
	// and only correct with a single API replica; it defaults to redis when
	// REDIS_URL is set.
	CacheDriver      string
	WarningThreshold int
}

type AnalysisConfig struct {
	FunctionURL string
	Topic       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SecurityLogPath:    getEnv("SECURITY_LOG_PATH", "logs/security.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "FAR Compliance"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "local"),
			LocalDir:   getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			S3Bucket:   getEnv("S3_BUCKET", ""),
			S3Region:   getEnv("S3_REGION", "us-east-1"),
			S3Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Upload: UploadConfig{
			MaxFileSizeBytes:    int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE_BYTES", 0)),
			MaxFiles:            getEnvAsInt("UPLOAD_MAX_FILES", 0),
			AllowedMimeTypes:    getEnvAsList("UPLOAD_ALLOWED_MIME_TYPES"),
			DangerousExtensions: getEnvAsList("UPLOAD_DANGEROUS_EXTENSIONS"),
		},
		Usage: UsageConfig{
			CacheDriver:      getEnv("USAGE_CACHE_DRIVER", defaultCacheDriver()),
			WarningThreshold: getEnvAsInt("USAGE_WARNING_THRESHOLD", 80),
		},
		Analysis: AnalysisConfig{
			FunctionURL: getEnv("ANALYSIS_FUNCTION_URL", ""),
			Topic:       getEnv("ANALYSIS_TOPIC_NAME", "ANALYZE_DOCUMENT"),
		},
	}
}

func defaultCacheDriver() string {
	if os.Getenv("REDIS_URL") != "" {
		return "redis"
	}
	return "memory"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
