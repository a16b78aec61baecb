package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	StorageBackendSupabase = "supabase"
	StorageBackendMinio    = "minio"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string
	// SupabaseServiceRoleKey authorizes storage writes. The server builds
	// every object path from the verified user id, so bucket policies on
	// {user_id}/... are not relied on.
	SupabaseServiceRoleKey string

	// Object storage
	StorageBackend string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioPublicURL string

	// Database
	DatabaseURL string

	// Inference
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// AnalyzeFunctionURL points the upload flow at a separately deployed
	// analyze-skin handler. Empty means analyze in-process.
	AnalyzeFunctionURL string

	// Upload flow
	CleanupOrphanedUploads bool
	UploadRatePerMinute    int
	UploadBurst            int
	MaxUploadBytes         int64

	// Server
	Port        string
	Environment string
	LogLevel    string
}

func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "skin-scans"),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendSupabase),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIBaseURL: getEnv("AI_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		AIModel:   getEnv("AI_MODEL", "google/gemini-2.5-flash"),

		AnalyzeFunctionURL: getEnv("ANALYZE_FUNCTION_URL", ""),

		CleanupOrphanedUploads: getEnvBool("CLEANUP_ORPHANED_UPLOADS", false),
		UploadRatePerMinute:    getEnvInt("UPLOAD_RATE_PER_MINUTE", 10),
		UploadBurst:            getEnvInt("UPLOAD_BURST", 5),
		MaxUploadBytes:         int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// A remote analyze handler holds its own inference key.
	if c.AnalyzeFunctionURL == "" && c.AIAPIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	switch c.StorageBackend {
	case StorageBackendSupabase:
		if c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required for the supabase storage backend")
		}
	case StorageBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.UploadRatePerMinute <= 0 {
		return fmt.Errorf("UPLOAD_RATE_PER_MINUTE must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
