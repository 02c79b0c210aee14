// ============================================================================
// backend/internal/shared/config.go
// Web front configuration and environment variable helpers
// ============================================================================

package shared

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ============================================================================
// Configuration Structs
// ============================================================================

// WebConfig holds everything the web front needs at startup
type WebConfig struct {
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	HTTPPort    string `validate:"required,numeric"`
	GRPCPort    string `validate:"required,numeric"`

	Backend  BackendConfig
	MongoDB  MongoSettings
	Redis    RedisConfig
	Security SecurityConfig
	CORS     CORSConfig

	// ProbeInterval is how often the backend is pinged for the health service
	ProbeInterval time.Duration `validate:"gt=0"`
}

// BackendConfig points at the scheduling REST backend. An empty URL runs the
// admin pages offline against MongoDB (or in memory without it).
type BackendConfig struct {
	URL            string        `validate:"omitempty,url"`
	Timeout        time.Duration `validate:"gt=0"`
	CSRFCookieName string        `validate:"required"`
}

// MongoSettings configures the offline admin store
type MongoSettings struct {
	URI      string
	Database string `validate:"required_with=URI"`
}

// RedisConfig configures the lookup option cache; empty Addr disables it
type RedisConfig struct {
	Addr      string
	Password  string
	LookupTTL time.Duration `validate:"gte=0"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	// JWTSecret enables the admin guard when set; tokens are issued elsewhere
	JWTSecret  string
	SessionTTL time.Duration `validate:"gt=0"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `validate:"min=1"`
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int `validate:"gte=0"`
}

// ============================================================================
// Configuration Loading Functions
// ============================================================================

// LoadEnv loads environment variables from .env file
func LoadEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("WARN: %s file not found, using system environment variables", envFile)
		return err
	}

	log.Printf("INFO: Loaded environment from %s", envFile)
	return nil
}

// LoadWebConfig reads the web front configuration from the environment and
// validates it
func LoadWebConfig() (*WebConfig, error) {
	config := &WebConfig{
		Environment: GetEnv("ENVIRONMENT", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		HTTPPort:    GetEnv("HTTP_PORT", DefaultHTTPPort),
		GRPCPort:    GetEnv("GRPC_PORT", DefaultGRPCPort),

		Backend: BackendConfig{
			URL:            strings.TrimRight(GetEnv("BACKEND_URL", "http://localhost:8000"), "/"),
			Timeout:        GetDurationEnv("BACKEND_TIMEOUT", 15*time.Second),
			CSRFCookieName: GetEnv("CSRF_COOKIE_NAME", "csrftoken"),
		},
		MongoDB: MongoSettings{
			URI:      GetEnv("MONGO_URI", ""),
			Database: GetEnv("MONGO_DB_NAME", "schedule_web"),
		},
		Redis: RedisConfig{
			Addr:      GetEnv("REDIS_ADDR", ""),
			Password:  GetEnv("REDIS_PASSWORD", ""),
			LookupTTL: GetDurationEnv("LOOKUP_CACHE_TTL", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:  GetEnv("JWT_SECRET", ""),
			SessionTTL: GetDurationEnv("SESSION_TTL", 2*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins:   GetStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   GetStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   GetStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-CSRFToken"}),
			AllowCredentials: GetBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           GetIntEnv("CORS_MAX_AGE", 3600),
		},
		ProbeInterval: GetDurationEnv("PROBE_INTERVAL", 30*time.Second),
	}

	// "offline" is accepted as an explicit way to say "no backend"
	if strings.EqualFold(config.Backend.URL, "offline") {
		config.Backend.URL = ""
	}

	if err := ValidateWebConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ============================================================================
// Environment Variable Helper Functions
// ============================================================================

// GetEnv retrieves an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntEnv retrieves an integer environment variable or returns a default value
func GetIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetBoolEnv retrieves a boolean environment variable or returns a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetDurationEnv retrieves a duration environment variable or returns a default value
// Supports format like "30s", "5m", "1h"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid duration value for %s: %s, using default: %v", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// GetStringSliceEnv retrieves a comma-separated string list or returns a default value
func GetStringSliceEnv(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, item := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

// ============================================================================
// Configuration Validation
// ============================================================================

var validate = validator.New()

// ValidateWebConfig checks the struct tags of config and reports every
// failing field in one error
func ValidateWebConfig(config *WebConfig) error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
}

// ============================================================================
// Configuration Display (for debugging)
// ============================================================================

// PrintWebConfig prints configuration (sanitized) for debugging
func PrintWebConfig(config *WebConfig) {
	log.Println("=== Web Front Configuration ===")
	log.Printf("Environment: %s", config.Environment)
	log.Printf("Log Level: %s", config.LogLevel)
	log.Printf("HTTP Port: %s", config.HTTPPort)
	log.Printf("gRPC Health Port: %s", config.GRPCPort)
	log.Println("=== Backend ===")
	if config.Backend.URL == "" {
		log.Println("Backend: offline")
	} else {
		log.Printf("Backend URL: %s", config.Backend.URL)
	}
	log.Printf("Backend Timeout: %v", config.Backend.Timeout)
	log.Printf("Probe Interval: %v", config.ProbeInterval)
	log.Println("=== Storage ===")
	log.Printf("MongoDB: %t (Database: %s)", config.MongoDB.URI != "", config.MongoDB.Database)
	log.Printf("Redis Lookup Cache: %t (TTL: %v)", config.Redis.Addr != "", config.Redis.LookupTTL)
	log.Println("=== Security ===")
	log.Printf("Admin Guard: %t", config.Security.JWTSecret != "")
	log.Printf("Session TTL: %v", config.Security.SessionTTL)
	log.Println("=== CORS Configuration ===")
	log.Printf("Allowed Origins: %v", config.CORS.AllowedOrigins)
	log.Printf("Allowed Methods: %v", config.CORS.AllowedMethods)
	log.Printf("Allow Credentials: %t", config.CORS.AllowCredentials)
	log.Println("===============================")
}

// ============================================================================
// Defaults & Environment Checks
// ============================================================================

const (
	DefaultHTTPPort = "8080"
	DefaultGRPCPort = "50061"
)

// IsDevelopment checks if running in development environment
func IsDevelopment(config *WebConfig) bool {
	return config.Environment == "development"
}

// IsProduction checks if running in production environment
func IsProduction(config *WebConfig) bool {
	return config.Environment == "production"
}

// Offline reports whether the admin pages run without the REST backend
func Offline(config *WebConfig) bool {
	return config.Backend.URL == ""
}
