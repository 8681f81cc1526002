package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port           string
	Environment    string
	DatabaseURL    string
	RuleSetFile    string
	ModelDir       string
	DefaultVariant string
	// API authentication
	JWTSecret      string
	APIClientID    string
	APIKeyHash     string
	RequireAPIAuth bool
	// Security configuration
	AllowedOrigins     string
	TrustedProxies     string
	EnableRateLimit    bool
	RateLimitPerMinute int
	MaxRequestSize     int64
	// Observability
	LogLevel      string
	LogFormat     string
	EnableMetrics bool
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENV", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RuleSetFile:    getEnv("RULESET_FILE", ""),
		ModelDir:       getEnv("MODEL_DIR", ""),
		DefaultVariant: getEnv("DEFAULT_VARIANT", "standard"),
		// API authentication
		JWTSecret:      getEnv("JWT_SECRET", ""),
		APIClientID:    getEnv("API_CLIENT_ID", "dashboard"),
		APIKeyHash:     getEnv("API_KEY_HASH", ""),
		RequireAPIAuth: getEnvAsBool("REQUIRE_API_AUTH", false),
		// Security configuration
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		MaxRequestSize:     getEnvAsInt64("MAX_REQUEST_SIZE", 1024*1024), // 1MB default
		// Observability
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase returns true if rule sets should also be read from Postgres
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasModel returns true if the model-backed variant should be loaded
func (c *Config) HasModel() bool {
	return c.ModelDir != ""
}

// HasAPICredentials returns true if token exchange is possible
func (c *Config) HasAPICredentials() bool {
	return c.JWTSecret != "" && c.APIKeyHash != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return []string{}
	}
	return splitList(c.AllowedOrigins)
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	if c.TrustedProxies == "" {
		return []string{} // No trusted proxies by default
	}
	return splitList(c.TrustedProxies)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
