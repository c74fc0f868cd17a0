// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	BaseURL            string        `mapstructure:"BASE_URL"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	TrustedProxies     []string      `mapstructure:"TRUSTED_PROXIES"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Session Configuration
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL_HOURS"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`

	// OAuth Configuration
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	FacebookAppID        string `mapstructure:"FACEBOOK_APP_ID"`
	FacebookAppSecret    string `mapstructure:"FACEBOOK_APP_SECRET"`
	OAuthStateCookieName string `mapstructure:"OAUTH_STATE_COOKIE_NAME"`
	OAuthCookieMaxAge    int    `mapstructure:"OAUTH_COOKIE_MAX_AGE_MINUTES"`
	CookieDomain         string `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure         bool   `mapstructure:"COOKIE_SECURE"`
	CookieSameSite       string `mapstructure:"COOKIE_SAME_SITE"`

	// Upload Configuration
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	UploadMaxFileBytes  int64  `mapstructure:"UPLOAD_MAX_FILE_BYTES"`
	UploadMaxFiles      int    `mapstructure:"UPLOAD_MAX_FILES"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	// Cache Configuration
	RedisURL       string        `mapstructure:"REDIS_URL"`
	SearchCacheTTL time.Duration `mapstructure:"SEARCH_CACHE_TTL_SECONDS"`

	// Views
	ViewDedupWindow time.Duration `mapstructure:"VIEW_DEDUP_WINDOW_MINUTES"`

	// Elasticsearch Configuration
	ElasticsearchURL         string `mapstructure:"ELASTICSEARCH_URL"`
	SearchReindexJobSchedule string `mapstructure:"SEARCH_REINDEX_JOB_SCHEDULE"`
}

// GoogleEnabled reports whether Google OAuth credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// FacebookEnabled reports whether Facebook OAuth credentials are configured.
func (c *Config) FacebookEnabled() bool {
	return c.FacebookAppID != "" && c.FacebookAppSecret != ""
}

// DevAuthBypass is true when no OAuth provider is configured outside release mode.
// Requests are then authenticated as the local development user.
func (c *Config) DevAuthBypass() bool {
	return !c.GoogleEnabled() && !c.FacebookEnabled() && c.GinMode != "release"
}

// CloudinaryEnabled reports whether uploads should go to Cloudinary instead of local disk.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("BASE_URL", "http://localhost:5000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5000")
	// Comma separated IPs or CIDRs whose X-Forwarded-For is believed. Empty trusts no proxy.
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "property_connect")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL_HOURS", 24*7)
	v.SetDefault("SESSION_COOKIE_NAME", "pc_session")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("FACEBOOK_APP_ID", "")
	v.SetDefault("FACEBOOK_APP_SECRET", "")
	v.SetDefault("OAUTH_STATE_COOKIE_NAME", "pc_oauth_state")
	v.SetDefault("OAUTH_COOKIE_MAX_AGE_MINUTES", 10)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAME_SITE", "Lax")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_FILE_BYTES", 10*1024*1024)
	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "property-connect")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SEARCH_CACHE_TTL_SECONDS", 30)

	v.SetDefault("VIEW_DEDUP_WINDOW_MINUTES", 60)

	// Elasticsearch is optional; an empty URL disables indexing and the nearby endpoint.
	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("SEARCH_REINDEX_JOB_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour
	cfg.SearchCacheTTL = time.Duration(v.GetInt("SEARCH_CACHE_TTL_SECONDS")) * time.Second
	cfg.ViewDedupWindow = time.Duration(v.GetInt("VIEW_DEDUP_WINDOW_MINUTES")) * time.Minute
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("FATAL: SESSION_SECRET is not set. It is required to sign session tokens in release mode")
		}
		cfg.SessionSecret = "dev-session-secret-change-me"
	}

	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
