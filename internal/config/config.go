package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database backing the /api routes. Empty disables them.
	DatabaseURL string

	// Upstreams
	TaxonAPIURL       string // env: TAXON_API_URL, default: BaseURL
	GBIFAPIURL        string
	PhyloPicAPIURL    string
	PhyloPicSiteURL   string
	PhyloPicAssetKind string // "vector" or "thumbnail"
	UpstreamTimeout   time.Duration

	// Upstream availability checks
	UpstreamCheckInterval time.Duration

	// Rate limiting. RedisURL empty keeps limiter state in memory.
	RedisURL     string
	RateLimitMax int

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Site content file (priority species, related projects)
	ContentFile string

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "UK Barcode of Life"
	SiteTagline string
	SiteFooter  string
	SiteLogoURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	baseURL := getEnv("BASE_URL", "http://localhost:3000")
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     baseURL,
		DatabaseURL: getEnv("DATABASE_URL", ""),

		TaxonAPIURL:       getEnv("TAXON_API_URL", baseURL),
		GBIFAPIURL:        getEnv("GBIF_API_URL", "https://api.gbif.org/v1"),
		PhyloPicAPIURL:    getEnv("PHYLOPIC_API_URL", "https://api.phylopic.org"),
		PhyloPicSiteURL:   getEnv("PHYLOPIC_SITE_URL", "https://www.phylopic.org"),
		PhyloPicAssetKind: getEnv("PHYLOPIC_ASSET_KIND", "vector"),
		UpstreamTimeout:   getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		UpstreamCheckInterval: getEnvDuration("UPSTREAM_CHECK_INTERVAL", 5*time.Minute),

		RedisURL:     getEnv("REDIS_URL", ""),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 100),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),
		ContentFile: getEnv("CONTENT_FILE", "content.yaml"),

		SiteTitle:   getEnv("SITE_TITLE", "UK Barcode of Life"),
		SiteTagline: getEnv("SITE_TAGLINE", "DNA barcodes for UK species"),
		SiteFooter:  getEnv("SITE_FOOTER", "UK Barcode of Life"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasDatabase returns true if the taxonomy API should be served from a
// local database.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
