package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string
	// Upstream CMS (Strapi) configuration
	CMSUrl        string
	CMSAPIToken   string // service-level token, used when user credentials are rejected
	CMSTimeout    time.Duration
	CMSJWTSecret  string // HS256 secret the CMS signs user tokens with
	JWKSIssuerURL string // optional RS256 issuer, e.g. when auth is fronted by an IdP
	// SMTP Configuration (contact form relay)
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFromEmail  string
	ContactEmailTo string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitWriteThreshold  int
	// Sync-event audit store (optional Postgres sink)
	SyncLogDBUrl string
	SyncLogToDB  bool
}

func LoadConfig() (*Config, error) {
	// .env only matters locally; ignored in production when the file is absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Trailing slash stripped to avoid double slashes when joining paths
		CMSUrl:        strings.TrimRight(getEnv("CMS_URL", ""), "/"),
		CMSAPIToken:   getEnv("CMS_API_TOKEN", ""),
		CMSTimeout:    time.Duration(getEnvInt("CMS_TIMEOUT_SECONDS", 10)) * time.Second,
		CMSJWTSecret:  getEnv("CMS_JWT_SECRET", getEnv("JWT_SECRET", "")),
		JWKSIssuerURL: strings.TrimRight(getEnv("JWKS_ISSUER_URL", ""), "/"),
		// SMTP Configuration
		SMTPHost:       getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:  getEnv("SMTP_FROM_EMAIL", "noreply@admissions.example.com"),
		ContactEmailTo: getEnv("CONTACT_EMAIL_TO", "info@admissions.example.com"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitWriteThreshold:  getEnvInt("RATE_LIMIT_WRITE_THRESHOLD", 20),
		// Sync-event audit store
		SyncLogDBUrl: getEnv("SYNC_LOG_DB_URL", ""),
		SyncLogToDB:  getEnvBool("SYNC_LOG_TO_DB", false),
	}

	if cfg.CMSUrl == "" {
		log.Println("WARNING: CMS_URL is missing. All upstream calls will fail.")
	}
	if cfg.CMSAPIToken == "" {
		log.Println("WARNING: CMS_API_TOKEN not configured. Credential fallback on rejected writes is disabled.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
