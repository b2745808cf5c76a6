package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file
// in the working directory is loaded first if present; real environment
// variables win over it, which is godotenv's default behavior.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := getEnv("ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := getEnv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := getEnv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := getEnv("SESSION_VALIDITY_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionValidityDuration = d
		}
	}
	if v := getEnv("SESSION_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionSweepInterval = d
		}
	}
	if v := getEnv("ADMIN_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.AdminUserID = id
		}
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS"); v != "" {
		config.CORSAllowedOrigins = splitCSV(v)
	}
	if v := getEnv("S3_ACCESS_KEY"); v != "" {
		config.S3AccessKey = v
	}
	if v := getEnv("S3_SECRET_KEY"); v != "" {
		config.S3SecretKey = v
	}
	if v := getEnv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := getEnv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := getEnv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
	if v := getEnv("MAIL_REGION"); v != "" {
		config.MailRegion = v
	}
	if v := getEnv("MAIL_SENDER"); v != "" {
		config.MailSender = v
	}
	if v := getEnv("CONTACT_RECIPIENT"); v != "" {
		config.ContactRecipient = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
