package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Port          string
	Env           string
	SessionSecret string
	JWTSecret     string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	PrestashopAPIURL string
	PrestashopAPIKey string

	SyncIntervalMinutes int

	AdminEmail string
	AdminName  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	syncInterval, _ := strconv.Atoi(getEnv("ORDER_SYNC_INTERVAL_MINUTES", "120"))

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "affiliatehub"),

		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		SessionSecret: getEnv("SESSION_SECRET", "affiliatehub-secret"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USERNAME"),
		SMTPPass: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		PrestashopAPIURL: os.Getenv("PRESTASHOP_API_URL"),
		PrestashopAPIKey: os.Getenv("PRESTASHOP_API_KEY"),

		SyncIntervalMinutes: syncInterval,

		AdminEmail: getEnv("ADMIN_EMAIL", "admin@rstferramentas.com"),
		AdminName:  getEnv("ADMIN_NAME", "RST Admin"),
	}

	return config, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
