package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                   string
	Origin                 string
	Environment            string
	JWTSecret              string
	Database               DatabaseConfig
	Mailer                 MailerConfig
	JWTExpirationMinutes   int
	RefreshExpirationHours int
	BlacklistPurgeMinutes  int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "gatepass"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	mailPort, err := strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}

	mailerConfig := MailerConfig{
		Host:     getEnv("EMAIL_HOST", ""),
		Port:     mailPort,
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", "Visitor Parking System <no-reply@parking.local>"),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	refreshExpHours, err := strconv.Atoi(getEnv("REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_EXPIRATION_HOURS: %w", err)
	}

	purgeMinutes, err := strconv.Atoi(getEnv("BLACKLIST_PURGE_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid BLACKLIST_PURGE_MINUTES: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                   getEnv("PORT", "3000"),
		Origin:                 getEnv("ORIGIN", "http://localhost:4200"),
		Environment:            getEnv("NODE_ENV", "development"),
		JWTSecret:              getEnv("JWT_SECRET", "default_jwt_secret"),
		Database:               dbConfig,
		Mailer:                 mailerConfig,
		JWTExpirationMinutes:   jwtExpMinutes,
		RefreshExpirationHours: refreshExpHours,
		BlacklistPurgeMinutes:  purgeMinutes,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
