package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string

	IMAPHost     string
	IMAPPort     string
	IMAPUser     string
	IMAPPassword string
	IMAPFolder   string
	IMAPSSL      bool

	RefreshInterval time.Duration
	IngestLimit     int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "pricefeed"),
		DBPassword:  getEnv("DB_PASSWORD", "pricefeed_secret"),
		DBName:      getEnv("DB_NAME", "pricefeed"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:     getEnv("GIN_MODE", "debug"),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnv("IMAP_PORT", ""),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPFolder:   getEnv("IMAP_FOLDER", "INBOX"),
		IMAPSSL:      getEnv("IMAP_SSL", "true") != "false",

		RefreshInterval: time.Duration(getEnvInt("REFRESH_MINUTES", 5)) * time.Minute,
		IngestLimit:     getEnvInt("INGEST_LIMIT", 50),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MailboxConfigured reports whether the minimum IMAP settings are present.
// A cycle started without them aborts immediately and waits for the operator.
func (c *Config) MailboxConfigured() bool {
	return c.IMAPHost != "" && c.IMAPUser != "" && c.IMAPPassword != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
