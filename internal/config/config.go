package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds the PostgreSQL settings for the record readers and the document index.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	ApplicationName    string
	ConnectTimeoutSec  int
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds the object storage settings. Templates and results share one bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SMTPConfig holds mail transport settings. Delivery is disabled while Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DocumentConfig controls where generated documents go and how they are named.
type DocumentConfig struct {
	LocalResultsDir  string
	PresignExpirySec int
	Timezone         string
}

type AppConfig struct {
	AppHost            string
	Port               string
	LogLevel           string
	ShutdownTimeoutSec int
	Database           DatabaseConfig
	MinIO              MinIOConfig
	SMTP               SMTPConfig
	Document           DocumentConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the file.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:            getEnv("APP_HOST", "localhost:8080"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ShutdownTimeoutSec: getEnvInt("SHUTDOWN_TIMEOUT_SEC", 10),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			ApplicationName:    getEnv("DB_APPLICATION_NAME", "creditdoc"),
			ConnectTimeoutSec:  getEnvInt("DB_CONNECT_TIMEOUT_SEC", 5),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Document: DocumentConfig{
			LocalResultsDir:  getEnv("DOCUMENT_LOCAL_RESULTS_DIR", ""),
			PresignExpirySec: getEnvInt("DOCUMENT_PRESIGN_EXPIRY_SEC", 900),
			Timezone:         getEnv("DOCUMENT_TIMEZONE", "Asia/Ho_Chi_Minh"),
		},
	}
}

// Validate reports every setting the API cannot start without. SMTP is optional: without it
// the email endpoint answers "not configured" instead.
func (c *AppConfig) Validate() error {
	required := []struct{ key, value string }{
		{"DB_HOST", c.Database.Host},
		{"DB_USER", c.Database.User},
		{"DB_NAME", c.Database.Name},
		{"MINIO_ENDPOINT", c.MinIO.Endpoint},
		{"MINIO_ACCESS_KEY", c.MinIO.AccessKey},
		{"MINIO_SECRET_KEY", c.MinIO.SecretKey},
		{"MINIO_BUCKET", c.MinIO.Bucket},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Document.PresignExpirySec <= 0 {
		return fmt.Errorf("DOCUMENT_PRESIGN_EXPIRY_SEC must be positive, got %d", c.Document.PresignExpirySec)
	}
	return nil
}

// ShutdownTimeout is the grace period given to in-flight requests on SIGTERM.
func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Location resolves the document timezone, falling back to UTC when the zone database lacks it.
func (c DocumentConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c DocumentConfig) PresignExpiry() time.Duration {
	return time.Duration(c.PresignExpirySec) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
