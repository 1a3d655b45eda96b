package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Storage StorageConfig
	Dropbox DropboxConfig
	S3      S3Config
	OCR     OCRConfig
	Queue   QueueConfig
	CORS    CORSConfig
	Email   EmailConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds settings for validating externally issued JWTs.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// StorageConfig selects and roots the remote file storage backend.
type StorageConfig struct {
	Provider      string `mapstructure:"provider"` // dropbox or s3
	RootPrefix    string `mapstructure:"root_prefix"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// DropboxConfig holds Dropbox API credentials. When RefreshToken is set the
// client exchanges it for short-lived access tokens; otherwise AccessToken is
// used as-is.
type DropboxConfig struct {
	AccessToken  string `mapstructure:"access_token"`
	AppKey       string `mapstructure:"app_key"`
	AppSecret    string `mapstructure:"app_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// S3Config holds AWS S3 settings for the alternate storage backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// OCRConfig holds text-extraction provider settings.
type OCRConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// QueueConfig holds OCR queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxAttempts      int `mapstructure:"max_attempts"`
	Concurrency      int `mapstructure:"concurrency"`
	StaleAfterSecs   int `mapstructure:"stale_after_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds notification delivery settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"` // ses or noop
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	NotifyAddress string `mapstructure:"notify_address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the CASEDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CASEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "casedesk")
	v.SetDefault("db.password", "casedesk_secret")
	v.SetDefault("db.name", "casedesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "casedesk")

	// Storage defaults
	v.SetDefault("storage.provider", "dropbox")
	v.SetDefault("storage.root_prefix", "/CASES")
	v.SetDefault("storage.max_file_size_mb", 50)

	// Dropbox defaults
	v.SetDefault("dropbox.access_token", "")
	v.SetDefault("dropbox.app_key", "")
	v.SetDefault("dropbox.app_secret", "")
	v.SetDefault("dropbox.refresh_token", "")
	v.SetDefault("dropbox.timeout_secs", 60)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "casedesk-files")
	v.SetDefault("s3.endpoint", "")

	// OCR defaults
	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout_secs", 120)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.stale_after_secs", 1800)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@casedesk.local")
	v.SetDefault("email.notify_address", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "CASEDESK_SERVER_PORT",
		"server.read_timeout":      "CASEDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "CASEDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":       "CASEDESK_SERVER_ENVIRONMENT",
		"db.host":                  "CASEDESK_DB_HOST",
		"db.port":                  "CASEDESK_DB_PORT",
		"db.user":                  "CASEDESK_DB_USER",
		"db.password":              "CASEDESK_DB_PASSWORD",
		"db.name":                  "CASEDESK_DB_NAME",
		"db.sslmode":               "CASEDESK_DB_SSLMODE",
		"db.max_open":              "CASEDESK_DB_MAX_OPEN",
		"db.max_idle":              "CASEDESK_DB_MAX_IDLE",
		"auth.jwt_secret":          "CASEDESK_AUTH_JWT_SECRET",
		"auth.issuer":              "CASEDESK_AUTH_ISSUER",
		"storage.provider":         "CASEDESK_STORAGE_PROVIDER",
		"storage.root_prefix":      "CASEDESK_STORAGE_ROOT_PREFIX",
		"storage.max_file_size_mb": "CASEDESK_STORAGE_MAX_FILE_SIZE_MB",
		"dropbox.access_token":     "CASEDESK_DROPBOX_ACCESS_TOKEN",
		"dropbox.app_key":          "CASEDESK_DROPBOX_APP_KEY",
		"dropbox.app_secret":       "CASEDESK_DROPBOX_APP_SECRET",
		"dropbox.refresh_token":    "CASEDESK_DROPBOX_REFRESH_TOKEN",
		"dropbox.timeout_secs":     "CASEDESK_DROPBOX_TIMEOUT_SECS",
		"s3.region":                "CASEDESK_S3_REGION",
		"s3.bucket":                "CASEDESK_S3_BUCKET",
		"s3.endpoint":              "CASEDESK_S3_ENDPOINT",
		"s3.access_key":            "CASEDESK_S3_ACCESS_KEY",
		"s3.secret_key":            "CASEDESK_S3_SECRET_KEY",
		"ocr.endpoint":             "CASEDESK_OCR_ENDPOINT",
		"ocr.api_key":              "CASEDESK_OCR_API_KEY",
		"ocr.timeout_secs":         "CASEDESK_OCR_TIMEOUT_SECS",
		"queue.poll_interval_secs": "CASEDESK_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_attempts":       "CASEDESK_QUEUE_MAX_ATTEMPTS",
		"queue.concurrency":        "CASEDESK_QUEUE_CONCURRENCY",
		"queue.stale_after_secs":   "CASEDESK_QUEUE_STALE_AFTER_SECS",
		"cors.allowed_origins":     "CASEDESK_CORS_ALLOWED_ORIGINS",
		"email.provider":           "CASEDESK_EMAIL_PROVIDER",
		"email.region":             "CASEDESK_EMAIL_REGION",
		"email.from_address":       "CASEDESK_EMAIL_FROM_ADDRESS",
		"email.notify_address":     "CASEDESK_EMAIL_NOTIFY_ADDRESS",
		"log.level":                "CASEDESK_LOG_LEVEL",
		"log.format":               "CASEDESK_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CASEDESK_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CASEDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.Storage = StorageConfig{
		Provider:      v.GetString("storage.provider"),
		RootPrefix:    v.GetString("storage.root_prefix"),
		MaxFileSizeMB: v.GetInt64("storage.max_file_size_mb"),
	}
	cfg.Dropbox = DropboxConfig{
		AccessToken:  v.GetString("dropbox.access_token"),
		AppKey:       v.GetString("dropbox.app_key"),
		AppSecret:    v.GetString("dropbox.app_secret"),
		RefreshToken: v.GetString("dropbox.refresh_token"),
		TimeoutSecs:  v.GetInt("dropbox.timeout_secs"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.OCR = OCRConfig{
		Endpoint:    v.GetString("ocr.endpoint"),
		APIKey:      v.GetString("ocr.api_key"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxAttempts:      v.GetInt("queue.max_attempts"),
		Concurrency:      v.GetInt("queue.concurrency"),
		StaleAfterSecs:   v.GetInt("queue.stale_after_secs"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		NotifyAddress: v.GetString("email.notify_address"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
