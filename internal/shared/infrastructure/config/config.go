package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/database"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Database     database.PostgresConfig
	Redis        database.RedisConfig
	JWT          JWTConfig
	FileStorage  FileStorageConfig
	Google       GoogleConfig
	Notification NotificationConfig
	Client       ClientConfig
}

// GoogleConfig holds Google sign-in configuration
type GoogleConfig struct {
	ClientID string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
	Env            string
	// MigrationsPath overrides the migrations compiled into the binary.
	MigrationsPath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	Expiry      time.Duration
	GuestExpiry time.Duration
	// GuestPurgeInterval is how often guest accounts older than GuestExpiry
	// are deleted. Zero disables the cleanup.
	GuestPurgeInterval time.Duration
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	LocalBaseURL     string
	LinkExpiry       time.Duration
}

// NotificationConfig tunes the notification center and the toast host.
type NotificationConfig struct {
	PollInterval  time.Duration
	ToastDuration time.Duration
	PageSize      int
	// Read notifications older than Retention are purged every PurgeInterval.
	Retention     time.Duration
	PurgeInterval time.Duration
}

// ClientConfig is read by maeumctl.
type ClientConfig struct {
	BaseURL string
	Token   string
}

// Load reads configuration from environment variables, optionally layered
// over a YAML file named by MAEUM_CONFIG.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	if path := os.Getenv("MAEUM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
			}
		}
	}

	return Config{
		Server: ServerConfig{
			Port:           getString(v, "PORT", "8080"),
			AllowedOrigins: getString(v, "ALLOWED_ORIGINS", "http://localhost:5173"),
			Env:            getString(v, "APP_ENV", "development"),
			MigrationsPath: getString(v, "MIGRATIONS_PATH", ""),
		},
		Database: database.PostgresConfig{
			Host:     getString(v, "DB_HOST", "localhost"),
			Port:     getString(v, "DB_PORT", "5432"),
			User:     getString(v, "DB_USER", "postgres"),
			Password: getString(v, "DB_PASSWORD", ""),
			DBName:   getString(v, "DB_NAME", "maeumssi"),
			SSLMode:  getString(v, "DB_SSLMODE", "disable"),

			MaxOpenConns: getInt(v, "DB_MAX_OPEN_CONNS", 25),
		},
		Redis: database.RedisConfig{
			Host:     getString(v, "REDIS_HOST", "localhost"),
			Port:     getString(v, "REDIS_PORT", "6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getString(v, "JWT_SECRET", "default-dev-secret"),
			Expiry:      parseDuration(getString(v, "JWT_EXPIRATION", "24h"), 24*time.Hour),
			GuestExpiry: parseDuration(getString(v, "JWT_GUEST_EXPIRATION", "72h"), 72*time.Hour),

			GuestPurgeInterval: parseDuration(getString(v, "GUEST_PURGE_INTERVAL", "24h"), 24*time.Hour),
		},
		FileStorage: FileStorageConfig{
			UseS3:            getString(v, "USE_S3", "false") == "true",
			S3Region:         getString(v, "S3_REGION", "ap-northeast-2"),
			S3Endpoint:       getString(v, "S3_ENDPOINT", ""),
			S3PublicEndpoint: getString(v, "S3_PUBLIC_ENDPOINT", getString(v, "S3_ENDPOINT", "")),
			S3AccessKey:      getString(v, "S3_ACCESS_KEY", ""),
			S3SecretKey:      getString(v, "S3_SECRET_KEY", ""),
			S3BucketName:     getString(v, "S3_BUCKET", ""),
			S3UseSSL:         getString(v, "S3_USE_SSL", "true") == "true",
			LocalPath:        getString(v, "LOCAL_STORAGE_PATH", "./uploads"),
			LocalBaseURL:     getString(v, "LOCAL_STORAGE_URL", "http://localhost:8080/uploads"),
			LinkExpiry:       parseDuration(getString(v, "SHARE_LINK_EXPIRY", "24h"), 24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID: getString(v, "GOOGLE_CLIENT_ID", ""),
		},
		Notification: NotificationConfig{
			PollInterval:  parseDuration(getString(v, "NOTIFICATION_POLL_INTERVAL", "60s"), 60*time.Second),
			ToastDuration: parseDuration(getString(v, "TOAST_DURATION", "2s"), 2*time.Second),
			PageSize:      getInt(v, "NOTIFICATION_PAGE_SIZE", 50),
			Retention:     parseDuration(getString(v, "NOTIFICATION_RETENTION", "2160h"), 90*24*time.Hour),
			PurgeInterval: parseDuration(getString(v, "NOTIFICATION_PURGE_INTERVAL", "6h"), 6*time.Hour),
		},
		Client: ClientConfig{
			BaseURL: getString(v, "MAEUM_API_URL", "http://localhost:8080"),
			Token:   getString(v, "MAEUM_TOKEN", ""),
		},
	}
}

// getString reads a key from env or the config file, falling back to a default
func getString(v *viper.Viper, key, defaultValue string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(v *viper.Viper, key string, defaultValue int) int {
	if !v.IsSet(key) {
		return defaultValue
	}
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	return defaultValue
}
