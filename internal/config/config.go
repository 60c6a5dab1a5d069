package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	StorageDir       string
	MaxUploadMB      int64
	QuestionCacheTTL time.Duration
	NATSURL          string
	ReviewSubject    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENTBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EntBridge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.max_upload_mb", 20)
	v.SetDefault("questions.cache_ttl", "5m")
	v.SetDefault("nats.review_subject", "entbridge.submissions.reviewed")

	ttlString := v.GetString("questions.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid question cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		StorageDir:       v.GetString("storage.dir"),
		MaxUploadMB:      v.GetInt64("storage.max_upload_mb"),
		QuestionCacheTTL: ttl,
		NATSURL:          v.GetString("nats.url"),
		ReviewSubject:    v.GetString("nats.review_subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 20
	}

	return cfg, nil
}
