package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	BackendCloudinary = "cloudinary"
	BackendGCS        = "gcs"
	BackendMemory     = "memory"
)

type Config struct {
	AppEnv string
	Port   string

	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecret     string
	TokenDuration time.Duration

	AssetBackend        string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	GCSBucketName       string
	GCSPublicBaseURL    string
	PublishTimeout      time.Duration

	UploadConcurrency int
	UploadTempDir     string

	TelegramToken  string
	TelegramChatID int64

	GeminiAPIKey string
	ChatModel    string

	NATSURL             string
	UploadEventsSubject string

	LogFormat string
	LogLevel  string
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	tokenDuration, err := cast.ToDurationE(getenv("TOKEN_DURATION", "8760h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_DURATION: %w", err)
	}
	publishTimeout, err := cast.ToDurationE(getenv("PUBLISH_TIMEOUT", "45s"))
	if err != nil {
		return nil, fmt.Errorf("PUBLISH_TIMEOUT: %w", err)
	}
	concurrency, err := cast.ToIntE(getenv("UPLOAD_CONCURRENCY", "1"))
	if err != nil {
		return nil, fmt.Errorf("UPLOAD_CONCURRENCY: %w", err)
	}
	chatID, err := cast.ToInt64E(getenv("TELEGRAM_CHAT_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
	}

	cfg := &Config{
		AppEnv:              getenv("APP_ENV", "development"),
		Port:                getenv("PORT", "5000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDatabase:       getenv("MONGO_DATABASE", "rayan_saffron"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenDuration:       tokenDuration,
		AssetBackend:        strings.ToLower(getenv("ASSET_BACKEND", BackendCloudinary)),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		GCSBucketName:       os.Getenv("GSC_BUCKET_NAME"),
		GCSPublicBaseURL:    os.Getenv("GSC_PUBLIC_BASE_URL"),
		PublishTimeout:      publishTimeout,
		UploadConcurrency:   concurrency,
		UploadTempDir:       os.Getenv("UPLOAD_TEMP_DIR"),
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:      chatID,
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		ChatModel:           getenv("CHAT_MODEL", "gemini-2.5-flash"),
		NATSURL:             os.Getenv("NATS_URL"),
		UploadEventsSubject: getenv("UPLOAD_EVENTS_SUBJECT", "storefront.uploads"),
		LogFormat:           getenv("LOG_FORMAT", "text"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// Validate reports every missing setting the chosen backends need.
func (c *Config) Validate() error {
	var errs []error
	require := func(key, val string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s not set", key))
		}
	}

	require("DATABASE_URL", c.DatabaseURL)
	require("MONGO_URI", c.MongoURI)
	require("JWT_SECRET", c.JWTSecret)

	switch c.AssetBackend {
	case BackendCloudinary:
		require("CLOUDINARY_CLOUD_NAME", c.CloudinaryCloudName)
		require("CLOUDINARY_API_KEY", c.CloudinaryAPIKey)
		require("CLOUDINARY_API_SECRET", c.CloudinaryAPISecret)
	case BackendGCS:
		require("GSC_BUCKET_NAME", c.GCSBucketName)
	case BackendMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("ASSET_BACKEND=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ASSET_BACKEND %q", c.AssetBackend))
	}

	if c.PublishTimeout <= 0 {
		errs = append(errs, errors.New("PUBLISH_TIMEOUT must be positive"))
	}
	if c.UploadConcurrency < 0 {
		errs = append(errs, errors.New("UPLOAD_CONCURRENCY must not be negative"))
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID not set"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
