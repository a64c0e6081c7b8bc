package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration for both the server and the clients.
type Config struct {
	// HTTP server
	HTTPPort         int      `validate:"min=1,max=65535"`
	HTTPReadTimeout  int      `validate:"min=1"` // seconds
	HTTPWriteTimeout int      `validate:"min=1"` // seconds
	HTTPIdleTimeout  int      `validate:"min=1"` // seconds
	MaxUploadBytes   int64    `validate:"min=1"`
	RateLimitRPS     float64  `validate:"gte=0"` // 0 disables rate limiting
	RateLimitBurst   int      `validate:"gte=0"`
	CORSOrigins      []string `validate:"dive,required"`

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text console"`

	// Application
	AppName     string `validate:"required"`
	AppVersion  string
	Environment string `validate:"oneof=dev staging prod"`

	// Upload staging and static assets
	UploadDir              string `validate:"required"`
	PublicDir              string `validate:"required"`
	UploadStore            string `validate:"oneof=disk azure"`
	BlobStorageAccountName string `validate:"required_if=UploadStore azure"`
	BlobStorageAccountKey  string
	BlobContainer          string `validate:"required_if=UploadStore azure"`
	BlobUseManagedIdentity bool

	// Conversion events (Service Bus); events are disabled when the namespace is empty
	ServiceBusNamespace string
	ServiceBusKeyName   string
	ServiceBusKeyValue  string
	ServiceBusQueue     string `validate:"required_with=ServiceBusNamespace"`

	// Telemetry
	NewRelicLicenseKey     string
	NewRelicAppName        string
	SlackWebhookURL        string `validate:"omitempty,url"`
	SlowRequestThresholdMs int64  `validate:"min=1"`

	// Auth; POST /convert requires a bearer token when RequireAuth is set
	JWTSecret       string `validate:"required_if=RequireAuth true"`
	JWTIssuer       string
	TokenTTLMinutes int `validate:"min=1"`
	RequireAuth     bool

	// Client side (CLI and terminal UI)
	Decoder     string `validate:"oneof=local remote"`
	RemoteURL   string `validate:"required_if=Decoder remote"`
	RemoteToken string
	OutputDir   string

	// Retry for remote conversion
	RetryMaxAttempts  int `validate:"min=1"`
	RetryInitialDelay int `validate:"min=0"` // milliseconds
	RetryMaxDelay     int `validate:"min=0"` // milliseconds
}

var validate = validator.New()

// Override adjusts a loaded Config before it is validated, e.g. from command-line flags.
type Override func(*Config)

// LoadConfig loads configuration from the provided source.
func LoadConfig(source ConfigSource) (*Config, error) {
	return loadConfig(source, nil)
}

func loadConfig(source ConfigSource, overrides []Override) (*Config, error) {
	getInt := func(key string, defaultValue int) int {
		val, err := strconv.Atoi(source.GetWithDefault(key, strconv.Itoa(defaultValue)))
		if err != nil {
			return defaultValue
		}
		return val
	}
	getFloat := func(key string, defaultValue float64) float64 {
		val, err := strconv.ParseFloat(source.GetWithDefault(key, ""), 64)
		if err != nil {
			return defaultValue
		}
		return val
	}
	getBool := func(key string, defaultValue bool) bool {
		val, err := strconv.ParseBool(source.GetWithDefault(key, ""))
		if err != nil {
			return defaultValue
		}
		return val
	}

	cfg := &Config{}

	cfg.HTTPPort = getInt("HTTP_PORT", 3000)
	cfg.HTTPReadTimeout = getInt("HTTP_READ_TIMEOUT", 30)
	cfg.HTTPWriteTimeout = getInt("HTTP_WRITE_TIMEOUT", 60)
	cfg.HTTPIdleTimeout = getInt("HTTP_IDLE_TIMEOUT", 120)
	cfg.MaxUploadBytes = int64(getInt("MAX_UPLOAD_BYTES", 50<<20))
	cfg.RateLimitRPS = getFloat("RATE_LIMIT_RPS", 10)
	cfg.RateLimitBurst = getInt("RATE_LIMIT_BURST", 20)
	cfg.CORSOrigins = splitList(source.GetWithDefault("CORS_ORIGINS", ""))

	cfg.LogLevel = source.GetWithDefault("LOG_LEVEL", "info")
	cfg.LogFormat = source.GetWithDefault("LOG_FORMAT", "json")

	cfg.AppName = source.GetWithDefault("APP_NAME", "pdf2json")
	cfg.AppVersion = source.GetWithDefault("APP_VERSION", "1.0.0")
	cfg.Environment = source.GetWithDefault("ENVIRONMENT", "dev")

	cfg.UploadDir = source.GetWithDefault("UPLOAD_DIR", "uploads")
	cfg.PublicDir = source.GetWithDefault("PUBLIC_DIR", "public")
	cfg.UploadStore = source.GetWithDefault("UPLOAD_STORE", "disk")
	cfg.BlobStorageAccountName = source.GetWithDefault("BLOB_STORAGE_ACCOUNT_NAME", "")
	cfg.BlobStorageAccountKey = source.GetWithDefault("BLOB_STORAGE_ACCOUNT_KEY", "")
	cfg.BlobContainer = source.GetWithDefault("BLOB_CONTAINER", "pdf-uploads")
	cfg.BlobUseManagedIdentity = getBool("BLOB_USE_MANAGED_IDENTITY", false)

	cfg.ServiceBusNamespace = source.GetWithDefault("SERVICE_BUS_NAMESPACE", "")
	cfg.ServiceBusKeyName = source.GetWithDefault("SERVICE_BUS_KEY_NAME", "")
	cfg.ServiceBusKeyValue = source.GetWithDefault("SERVICE_BUS_KEY_VALUE", "")
	cfg.ServiceBusQueue = source.GetWithDefault("SERVICE_BUS_QUEUE", "pdf-conversions")

	cfg.NewRelicLicenseKey = source.GetWithDefault("NEW_RELIC_LICENSE_KEY", "")
	cfg.NewRelicAppName = source.GetWithDefault("NEW_RELIC_APP_NAME", cfg.AppName)
	cfg.SlackWebhookURL = source.GetWithDefault("SLACK_WEBHOOK_URL", "")
	cfg.SlowRequestThresholdMs = int64(getInt("SLOW_REQUEST_THRESHOLD_MS", 5000))

	cfg.JWTSecret = source.GetWithDefault("JWT_SECRET", "")
	cfg.JWTIssuer = source.GetWithDefault("JWT_ISSUER", cfg.AppName)
	cfg.TokenTTLMinutes = getInt("TOKEN_TTL_MINUTES", 60)
	cfg.RequireAuth = getBool("REQUIRE_AUTH", false)

	cfg.Decoder = source.GetWithDefault("DECODER", "local")
	cfg.RemoteURL = source.GetWithDefault("REMOTE_URL", "")
	cfg.RemoteToken = source.GetWithDefault("REMOTE_TOKEN", "")
	cfg.OutputDir = source.GetWithDefault("OUTPUT_DIR", ".")

	cfg.RetryMaxAttempts = getInt("RETRY_MAX_ATTEMPTS", 3)
	cfg.RetryInitialDelay = getInt("RETRY_INITIAL_DELAY", 200)
	cfg.RetryMaxDelay = getInt("RETRY_MAX_DELAY", 2000)

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags on Config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the process
// environment. Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
func LoadConfigFromEnv() (*Config, error) {
	return LoadConfig(&EnvConfigSource{})
}

// LoadConfigFromFile loads configuration from a JSON or YAML file.
// Environment variables override file values if both are set.
func LoadConfigFromFile(filePath string) (*Config, error) {
	return Load(filePath)
}

// Load reads the file at path (when set) under the environment, applies the
// overrides and validates the result once.
func Load(path string, overrides ...Override) (*Config, error) {
	var source ConfigSource = &EnvConfigSource{}
	if path != "" {
		fileSource, err := NewFileConfigSource(path)
		if err != nil {
			return nil, err
		}
		source = NewCompositeConfigSource(&EnvConfigSource{}, fileSource)
	}
	return loadConfig(source, overrides)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
