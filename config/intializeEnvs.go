package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	godotenv "github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultRegion        = "ap-southeast-1"
	defaultLogLevel      = "info"
	defaultMaxWidth      = 800
	defaultMaxHeight     = 600
	defaultMaxImageBytes = 10 << 20
	defaultMaxPixels     = 268402689
	defaultExchange      = "image_processing"
	defaultServerPort    = "8080"
)

// Config holds every setting read from the process environment.
// BucketName is intentionally not validated here: a missing bucket is
// reported per invocation, not at startup.
type Config struct {
	AppEnv            string `koanf:"app_env"`
	BucketName        string `koanf:"bucket_name"`
	AwsRegion         string `koanf:"aws_region" validate:"required"`
	LogLevel          string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	ResizeMaxWidth    int    `koanf:"resize_max_width" validate:"min=1"`
	ResizeMaxHeight   int    `koanf:"resize_max_height" validate:"min=1"`
	MaxImageBytes     int    `koanf:"max_image_bytes" validate:"min=1"`
	MaxImagePixels    int64  `koanf:"max_image_pixels" validate:"min=1"`
	LegacyStatusCodes bool   `koanf:"legacy_status_codes"`
	CleanupOnFailure  bool   `koanf:"cleanup_on_failure"`
	RabbitMqURL       string `koanf:"rabbitmq_url" validate:"omitempty,url"`
	RabbitMqExchange  string `koanf:"rabbitmq_exchange"`
	ServerPort        string `koanf:"server_port" validate:"numeric"`
}

// loadDotEnv picks the env file for APP_ENV. Missing files are fine: Lambda
// gets its settings from the function configuration.
func loadDotEnv() {
	switch os.Getenv("APP_ENV") {
	case "dev", "":
		if err := godotenv.Overload(".env.dev"); err == nil {
			log.Debug().Msg("Loaded .env.dev")
		} else if err := godotenv.Overload(".env"); err == nil {
			log.Debug().Msg("Loaded .env")
		} else {
			log.Debug().Msg("No .env.dev or .env found, using system environment variables")
		}
	default:
		fname := ".env." + os.Getenv("APP_ENV")
		if err := godotenv.Overload(fname); err == nil {
			log.Debug().Msgf("Loaded %s", fname)
		} else if err := godotenv.Overload(".env"); err == nil {
			log.Debug().Msg("Loaded .env")
		} else {
			log.Debug().Msgf("No %s or .env found, using system environment variables", fname)
		}
	}
}

func InitializeEnvs() (*Config, error) {
	loadDotEnv()
	return FromEnvironment()
}

// FromEnvironment maps the current process environment into a Config
// without touching any .env file.
func FromEnvironment() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// knownKeys is the set of koanf tags on Config.
var knownKeys = func() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

// envKey maps an environment variable to its config key. Variables Config
// does not declare map to "", which the env provider skips.
func envKey(s string) string {
	key := strings.ToLower(s)
	if _, ok := knownKeys[key]; !ok {
		return ""
	}
	return key
}

func (c *Config) applyDefaults() {
	if c.AwsRegion == "" {
		c.AwsRegion = defaultRegion
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.ResizeMaxWidth == 0 {
		c.ResizeMaxWidth = defaultMaxWidth
	}
	if c.ResizeMaxHeight == 0 {
		c.ResizeMaxHeight = defaultMaxHeight
	}
	if c.MaxImageBytes == 0 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	if c.MaxImagePixels == 0 {
		c.MaxImagePixels = defaultMaxPixels
	}
	if c.RabbitMqExchange == "" {
		c.RabbitMqExchange = defaultExchange
	}
	if c.ServerPort == "" {
		c.ServerPort = defaultServerPort
	}
}

// IsLambda reports whether the process runs inside the Lambda runtime.
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
