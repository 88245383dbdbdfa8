package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every environment variable, e.g. JADWAL_SERVER_ADDR.
const Prefix = "JADWAL"

type Config struct {
	Debug           bool          `envconfig:"DEBUG" default:"false"`
	ServerAddr      string        `envconfig:"SERVER_ADDR" default:"127.0.0.1:8765" validate:"required,hostname_port"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"*" validate:"min=1"`
	ExtractCacheTTL time.Duration `envconfig:"EXTRACT_CACHE_TTL" default:"10m" validate:"gte=0"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release" validate:"oneof=debug release test"`
}

// Load reads the optional dotenv files (".env" when none are given) and then
// the environment. Missing dotenv files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
