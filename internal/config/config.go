package config

import (
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/store"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

// Config holds the application configuration.
type Config struct {
	// GeminiAPIKey enables coach feedback on reflections. Without it the game runs offline.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	Store      string `env:"STORE" envDefault:"file"`
	SaveDir    string `env:"SAVE_DIR" envDefault:".saves"`
	SaveSlot   string `env:"SAVE_SLOT" envDefault:"current"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:".saves/integrity.sqlite"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:".saves/game.log"`
}

// LoadConfig loads the configuration from environment variables, reading a .env file first when one is
// present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	return parse(env.Options{Environment: env.ToMap(os.Environ())})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains([]string{StoreFile, StoreSQLite, StoreMemory}, c.Store) {
		return errors.Wrap(ErrInvalidConfig, "validate", slog.String("STORE", c.Store))
	}
	if store.ValidateSlot(c.SaveSlot) != nil {
		return errors.Wrap(ErrInvalidConfig, "validate", slog.String("SAVE_SLOT", c.SaveSlot))
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return errors.Wrap(ErrInvalidConfig, "validate", slog.String("SQLITE_PATH", c.SQLitePath))
	}
	return nil
}
