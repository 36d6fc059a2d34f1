package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

// Completion providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	Server     ServerConfig
	Completion CompletionConfig
	Session    SessionConfig
	Storage    StorageConfig
	Log        LogConfig
	Persona    PersonaConfig
}

type ServerConfig struct {
	Host string `key:"server.host" validate:"required"`
	Port int    `key:"server.port" validate:"min=1,max=65535"`
}

type CompletionConfig struct {
	Provider    string  `key:"completion.provider" validate:"oneof=gemini openai ollama"`
	Model       string  `key:"completion.model"`
	BaseURL     string  `key:"completion.base_url" validate:"omitempty,url"`
	Timeout     string  `key:"completion.timeout" validate:"duration"`
	MaxAttempts int     `key:"completion.max_attempts" validate:"min=1,max=10"`
	Temperature float64 `key:"completion.temperature" validate:"gte=0,lte=2"`

	GeminiAPIKey string `key:"completion.gemini_api_key"`
	OpenAIAPIKey string `key:"completion.openai_api_key"`
}

type SessionConfig struct {
	TTL           string `key:"session.ttl" validate:"duration"`
	PurgeInterval string `key:"session.purge_interval" validate:"duration"`
}

type StorageConfig struct {
	DataDir string `key:"storage.data_dir" validate:"required"`
}

type LogConfig struct {
	Level  string `key:"log.level" validate:"oneof=debug info warn error"`
	Format string `key:"log.format" validate:"oneof=console json text"`
}

type PersonaConfig struct {
	DefaultUser string `key:"persona.default_user" validate:"required"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Completion: CompletionConfig{
			Provider:    ProviderGemini,
			Timeout:     "30s",
			MaxAttempts: 3,
		},
		Session: SessionConfig{
			TTL:           "720h",
			PurgeInterval: "1h",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Persona: PersonaConfig{
			DefaultUser: "Friend",
		},
	}
}

// Load reads configuration in increasing precedence: defaults, the YAML file
// at $XDG_CONFIG_HOME/aura/config.yaml (or $AURA_CONFIG), then AURA_*
// environment variables. A .env file in the working directory is loaded
// into the environment first. The API key of the selected provider is required.
func Load() (Config, error) {
	loadDotEnv()
	return loadWith(newFileBackend(configFilePath()))
}

// Peek is Load without validation. Client commands use it to find the server.
func Peek() Config {
	loadDotEnv()
	cfg := defaults()
	if err := applyBackend(&cfg, newFileBackend(configFilePath())); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v. Using default values.\n", err)
	}
	applyEnvOverrides(&cfg)
	return cfg
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "[WARN] could not load .env: %v\n", err)
	}
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// The original service read GEMINI_API_KEY; keep accepting it.
	if cfg.Completion.GeminiAPIKey == "" {
		cfg.Completion.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("key")
	})
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Validate checks value ranges and that the selected provider has an API key.
// A local Ollama server needs none.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return oops.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return oops.Errorf("failed to validate config: %w", err)
	}

	if c.Completion.Provider != ProviderOllama && c.Completion.APIKey() == "" {
		env := "AURA_GEMINI_API_KEY (or GEMINI_API_KEY)"
		if c.Completion.Provider == ProviderOpenAI {
			env = "AURA_OPENAI_API_KEY"
		}
		return fmt.Errorf("missing required config: %s API key. Set it via environment variable %s", c.Completion.Provider, env)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "duration":
		return fmt.Sprintf("%s must be a positive duration such as 30s or 1h, got %q", fe.Field(), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a URL"
	}
	return fe.Field() + " is invalid"
}

// APIKey returns the key of the selected provider.
func (c CompletionConfig) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderOllama:
		return ""
	}
	return c.GeminiAPIKey
}

// TimeoutDuration returns the per-attempt completion deadline.
func (c CompletionConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

func (c SessionConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL)
}

func (c SessionConfig) PurgeIntervalDuration() time.Duration {
	return parseDuration(c.PurgeInterval)
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parseDuration parses a value already checked by Validate. Invalid input yields 0.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "aura-data"
		}
	}
	return filepath.Join(dir, "aura")
}

func configFilePath() string {
	if p := os.Getenv("AURA_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "aura", "config.yaml")
}
