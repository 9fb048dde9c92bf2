package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dishdash/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix namespaces environment overrides: DISHDASH_SCORING_PAGE_SIZE -> scoring.page_size.
	EnvPrefix = "DISHDASH_"

	// ConfigPathEnvVar points at an optional YAML file.
	ConfigPathEnvVar = "CONFIG_PATH"
)

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Log       LogConfig       `koanf:"log"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Ranking   RankingConfig   `koanf:"ranking"`
}

type ServerConfig struct {
	Port string `koanf:"port" validate:"required"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	AdminRole string `koanf:"admin_role" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type EmbeddingConfig struct {
	Provider          string        `koanf:"provider" validate:"oneof=openai gemini hash"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	BaseURL           string        `koanf:"base_url"`
	Dimension         int           `koanf:"dimension" validate:"gt=0"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxAttempts       int           `koanf:"max_attempts" validate:"gte=1,lte=10"`
	InitialBackoff    time.Duration `koanf:"initial_backoff" validate:"gt=0"`
	MaxBackoff        time.Duration `koanf:"max_backoff" validate:"gtefield=InitialBackoff"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
	CachePath         string        `koanf:"cache_path"`
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// Dimension is one scoring profile: restaurants are scored on how close their
// tags in Category sit to ReferenceTags, and the result lands in ScoreField.
type Dimension struct {
	Name          string   `koanf:"name" validate:"required"`
	ScoreField    string   `koanf:"score_field" validate:"required"`
	Category      string   `koanf:"category" validate:"required"`
	ReferenceTags []string `koanf:"reference_tags" validate:"required,min=1,dive,required"`
}

type ScoringConfig struct {
	PageSize    int         `koanf:"page_size" validate:"gte=1,lte=1000"`
	Concurrency int         `koanf:"concurrency" validate:"gte=1,lte=100"`
	Schedule    string      `koanf:"schedule"`
	Dimensions  []Dimension `koanf:"dimensions" validate:"required,min=1,dive"`
}

type RankingConfig struct {
	MaxWeight float64 `koanf:"max_weight" validate:"gt=0"`
	// Weights maps a preference name sent by clients to the restaurant score field it reads.
	Weights map[string]string `koanf:"weights" validate:"required,min=1"`
	// UserVectorTTL bounds how long a swipe-derived user vector is reused.
	UserVectorTTL time.Duration `koanf:"user_vector_ttl" validate:"gte=0"`
}

func defaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Auth:     AuthConfig{AdminRole: "admin"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Embedding: EmbeddingConfig{
			Provider:          "openai",
			Model:             "text-embedding-3-small",
			Dimension:         1536,
			Timeout:           15 * time.Second,
			MaxAttempts:       4,
			InitialBackoff:    500 * time.Millisecond,
			MaxBackoff:        10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			CacheTTL:          30 * 24 * time.Hour,
		},
		Scoring: ScoringConfig{
			PageSize:    100,
			Concurrency: 10,
			Dimensions: []Dimension{
				{
					Name:       "ambiance",
					ScoreField: "ambianceScore",
					Category:   "ambiance",
					ReferenceTags: []string{
						"cozy", "romantic", "intimate lighting", "relaxed",
						"elegant decor", "quiet conversation", "warm atmosphere",
					},
				},
			},
		},
		Ranking: RankingConfig{
			MaxWeight: 100,
			Weights: map[string]string{
				"ambiance":    "ambianceScore",
				"foodQuality": "foodQualityScore",
				"service":     "serviceScore",
				"value":       "valueScore",
			},
			UserVectorTTL: 10 * time.Minute,
		},
	}
}

// Load layers defaults, an optional YAML file and DISHDASH_* environment
// variables (in that order of precedence, lowest first), then validates.
func Load() (*Config, error) {
	// .env is optional; a missing file is fine
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps DISHDASH_EMBEDDING_API_KEY to embedding.api_key: the first
// segment after the prefix is the section, the rest is the field.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(s, "_")
	if !found {
		return section
	}
	return section + "." + field
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Embedding.Provider != "hash" && c.Embedding.APIKey == "" {
		return fmt.Errorf("%w: embedding.api_key is required for provider %q", utils.ErrMissingCredentials, c.Embedding.Provider)
	}

	seen := make(map[string]bool)
	for _, d := range c.Scoring.Dimensions {
		if seen[d.Name] {
			return fmt.Errorf("duplicate scoring dimension %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Dimension looks up a scoring dimension by name.
func (s ScoringConfig) Dimension(name string) (Dimension, error) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d, nil
		}
	}
	return Dimension{}, fmt.Errorf("%w: %s", utils.ErrUnknownDimension, name)
}

// Select resolves a dimension name, or every dimension for "all" or "".
func (s ScoringConfig) Select(name string) ([]Dimension, error) {
	if name == "" || name == "all" {
		return s.Dimensions, nil
	}
	d, err := s.Dimension(name)
	if err != nil {
		return nil, err
	}
	return []Dimension{d}, nil
}

// IsMissingCredentials reports whether err came from an absent provider key.
func IsMissingCredentials(err error) bool {
	return errors.Is(err, utils.ErrMissingCredentials)
}
