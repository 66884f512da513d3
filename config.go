package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bodul/crossword/internal/crossword"
)

const (
	defaultPort       = "8080"
	defaultRegion     = "europe-west1"
	defaultModel      = "gemini-2.5-flash"
	defaultOutputPath = "docs/data/puzzle.json"
	defaultMinWords   = 5

	backendMemory = "memory"
	backendRedis  = "redis"
)

// Config is the application configuration, read from a TOML file and then
// overridden by environment variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Store     StoreConfig     `toml:"store"`
	Generator GeneratorConfig `toml:"generator"`
	Output    OutputConfig    `toml:"output"`
}

type ServerConfig struct {
	Port               string `toml:"port"`
	GeneratesPerMinute int    `toml:"generates_per_minute"`
	MovesPerSecond     int    `toml:"moves_per_second"`
}

// GeminiConfig enables clue extraction when Project is set.
type GeminiConfig struct {
	Project string `toml:"project"`
	Region  string `toml:"region"`
	Model   string `toml:"model"`
}

type StoreConfig struct {
	Backend       string        `toml:"backend"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
}

type GeneratorConfig struct {
	MaxAttempts int `toml:"max_attempts"`
	MinWords    int `toml:"min_words"`
}

type OutputConfig struct {
	Path string `toml:"path"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               defaultPort,
			GeneratesPerMinute: 5,
			MovesPerSecond:     60,
		},
		Gemini: GeminiConfig{
			Region: defaultRegion,
			Model:  defaultModel,
		},
		Store: StoreConfig{Backend: backendMemory},
		Generator: GeneratorConfig{
			MaxAttempts: crossword.DefaultMaxAttempts,
			MinWords:    defaultMinWords,
		},
		Output: OutputConfig{Path: defaultOutputPath},
	}
}

// LoadConfig reads path on top of the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("GCP_PROJECT_ID"); v != "" {
		c.Gemini.Project = v
	}
	if v := getenv("GCP_REGION"); v != "" {
		c.Gemini.Region = v
	}
	if v := getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Store.Backend = backendRedis
		c.Store.RedisAddr = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.GeneratesPerMinute < 1 || c.Server.MovesPerSecond < 1 {
		errs = append(errs, errors.New("server rate limits must be positive"))
	}
	switch c.Store.Backend {
	case backendMemory:
	case backendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl must not be negative"))
	}
	if c.Generator.MaxAttempts < 1 {
		errs = append(errs, errors.New("generator.max_attempts must be at least 1"))
	}
	if c.Generator.MinWords < 1 {
		errs = append(errs, errors.New("generator.min_words must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
