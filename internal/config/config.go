// Package config loads runtime settings from defaults, an optional YAML
// file and the environment, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	OCR      OCRConfig      `yaml:"ocr"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr               string        `yaml:"addr" validate:"required"`
	ReadTimeout        time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	EnableHSTS         bool          `yaml:"enable_hsts"`
	RateLimitRPS       float64       `yaml:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst     int           `yaml:"rate_limit_burst" validate:"gte=1"`
}

type DatabaseConfig struct {
	Driver       string        `yaml:"driver" validate:"oneof=postgres sqlite"`
	DSN          string        `yaml:"dsn" validate:"required"`
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gt=0"`
}

type OCRConfig struct {
	Engine      string `yaml:"engine" validate:"oneof=auto tesseract gosseract simulated dual"`
	Binary      string `yaml:"binary"`
	Language    string `yaml:"language" validate:"required"`
	PageSegMode int    `yaml:"page_segmentation_mode" validate:"gte=0,lte=13"`
	Preprocess  bool   `yaml:"preprocess"`
}

type EnrichConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	BaseURL    string        `yaml:"base_url" validate:"required,url"`
	UserAgent  string        `yaml:"user_agent" validate:"required"`
	RPS        int           `yaml:"rps" validate:"gte=1"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0,lte=5"`
	CachePath  string        `yaml:"cache_path"`
	CacheTTL   time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

type UploadConfig struct {
	Dir      string `yaml:"dir" validate:"required"`
	MaxBytes int64  `yaml:"max_bytes" validate:"gt=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "data/catalog.db",
			QueryTimeout: 5 * time.Second,
		},
		OCR: OCRConfig{
			Engine:      "auto",
			Binary:      "tesseract",
			Language:    "eng",
			PageSegMode: 6,
		},
		Enrich: EnrichConfig{
			Enabled:    true,
			Timeout:    10 * time.Second,
			BaseURL:    "https://openlibrary.org",
			UserAgent:  "bookscanner/1.0",
			RPS:        1,
			MaxRetries: 2,
			CachePath:  "data/lookups.db",
			CacheTTL:   30 * 24 * time.Hour,
		},
		Upload: UploadConfig{
			Dir:      "uploads",
			MaxBytes: 16 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// loadEnvFiles reads .env and .env.local. Variables already set in the
// process environment are never overridden.
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (Config, error) {
	loadEnvFiles()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	parse := func(key string, fn func(string) error) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			}
		}
	}

	str("APP_ADDR", &cfg.Server.Addr)
	str("DB_DRIVER", &cfg.Database.Driver)
	str("DB_DSN", &cfg.Database.DSN)
	str("UPLOAD_DIR", &cfg.Upload.Dir)
	str("OCR_ENGINE", &cfg.OCR.Engine)
	str("OCR_LANGUAGE", &cfg.OCR.Language)
	str("TESSERACT_BINARY", &cfg.OCR.Binary)
	str("OPENLIBRARY_BASE_URL", &cfg.Enrich.BaseURL)
	str("LOOKUP_CACHE_PATH", &cfg.Enrich.CachePath)
	str("LOG_LEVEL", &cfg.Log.Level)

	parse("ENRICH_ENABLED", func(v string) (err error) {
		cfg.Enrich.Enabled, err = strconv.ParseBool(v)
		return
	})
	parse("ENRICH_TIMEOUT", func(v string) (err error) {
		cfg.Enrich.Timeout, err = time.ParseDuration(v)
		return
	})
	parse("OPENLIBRARY_RPS", func(v string) (err error) {
		cfg.Enrich.RPS, err = strconv.Atoi(v)
		return
	})
	parse("MAX_UPLOAD_BYTES", func(v string) (err error) {
		cfg.Upload.MaxBytes, err = strconv.ParseInt(v, 10, 64)
		return
	})
	parse("OCR_PREPROCESS", func(v string) (err error) {
		cfg.OCR.Preprocess, err = strconv.ParseBool(v)
		return
	})
	parse("ENABLE_HSTS", func(v string) (err error) {
		cfg.Server.EnableHSTS, err = strconv.ParseBool(v)
		return
	})
	parse("CORS_ALLOWED_ORIGINS", func(v string) error {
		cfg.Server.CORSAllowedOrigins = splitList(v)
		return nil
	})

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
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
