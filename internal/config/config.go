package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings for the pdf2docx service.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port" validate:"required"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	Limits struct {
		MaxRequestBytes int `yaml:"max_request_bytes" validate:"gt=0"`
		MaxPDFBytes     int `yaml:"max_pdf_bytes" validate:"gt=0"`
	} `yaml:"limits"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
		MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
		MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Cache struct {
		DocxCacheEnabled bool          `yaml:"docx_cache_enabled"`
		DocxCacheTTL     time.Duration `yaml:"docx_cache_ttl"`
		RedisHost        string        `yaml:"redis_host"`
		DocxCacheDB      int           `yaml:"redis_docx_db" validate:"gte=0"`
		RateLimitDB      int           `yaml:"redis_rate_db" validate:"gte=0"`
	} `yaml:"cache"`

	RateLimiter struct {
		UserLimit int           `yaml:"user_limit" validate:"gte=0"`
		Interval  time.Duration `yaml:"interval" validate:"gt=0"`
	} `yaml:"rate_limiter"`

	Convert struct {
		PoolSize       int     `yaml:"pool_size" validate:"gte=0"`
		TimeoutSecs    int     `yaml:"timeout_secs" validate:"gte=0"`
		LineTolerance  float64 `yaml:"line_tolerance" validate:"gte=0"`
		PageHeadings   bool    `yaml:"page_headings"`
		ValidationMode string  `yaml:"validation_mode" validate:"oneof=relaxed strict none"`
		ExposeErrors   bool    `yaml:"expose_errors"`
	} `yaml:"convert"`
}

// DefaultConfigPath is used when CONFIG_PATH is not set.
const DefaultConfigPath = "config.yaml"

var validate = validator.New()

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = ":8080"
	cfg.Limits.MaxRequestBytes = 32 * 1024 * 1024
	cfg.Limits.MaxPDFBytes = 20 * 1024 * 1024
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7
	cfg.Cache.DocxCacheTTL = 10 * time.Minute
	cfg.Cache.DocxCacheDB = 1
	cfg.RateLimiter.Interval = time.Minute
	cfg.Convert.PoolSize = runtime.NumCPU()
	cfg.Convert.TimeoutSecs = 60
	cfg.Convert.LineTolerance = 2
	cfg.Convert.PageHeadings = true
	cfg.Convert.ValidationMode = "relaxed"
	return cfg
}

// Load reads the configuration from $CONFIG_PATH, or config.yaml when unset.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path on top of the defaults.
// A missing file yields the defaults; unreadable or invalid configuration panics.
func LoadFrom(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			panic(fmt.Sprintf("config: parse %s: %v", path, err))
		}
	}

	if cfg.Convert.PoolSize == 0 {
		cfg.Convert.PoolSize = runtime.NumCPU()
	}

	if err := validate.Struct(cfg); err != nil {
		panic(fmt.Sprintf("config: invalid values in %s: %v", path, err))
	}
	return cfg
}
