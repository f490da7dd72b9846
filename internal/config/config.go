package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config настройки витрины и эталонного бэкенда
type Config struct {
	Storefront Storefront `yaml:"storefront"`
	Backend    Backend    `yaml:"backend"`
	Cache      Cache      `yaml:"cache"`
	Redis      Redis      `yaml:"redis"`
	Log        Log        `yaml:"log"`
}

type Storefront struct {
	Addr            string        `yaml:"addr"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Backend: пустой URL означает встроенный бэкенд в том же процессе
type Backend struct {
	URL             string        `yaml:"url"`
	Addr            string        `yaml:"addr"`
	Timeout         time.Duration `yaml:"timeout"`
	DialMaxInterval time.Duration `yaml:"dial_max_interval"`
}

type Cache struct {
	ProductsStaleTime time.Duration `yaml:"products_stale_time"`
	OrdersStaleTime   time.Duration `yaml:"orders_stale_time"`
	Retries           int           `yaml:"retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
}

// Redis: пустой Addr означает кэш в памяти процесса
type Redis struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Storefront: Storefront{Addr: ":8080", SessionIdleTTL: 24 * time.Hour, ShutdownTimeout: 5 * time.Second},
		Backend:    Backend{Addr: ":9091", Timeout: 10 * time.Second, DialMaxInterval: 10 * time.Second},
		Cache: Cache{
			ProductsStaleTime: 5 * time.Minute,
			OrdersStaleTime:   30 * time.Second,
			Retries:           1,
			RetryDelay:        2 * time.Second,
		},
		Redis: Redis{Namespace: "stationers", TTL: time.Hour},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load applies defaults, then the optional YAML file, then the environment.
// Flags are applied by the caller and must be followed by Validate.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.LoadFromEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) LoadFromFile(path string) error {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %q: %w", ext, ErrInvalidConfig)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("STOREFRONT_ADDR"); v != "" {
		c.Storefront.Addr = v
	}
	if v := os.Getenv("SESSION_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_IDLE_TTL: %w", err)
		}
		c.Storefront.SessionIdleTTL = d
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("BACKEND_ADDR"); v != "" {
		c.Backend.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Storefront.Addr == "" {
		errs = append(errs, errors.New("storefront.addr is required"))
	}
	if c.Backend.URL != "" && !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		errs = append(errs, fmt.Errorf("backend.url %q must be http(s)", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Cache.Retries < 0 {
		errs = append(errs, errors.New("cache.retries must not be negative"))
	}
	if c.Cache.RetryDelay < 0 || c.Cache.ProductsStaleTime < 0 || c.Cache.OrdersStaleTime < 0 {
		errs = append(errs, errors.New("cache durations must not be negative"))
	}
	if c.Storefront.SessionIdleTTL <= 0 {
		errs = append(errs, errors.New("storefront.session_idle_ttl must be positive"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the application logger and makes it the slog default.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if l.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}
