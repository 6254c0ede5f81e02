// Package config loads service settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port              int           `yaml:"port"`
		ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	} `yaml:"server"`
	Database struct {
		URL        string `yaml:"url"`
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	SeedFile string `yaml:"seedFile"`
	Rate     struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate"`
	Solve struct {
		MaxDestinations int           `yaml:"maxDestinations"`
		MaxNodes        int           `yaml:"maxNodes"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"solve"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Tracing struct {
		Stdout bool `yaml:"stdout"`
	} `yaml:"tracing"`
	Webhooks struct {
		URLs        []string `yaml:"urls"`
		Secret      string   `yaml:"secret"`
		MaxAttempts int      `yaml:"maxAttempts"`
	} `yaml:"webhooks"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadHeaderTimeout = 5 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Rate.RPS = 50
	c.Rate.Burst = 100
	c.Solve.MaxDestinations = 10
	c.Solve.MaxNodes = 2000
	c.Solve.Timeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Webhooks.MaxAttempts = 5
	return c
}

// Load builds the configuration. path may be empty, in which case CONFIG_FILE
// is consulted; a missing file is an error only when named explicitly.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	str("DATABASE_URL", &c.Database.URL)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("REDIS_URL", &c.Redis.URL)
	str("SEED_FILE", &c.SeedFile)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("WEBHOOK_SECRET", &c.Webhooks.Secret)
	num("PORT", &c.Server.Port)
	num("RATE_BURST", &c.Rate.Burst)
	num("SOLVE_MAX_DESTINATIONS", &c.Solve.MaxDestinations)
	num("SOLVE_MAX_NODES", &c.Solve.MaxNodes)
	num("WEBHOOK_MAX_ATTEMPTS", &c.Webhooks.MaxAttempts)
	if v, ok := lookup("RATE_RPS"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: RATE_RPS: %w", err))
		} else {
			c.Rate.RPS = f
		}
	}
	if v, ok := lookup("SOLVE_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("config: SOLVE_TIMEOUT: %w", err))
		} else {
			c.Solve.Timeout = d
		}
	}
	if v, ok := lookup("TRACING_STDOUT"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("config: TRACING_STDOUT: %w", err))
		} else {
			c.Tracing.Stdout = b
		}
	}
	if v, ok := lookup("WEBHOOK_URLS"); ok {
		c.Webhooks.URLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.Webhooks.URLs = append(c.Webhooks.URLs, u)
			}
		}
	}
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Rate.RPS < 0 || c.Rate.Burst < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Solve.MaxDestinations < 0 {
		errs = append(errs, fmt.Errorf("solve.maxDestinations %d is negative", c.Solve.MaxDestinations))
	}
	if c.Solve.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("solve.maxNodes %d is negative", c.Solve.MaxNodes))
	}
	if c.Solve.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solve.timeout %s is negative", c.Solve.Timeout))
	}
	if c.Webhooks.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("webhooks.maxAttempts %d is negative", c.Webhooks.MaxAttempts))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return l, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Server.Port) }

// Redacted returns a copy safe to expose on debug endpoints.
func (c Config) Redacted() Config {
	if c.Database.URL != "" {
		c.Database.URL = "[redacted]"
	}
	if c.Redis.URL != "" {
		c.Redis.URL = "[redacted]"
	}
	if c.Webhooks.Secret != "" {
		c.Webhooks.Secret = "[redacted]"
	}
	c.Webhooks.URLs = append([]string(nil), c.Webhooks.URLs...)
	return c
}
