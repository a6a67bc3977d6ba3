package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverRest     = "rest"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
)

const (
	defaultPort       = "5000"
	defaultBadgerPath = "data/badger"
	defaultBoltPath   = "data/postboard.db"
)

type StoreConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Port           string      `yaml:"port"`
	Store          StoreConfig `yaml:"store"`
	AllowedOrigins string      `yaml:"allowed_origins"`
	StaticDir      string      `yaml:"static_dir"`
	Log            LogConfig   `yaml:"log"`
	DebugAgent     bool        `yaml:"debug_agent"`
}

// Flags holds command line overrides. Empty values leave the config untouched.
type Flags struct {
	Port   string
	Driver string
}

func Default() *Config {
	return &Config{
		Port:           defaultPort,
		Store:          StoreConfig{Driver: DriverRest},
		AllowedOrigins: "*",
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults. String values may reference
// environment variables as $VAR or ${VAR}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Port = expandEnv(cfg.Port)
	cfg.Store.Driver = expandEnv(cfg.Store.Driver)
	cfg.Store.URL = expandEnv(cfg.Store.URL)
	cfg.Store.Key = expandEnv(cfg.Store.Key)
	cfg.Store.Path = expandEnv(cfg.Store.Path)
	cfg.AllowedOrigins = expandEnv(cfg.AllowedOrigins)
	cfg.StaticDir = expandEnv(cfg.StaticDir)

	return cfg, nil
}

// ApplyEnv overlays the process environment. Unset or empty variables are ignored.
func (c *Config) ApplyEnv() {
	c.Port = getenv("PORT", c.Port)
	c.Store.Driver = getenv("STORE_DRIVER", c.Store.Driver)
	c.Store.URL = getenv("SUPABASE_URL", c.Store.URL)
	c.Store.Key = getenv("SUPABASE_KEY", c.Store.Key)
	c.Store.Path = getenv("STORE_PATH", c.Store.Path)
	c.AllowedOrigins = getenv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.StaticDir = getenv("STATIC_DIR", c.StaticDir)
	c.Log.Level = getenv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("LOG_FORMAT", c.Log.Format)
	if v := os.Getenv("DEBUG_AGENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DebugAgent = b
		}
	}
}

func (c *Config) ApplyFlags(flags *Flags) {
	if flags == nil {
		return
	}
	if flags.Port != "" {
		c.Port = flags.Port
	}
	if flags.Driver != "" {
		c.Store.Driver = flags.Driver
	}
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	switch c.Store.Driver {
	case DriverRest:
		if c.Store.URL == "" || c.Store.Key == "" {
			return fmt.Errorf("store driver %q needs SUPABASE_URL and SUPABASE_KEY", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.URL == "" {
			return fmt.Errorf("store driver %q needs SUPABASE_URL", c.Store.Driver)
		}
	case DriverBadger, DriverMemory, DriverBolt:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// ResolvedPath returns the on-disk location for embedded drivers.
func (s StoreConfig) ResolvedPath() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Driver == DriverBolt {
		return defaultBoltPath
	}
	return defaultBadgerPath
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return os.ExpandEnv(s)
}
