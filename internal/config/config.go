package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Build metadata, stamped via -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// Config is the server configuration file (flowplan-server.yaml).
type Config struct {
	Addr string `yaml:"address"` // listen host; default 127.0.0.1
	Port string `yaml:"port"`    // default 8080

	// Trusted reverse proxy address outside dev.
	ProxyAddr string `yaml:"proxy_address"`

	// Workspaces live in memory unless a Redis address is given.
	RedisAddr string `yaml:"redis_address"`
	RedisDB   int    `yaml:"redis_db"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`   // default 8h; also workspace idle expiry
	SweepInterval time.Duration `yaml:"sweep_interval"` // default 1m

	MaxConcurrentRequests int      `yaml:"max_concurrent_requests"` // default 256
	CORSOrigins           []string `yaml:"cors_origins"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 8 * time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = 256
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5173", "http://localhost:4173", "http://localhost:3000", "http://127.0.0.1:3000"}
	}
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 bytes")
	}
	return nil
}

// ListenAddr is host:port.
func (c *Config) ListenAddr() string { return c.Addr + ":" + c.Port }

// Load reads and validates the YAML config at path. A missing file yields defaults with
// the secret taken from FLOWPLAN_SESSION_SECRET.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if s := os.Getenv("FLOWPLAN_SESSION_SECRET"); s != "" {
		cfg.SessionSecret = s
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
