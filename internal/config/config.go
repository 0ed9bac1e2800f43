// Package config resolves runtime settings from mbt.yaml and MBT_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "mbt.yaml"

// Store kinds.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds every setting the CLI and the servers need.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Sentinel string `mapstructure:"sentinel"`
	MaxPaths int    `mapstructure:"max_paths"`
	Output   string `mapstructure:"output"`
	Store    Store  `mapstructure:"store"`
	HTTP     HTTP   `mapstructure:"http"`
	MCP      MCP    `mapstructure:"mcp"`
}

// Store selects and configures the project store.
type Store struct {
	Kind          string        `mapstructure:"kind"`
	Dir           string        `mapstructure:"dir"`
	Format        string        `mapstructure:"format"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// HTTP configures the editing API server.
type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// MCP configures the MCP server.
type MCP struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Sentinel: "N/A",
		Output:   "table",
		Store: Store{
			Kind:      StoreFile,
			Dir:       ".mbt/projects",
			Format:    "json",
			RedisAddr: "localhost:6379",
		},
		HTTP: HTTP{Addr: ":8080"},
		MCP:  MCP{Transport: "stdio", Port: 8081},
	}
}

// env maps MBT_* variables to config keys.
var env = map[string]string{
	"MBT_LOG_LEVEL":      "log_level",
	"MBT_SENTINEL":       "sentinel",
	"MBT_MAX_PATHS":      "max_paths",
	"MBT_OUTPUT":         "output",
	"MBT_STORE":          "store.kind",
	"MBT_STORE_DIR":      "store.dir",
	"MBT_STORE_FORMAT":   "store.format",
	"MBT_REDIS_ADDR":     "store.redis_addr",
	"MBT_REDIS_PASSWORD": "store.redis_password",
	"MBT_REDIS_DB":       "store.redis_db",
	"MBT_REDIS_PREFIX":   "store.redis_prefix",
	"MBT_REDIS_TTL":      "store.redis_ttl",
	"MBT_HTTP_ADDR":      "http.addr",
	"MBT_MCP_TRANSPORT":  "mcp.transport",
	"MBT_MCP_PORT":       "mcp.port",
}

// Load resolves the configuration: defaults, then the YAML file, then the
// environment. An empty path tries DefaultFile and tolerates its absence;
// an explicit path must exist.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	for name, key := range env {
		if v, ok := lookup(name); ok {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	switch c.Store.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown store format %q", c.Store.Format)
	}
	switch c.Output {
	case "table", "markdown", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q", c.MCP.Transport)
	}
	if c.MaxPaths < 0 {
		return fmt.Errorf("max_paths must not be negative, got %d", c.MaxPaths)
	}
	return nil
}

func setPath(m map[string]any, key, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
