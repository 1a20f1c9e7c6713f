// Package config loads pipegraph settings from a TOML file and the
// environment.
//
// Lookup order, later wins: built-in defaults, the config file (--config or
// $XDG_CONFIG_HOME/pipegraph/config.toml), PIPEGRAPH_* environment
// variables. A missing default file is not an error.
//
//	[server]
//	addr = ":8000"
//	allowed_origins = ["http://localhost:3000"]
//
//	[analysis]
//	remote_url = "http://analyzer:8000/pipelines/parse"
//	timeout = "5s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "pipegraph"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Duration is a time.Duration that reads from TOML strings like "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full set of settings.
type Config struct {
	Server     Server     `toml:"server"`
	Analysis   Analysis   `toml:"analysis"`
	Cache      Cache      `toml:"cache"`
	Completion Completion `toml:"completion"`
}

// Server configures `pipegraph serve`.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
	MaxWorkspaces  int      `toml:"max_workspaces"`
	WorkspaceTTL   Duration `toml:"workspace_ttl"`
}

// Analysis configures the optional remote analyzer. An empty RemoteURL
// means analysis runs locally only.
type Analysis struct {
	RemoteURL   string   `toml:"remote_url"`
	Timeout     Duration `toml:"timeout"`
	Attempts    int      `toml:"attempts"`
	MaxFailures uint32   `toml:"max_failures"`
	OpenTimeout Duration `toml:"open_timeout"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// Completion configures the text completion client. The API key is read
// from PIPEGRAPH_COMPLETION_API_KEY or ANTHROPIC_API_KEY, never from the file.
type Completion struct {
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
	System    string `toml:"system"`
	APIKey    string `toml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    Duration{15 * time.Second},
			WriteTimeout:   Duration{30 * time.Second},
			MaxBodyBytes:   1 << 20,
			MaxWorkspaces:  1024,
			WorkspaceTTL:   Duration{24 * time.Hour},
		},
		Analysis: Analysis{
			Timeout:     Duration{5 * time.Second},
			Attempts:    2,
			MaxFailures: 5,
			OpenTimeout: Duration{30 * time.Second},
		},
		Cache: Cache{
			Backend: BackendFile,
		},
		Completion: Completion{
			MaxTokens: 1024,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pipegraph/config.toml, falling back
// to the OS user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads settings. An empty path means [DefaultPath], which may be
// absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("config: cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("config: server.max_body_bytes must be positive")
	}
	if c.Analysis.Attempts < 1 {
		return errors.New("config: analysis.attempts must be at least 1")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

// applyEnv overlays PIPEGRAPH_* variables.
func applyEnv(c *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup("PIPEGRAPH_" + name); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(name string, dst *Duration) {
		if v, ok := lookup("PIPEGRAPH_" + name); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("PIPEGRAPH_%s: %w", name, err))
			}
		}
	}
	num := func(name string, set func(int64)) {
		if v, ok := lookup("PIPEGRAPH_" + name); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("PIPEGRAPH_%s: %w", name, err))
				return
			}
			set(n)
		}
	}

	str("SERVER_ADDR", &c.Server.Addr)
	if v, ok := lookup("PIPEGRAPH_SERVER_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	dur("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	dur("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	num("SERVER_MAX_BODY_BYTES", func(n int64) { c.Server.MaxBodyBytes = n })
	num("SERVER_MAX_WORKSPACES", func(n int64) { c.Server.MaxWorkspaces = int(n) })
	dur("SERVER_WORKSPACE_TTL", &c.Server.WorkspaceTTL)

	str("ANALYSIS_REMOTE_URL", &c.Analysis.RemoteURL)
	dur("ANALYSIS_TIMEOUT", &c.Analysis.Timeout)
	num("ANALYSIS_ATTEMPTS", func(n int64) { c.Analysis.Attempts = int(n) })
	num("ANALYSIS_MAX_FAILURES", func(n int64) { c.Analysis.MaxFailures = uint32(n) })
	dur("ANALYSIS_OPEN_TIMEOUT", &c.Analysis.OpenTimeout)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_REDIS_ADDR", &c.Cache.RedisAddr)
	str("CACHE_REDIS_PASSWORD", &c.Cache.RedisPassword)
	num("CACHE_REDIS_DB", func(n int64) { c.Cache.RedisDB = int(n) })
	str("CACHE_PREFIX", &c.Cache.Prefix)
	dur("CACHE_TTL", &c.Cache.TTL)

	str("COMPLETION_MODEL", &c.Completion.Model)
	num("COMPLETION_MAX_TOKENS", func(n int64) { c.Completion.MaxTokens = n })
	str("COMPLETION_SYSTEM", &c.Completion.System)
	if v, ok := lookup("ANTHROPIC_API_KEY"); ok {
		c.Completion.APIKey = v
	}
	str("COMPLETION_API_KEY", &c.Completion.APIKey)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
