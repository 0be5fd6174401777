package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr               = ":8080"
	defaultEnvironment        = "development"
	defaultCookieName         = "store_session"
	defaultIdleTimeout        = 2 * time.Hour
	defaultReadTimeout        = 10 * time.Second
	defaultWriteTimeout       = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultLoginRedirectDelay = time.Second
	defaultLogLevel           = "info"

	// EnvironmentProduction enables strict secret and cookie requirements.
	EnvironmentProduction = "production"
)

// ErrInvalidConfig wraps validation failures so callers can use errors.Is.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Session     SessionConfig
	Login       LoginConfig
	Catalog     CatalogConfig
	Log         LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName   string
	HashKey      []byte
	BlockKey     []byte
	CookieSecure bool
	IdleTimeout  time.Duration
	// Ephemeral is set when keys were generated for this process only.
	Ephemeral bool
}

// LoginConfig tunes the placeholder sign-in.
type LoginConfig struct {
	Latency       time.Duration
	RedirectDelay time.Duration
}

// CatalogConfig points at an optional catalog document replacing the built-in seed.
type CatalogConfig struct {
	File string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// IsProduction reports whether the production environment is configured.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvironmentProduction)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file         string
	fileSet      bool
	envMap       map[string]string
	useSystemEnv bool
}

// WithConfigFile overrides the YAML file path (default: $STORE_CONFIG_FILE).
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) {
		o.file = path
		o.fileSet = true
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration with precedence defaults < YAML file < OS env < explicit env map.
func Load(opts ...Option) (Config, error) {
	lookup, err := newLookup(opts)
	if err != nil {
		return Config{}, err
	}

	addr := stringWithDefault(lookup, "STORE_HTTP_ADDR", "")
	if addr == "" {
		if port := stringWithDefault(lookup, "PORT", ""); port != "" {
			addr = ":" + port
		} else {
			addr = defaultAddr
		}
	}

	env := strings.ToLower(stringWithDefault(lookup, "STORE_ENV", defaultEnvironment))
	cfg := Config{
		Environment: env,
		Server: ServerConfig{
			Addr:            addr,
			ReadTimeout:     durationWithDefault(lookup, "STORE_HTTP_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "STORE_HTTP_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "STORE_HTTP_IDLE_TIMEOUT", defaultServerIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "STORE_HTTP_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Session: SessionConfig{
			CookieName:   stringWithDefault(lookup, "STORE_SESSION_COOKIE", defaultCookieName),
			HashKey:      []byte(stringWithDefault(lookup, "STORE_SESSION_HASH_KEY", "")),
			BlockKey:     []byte(stringWithDefault(lookup, "STORE_SESSION_BLOCK_KEY", "")),
			CookieSecure: boolWithDefault(lookup, "STORE_COOKIE_SECURE", env == EnvironmentProduction),
			IdleTimeout:  durationWithDefault(lookup, "STORE_SESSION_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Login: LoginConfig{
			Latency:       durationWithDefault(lookup, "STORE_LOGIN_LATENCY", 0),
			RedirectDelay: durationWithDefault(lookup, "STORE_LOGIN_REDIRECT_DELAY", defaultLoginRedirectDelay),
		},
		Catalog: catalogConfig(lookup),
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
	}

	if !cfg.IsProduction() && len(cfg.Session.HashKey) == 0 {
		hash, block, err := ephemeralKeys()
		if err != nil {
			return Config{}, err
		}
		cfg.Session.HashKey = hash
		if len(cfg.Session.BlockKey) == 0 {
			cfg.Session.BlockKey = block
		}
		cfg.Session.Ephemeral = true
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadCatalog resolves only the catalog settings, with the same precedence as Load.
// It skips session validation, so read-only tooling works without production keys.
func LoadCatalog(opts ...Option) (CatalogConfig, error) {
	lookup, err := newLookup(opts)
	if err != nil {
		return CatalogConfig{}, err
	}
	return catalogConfig(lookup), nil
}

func catalogConfig(lookup func(string) (string, bool)) CatalogConfig {
	return CatalogConfig{
		File: stringWithDefault(lookup, "STORE_CATALOG_FILE", ""),
	}
}

func newLookup(opts []Option) (func(string) (string, bool), error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	envLookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		return "", false
	}

	path := options.file
	if !options.fileSet {
		path, _ = envLookup("STORE_CONFIG_FILE")
	}
	fileValues, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	return func(key string) (string, bool) {
		if value, ok := envLookup(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		invalid = append(invalid, "Server.Addr")
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		invalid = append(invalid, "Session.CookieName")
	}
	if len(cfg.Session.HashKey) < 32 {
		invalid = append(invalid, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 16, 24, 32:
	case 0:
		if cfg.IsProduction() {
			invalid = append(invalid, "Session.BlockKey")
		}
	default:
		invalid = append(invalid, "Session.BlockKey")
	}
	if cfg.Session.IdleTimeout <= 0 {
		invalid = append(invalid, "Session.IdleTimeout")
	}
	if cfg.Login.Latency < 0 {
		invalid = append(invalid, "Login.Latency")
	}
	if cfg.Login.RedirectDelay < 0 {
		invalid = append(invalid, "Login.RedirectDelay")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func ephemeralKeys() ([]byte, []byte, error) {
	hash := make([]byte, 32)
	block := make([]byte, 32)
	if _, err := rand.Read(hash); err != nil {
		return nil, nil, fmt.Errorf("generate session hash key: %w", err)
	}
	if _, err := rand.Read(block); err != nil {
		return nil, nil, fmt.Errorf("generate session block key: %w", err)
	}
	return hash, block, nil
}

// fileConfig mirrors the YAML configuration document.
type fileConfig struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Session struct {
		CookieName  string `yaml:"cookie_name"`
		HashKey     string `yaml:"hash_key"`
		BlockKey    string `yaml:"block_key"`
		Secure      *bool  `yaml:"secure"`
		IdleTimeout string `yaml:"idle_timeout"`
	} `yaml:"session"`
	Login struct {
		Latency       string `yaml:"latency"`
		RedirectDelay string `yaml:"redirect_delay"`
	} `yaml:"login"`
	Catalog struct {
		File string `yaml:"file"`
	} `yaml:"catalog"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// loadFile flattens the YAML document into the same keys used by the environment.
func loadFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	values := map[string]string{
		"STORE_ENV":                   fc.Environment,
		"STORE_HTTP_ADDR":             fc.Server.Addr,
		"STORE_HTTP_READ_TIMEOUT":     fc.Server.ReadTimeout,
		"STORE_HTTP_WRITE_TIMEOUT":    fc.Server.WriteTimeout,
		"STORE_HTTP_IDLE_TIMEOUT":     fc.Server.IdleTimeout,
		"STORE_HTTP_SHUTDOWN_TIMEOUT": fc.Server.ShutdownTimeout,
		"STORE_SESSION_COOKIE":        fc.Session.CookieName,
		"STORE_SESSION_HASH_KEY":      fc.Session.HashKey,
		"STORE_SESSION_BLOCK_KEY":     fc.Session.BlockKey,
		"STORE_SESSION_IDLE_TIMEOUT":  fc.Session.IdleTimeout,
		"STORE_LOGIN_LATENCY":         fc.Login.Latency,
		"STORE_LOGIN_REDIRECT_DELAY":  fc.Login.RedirectDelay,
		"STORE_CATALOG_FILE":          fc.Catalog.File,
		"LOG_LEVEL":                   fc.Log.Level,
	}
	if fc.Session.Secure != nil {
		values["STORE_COOKIE_SECURE"] = strconv.FormatBool(*fc.Session.Secure)
	}
	for key, value := range values {
		if value == "" {
			delete(values, key)
		}
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
