package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tapestry/pkg/persistence/middleware"
)

// ID formats understood by idgen.New.
const (
	IDFormatULID = "ulid"
	IDFormatUUID = "uuid"
)

// Defaults.
const (
	DefaultHistoryCapacity = 50
	DefaultLogCapacity     = 100
	DefaultPreviewRows     = 20
	DefaultPasteOffset     = 50
	DefaultHTTPAddr        = ":8080"
	DefaultRedisPrefix     = "tapestry:"
	DefaultLogLevel        = "info"
)

// Offset is the default paste displacement when no drop position is given.
type Offset struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// HTTPConfig configures the HTTP adapter used by "tapestry serve".
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// RedisConfig configures the shared clipboard and distributed locks.
// An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"` // e.g. "30m"; empty means no expiry
}

// Expiration parses TTL. An empty TTL yields 0.
func (r RedisConfig) Expiration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	return d, nil
}

// ClipboardConfig hardens the shared clipboard used by "tapestry serve".
// Keys are base64 encoded AES-256 keys; an empty EncryptionKey stores payloads in clear.
type ClipboardConfig struct {
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
	Redact        []string `yaml:"redact" json:"redact"`
}

// Middlewares builds the store middlewares described by c. Redaction runs
// before sealing.
func (c ClipboardConfig) Middlewares() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(c.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(c.Redact)
		if err != nil {
			return nil, fmt.Errorf("clipboard redact: %w", err)
		}
		mws = append(mws, mw)
	}
	if c.EncryptionKey == "" {
		return mws, nil
	}

	active, err := middleware.ParseKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("clipboard encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("clipboard fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, fmt.Errorf("clipboard encryption: %w", err)
	}
	return append(mws, mw), nil
}

// Config holds the editor and server settings.
type Config struct {
	HistoryCapacity int             `yaml:"history_capacity" json:"history_capacity"`
	LogCapacity     int             `yaml:"log_capacity" json:"log_capacity"`
	PreviewRows     int             `yaml:"preview_rows" json:"preview_rows"`
	PasteOffset     *Offset         `yaml:"paste_offset" json:"paste_offset"`
	IDFormat        string          `yaml:"id_format" json:"id_format"`
	LogLevel        string          `yaml:"log_level" json:"log_level"`
	HTTP            HTTPConfig      `yaml:"http" json:"http"`
	Redis           RedisConfig     `yaml:"redis" json:"redis"`
	Clipboard       ClipboardConfig `yaml:"clipboard" json:"clipboard"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HistoryCapacity: DefaultHistoryCapacity,
		LogCapacity:     DefaultLogCapacity,
		PreviewRows:     DefaultPreviewRows,
		PasteOffset:     &Offset{X: DefaultPasteOffset, Y: DefaultPasteOffset},
		IDFormat:        IDFormatULID,
		LogLevel:        DefaultLogLevel,
		HTTP:            HTTPConfig{Addr: DefaultHTTPAddr},
		Redis:           RedisConfig{Prefix: DefaultRedisPrefix},
	}
}

// Load reads a configuration file (YAML or JSON, chosen by extension).
// A missing file yields the defaults. Zero fields are filled with defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := Parse(data, filepath.Ext(path), &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// Parse decodes data into cfg. ext selects JSON (".json"); anything else is YAML.
func Parse(data []byte, ext string, cfg *Config) error {
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse json config: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml config: %w", err)
	}
	return nil
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.HistoryCapacity == 0 {
		c.HistoryCapacity = d.HistoryCapacity
	}
	if c.LogCapacity == 0 {
		c.LogCapacity = d.LogCapacity
	}
	if c.PreviewRows == 0 {
		c.PreviewRows = d.PreviewRows
	}
	if c.PasteOffset == nil {
		c.PasteOffset = d.PasteOffset
	}
	if c.IDFormat == "" {
		c.IDFormat = d.IDFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = d.Redis.Prefix
	}
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	var errs []error
	if c.HistoryCapacity < 1 {
		errs = append(errs, fmt.Errorf("history_capacity must be positive, got %d", c.HistoryCapacity))
	}
	if c.LogCapacity < 1 {
		errs = append(errs, fmt.Errorf("log_capacity must be positive, got %d", c.LogCapacity))
	}
	if c.PreviewRows < 1 {
		errs = append(errs, fmt.Errorf("preview_rows must be positive, got %d", c.PreviewRows))
	}
	switch c.IDFormat {
	case IDFormatULID, IDFormatUUID:
	default:
		errs = append(errs, fmt.Errorf("unknown id_format %q", c.IDFormat))
	}
	if _, err := c.Redis.Expiration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Clipboard.Middlewares(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
