package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the vitrine commands.
type Config struct {
	// Declarations lists declaration files or directories to load.
	Declarations   []string `mapstructure:"declarations"`
	KeyTransformer string   `mapstructure:"key_transformer"`
	LogLevel       string   `mapstructure:"log_level"`
	Listen         string   `mapstructure:"listen"`
	// Redact holds regular expressions; values of matching keys are masked.
	Redact         []string `mapstructure:"redact"`

	Redis Redis `mapstructure:"redis"`
}

// Redis configures the shared adapter cache. An empty Addr keeps the
// in-memory cache.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Listen:   ":8080",
		Redis: Redis{
			Prefix: "vitrine:",
		},
	}
}

// Load reads a TOML, YAML or JSON(C) config file on top of Default.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &raw)
	default:
		return cfg, fmt.Errorf("unsupported config file %q", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// Relative declaration paths are taken from the config file's directory.
	base := filepath.Dir(path)
	for i, p := range cfg.Declarations {
		if !filepath.IsAbs(p) {
			cfg.Declarations[i] = filepath.Join(base, p)
		}
	}
	return cfg, nil
}
