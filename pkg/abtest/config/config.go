// Package config loads CLI settings from a config file, the environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ABTEST"

// Variant maps a raw treatment name to its display name.
type Variant struct {
	Raw     string `mapstructure:"raw"`
	Display string `mapstructure:"display"`
}

// Config holds the settings of one render.
type Config struct {
	Experiment    string    `mapstructure:"experiment"`
	Layout        string    `mapstructure:"layout"`
	Filter        bool      `mapstructure:"filter"`
	Variants      []Variant `mapstructure:"variants"`
	Output        string    `mapstructure:"output"`
	SpreadsheetID string    `mapstructure:"spreadsheet_id"`
	Credentials   string    `mapstructure:"credentials"`
	Sheet         string    `mapstructure:"sheet"`
	Query         string    `mapstructure:"query"`
	OTLPEndpoint  string    `mapstructure:"otlp_endpoint"`
	LogLevel      string    `mapstructure:"log_level"`
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"experiment":     "name",
	"layout":         "layout",
	"output":         "output",
	"spreadsheet_id": "spreadsheet-id",
	"credentials":    "credentials",
	"sheet":          "sheet",
	"query":          "query",
	"otlp_endpoint":  "otlp-endpoint",
	"log_level":      "log-level",
}

// Load reads the config file at path (optional), ABTEST_* environment
// variables and the flags that were set on the command line, in increasing
// order of precedence. A set --no-filter disables the basic filter and each
// --variant raw=display replaces the file entry for raw.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("layout", "preamble")
	v.SetDefault("filter", true)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if flags != nil {
		if noFilter, err := flags.GetBool("no-filter"); err == nil && noFilter {
			cfg.Filter = false
		}
		if raw, err := flags.GetStringArray("variant"); err == nil {
			for _, pair := range raw {
				variant, err := ParseVariant(pair)
				if err != nil {
					return nil, err
				}
				cfg.SetVariant(variant)
			}
		}
	}
	return &cfg, nil
}

// LoadEnv loads .env style files into the process environment. Missing files
// are ignored; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// ParseVariant parses a raw=display pair.
func ParseVariant(s string) (Variant, error) {
	raw, display, ok := strings.Cut(s, "=")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return Variant{}, fmt.Errorf("invalid variant %q (expected raw=display)", s)
	}
	return Variant{Raw: raw, Display: strings.TrimSpace(display)}, nil
}

// SetVariant adds v, replacing an existing entry with the same raw name.
func (c *Config) SetVariant(v Variant) {
	for i := range c.Variants {
		if c.Variants[i].Raw == v.Raw {
			c.Variants[i] = v
			return
		}
	}
	c.Variants = append(c.Variants, v)
}

// VariantMapping returns the variants as a raw to display name map.
func (c *Config) VariantMapping() map[string]string {
	if len(c.Variants) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Variants))
	for _, v := range c.Variants {
		m[v.Raw] = v.Display
	}
	return m
}
