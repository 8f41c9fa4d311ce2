package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-workspace configuration directory.
const Dir = ".routeslip"

// EnvPrefix prefixes environment overrides, e.g. ROUTESLIP_LOG_LEVEL.
const EnvPrefix = "ROUTESLIP"

// Config represents the routeslip configuration.
type Config struct {
	Operator OperatorConfig `mapstructure:"operator"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Capture  CaptureConfig  `mapstructure:"capture"`
}

// OperatorConfig identifies who is driving the worklist.
type OperatorConfig struct {
	ID string `mapstructure:"id"`
}

// StoreConfig locates the durable worklist.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// ExtractConfig tunes the field extractor.
type ExtractConfig struct {
	InvoiceMaxLen  int      `mapstructure:"invoice_max_len"`
	Boilerplate    []string `mapstructure:"boilerplate"`     // extra words that disqualify a name line
	StreetSuffixes []string `mapstructure:"street_suffixes"` // extra street suffix tokens
}

// OCRConfig configures text recognition.
type OCRConfig struct {
	Languages []string `mapstructure:"languages"`
}

// CaptureConfig configures the frame inbox and batch workers.
type CaptureConfig struct {
	Inbox   string `mapstructure:"inbox"`
	Workers int    `mapstructure:"workers"`
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, Dir, "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("operator.id", "")
	v.SetDefault("store.path", filepath.Join(Dir, "routeslip.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("extract.invoice_max_len", 20)
	v.SetDefault("extract.boilerplate", []string{})
	v.SetDefault("extract.street_suffixes", []string{})
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("capture.inbox", filepath.Join(Dir, "inbox"))
	v.SetDefault("capture.workers", 4)
	return v
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return cfg
}

// LoadConfig reads .routeslip/config.yaml from dir, falling back to defaults
// when the file does not exist. Environment variables override both.
// Relative store and inbox paths are resolved against dir.
func LoadConfig(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(Path(dir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Path != ":memory:" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(dir, cfg.Store.Path)
	}
	if cfg.Capture.Inbox != "" && !filepath.IsAbs(cfg.Capture.Inbox) {
		cfg.Capture.Inbox = filepath.Join(dir, cfg.Capture.Inbox)
	}

	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes config.yaml into dir/.routeslip.
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", Dir, err)
	}

	v := viper.New()
	v.Set("operator.id", cfg.Operator.ID)
	v.Set("store.path", cfg.Store.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("extract.invoice_max_len", cfg.Extract.InvoiceMaxLen)
	v.Set("extract.boilerplate", cfg.Extract.Boilerplate)
	v.Set("extract.street_suffixes", cfg.Extract.StreetSuffixes)
	v.Set("ocr.languages", cfg.OCR.Languages)
	v.Set("capture.inbox", cfg.Capture.Inbox)
	v.Set("capture.workers", cfg.Capture.Workers)

	if err := v.WriteConfigAs(Path(dir)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Extract.InvoiceMaxLen < 3 || c.Extract.InvoiceMaxLen > 64 {
		return fmt.Errorf("extract.invoice_max_len must be within 3..64, got %d", c.Extract.InvoiceMaxLen)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("ocr.languages needs at least one language")
	}
	if c.Capture.Workers < 1 || c.Capture.Workers > 64 {
		return fmt.Errorf("capture.workers must be within 1..64, got %d", c.Capture.Workers)
	}
	return nil
}
