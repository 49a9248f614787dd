// Package config provides configuration management for execkit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/execkit"
	DefaultConfigFile = "config.yaml"
	DefaultDataDir    = ".local/share/execkit"
)

// maxVerbosity is the highest verbosity that changes log output.
const maxVerbosity = 2

// DefaultMaxRuns is how many runs the history keeps unless configured.
const DefaultMaxRuns = 500

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey       = errors.New("invalid configuration key")
	ErrInvalidVerbosity = errors.New("invalid verbosity")
	ErrInvalidEnv       = errors.New("invalid environment entry")
	ErrInvalidMaxRuns   = errors.New("invalid max runs")
	ErrNoEditor         = errors.New("$EDITOR environment variable not set")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full execkit configuration.
type Config struct {
	Exec    ExecConfig    `mapstructure:"exec"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Log     LogConfig     `mapstructure:"log"`
}

// ExecConfig holds defaults applied to every launched command.
type ExecConfig struct {
	Dir string   `mapstructure:"dir" validate:"omitempty,dir"`
	Env []string `mapstructure:"env" validate:"dive,contains=="` // KEY=VALUE entries
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	History string `mapstructure:"history" validate:"required"`
	Logs    string `mapstructure:"logs" validate:"required"`
	MaxRuns int    `mapstructure:"max_runs" validate:"min=0"` // 0 keeps every run
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Verbosity int `mapstructure:"verbosity" validate:"min=0,max=2"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	return NewLoaderAt(home, filepath.Join(home, DefaultConfigDir, DefaultConfigFile)), nil
}

// NewLoaderAt creates a loader for an explicit config file path. home is used
// to expand ~ in storage paths.
func NewLoaderAt(home, configPath string) *Loader {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding
	v.SetEnvPrefix("EXECKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("exec.dir", "EXECKIT_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.logs", "EXECKIT_LOG_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("log.verbosity", "EXECKIT_VERBOSITY")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("exec.dir", "")
	l.v.SetDefault("exec.env", []string{})
	l.v.SetDefault("storage.history", "~/"+DefaultDataDir+"/history.json")
	l.v.SetDefault("storage.logs", "~/"+DefaultDataDir+"/logs")
	l.v.SetDefault("storage.max_runs", DefaultMaxRuns)
	l.v.SetDefault("log.verbosity", 0)
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Exec.Dir = l.expandPath(cfg.Exec.Dir)
	cfg.Storage.History = l.expandPath(cfg.Storage.History)
	cfg.Storage.Logs = l.expandPath(cfg.Storage.Logs)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key and writes the file.
// exec.env takes a comma-separated list of KEY=VALUE entries.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	switch key {
	case "log.verbosity":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > maxVerbosity {
			return fmt.Errorf("%w: %s (valid: 0-%d)", ErrInvalidVerbosity, value, maxVerbosity)
		}
		l.v.Set(key, n)
	case "storage.max_runs":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s (expected a count, 0 for unlimited)", ErrInvalidMaxRuns, value)
		}
		l.v.Set(key, n)
	case "exec.env":
		entries, err := splitEnvList(value)
		if err != nil {
			return err
		}
		l.v.Set(key, entries)
	default:
		l.v.Set(key, value)
	}

	return l.v.WriteConfig()
}

// splitEnvList parses "A=1,B=2" into its entries.
func splitEnvList(value string) ([]string, error) {
	entries := []string{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if key, val, ok := strings.Cut(entry, "="); !ok || key == "" || val == "" {
			return nil, fmt.Errorf("%w: %s (expected KEY=VALUE)", ErrInvalidEnv, entry)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
