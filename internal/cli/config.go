package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dexhub/internal/httpapi"
	"github.com/mesh-intelligence/dexhub/internal/paths"
	"github.com/mesh-intelligence/dexhub/internal/seed"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Configuration keys.
const (
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyDataset        = "dataset"
	cfgKeyImportLimit    = "seed.import_limit"
	cfgKeyPlaceholderURL = "seed.placeholder_url"
	cfgKeyCategoryPolicy = "seed.category_policy"
	cfgKeyDefaultType    = "seed.default_type"
	cfgKeyServerAddr     = "server.addr"
	cfgKeyRateLimit      = "server.rate_limit"
	cfgKeyLogLevel       = "log.level"

	envPrefix = "DEXHUB"
)

// Config is the decoded config.yaml merged with defaults and DEXHUB_*
// environment overrides.
type Config struct {
	Backend string       `mapstructure:"backend" yaml:"backend"`
	DataDir string       `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Dataset string       `mapstructure:"dataset" yaml:"dataset,omitempty"`
	Seed    SeedConfig   `mapstructure:"seed" yaml:"seed"`
	Server  ServerConfig `mapstructure:"server" yaml:"server"`
	Log     LogConfig    `mapstructure:"log" yaml:"log"`
}

// SeedConfig configures the seeding pipeline.
type SeedConfig struct {
	ImportLimit    int    `mapstructure:"import_limit" yaml:"import_limit"`
	PlaceholderURL string `mapstructure:"placeholder_url" yaml:"placeholder_url"`
	CategoryPolicy string `mapstructure:"category_policy" yaml:"category_policy"`
	DefaultType    string `mapstructure:"default_type" yaml:"default_type"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr" yaml:"addr"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

func defaultConfig() Config {
	opts := seed.DefaultOptions()
	return Config{
		Backend: types.BackendSQLite,
		Seed: SeedConfig{
			ImportLimit:    opts.ImportLimit,
			PlaceholderURL: opts.PlaceholderURL,
			CategoryPolicy: string(opts.Policy),
			DefaultType:    string(opts.DefaultType),
		},
		Server: ServerConfig{Addr: httpapi.DefaultAddr},
		Log:    LogConfig{Level: "info"},
	}
}

// setDefaults registers every key so that AutomaticEnv can override keys
// absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultConfig()
	v.SetDefault(cfgKeyBackend, d.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyDataset, "")
	v.SetDefault(cfgKeyImportLimit, d.Seed.ImportLimit)
	v.SetDefault(cfgKeyPlaceholderURL, d.Seed.PlaceholderURL)
	v.SetDefault(cfgKeyCategoryPolicy, d.Seed.CategoryPolicy)
	v.SetDefault(cfgKeyDefaultType, d.Seed.DefaultType)
	v.SetDefault(cfgKeyServerAddr, d.Server.Addr)
	v.SetDefault(cfgKeyRateLimit, d.Server.RateLimit)
	v.SetDefault(cfgKeyLogLevel, d.Log.Level)
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults and environment variables still apply.
func loadConfig(v *viper.Viper, configDir string) (Config, error) {
	setDefaults(v)
	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// seedOptions converts the seed section into seeding options.
func (c Config) seedOptions() (seed.Options, error) {
	policy, err := seed.ParsePolicy(c.Seed.CategoryPolicy)
	if err != nil {
		return seed.Options{}, err
	}
	opts := seed.Options{
		ImportLimit:    c.Seed.ImportLimit,
		PlaceholderURL: c.Seed.PlaceholderURL,
		Policy:         policy,
		DefaultType:    types.TypeTag(strings.ToLower(strings.TrimSpace(c.Seed.DefaultType))),
	}
	return opts, opts.Validate()
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left untouched.
func writeConfigIfMissing(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# dexhub configuration. Every key can be overridden with DEXHUB_<KEY>,\n# for example DEXHUB_SEED_IMPORT_LIMIT=0.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
