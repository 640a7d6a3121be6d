package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/asset-index/aidx"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Index IndexConfig `mapstructure:"index"`
	Query QueryConfig `mapstructure:"query"`
	Log   LogConfig   `mapstructure:"log"`
}

// IndexConfig stores build-time indexing settings.
type IndexConfig struct {
	Roots         []string `mapstructure:"roots"`
	Delimiters    []string `mapstructure:"delimiters"`
	CaseSensitive bool     `mapstructure:"caseSensitive"`
	IgnoreFile    string   `mapstructure:"ignoreFile"`
	Output        string   `mapstructure:"output"`
}

// QueryConfig stores query-time settings.
type QueryConfig struct {
	Snapshot string `mapstructure:"snapshot"`
	Strict   bool   `mapstructure:"strict"`
}

// LogConfig stores logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ErrNoRoots is returned by Validate when no root directory is configured.
var ErrNoRoots = errors.New("no index roots configured")

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("/etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("index.roots", []string{})
	v.SetDefault("index.delimiters", internal.DefaultDelimiters)
	v.SetDefault("index.caseSensitive", false)
	v.SetDefault("index.ignoreFile", internal.DefaultIgnoreFile)
	v.SetDefault("index.output", internal.DefaultSnapshotPath)
	v.SetDefault("query.snapshot", internal.DefaultSnapshotPath)
	v.SetDefault("query.strict", true)
	v.SetDefault("log.level", internal.DefaultLogLevel)

	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.AutomaticEnv()                                   // ASSETIDX_INDEX_OUTPUT etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // index.output -> INDEX_OUTPUT

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	AppConfig = cfg
	return &cfg, nil
}

// Validate checks the settings a build cannot proceed without.
func (c *IndexConfig) Validate() error {
	if len(c.Roots) == 0 {
		return ErrNoRoots
	}
	for i, root := range c.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("index.roots[%d] cannot be empty", i)
		}
	}
	if c.Output == "" {
		return fmt.Errorf("index.output cannot be empty")
	}
	return nil
}
