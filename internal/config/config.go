package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultBackendURL      = "https://json.excalidraw.com/api/v2/"
	DefaultShareBase       = "https://dai-shi.github.io/excalidraw-animate/"
	DefaultMaxLibraryBytes = 32 << 20
)

type Config struct {
	Link            string        `mapstructure:"link"`
	InputPath       string        `mapstructure:"input"`
	OutputDir       string        `mapstructure:"outputDir"`
	Workers         int           `mapstructure:"workers"`
	BackendURL      string        `mapstructure:"backendURL"`
	HTTPTimeout     time.Duration `mapstructure:"httpTimeout"`
	MaxLibraryBytes int64         `mapstructure:"maxLibraryBytes"`
	LogLevel        string        `mapstructure:"logLevel"`
	ShowStats       bool          `mapstructure:"showStats"`
	QRCode          bool          `mapstructure:"qrCode"`
	ShareBase       string        `mapstructure:"shareBase"`
	BuildVersion    string        `mapstructure:"-"`
}

// Load builds a Config from defaults, an optional config file and
// EXANIM_* environment variables. An empty path skips the file.
func Load(path string, defaultWorkers int) (*Config, error) {
	v := viper.New()

	v.SetDefault("link", "")
	v.SetDefault("input", "")
	v.SetDefault("outputDir", "output")
	v.SetDefault("workers", defaultWorkers)
	v.SetDefault("backendURL", DefaultBackendURL)
	v.SetDefault("httpTimeout", time.Duration(0))
	v.SetDefault("maxLibraryBytes", DefaultMaxLibraryBytes)
	v.SetDefault("logLevel", "info")
	v.SetDefault("showStats", false)
	v.SetDefault("qrCode", false)
	v.SetDefault("shareBase", DefaultShareBase)

	v.SetEnvPrefix("EXANIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
