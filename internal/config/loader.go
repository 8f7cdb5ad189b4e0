package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "WIRECHAT_LIVE"
	envConfigDefaultPath = "WIRECHAT_LIVE_CONFIG_DIR"
	defaultConfigDir     = "wirechat-live"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides (see Config.UpdateFrom).
// A missing config file is created with the defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("store_url", cfg.StoreURL)
	v.SetDefault("channel_url", cfg.ChannelURL)
	v.SetDefault("auth_token", cfg.AuthToken)
	v.SetDefault("reconnect_delay", cfg.ReconnectDelay)
	v.SetDefault("read_limit", cfg.ReadLimit)
	v.SetDefault("event_buffer", cfg.EventBuffer)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
		if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil {
			logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
		} else {
			logger.Info().Str("path", configPath).Msg("created default config")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// Validate checks that both endpoints are usable URLs.
func (c Config) Validate() error {
	if err := checkURL(c.StoreURL, "http", "https"); err != nil {
		return fmt.Errorf("store_url: %w", err)
	}
	if err := checkURL(c.ChannelURL, "ws", "wss"); err != nil {
		return fmt.Errorf("channel_url: %w", err)
	}
	if c.ReconnectDelay < 0 {
		return errors.New("reconnect_delay must not be negative")
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("want %s URL with host, got %q", strings.Join(schemes, " or "), raw)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		return filepath.Join(base, defaultConfigName)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, defaultConfigDir, defaultConfigName)
	}
	return defaultConfigName
}

// fileConfig is the on-disk shape; durations are written as "3s" strings.
type fileConfig struct {
	StoreURL       string `yaml:"store_url"`
	ChannelURL     string `yaml:"channel_url"`
	AuthToken      string `yaml:"auth_token"`
	ReconnectDelay string `yaml:"reconnect_delay"`
	ReadLimit      int64  `yaml:"read_limit"`
	EventBuffer    int    `yaml:"event_buffer"`
	LogLevel       string `yaml:"log_level"`
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(fileConfig{
		StoreURL:       cfg.StoreURL,
		ChannelURL:     cfg.ChannelURL,
		AuthToken:      cfg.AuthToken,
		ReconnectDelay: cfg.ReconnectDelay.String(),
		ReadLimit:      cfg.ReadLimit,
		EventBuffer:    cfg.EventBuffer,
		LogLevel:       cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
