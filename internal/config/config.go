package config

import "time"

// Config holds client configuration values.
type Config struct {
	StoreURL       string        `mapstructure:"store_url" yaml:"store_url"`
	ChannelURL     string        `mapstructure:"channel_url" yaml:"channel_url"`
	AuthToken      string        `mapstructure:"auth_token" yaml:"auth_token"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	ReadLimit      int64         `mapstructure:"read_limit" yaml:"read_limit"`
	EventBuffer    int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		StoreURL:       "http://localhost:8000/api",
		ChannelURL:     "ws://localhost:8000/ws/chat/",
		ReconnectDelay: 3 * time.Second,
		ReadLimit:      1 << 20,
		EventBuffer:    64,
		LogLevel:       "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.StoreURL != "" {
		c.StoreURL = other.StoreURL
	}
	if other.ChannelURL != "" {
		c.ChannelURL = other.ChannelURL
	}
	if other.AuthToken != "" {
		c.AuthToken = other.AuthToken
	}
	if other.ReconnectDelay != 0 {
		c.ReconnectDelay = other.ReconnectDelay
	}
	if other.ReadLimit != 0 {
		c.ReadLimit = other.ReadLimit
	}
	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
