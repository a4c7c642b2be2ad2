// Package config loads client and server settings from an optional YAML file
// and TEXTCHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TEXTCHAT"

// ClientConfig holds settings for the chat client.
type ClientConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Transport      string        `mapstructure:"transport"` // "tcp" or "ws"
	WSPath         string        `mapstructure:"ws_path"`
	Username       string        `mapstructure:"username"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // 0 waits as long as the OS does
	MetricsAddress string        `mapstructure:"metrics_address"`
}

// ServerConfig holds settings for the reference chat server.
type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// LogConfig holds logging-related configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds all configuration for the application.
type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// Supported transports.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.host", "localhost")
	v.SetDefault("client.port", 1300)
	v.SetDefault("client.transport", TransportTCP)
	v.SetDefault("client.ws_path", "/ws")
	v.SetDefault("client.username", "")
	v.SetDefault("client.connect_timeout", 0)
	v.SetDefault("client.metrics_address", "")
	v.SetDefault("server.address", ":1300")
	v.SetDefault("server.metrics_address", "")
	v.SetDefault("log.level", "info")
}

// Load reads configuration. An empty path means "config.yaml in the working
// directory, if present". A path that is given explicitly must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Client.Transport {
	case TransportTCP, TransportWebSocket:
	default:
		return fmt.Errorf("client.transport: unsupported transport %q", c.Client.Transport)
	}
	if c.Client.Port <= 0 || c.Client.Port > 65535 {
		return fmt.Errorf("client.port: out of range: %d", c.Client.Port)
	}
	if c.Client.ConnectTimeout < 0 {
		return fmt.Errorf("client.connect_timeout: negative duration %s", c.Client.ConnectTimeout)
	}
	return nil
}
