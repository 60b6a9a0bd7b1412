package config

import (
	"time"

	"parley/internal/protocol"
)

// ServerConfig holds settings for the chat server runtime.
type ServerConfig struct {
	ListenAddr    string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxFrameBytes int           `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`
	MessageRate   float64       `mapstructure:"message_rate" yaml:"message_rate"`
	MessageBurst  int           `mapstructure:"message_burst" yaml:"message_burst"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerAddr       string        `mapstructure:"server_addr" yaml:"server_addr"`
	Username         string        `mapstructure:"username" yaml:"username"`
	CommandPrefix    string        `mapstructure:"command_prefix" yaml:"command_prefix"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff" yaml:"reconnect_backoff"`
	MaxBackoff       time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`
}

// DefaultServer returns server configuration with reasonable starter defaults.
func DefaultServer() ServerConfig {
	return ServerConfig{
		ListenAddr:    ":3636",
		LogLevel:      "info",
		ReadTimeout:   5 * time.Minute,
		WriteTimeout:  15 * time.Second,
		MaxFrameBytes: protocol.DefaultMaxFrameBytes,
		MessageRate:   5,
		MessageBurst:  10,
	}
}

// DefaultClient returns client configuration defaults.
func DefaultClient() ClientConfig {
	return ClientConfig{
		ServerAddr:       "localhost:3636",
		CommandPrefix:    "/",
		HandshakeTimeout: 5 * time.Second,
		ReconnectBackoff: time.Second,
		MaxBackoff:       30 * time.Second,
	}
}

// Prefix returns the first rune of the configured command prefix, falling
// back to '/'.
func (c ClientConfig) Prefix() rune {
	for _, r := range c.CommandPrefix {
		return r
	}
	return '/'
}
