package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig        `mapstructure:"server"`
	Logging   LoggingConfig       `mapstructure:"logging"`
	Sandbox   SandboxConfig       `mapstructure:"sandbox"`
	Languages map[string]Language `mapstructure:"languages"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// SandboxConfig holds container sandbox configuration
type SandboxConfig struct {
	// Host is the container daemon endpoint. Empty means the standard
	// environment discovery (DOCKER_HOST etc.). A Podman socket works here
	// too since it speaks the same API.
	Host             string `mapstructure:"host"`
	MemoryLimitMB    int64  `mapstructure:"memory_limit_mb"`
	OutputLimitBytes int    `mapstructure:"output_limit_bytes"`
	StdinOpen        bool   `mapstructure:"stdin_open"`
	MountPath        string `mapstructure:"mount_path"`
}

// Language describes one supported interpreter: the image it runs in, the
// file name the submitted source is staged under, and the argv that invokes
// the interpreter inside the container.
type Language struct {
	Image    string   `mapstructure:"image"`
	FileName string   `mapstructure:"file_name"`
	Command  []string `mapstructure:"command"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "http")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("sandbox.host", "")
	viper.SetDefault("sandbox.memory_limit_mb", 32)
	viper.SetDefault("sandbox.output_limit_bytes", 1024)
	viper.SetDefault("sandbox.stdin_open", true)
	viper.SetDefault("sandbox.mount_path", "/code")

	// Python defaults
	viper.SetDefault("languages.python.image", "python:3.12-slim")
	viper.SetDefault("languages.python.file_name", "code.py")
	viper.SetDefault("languages.python.command", []string{"python", "code.py"})

	// Node.js defaults
	viper.SetDefault("languages.nodejs.image", "node:20-alpine")
	viper.SetDefault("languages.nodejs.file_name", "code.js")
	viper.SetDefault("languages.nodejs.command", []string{"node", "code.js"})

	// Ruby defaults
	viper.SetDefault("languages.ruby.image", "ruby:3.3-slim")
	viper.SetDefault("languages.ruby.file_name", "code.rb")
	viper.SetDefault("languages.ruby.command", []string{"ruby", "code.rb"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	switch c.Server.Transport {
	case "http", "mcp-stdio", "mcp-http":
	default:
		return fmt.Errorf("invalid server.transport: %s, must be 'http', 'mcp-stdio' or 'mcp-http'", c.Server.Transport)
	}

	if c.Server.Transport != "mcp-stdio" && (c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535) {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}

	if c.Sandbox.MemoryLimitMB <= 0 {
		return fmt.Errorf("sandbox.memory_limit_mb must be positive, got: %d", c.Sandbox.MemoryLimitMB)
	}

	if c.Sandbox.OutputLimitBytes <= 0 {
		return fmt.Errorf("sandbox.output_limit_bytes must be positive, got: %d", c.Sandbox.OutputLimitBytes)
	}

	if c.Sandbox.MountPath == "" || c.Sandbox.MountPath[0] != '/' {
		return fmt.Errorf("sandbox.mount_path must be an absolute container path, got: %q", c.Sandbox.MountPath)
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language must be configured")
	}

	for name, lang := range c.Languages {
		if lang.Image == "" {
			return fmt.Errorf("languages.%s.image must not be empty", name)
		}
		if lang.FileName == "" {
			return fmt.Errorf("languages.%s.file_name must not be empty", name)
		}
		if len(lang.Command) == 0 {
			return fmt.Errorf("languages.%s.command must not be empty", name)
		}
	}

	return nil
}

// MemoryLimitBytes returns the configured memory ceiling in bytes.
func (c *Config) MemoryLimitBytes() int64 {
	return c.Sandbox.MemoryLimitMB * 1024 * 1024
}
