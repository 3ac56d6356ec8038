// Package config loads application configuration from an optional YAML
// file with environment-variable overrides on top of defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Queue   QueueConfig   `yaml:"queue"`
	Job     JobConfig     `yaml:"job"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`   // sqlite database file
}

// LLMConfig holds generation provider settings
type LLMConfig struct {
	DefaultProvider string                     `yaml:"default_provider"`
	Providers       map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for a single generation provider
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	URL     string `yaml:"url,omitempty"` // For Ollama
	APIKey  string `yaml:"-"`             // Loaded from environment only
}

// SandboxConfig holds code execution settings
type SandboxConfig struct {
	Backend string              `yaml:"backend"` // subprocess, docker, off
	Python  string              `yaml:"python"`  // interpreter for the subprocess backend
	Docker  DockerSandboxConfig `yaml:"docker"`
}

// DockerSandboxConfig holds Docker sandbox settings
type DockerSandboxConfig struct {
	Image          string  `yaml:"image"`
	MemoryMB       int     `yaml:"memory_mb"`
	CPULimit       float64 `yaml:"cpu_limit"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// QueueConfig holds the optional AMQP job transport settings. An empty
// URL means batches run on the in-process worker pool.
type QueueConfig struct {
	URL string `yaml:"url"`
}

// JobConfig holds batch synthesis settings
type JobConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns sensible defaults for a local deployment
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "quizforge.db",
		},
		LLM: LLMConfig{
			DefaultProvider: "auto",
			Providers: map[string]*ProviderConfig{
				"ollama": {
					Enabled: true,
					URL:     "http://localhost:11434",
					Model:   "llama2",
				},
				"openai": {
					Enabled: false,
					Model:   "gpt-4o",
				},
			},
		},
		Sandbox: SandboxConfig{
			Backend: "subprocess",
			Python:  "python3",
			Docker: DockerSandboxConfig{
				Image:          "python:3.12-alpine",
				MemoryMB:       128,
				CPULimit:       0.5,
				TimeoutSeconds: 10,
			},
		},
		Job: JobConfig{
			Workers: 3,
		},
	}
}

// Load reads configuration from the given YAML file (if it exists) and
// applies environment overrides. An empty path falls back to
// QUIZFORGE_CONFIG, then ./quizforge.yaml.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("QUIZFORGE_CONFIG")
	}
	if path == "" {
		path = "quizforge.yaml"
	}

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over file values.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.Bind = getEnv("BIND", c.Server.Bind)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getEnv("DATABASE_PATH", c.Storage.Path)

	c.LLM.DefaultProvider = getEnv("LLM_PROVIDER", c.LLM.DefaultProvider)
	if ollama, ok := c.LLM.Providers["ollama"]; ok {
		ollama.URL = getEnv("OLLAMA_URL", ollama.URL)
		ollama.Model = getEnv("OLLAMA_MODEL", ollama.Model)
	}
	if openai, ok := c.LLM.Providers["openai"]; ok {
		openai.APIKey = getEnv("OPENAI_API_KEY", openai.APIKey)
		openai.Model = getEnv("OPENAI_MODEL", openai.Model)
		if openai.APIKey != "" {
			openai.Enabled = true
		}
	}

	c.Sandbox.Backend = getEnv("SANDBOX_BACKEND", c.Sandbox.Backend)
	c.Sandbox.Python = getEnv("SANDBOX_PYTHON", c.Sandbox.Python)
	c.Sandbox.Docker.Image = getEnv("SANDBOX_IMAGE", c.Sandbox.Docker.Image)
	c.Sandbox.Docker.MemoryMB = getEnvInt("SANDBOX_MEMORY_MB", c.Sandbox.Docker.MemoryMB)
	c.Sandbox.Docker.CPULimit = getEnvFloat("SANDBOX_CPU_LIMIT", c.Sandbox.Docker.CPULimit)
	c.Sandbox.Docker.TimeoutSeconds = getEnvInt("SANDBOX_TIMEOUT", c.Sandbox.Docker.TimeoutSeconds)

	c.Queue.URL = getEnv("RABBITMQ_URL", c.Queue.URL)
	c.Job.Workers = getEnvInt("JOB_WORKERS", c.Job.Workers)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Sandbox.Backend {
	case "subprocess", "docker", "off":
	default:
		return fmt.Errorf("unknown sandbox backend %q", c.Sandbox.Backend)
	}
	if c.Job.Workers <= 0 {
		c.Job.Workers = 3
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
