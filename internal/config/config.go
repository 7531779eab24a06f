// Package config loads and validates the application configuration from YAML
// with ${ENV_VAR} interpolation.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Workflow WorkflowConfig `mapstructure:"workflow" yaml:"workflow"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider" validate:"required,oneof=anthropic openai ollama mock"`
	Model    string `mapstructure:"model" yaml:"model" validate:"required"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
}

// DatabaseConfig names the store queries run against.
type DatabaseConfig struct {
	DSN           string `mapstructure:"dsn" yaml:"dsn" validate:"required"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms" validate:"min=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// OutputConfig names the directories artifacts are written to.
type OutputConfig struct {
	ChartsDir  string `mapstructure:"charts_dir" yaml:"charts_dir"`
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir"`
}

// WorkflowConfig tunes the workflow engine.
type WorkflowConfig struct {
	MaxSteps int `mapstructure:"max_steps" yaml:"max_steps" validate:"min=0"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the configuration used when no file is present. The
// mock provider keeps the default runnable without credentials.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-20250514",
		},
		Database: DatabaseConfig{
			DSN:           "datasage.db",
			BusyTimeoutMS: 5000,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Minute,
		},
		Output: OutputConfig{
			ChartsDir:  "charts",
			ReportsDir: "reports",
		},
		Workflow: WorkflowConfig{
			MaxSteps: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
