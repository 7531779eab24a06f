package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteDefault writes the default configuration to path as editable YAML. An
// existing file is never overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	cfg := DefaultConfig()

	// Durations are written in their string form so the file stays editable.
	doc := map[string]interface{}{
		"llm": map[string]interface{}{
			"provider": cfg.LLM.Provider,
			"model":    cfg.LLM.Model,
			"api_key":  "${ANTHROPIC_API_KEY}",
		},
		"database": map[string]interface{}{
			"dsn":             cfg.Database.DSN,
			"busy_timeout_ms": cfg.Database.BusyTimeoutMS,
		},
		"server": map[string]interface{}{
			"addr":            cfg.Server.Addr,
			"request_timeout": cfg.Server.RequestTimeout.String(),
		},
		"output": map[string]interface{}{
			"charts_dir":  cfg.Output.ChartsDir,
			"reports_dir": cfg.Output.ReportsDir,
		},
		"workflow": map[string]interface{}{
			"max_steps": cfg.Workflow.MaxSteps,
		},
		"logging": map[string]interface{}{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
