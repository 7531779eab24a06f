package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values.
type Validator interface {
	Validate(cfg *Config) error
}

type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a Validator backed by go-playground/validator.
func NewValidator() Validator {
	return &validatorImpl{validate: validator.New()}
}

// Validate checks the configuration and reports every violation together.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := v.validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validation error: %w", err)
		}
		messages := make([]string, 0, len(validationErrs))
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
		return fmt.Errorf("configuration validation failed:\n  - %s",
			strings.Join(messages, "\n  - "))
	}

	// Non-mock providers need a key source: either configured or available
	// in the environment at provider construction.
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		return fmt.Errorf("configuration validation failed:\n  - llm.base_url is required when llm.provider is 'ollama'")
	}

	return nil
}

func formatValidationError(e validator.FieldError) string {
	fieldPath := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldPath)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", fieldPath, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", fieldPath, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", fieldPath, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got: %v)", fieldPath, e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation (got: %v)", fieldPath, e.Tag(), e.Value())
	}
}

// formatFieldPath turns a struct namespace like "Config.LLM.Provider" into
// the config file path "llm.provider".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = toSnakeCase(part)
	}
	return strings.Join(parts, ".")
}

func toSnakeCase(s string) string {
	isUpper := func(r rune) bool { return r >= 'A' && r <= 'Z' }
	isLower := func(r rune) bool { return r >= 'a' && r <= 'z' }

	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if !isUpper(r) {
			b.WriteRune(r)
			continue
		}
		// Break before a capital that starts a new word, keeping runs of
		// capitals together (LLM -> llm, APIKey -> api_key).
		if i > 0 && (isLower(rs[i-1]) ||
			(isUpper(rs[i-1]) && i+1 < len(rs) && isLower(rs[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(r + ('a' - 'A'))
	}
	return b.String()
}
