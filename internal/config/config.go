// Package config loads the bridge configuration from layered sources:
// built-in defaults, an optional TOML file, and BRIDGE_-prefixed environment
// variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables read by Load, e.g.
// BRIDGE_BASE_URL, BRIDGE_STRATEGY.
const envPrefix = "BRIDGE_"

// Config holds the bridge settings. Strategy values are validated here so an
// unrecognized strategy fails at load time instead of silently degrading.
type Config struct {
	// BaseURL of the responses backend, without the /responses suffix.
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// Model requested when the caller does not specify one.
	Model string `koanf:"model" validate:"required"`

	// Strategy emulates n-many completions: first_only, parallel or
	// prompt_split.
	Strategy string `koanf:"strategy" validate:"required,oneof=first_only parallel prompt_split"`
	// PromptSplitDelimiter joins the synthesized prompt and splits the
	// backend's answer under the prompt_split strategy.
	PromptSplitDelimiter string `koanf:"prompt_split_delimiter" validate:"required"`
	// PromptSplitInstruction is the instruction template appended to the
	// synthesized prompt; {n} is replaced with the requested count.
	PromptSplitInstruction string `koanf:"prompt_split_instruction" validate:"required,contains={n}"`
	// AttachRawResponses opts into attaching raw backend payloads to
	// responses for diagnostics.
	AttachRawResponses bool `koanf:"attach_raw_responses"`

	LogLevel  string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"required,oneof=text json"`
}

func defaults() map[string]any {
	return map[string]any{
		"base_url":                 "https://api.openai.com/v1",
		"model":                    "gpt-4o-mini",
		"strategy":                 "first_only",
		"prompt_split_delimiter":   "\n",
		"prompt_split_instruction": "Write {n} independent completions of the conversation above, one per line.",
		"attach_raw_responses":     false,
		"log_level":                "info",
		"log_format":               "text",
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
