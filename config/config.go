// Package config loads seat definitions from seats.yaml.
// Each named seat maps to a supervisor configuration: which CLI binary
// and model to run, its tool permissions, and its lifecycle settings.
package config

import (
	"fmt"
	"time"

	"github.com/calderlane/modelseat/seat"
)

// Config is the top-level seats.yaml structure.
type Config struct {
	Seats map[string]*SeatConfig `yaml:"seats"`
}

// SeatConfig defines one named seat.
type SeatConfig struct {
	Command            string     `yaml:"command,omitempty"`
	Model              string     `yaml:"model,omitempty"`
	SystemPrompt       string     `yaml:"system_prompt,omitempty"`
	SystemPromptFile   string     `yaml:"system_prompt_file,omitempty"`
	AppendSystemPrompt string     `yaml:"append_system_prompt,omitempty"`
	Tools              *string    `yaml:"tools,omitempty"` // empty string disables all tools
	AllowedTools       StringList `yaml:"allowed_tools,omitempty"`
	PermissionMode     string     `yaml:"permission_mode,omitempty"`
	MaxTurns           int        `yaml:"max_turns,omitempty"`
	ThinkingTokens     int        `yaml:"thinking_tokens,omitempty"`
	BaseURL            string     `yaml:"base_url,omitempty"`
	APIKey             string     `yaml:"api_key,omitempty"`

	Streaming  bool      `yaml:"streaming,omitempty"`
	TokenLimit int       `yaml:"token_limit,omitempty"`
	Timeout    *Duration `yaml:"timeout,omitempty"`
}

// Flags converts the seat definition to supervisor flags.
func (sc *SeatConfig) Flags() seat.Flags {
	return seat.Flags{
		Command:            sc.Command,
		Model:              sc.Model,
		SystemPrompt:       sc.SystemPrompt,
		SystemPromptFile:   sc.SystemPromptFile,
		AppendSystemPrompt: sc.AppendSystemPrompt,
		Tools:              sc.Tools,
		AllowedTools:       sc.AllowedTools,
		PermissionMode:     sc.PermissionMode,
		MaxTurns:           sc.MaxTurns,
		ThinkingTokens:     sc.ThinkingTokens,
		BaseURL:            sc.BaseURL,
		APIKey:             sc.APIKey,
	}
}

// Options converts the seat definition to supervisor options.
func (sc *SeatConfig) Options() seat.Options {
	opts := seat.Options{
		TokenLimit: sc.TokenLimit,
		Streaming:  sc.Streaming,
	}
	if sc.Timeout != nil {
		opts.Timeout = sc.Timeout.Duration
	}
	return opts
}

// Seat looks up a named seat definition.
func (c *Config) Seat(name string) (*SeatConfig, error) {
	sc, ok := c.Seats[name]
	if !ok {
		return nil, fmt.Errorf("seat %q not defined in seats.yaml", name)
	}
	return sc, nil
}

// Validate checks the configuration for basic consistency.
func (c *Config) Validate() error {
	for name, sc := range c.Seats {
		if name == "" {
			return fmt.Errorf("seat with empty name")
		}
		if sc == nil {
			return fmt.Errorf("seat %q has no definition", name)
		}
		if sc.MaxTurns < 0 {
			return fmt.Errorf("seat %q: max_turns must not be negative", name)
		}
		if sc.TokenLimit < 0 {
			return fmt.Errorf("seat %q: token_limit must not be negative", name)
		}
		if sc.Timeout != nil && sc.Timeout.Duration <= 0 {
			return fmt.Errorf("seat %q: timeout must be positive", name)
		}
	}
	return nil
}

// StringList accepts either a single YAML string or a sequence of
// strings, normalizing the single value to a one-element list.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (l *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		*l = StringList{s}
		return nil
	}

	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	*l = StringList(list)
	return nil
}

// Duration is a wrapper around time.Duration that implements YAML
// unmarshaling from human-readable strings like "30s", "2m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}
