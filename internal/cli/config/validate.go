package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.OutputFormat) {
	case "", "auto", "text", "txt", "markdown", "md", "json":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}

	for name := range c.Models {
		if _, err := quantity.ParseKind(name); err != nil {
			return fmt.Errorf("models: %w", err)
		}
	}
	for i, p := range c.Preferences {
		if _, err := quantity.ParseKind(p.Kind); err != nil {
			return fmt.Errorf("preferences[%d]: %w", i, err)
		}
		if p.Model == "" {
			return fmt.Errorf("preferences[%d]: model is required", i)
		}
	}
	return nil
}
