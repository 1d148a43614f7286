package config

import "fmt"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}

	switch c.Output.Mode {
	case "aggregate", "raw":
	default:
		return fmt.Errorf("output.mode: unsupported value %q", c.Output.Mode)
	}

	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days: must be non-negative, got %d", c.History.RetentionDays)
	}
	return nil
}
