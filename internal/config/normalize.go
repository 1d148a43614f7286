package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if override, ok := os.LookupEnv(StateDirEnv); ok && strings.TrimSpace(override) != "" {
		c.Paths.StateDir = override
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}

	stateDir, err := expandPath(c.Paths.StateDir)
	if err != nil {
		return err
	}
	c.Paths.StateDir = stateDir

	if strings.TrimSpace(c.History.Path) != "" {
		historyPath, err := expandPath(c.History.Path)
		if err != nil {
			return err
		}
		c.History.Path = historyPath
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Output.Mode = strings.ToLower(strings.TrimSpace(c.Output.Mode))
	if c.Output.Mode == "" {
		c.Output.Mode = defaultOutputMode
	}
	return nil
}
