package config

const (
	defaultStateDir             = "~/.local/state/logsweep"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultOutputMode           = "aggregate"
	defaultHistoryEnabled       = true
	defaultHistoryFile          = "history.db"
	defaultHistoryRetentionDays = 30
)

// Default returns the baseline configuration before any file or environment
// overrides are applied.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			Mode: defaultOutputMode,
		},
		History: History{
			Enabled:       defaultHistoryEnabled,
			RetentionDays: defaultHistoryRetentionDays,
		},
	}
}
