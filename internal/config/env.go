package config

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TASKLIST_"

// loadFromEnv overrides config from environment variables. If sources is
// non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field, name string, target *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = v
			if sources != nil {
				sources[field] = SourceEnv
			}
		}
	}
	setEnvBool := func(field, name string, target *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*target = boolFromString(v)
			if sources != nil {
				sources[field] = SourceEnv
			}
		}
	}

	setEnv("tasks_file", "TASKS", &cfg.TasksFile)
	setEnv("storage", "STORAGE", &cfg.Storage)
	setEnv("format", "FORMAT", &cfg.Format)
	setEnv("bolt_file", "BOLT_FILE", &cfg.BoltFile)
	setEnv("bolt_bucket", "BOLT_BUCKET", &cfg.BoltBucket)
	setEnv("storage_key", "STORAGE_KEY", &cfg.StorageKey)
	setEnv("default_filter", "FILTER", &cfg.DefaultFilter)
	setEnv("hook_command", "HOOK", &cfg.HookCommand)
	setEnv("log_dir", "LOG_DIR", &cfg.LogDir)

	// Logging configuration
	setEnv("log_level", "LOG_LEVEL", &cfg.LogLevel)
	setEnv("log_format", "LOG_FORMAT", &cfg.LogFormat)
	setEnvBool("log_timestamps", "LOG_TIMESTAMPS", &cfg.LogTimestamps)
	setEnvBool("log_caller", "LOG_CALLER", &cfg.LogCaller)
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
