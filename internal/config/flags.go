package config

import "flag"

// parseFlags defines the global CLI flags on fs and parses args. If sources
// is non-nil, explicitly set flags are recorded as SourceFlag.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.TasksFile, "tasks", cfg.TasksFile, "Path to the tasks file")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend (file, bolt, memory)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Tasks file format (json, yaml, toml); inferred from extension when empty")
	fs.StringVar(&cfg.BoltFile, "bolt-file", cfg.BoltFile, "BoltDB file for bolt storage")
	fs.StringVar(&cfg.BoltBucket, "bolt-bucket", cfg.BoltBucket, "BoltDB bucket")
	fs.StringVar(&cfg.StorageKey, "storage-key", cfg.StorageKey, "Key holding the task list in bolt storage")
	ephemeral := fs.Bool("ephemeral", false, "Keep tasks in memory only (same as -storage memory)")

	// View
	fs.StringVar(&cfg.DefaultFilter, "filter", cfg.DefaultFilter, "Initial filter (all, today, upcoming, completed)")

	// Hooks
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Hook command to run after each change")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Activity journal directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ephemeral {
		cfg.Storage = "memory"
	}

	if sources == nil {
		return nil
	}

	flagToSource := map[string]string{
		"tasks":          "tasks_file",
		"storage":        "storage",
		"ephemeral":      "storage",
		"format":         "format",
		"bolt-file":      "bolt_file",
		"bolt-bucket":    "bolt_bucket",
		"storage-key":    "storage_key",
		"filter":         "default_filter",
		"hook":           "hook_command",
		"log-dir":        "log_dir",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToSource[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
