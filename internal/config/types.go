package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	userFile    string
	projectFile string
}

// Default values.
const (
	DefaultTasksFile     = "tasks.json"
	DefaultStorage       = "file"
	DefaultBoltFile      = "tasks.db"
	DefaultBoltBucket    = "tasklist"
	DefaultStorageKey    = "colorfulTasks"
	DefaultFilter        = "all"
	DefaultLogDir        = "~/.tasklist"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	projectConfigName    = "tasklist.toml"
	projectConfigDotName = ".tasklist.toml"
	userConfigDirName    = "tasklist"
	homeConfigDirName    = ".tasklist"
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Storage
	TasksFile  string `toml:"tasks_file"`
	Storage    string `toml:"storage"` // file, bolt, or memory
	Format     string `toml:"format"`  // json, yaml, toml; empty infers from tasks_file
	BoltFile   string `toml:"bolt_file"`
	BoltBucket string `toml:"bolt_bucket"`
	StorageKey string `toml:"storage_key"`

	// View
	DefaultFilter string `toml:"default_filter"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Activity journal
	LogDir string `toml:"log_dir"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"tasks_file",
		"storage",
		"format",
		"bolt_file",
		"bolt_bucket",
		"storage_key",
		"default_filter",
		"hook_command",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// ConfigFields returns the configurable keys in display order.
func ConfigFields() []string {
	return configFields()
}

// Value returns the effective value of a config key as a string.
func (c *Config) Value(field string) string {
	switch field {
	case "tasks_file":
		return c.TasksFile
	case "storage":
		return c.Storage
	case "format":
		return c.Format
	case "bolt_file":
		return c.BoltFile
	case "bolt_bucket":
		return c.BoltBucket
	case "storage_key":
		return c.StorageKey
	case "default_filter":
		return c.DefaultFilter
	case "hook_command":
		return c.HookCommand
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return boolString(c.LogTimestamps)
	case "log_caller":
		return boolString(c.LogCaller)
	}
	return ""
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
