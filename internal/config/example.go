package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Tasks file (relative to the working directory)
tasks_file = "tasks.json"

# Storage backend: file, bolt, or memory
storage = "file"

# Tasks file format: json, yaml, or toml (empty infers from the extension)
# format = "json"

# BoltDB settings, used when storage = "bolt"
bolt_file = "tasks.db"
bolt_bucket = "tasklist"
storage_key = "colorfulTasks"

# Filter shown at startup: all, today, upcoming, or completed
default_filter = "all"

# Hook command run after each change with: <event> <task-id> <tasks-file>
# hook_command = "/path/to/hook.sh"

# Activity journal directory (supports ~ and $VAR expansion)
log_dir = "~/.tasklist"

# Console logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
