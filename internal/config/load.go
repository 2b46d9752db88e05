package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasklist/tasklist.toml or OS-specific config dir)
// 3. Project config file (tasklist.toml or .tasklist.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil, true)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	return load(fs, args, defaultSources(), true)
}

// LoadUnvalidated loads like LoadWithSources but skips Validate. Files that
// do not parse and unknown keys are still errors.
func LoadUnvalidated(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	return load(fs, args, defaultSources(), false)
}

func defaultSources() map[string]ConfigSource {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return sources
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource, validate bool) (*ConfigWithSources, error) {
	cfg := &Config{}
	cws := &ConfigWithSources{Config: cfg, Sources: sources}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.userFile = path
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.projectFile = path
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	return cws, nil
}

// loadConfigFile decodes TOML from path over cfg. Keys present in the file
// are attributed to source when sources is non-nil.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources == nil {
		return nil
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values.
func finalizeConfig(cfg *Config) error {
	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	// The journal resolves a relative log dir itself
	cfg.LogDir = resolvePath(cfg.LogDir, "")
	cfg.TasksFile = resolvePath(cfg.TasksFile, cfg.ProjectRoot)
	cfg.BoltFile = resolvePath(cfg.BoltFile, cfg.ProjectRoot)

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage {
	case "file", "bolt", "memory":
	default:
		return fmt.Errorf("storage %q: expected file, bolt, or memory", c.Storage)
	}
	switch c.Format {
	case "", "json", "yaml", "yml", "toml":
	default:
		return fmt.Errorf("format %q: expected json, yaml, or toml", c.Format)
	}
	if c.Storage == "file" && c.TasksFile == "" {
		return fmt.Errorf("tasks_file is required for file storage")
	}
	if c.Storage == "bolt" && c.BoltFile == "" {
		return fmt.Errorf("bolt_file is required for bolt storage")
	}
	if _, ok := todo.ParseFilter(c.DefaultFilter); !ok {
		return fmt.Errorf("default_filter %q: expected one of all, today, upcoming, completed", c.DefaultFilter)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q: expected debug, info, warn, or error", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format %q: expected text, json, or logfmt", c.LogFormat)
	}
	return nil
}

// Filter returns the configured initial filter.
func (c *Config) Filter() todo.Filter {
	f, _ := todo.ParseFilter(c.DefaultFilter)
	return f
}
