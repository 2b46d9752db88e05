package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
)

// tailCommand prints the latest activity journal.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newCommandFlags("tail")
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	workDir := cfg.ProjectRoot
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, workDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No journal files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := newCommandFlags("config")
	example := fs.Bool("example", false, "Print an example config file instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	userFile, projectFile := cws.ConfigFiles()
	fmt.Fprintln(stdout, "# Config files")
	fmt.Fprintf(stdout, "#   user:    %s\n", orNone(userFile))
	fmt.Fprintf(stdout, "#   project: %s\n", orNone(projectFile))
	fmt.Fprintf(stdout, "# Project root: %s\n", cws.Config.ProjectRoot)
	fmt.Fprintln(stdout)

	for _, field := range config.ConfigFields() {
		source := cws.Sources[field]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(stdout, "%-15s = %-40q # %s\n", field, cws.Config.Value(field), source)
	}
	return nil
}

func orNone(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}

// initCommand writes an example tasklist.toml into the project root.
func initCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := newCommandFlags("init")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	root := cfg.ProjectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	path := filepath.Join(root, "tasklist.toml")

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(stdout, "Skipping %s (already exists; use -force to overwrite)\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	discardLogger(logger).Debug("config written", "path", path)
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
