package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// doctorCommand checks config, storage, and the stored task collection.
func doctorCommand(cws *config.ConfigWithSources, logger *log.Logger, args []string) error {
	fs := newCommandFlags("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "tasklist doctor")
	fmt.Fprintln(stdout, "===============")
	fmt.Fprintln(stdout)

	allOK := true

	// Config
	fmt.Fprintln(stdout, "Config:")
	userFile, projectFile := cws.ConfigFiles()
	printConfigFile("User file", userFile)
	printConfigFile("Project file", projectFile)
	fmt.Fprintf(stdout, "  Project root: %s\n", cfg.ProjectRoot)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ Valid")
	}
	fmt.Fprintln(stdout)

	// Storage
	settings, err := storageSettings(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Storage:\n  ❌ %v\n\n", err)
		return fmt.Errorf("doctor checks failed")
	}
	if !checkStorage(settings, logger, *verbose) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	// Hook
	if cfg.HookCommand != "" {
		fmt.Fprintf(stdout, "Hook: %s\n", cfg.HookCommand)
		if path, err := resolveHook(cfg.HookCommand, cfg.ProjectRoot); err != nil {
			fmt.Fprintf(stdout, "  ❌ %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(stdout, "  ✅ %s\n", path)
		}
		fmt.Fprintln(stdout)
	}

	// Activity journal
	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		fmt.Fprintf(stdout, "Journal:\n  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "Journal: %s\n", logDir)
		switch _, err := os.Stat(logDir); {
		case os.IsNotExist(err):
			fmt.Fprintln(stdout, "  ⚠️  Not found (created on the first change)")
		case err != nil:
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		default:
			fmt.Fprintln(stdout, "  ✅ OK")
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func printConfigFile(label, path string) {
	if path == "" {
		fmt.Fprintf(stdout, "  %s: (none)\n", label)
		return
	}
	fmt.Fprintf(stdout, "  %s: %s\n", label, path)
}

// checkStorage opens the adapter and validates what it holds against the
// task collection schema.
func checkStorage(settings storage.Settings, logger *log.Logger, verbose bool) bool {
	fmt.Fprintf(stdout, "Storage: %s\n", settings.Backend)
	if loc := settings.Location(); loc != "" {
		if info, err := os.Stat(loc); err == nil && info.IsDir() {
			fmt.Fprintf(stdout, "  ❌ %s is a directory\n", loc)
			return false
		}
	}

	adapter, err := storage.Open(settings, logger)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Open error: %v\n", err)
		return false
	}
	defer adapter.Close()
	fmt.Fprintf(stdout, "  %s\n", adapter.Describe())

	data, err := adapter.Inspect()
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Read error: %v\n", err)
		return false
	}
	if data == nil {
		fmt.Fprintln(stdout, "  ⚠️  Nothing stored yet (created on the first change)")
		return true
	}

	report, err := todo.ValidateDocument(data)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Schema error: %v\n", err)
		return false
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !report.Valid {
		fmt.Fprintln(stdout, "  ❌ Validation failed:")
		for _, e := range report.Errors {
			fmt.Fprintf(stdout, "     - %v\n", e)
		}
		return false
	}
	fmt.Fprintf(stdout, "  ✅ Valid (%d tasks)\n", report.Tasks)

	if verbose {
		tasks, err := adapter.Load()
		if err != nil {
			fmt.Fprintf(stdout, "  ❌ Load error: %v\n", err)
			return false
		}
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(stdout, "    - [%s] #%d %s (due %s, %s)\n", mark, t.ID, t.Text, t.Date, t.Priority)
		}
	}
	return true
}

// resolveHook finds the executable a hook command names. Relative paths are
// resolved against the project root, where hooks run.
func resolveHook(command, projectRoot string) (string, error) {
	bin := strings.TrimSpace(command)
	if bin == "" {
		return "", fmt.Errorf("hook command is empty")
	}
	if strings.ContainsRune(bin, os.PathSeparator) || strings.Contains(bin, "/") {
		if !filepath.IsAbs(bin) {
			bin = filepath.Join(projectRoot, bin)
		}
		info, err := os.Stat(bin)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", bin)
		}
		if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("%s is not executable", bin)
		}
		return bin, nil
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", bin)
	}
	return path, nil
}
