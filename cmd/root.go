// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags; doctor reports invalid values itself
	cws, err := config.LoadUnvalidated(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand; listing is the default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}
	if subcommand != "doctor" {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("loading config: invalid config: %w", err)
		}
	}

	logger := logging.NewConsoleFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	logger.Debug("config loaded", "project_root", cfg.ProjectRoot, "storage", cfg.Storage, "config_file", cws.GetConfigFile())

	switch subcommand {
	case "add":
		return addCommand(ctx, cfg, logger, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, logger, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, cfg, logger, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, logger, remainingArgs)
	case "stats":
		return statsCommand(ctx, cfg, logger, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, logger, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, logger, remainingArgs)
	case "doctor":
		return doctorCommand(cws, logger, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "init":
		return initCommand(cfg, logger, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklist - A dated task list with priorities")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <text> <YYYY-MM-DD>  Add a task due on a date")
	fmt.Fprintln(w, "  ls [filter]              List tasks (all|today|upcoming|completed; default command)")
	fmt.Fprintln(w, "  toggle <id>              Mark a task completed or pending")
	fmt.Fprintln(w, "  rm [-y] <id>             Delete a task (asks for confirmation unless -y)")
	fmt.Fprintln(w, "  stats                    Show task counts")
	fmt.Fprintln(w, "  export [-format f] [-o file]  Write the tasks as json, yaml, or toml")
	fmt.Fprintln(w, "  tui                      Launch terminal UI")
	fmt.Fprintln(w, "  doctor                   Check config, storage, and stored data")
	fmt.Fprintln(w, "  tail [-n N] [-f]         Show the latest activity journal")
	fmt.Fprintln(w, "  config                   Show the effective configuration and its sources")
	fmt.Fprintln(w, "  init [-force]            Write an example tasklist.toml")
	fmt.Fprintln(w, "  version                  Show version information")
	fmt.Fprintln(w, "  help                     Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
}

func newCommandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasklist "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func unexpectedArgs(args []string) error {
	return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
}

func discardLogger(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
