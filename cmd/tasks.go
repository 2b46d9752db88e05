package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/session"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// workspace is an opened task list: the storage adapter, the store over it,
// and the session side effects for commands that change tasks.
type workspace struct {
	cfg     *config.Config
	logger  *log.Logger
	adapter storage.Adapter
	store   *todo.Store
	journal *logging.Journal
	tasks   *session.Session
}

type workspaceOptions struct {
	renderer todo.Renderer
	mutating bool
	hookOut  io.Writer
}

func storageSettings(cfg *config.Config) (storage.Settings, error) {
	backend, err := storage.ParseBackend(cfg.Storage)
	if err != nil {
		return storage.Settings{}, err
	}
	var format storage.Format
	if cfg.Format != "" {
		if format, err = storage.ParseFormat(cfg.Format); err != nil {
			return storage.Settings{}, err
		}
	}
	return storage.Settings{
		Backend:  backend,
		Path:     cfg.TasksFile,
		Format:   format,
		BoltPath: cfg.BoltFile,
		Bucket:   cfg.BoltBucket,
		Key:      cfg.StorageKey,
	}, nil
}

func openWorkspace(ctx context.Context, cfg *config.Config, logger *log.Logger, opts workspaceOptions) (*workspace, error) {
	logger = discardLogger(logger)
	settings, err := storageSettings(cfg)
	if err != nil {
		return nil, err
	}
	adapter, err := storage.Open(settings, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	storeOpts := []todo.Option{
		todo.WithLogger(logger),
		todo.WithFilter(cfg.Filter()),
	}
	if opts.renderer != nil {
		storeOpts = append(storeOpts, todo.WithRenderer(opts.renderer))
	}
	store, err := todo.NewStore(adapter, storeOpts...)
	if err != nil {
		_ = adapter.Close()
		return nil, err
	}

	ws := &workspace{cfg: cfg, logger: logger, adapter: adapter, store: store}
	sessionOpts := []session.Option{session.WithLogger(logger)}
	if opts.mutating {
		journal, err := logging.NewJournal(cfg.LogDir, cfg.ProjectRoot)
		if err != nil {
			logger.Warn("activity journal disabled", "err", err)
		} else {
			ws.journal = journal
			sessionOpts = append(sessionOpts, session.WithJournal(journal))
		}
		if cfg.HookCommand != "" {
			sessionOpts = append(sessionOpts,
				session.WithHook(cfg.HookCommand, settings.Location(), cfg.ProjectRoot))
			if opts.hookOut != nil {
				sessionOpts = append(sessionOpts, session.WithHookOutput(opts.hookOut, opts.hookOut))
			}
		}
	}
	ws.tasks = session.New(ctx, store, sessionOpts...)
	logger.Debug("storage opened", "backend", adapter.Describe(), "tasks", store.Len())
	return ws, nil
}

func (ws *workspace) Close() error {
	var errs []error
	if err := ws.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing journal: %w", err))
	}
	if err := ws.adapter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	return errors.Join(errs...)
}

// addCommand adds a task. Every argument before the date is part of the text.
func addCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := newCommandFlags("add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) < 2 {
		return fmt.Errorf("usage: tasklist add <text> <YYYY-MM-DD>")
	}
	text := strings.Join(remaining[:len(remaining)-1], " ")
	date := remaining[len(remaining)-1]

	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{mutating: true, hookOut: stderr})
	if err != nil {
		return err
	}
	defer ws.Close()

	task, err := ws.tasks.Add(text, date)
	var addErr *todo.AddError
	if errors.As(err, &addErr) {
		printFieldProblem(stderr, "text", addErr.Text)
		printFieldProblem(stderr, "date", addErr.Date)
		return fmt.Errorf("task not added")
	}
	if err != nil {
		return fmt.Errorf("adding task: %w", err)
	}
	fmt.Fprintf(stdout, "Added #%d %s (due %s, %s priority)\n", task.ID, task.Text, task.Date, task.Priority)
	return nil
}

func printFieldProblem(w io.Writer, field string, res todo.ValidationResult) {
	switch {
	case res.Valid:
	case res.Neutral():
		fmt.Fprintf(w, "  %s: required\n", field)
	default:
		fmt.Fprintf(w, "  %s: %s\n", field, res.Message())
	}
}

// lsCommand prints the tasks of a filter sorted by due date.
func lsCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := newCommandFlags("ls")
	showStats := fs.Bool("stats", false, "Print counts after the list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return unexpectedArgs(remaining[1:])
	}

	renderer := ui.NewListRenderer(stdout, todo.SystemClock{})
	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{renderer: renderer})
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(remaining) == 1 {
		f, ok := todo.ParseFilter(remaining[0])
		if !ok {
			return fmt.Errorf("unknown filter %q (expected all, today, upcoming, or completed)", remaining[0])
		}
		ws.store.SetFilter(f)
	}
	if err := ws.store.Render(); err != nil {
		return fmt.Errorf("rendering tasks: %w", err)
	}
	if *showStats {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, ui.FormatStats(ws.store.Stats()))
	}
	return nil
}

// toggleCommand flips the completion state of a task.
func toggleCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	id, err := parseIDArgs("toggle", args)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{mutating: true, hookOut: stderr})
	if err != nil {
		return err
	}
	defer ws.Close()

	found, err := ws.tasks.Toggle(id)
	if !found {
		return fmt.Errorf("task #%d not found", id)
	}
	if err != nil {
		return fmt.Errorf("toggling task: %w", err)
	}
	task, _ := ws.store.Get(id)
	state := "pending"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(stdout, "Marked #%d %s as %s\n", id, task.Text, state)
	return nil
}

// rmCommand deletes a task after confirmation.
func rmCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := newCommandFlags("rm")
	yes := fs.Bool("y", false, "Delete without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseIDArgs("rm", fs.Args())
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{mutating: true, hookOut: stderr})
	if err != nil {
		return err
	}
	defer ws.Close()

	task, ok := ws.store.Get(id)
	if !ok {
		return fmt.Errorf("task #%d not found", id)
	}
	if !*yes && !confirm(fmt.Sprintf("Delete #%d %q?", task.ID, task.Text)) {
		fmt.Fprintln(stdout, "Cancelled")
		return nil
	}
	if _, err := ws.tasks.Delete(id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	fmt.Fprintf(stdout, "Deleted #%d %s\n", task.ID, task.Text)
	return nil
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func confirm(question string) bool {
	fmt.Fprintf(stdout, "%s [y/N]: ", question)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(stdout)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func parseIDArgs(command string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: tasklist %s <id>", command)
	}
	if len(args) > 1 {
		return 0, unexpectedArgs(args[1:])
	}
	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

// statsCommand prints the task counts.
func statsCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	if len(args) > 0 {
		return unexpectedArgs(args)
	}
	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Fprintln(stdout, ui.FormatStats(ws.store.Stats()))
	return nil
}

// exportCommand writes all tasks in the requested format.
func exportCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := newCommandFlags("export")
	formatName := fs.String("format", "", "Output format (json|yaml|toml); default from -o extension or json")
	output := fs.String("o", "", "Write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return unexpectedArgs(fs.Args())
	}

	format := storage.FormatJSON
	switch {
	case *formatName != "":
		f, err := storage.ParseFormat(*formatName)
		if err != nil {
			return err
		}
		format = f
	case *output != "":
		format = storage.FormatFromPath(*output)
	}

	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{})
	if err != nil {
		return err
	}
	defer ws.Close()

	data, err := storage.Encode(format, ws.store.Tasks())
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if *output == "" {
		_, err = stdout.Write(data)
		return err
	}
	path := *output
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(stdout, "Exported %d tasks to %s\n", ws.store.Len(), path)
	return nil
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	if len(args) > 0 {
		return unexpectedArgs(args)
	}
	ws, err := openWorkspace(ctx, cfg, logger, workspaceOptions{mutating: true, hookOut: io.Discard})
	if err != nil {
		return err
	}
	defer ws.Close()

	return ui.RunTUI(ctx, ws.tasks, "Tasks · "+ws.adapter.Describe())
}
