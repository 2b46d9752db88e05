// Package hooks provides tests for external post-change hook invocation.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts are POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestInvoke tests the Invoke function with various scenarios.
func TestInvoke(t *testing.T) {
	t.Run("empty command returns success without running", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Event: "add", TaskID: 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("empty event returns error without running", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Command: "true", TaskID: 1})
		if err == nil {
			t.Fatal("expected error for empty event, got nil")
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("passes event, id, and tasks file", func(t *testing.T) {
		hook := writeScript(t, `echo "$1|$2|$3"`)
		var out bytes.Buffer

		result, err := Invoke(context.Background(), Options{
			Command:   hook,
			Event:     "toggle",
			TaskID:    7,
			TasksFile: "/data/tasks.json",
			Stdout:    &out,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Ran {
			t.Error("expected Ran to be true")
		}
		if result.ExitCode != 0 {
			t.Errorf("expected ExitCode 0, got %d", result.ExitCode)
		}
		want := []string{hook, "toggle", "7", "/data/tasks.json"}
		if !slices.Equal(result.Command, want) {
			t.Errorf("expected Command %v, got %v", want, result.Command)
		}
		if got := out.String(); got != "toggle|7|/data/tasks.json\n" {
			t.Errorf("unexpected hook output %q", got)
		}
	})

	t.Run("non-zero exit returns error", func(t *testing.T) {
		hook := writeScript(t, "echo boom >&2\nexit 42")
		var stderr bytes.Buffer

		result, err := Invoke(context.Background(), Options{
			Command: hook,
			Event:   "delete",
			TaskID:  3,
			Stderr:  &stderr,
		})
		if err == nil {
			t.Fatal("expected error for failed hook, got nil")
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Errorf("expected *exec.ExitError, got %T", err)
		}
		if !result.Ran {
			t.Error("expected Ran to be true")
		}
		if result.ExitCode != 42 {
			t.Errorf("expected ExitCode 42, got %d", result.ExitCode)
		}
		if !strings.Contains(stderr.String(), "boom") {
			t.Errorf("expected hook stderr to be forwarded, got %q", stderr.String())
		}
	})

	t.Run("runs in work dir", func(t *testing.T) {
		workDir := t.TempDir()
		hook := writeScript(t, "pwd")
		var out bytes.Buffer

		if _, err := Invoke(context.Background(), Options{
			Command: hook,
			Event:   "add",
			TaskID:  1,
			WorkDir: workDir,
			Stdout:  &out,
		}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
		if err != nil {
			t.Fatal(err)
		}
		want, err := filepath.EvalSymlinks(workDir)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("expected hook to run in %s, got %s", want, got)
		}
	})

	t.Run("missing command returns error", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{
			Command: filepath.Join(t.TempDir(), "does-not-exist"),
			Event:   "add",
			TaskID:  1,
		})
		if err == nil {
			t.Fatal("expected error for missing command, got nil")
		}
		if result.ExitCode != -1 {
			t.Errorf("expected ExitCode -1, got %d", result.ExitCode)
		}
	})

	t.Run("context cancellation stops the hook", func(t *testing.T) {
		hook := writeScript(t, "exec sleep 10")

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		result, err := Invoke(ctx, Options{Command: hook, Event: "add", TaskID: 1})
		if err == nil {
			t.Fatal("expected error for cancelled hook, got nil")
		}
		if !result.Ran {
			t.Error("expected Ran to be true")
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("hook was not stopped, ran for %v", elapsed)
		}
	})
}

func TestExitCodeFromError(t *testing.T) {
	if got := exitCodeFromError(nil); got != 0 {
		t.Errorf("exitCodeFromError(nil) = %d, want 0", got)
	}
	if got := exitCodeFromError(errors.New("not an exit error")); got != -1 {
		t.Errorf("exitCodeFromError(other) = %d, want -1", got)
	}
}
