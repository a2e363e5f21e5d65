//go:build unix

package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"testing/iotest"
	"time"

	"tools.zach/dev/sigdemo/internal/config"
	"tools.zach/dev/sigdemo/internal/console"
	"tools.zach/dev/sigdemo/internal/sigctl"
)

// keepDefaultLogger restores the process-wide slog default after a test that
// runs the console, which replaces it.
func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out lockedBuffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

// ///////////////////////////////////////////////
// resolveVersion Tests
// ///////////////////////////////////////////////

func TestResolveVersionWithLdflags(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "dev"
	// Test binaries may or may not carry VCS info.
	if got := resolveVersion(); !strings.HasPrefix(got, "dev") {
		t.Errorf("resolveVersion() = %q, expected to start with 'dev'", got)
	}
}

// ///////////////////////////////////////////////
// Subcommands
// ///////////////////////////////////////////////

func TestVersionCommand(t *testing.T) {
	original := version
	defer func() { version = original }()
	version = "0.4.0"

	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "sigdemo version 0.4.0\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "", "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	var want bytes.Buffer
	if err := sigctl.WriteInfo(&want); err != nil {
		t.Fatal(err)
	}
	if out != want.String() {
		t.Errorf("info output differs from WriteInfo:\n%s", out)
	}
}

func TestInfoCommandSelectsSignals(t *testing.T) {
	out, err := execute(t, "", "info", "int", "SIGKILL")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "SIGINT") || !strings.Contains(lines[2], "SIGKILL") {
		t.Errorf("rows not in argument order:\n%s", out)
	}

	if _, err := execute(t, "", "info", "SIGHUP"); err == nil || !strings.Contains(err.Error(), "unknown signal") {
		t.Errorf("info SIGHUP err = %v, want unknown signal", err)
	}
}

func TestColorFlagValidated(t *testing.T) {
	tests := []struct {
		color   string
		wantErr bool
	}{
		{"auto", false},
		{"always", false},
		{"never", false},
		{"rainbow", true},
		{"ALWAYS", true},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			_, err := execute(t, "", "--color", tt.color, "version")
			if (err != nil) != tt.wantErr {
				t.Errorf("--color %s: err = %v, wantErr %v", tt.color, err, tt.wantErr)
			}
		})
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	if _, err := execute(t, "", "extra"); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

// ///////////////////////////////////////////////
// Console
// ///////////////////////////////////////////////

func TestConsoleFirstRun(t *testing.T) {
	keepDefaultLogger(t)
	dir := filepath.Join(t.TempDir(), "data")

	out, err := execute(t, "11\n", "--data-dir", dir, "--color", "never")
	if err != nil {
		t.Fatalf("console: %v", err)
	}
	if !strings.Contains(out, "Signal Handler Program") {
		t.Errorf("menu not shown:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("--color never still emitted escapes:\n%s", out)
	}

	seeded, err := config.Load(dir)
	if err != nil {
		t.Fatalf("seeded config does not load: %v", err)
	}
	if *seeded != *config.DefaultConfig() {
		t.Errorf("seeded config = %+v, want defaults", *seeded)
	}

	logData, err := os.ReadFile(filepath.Join(dir, "sigdemo.log"))
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(logData), "sigdemo starting") {
		t.Errorf("log missing startup line:\n%s", logData)
	}
}

func TestConsoleInstallRaiseRestore(t *testing.T) {
	keepDefaultLogger(t)
	dir := t.TempDir()

	out, err := execute(t, "1\n8\n2\n11\n", "--data-dir", dir, "--color", "never")
	if err != nil {
		t.Fatalf("console: %v", err)
	}
	for _, want := range []string{
		"Custom signal handlers are now active.",
		"Signal SIGALRM",
		"is raised",
		"Default signal handlers are now active.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReadErrorLoggedAsFail(t *testing.T) {
	keepDefaultLogger(t)
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--data-dir", dir, "--color", "never"})
	cmd.SetIn(iotest.ErrReader(errors.New("terminal gone")))
	cmd.SetOut(io.Discard)
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "terminal gone") {
		t.Fatalf("err = %v, want read error", err)
	}

	logData, err := os.ReadFile(filepath.Join(dir, "sigdemo.log"))
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(logData), "[FAIL] console stopped") {
		t.Errorf("log missing FAIL line:\n%s", logData)
	}
	if !strings.Contains(string(logData), "watching config") {
		t.Errorf("log missing watcher start line:\n%s", logData)
	}
}

func TestConsoleInvalidConfig(t *testing.T) {
	keepDefaultLogger(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("version = 1\n[display]\ncolor = \"rainbow\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "11\n", "--data-dir", dir)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v, want load config error", err)
	}
}

func TestConsoleDataDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "11\n", "--data-dir", file)
	if err == nil || !strings.Contains(err.Error(), "create data dir") {
		t.Fatalf("err = %v, want create data dir error", err)
	}
}

// ///////////////////////////////////////////////
// Config Reload
// ///////////////////////////////////////////////

// lockedBuffer collects callback output written by the controller's
// dispatcher while the test goroutine reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// raiseThroughCallback installs real handlers on ctl, raises SIGALRM, and
// returns what the callback wrote.
func raiseThroughCallback(t *testing.T, ctl *sigctl.Controller, out *lockedBuffer) string {
	t.Helper()
	if err := ctl.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := ctl.Raise(syscall.SIGALRM); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	return out.String()
}

func newLive(t *testing.T, opts *options, out *lockedBuffer) (*liveSettings, *sigctl.Controller, *slog.LevelVar) {
	t.Helper()
	var level slog.LevelVar
	ctl := sigctl.New(out, sigctl.WithDeliveryTimeout(2*time.Second))
	t.Cleanup(func() { _ = ctl.Close() })
	menu := console.NewMenu(strings.NewReader(""), io.Discard, ctl, console.NewPalette(false))
	return &liveSettings{opts: opts, menu: menu, ctl: ctl, level: &level}, ctl, &level
}

func TestLiveSettingsApply(t *testing.T) {
	keepDefaultLogger(t)

	var out lockedBuffer
	live, ctl, level := newLive(t, &options{}, &out)

	cfg := config.DefaultConfig()
	cfg.Display.Color = "always"
	cfg.Log.Level = "debug"
	live.apply(cfg)

	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
	if got := raiseThroughCallback(t, ctl, &out); !strings.Contains(got, "\x1b[32m") {
		t.Errorf("reloaded highlight not applied to callback output: %q", got)
	}
}

func TestLiveSettingsFlagOverridesConfig(t *testing.T) {
	keepDefaultLogger(t)

	var out lockedBuffer
	live, ctl, _ := newLive(t, &options{color: "never"}, &out)

	cfg := config.DefaultConfig()
	cfg.Display.Color = "always"
	live.apply(cfg)

	if got := raiseThroughCallback(t, ctl, &out); strings.Contains(got, "\x1b[") {
		t.Errorf("--color never overridden by reload: %q", got)
	}
}
