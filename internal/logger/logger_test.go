// Package logger tests verify the [Handler] line format, static and dynamic
// level filtering, attribute grouping, and the rotating-file constructor.
package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func lastLine(buf *bytes.Buffer) string {
	return strings.TrimRight(buf.String(), "\r\n")
}

// ///////////////////////////////////////////////
// Handler Output Format
// ///////////////////////////////////////////////

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelInfo))

	logger.Info("raising signal", "signal", "SIGTERM")

	line := lastLine(&buf)
	if !strings.Contains(line, "[INFO] raising signal") {
		t.Errorf("expected level and message, got %q", line)
	}
	if !strings.Contains(line, "| signal=SIGTERM") {
		t.Errorf("expected signal=SIGTERM, got %q", line)
	}
	if !strings.HasSuffix(strings.Split(line, " [")[0], "Z") {
		t.Errorf("expected UTC timestamp ending with Z, got %q", line)
	}
}

func TestHandler_Attrs(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
		deny string
	}{
		{"none", nil, "[INFO] msg", "|"},
		{"multiple", []any{"a", 1, "b", true}, "| a=1, b=true", ""},
		{"empty attr skipped", []any{slog.Attr{}, "k", "v"}, "| k=v", ", k=v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			slog.New(NewHandler(&buf, LevelInfo)).Info("msg", tt.args...)
			line := lastLine(&buf)
			if !strings.Contains(line, tt.want) {
				t.Errorf("got %q, want it to contain %q", line, tt.want)
			}
			if tt.deny != "" && strings.Contains(line, tt.deny) {
				t.Errorf("got %q, must not contain %q", line, tt.deny)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Level Filtering
// ///////////////////////////////////////////////

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelWarn))

	logger.Info("should be filtered")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should be filtered") {
		t.Error("info message should have been filtered at warn level")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("warn message should appear at warn level")
	}
}

func TestHandler_LevelVar(t *testing.T) {
	var buf bytes.Buffer
	var lv slog.LevelVar
	lv.Set(LevelInfo)
	logger := slog.New(NewHandler(&buf, &lv))

	logger.Debug("before")
	lv.Set(LevelDebug)
	logger.Debug("after")
	lv.Set(LevelError)
	logger.Warn("silenced")

	output := buf.String()
	if strings.Contains(output, "before") {
		t.Error("debug logged while level was info")
	}
	if !strings.Contains(output, "after") {
		t.Error("debug not logged after lowering level")
	}
	if strings.Contains(output, "silenced") {
		t.Error("warn logged while level was error")
	}
}

func TestHandler_NilLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil))

	logger.Debug("hidden")
	logger.Info("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("nil level should behave as info, got %q", buf.String())
	}
}

// ///////////////////////////////////////////////
// Custom Levels
// ///////////////////////////////////////////////

func TestHandler_CustomLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, LevelTrace))

	Trace(logger, "trace msg")
	Fail(logger, "fail msg")

	output := buf.String()
	if !strings.Contains(output, "[TRACE] trace msg") {
		t.Errorf("expected [TRACE] in output, got %q", output)
	}
	if !strings.Contains(output, "[FAIL] fail msg") {
		t.Errorf("expected [FAIL] in output, got %q", output)
	}
}

func TestLevelName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace - 4, "TRACE"},
		{LevelTrace, "TRACE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelInfo + 2, "WARN"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFail, "FAIL"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := levelName(tt.level); got != tt.want {
				t.Errorf("levelName(%d) = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"fail", LevelFail},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// WithAttrs / WithGroup
// ///////////////////////////////////////////////

func TestHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelInfo)
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.Int("pid", 42)}))

	logger.Info("started", "mode", "menu")

	line := lastLine(&buf)
	if !strings.Contains(line, "| pid=42, mode=menu") {
		t.Errorf("expected pre-applied attr first, got %q", line)
	}
}

func TestHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelInfo)
	logger := slog.New(h.WithGroup("signal").WithGroup("raise"))

	logger.Info("grouped", "name", "SIGALRM")

	line := lastLine(&buf)
	if !strings.Contains(line, "signal.raise.name=SIGALRM") {
		t.Errorf("expected nested group prefix, got %q", line)
	}
	if h.WithGroup("") != h {
		t.Error("WithGroup with empty string should return same handler")
	}
}

func TestHandler_DerivedShareMutexAndLevel(t *testing.T) {
	var buf bytes.Buffer
	var lv slog.LevelVar
	h := NewHandler(&buf, &lv)
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*Handler)

	if h.mu != h2.mu {
		t.Error("WithAttrs should share the same mutex pointer")
	}

	lv.Set(LevelWarn)
	if h2.Enabled(context.Background(), LevelInfo) {
		t.Error("derived handler ignored level change")
	}
	lv.Set(LevelInfo)

	logger1 := slog.New(h)
	logger2 := slog.New(h2)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			logger1.Info("from handler 1")
		}()
		go func() {
			defer wg.Done()
			logger2.Info("from handler 2")
		}()
	}
	wg.Wait()

	lines := strings.Split(lastLine(&buf), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}

// ///////////////////////////////////////////////
// NewLogger Constructor
// ///////////////////////////////////////////////

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigdemo.log")

	logger, closer, err := NewLogger(path, LevelInfo, 1)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("constructor test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "constructor test") {
		t.Errorf("expected log output in file, got %q", string(data))
	}
}

func TestNewLogger_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		maxSize int
	}{
		{"zero size", filepath.Join(dir, "a.log"), 0},
		{"missing dir", filepath.Join(dir, "missing", "a.log"), 1},
		{"parent is file", filepath.Join(file, "a.log"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := NewLogger(tt.path, LevelInfo, tt.maxSize); err == nil {
				t.Error("expected error")
			}
		})
	}
}
