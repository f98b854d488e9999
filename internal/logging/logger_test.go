package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	logBuffer = NewRingBuffer(defaultBufferSize)
	logCallback = nil
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"device": "debug",
			"http":   "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"device", true, true, true},
		{"http", false, false, true},
		{"led", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestReinitializeChangesExistingLoggers(t *testing.T) {
	resetState()

	Initialize(Config{Level: "info", Format: "text"})
	before := GetLogger("device")
	if before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled at info level")
	}

	Initialize(Config{Level: "info", Format: "text", Modules: map[string]string{"device": "debug"}})
	after := GetLogger("device")
	if !after.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after reload")
	}
}

func TestBufferCapturesEntries(t *testing.T) {
	resetState()
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(nil)

	var seen []LogEntry
	SetLogCallback(func(e LogEntry) { seen = append(seen, e) })

	Initialize(Config{Level: "debug", Format: "text"})
	GetLogger("things").Info("Property written", "property", "level", "value", 50)

	entries := GetBuffer().ReadAll()
	if len(entries) != 1 {
		t.Fatalf("buffer has %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Module != "things" {
		t.Errorf("Module = %q, want things", e.Module)
	}
	if e.Attributes["property"] != "level" {
		t.Errorf("property attr = %v, want level", e.Attributes["property"])
	}
	if len(seen) != 1 {
		t.Errorf("callback fired %d times, want 1", len(seen))
	}
	if !strings.Contains(out.String(), "Property written") {
		t.Errorf("stdout output missing message: %q", out.String())
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d"} {
		rb.Write(LogEntry{Message: msg})
	}

	all := rb.ReadAll()
	if len(all) != 3 || all[0].Message != "b" || all[2].Message != "d" {
		t.Fatalf("ReadAll() = %+v, want b,c,d", all)
	}

	tail := rb.Tail(2)
	if len(tail) != 2 || tail[0].Message != "c" {
		t.Errorf("Tail(2) = %+v, want c,d", tail)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *slog.Level
	}{
		{"debug", ptr(slog.LevelDebug)},
		{"WARNING", ptr(slog.LevelWarn)},
		{"error", ptr(slog.LevelError)},
		{"loud", nil},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func ptr(l slog.Level) *slog.Level { return &l }
