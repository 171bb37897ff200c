package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/logging"
)

// These tests share global state and must not run in parallel.

func TestInit(t *testing.T) {
	validDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     logging.Config
		wantErr bool
	}{
		{
			name:    "console only",
			cfg:     logging.Config{Level: "info"},
			wantErr: false,
		},
		{
			name: "file with component overrides",
			cfg: logging.Config{
				Level:      "info",
				Path:       filepath.Join(validDir, "nested", "test.log"),
				Components: map[string]string{"native": "debug"},
			},
			wantErr: false,
		},
		{
			name:    "invalid level",
			cfg:     logging.Config{Level: "loud"},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: logging.Config{
				Level:      "info",
				Components: map[string]string{"mounts": "chatty"},
			},
			wantErr: true,
		},
		{
			name:    "invalid console level",
			cfg:     logging.Config{Level: "info", ConsoleLevel: "nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := logging.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestLogger_BeforeInitIsSilent(t *testing.T) {
	_ = logging.Close()

	logger := logging.Get("early")
	// Must not panic.
	logger.Info("discarded", "key", "value")
	logger.With("a", 1).Error("discarded too")
}

func TestLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.log")

	// Obtained before Init on purpose.
	logger := logging.Get("mounts")

	if err := logging.Init(logging.Config{Level: "debug", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger.Debug("sizing call", "count", 3)
	logger.With("stage", "fill").Info("fill call")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	content := string(data)

	for _, want := range []string{"mounts", "sizing call", "count=3", "fill call", "stage=fill"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
}

func TestLogger_ComponentLevels(t *testing.T) {
	var console bytes.Buffer

	err := logging.Init(logging.Config{
		Level:        "info",
		ConsoleLevel: "debug",
		Console:      &console,
		Components:   map[string]string{"native": "debug", "watch": "error"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	logging.Get("native").Debug("native debug visible")
	logging.Get("watch").Warn("watch warn hidden")
	logging.Get("other").Debug("other debug hidden")
	logging.Get("other").Info("other info visible")

	out := console.String()
	if !strings.Contains(out, "native debug visible") {
		t.Errorf("expected native debug entry, got:\n%s", out)
	}
	if !strings.Contains(out, "other info visible") {
		t.Errorf("expected other info entry, got:\n%s", out)
	}
	if strings.Contains(out, "watch warn hidden") {
		t.Errorf("watch warn should be filtered, got:\n%s", out)
	}
	if strings.Contains(out, "other debug hidden") {
		t.Errorf("other debug should be filtered, got:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"verbose", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if got := logging.LevelWarn.String(); got != "warn" {
		t.Errorf("LevelWarn.String() = %q, want %q", got, "warn")
	}
	if got := logging.Level(42).String(); got != "unknown" {
		t.Errorf("Level(42).String() = %q, want %q", got, "unknown")
	}
}
