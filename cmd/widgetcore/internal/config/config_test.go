package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/widgetcore/pkg/dispatch"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/kiosk/panel/v2\n\ngo 1.24\n")

	got, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if got.ModulePath != "example.com/kiosk/panel/v2" {
		t.Errorf("ModulePath = %q", got.ModulePath)
	}
	if got.AppName != "panel" {
		t.Errorf("AppName = %q, want %q", got.AppName, "panel")
	}
	if got.Capacity != dispatch.DefaultCapacity || got.DriverRate != DefaultDriverRate || got.DriverBurst != DefaultDriverBurst {
		t.Errorf("defaults = capacity %d rate %v burst %d", got.Capacity, got.DriverRate, got.DriverBurst)
	}
	if got.LogLevel != zerolog.InfoLevel {
		t.Errorf("LogLevel = %v, want info", got.LogLevel)
	}
	if got.MetricsAddr != "" || got.Recover {
		t.Errorf("expected metrics and recover off, got %q %v", got.MetricsAddr, got.Recover)
	}
	if diff := cmp.Diff(DefaultScene, got.Scene); diff != "" {
		t.Errorf("scene mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_NoModule(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bench")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.ModulePath != "" || got.AppName != "bench" {
		t.Errorf("ModulePath = %q AppName = %q, want empty and bench", got.ModulePath, got.AppName)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/thermostat\n")
	writeFile(t, dir, FileName, `
app:
  name: hallway
mailbox:
  capacity: 32
dispatch:
  recover: true
log:
  level: DEBUG
  verbose: true
metrics:
  addr: " :9100 "
driver:
  rate: 50
  burst: 2
scene:
  - {id: 10, name: frame, x: 0, y: 0, width: 100, height: 100}
  - {id: 11, name: knob, parent: 10, x: 5, y: 5, width: 20, height: 20}
`)

	got, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := &Resolved{
		Root:        dir,
		ModulePath:  "example.com/thermostat",
		AppName:     "hallway",
		Capacity:    32,
		Recover:     true,
		LogLevel:    zerolog.DebugLevel,
		Verbose:     true,
		MetricsAddr: ":9100",
		DriverRate:  50,
		DriverBurst: 2,
		Scene: []Widget{
			{ID: 10, Name: "frame", Width: 100, Height: 100},
			{ID: 11, Name: "knob", Parent: 10, X: 5, Y: 5, Width: 20, Height: 20},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bench.yaml", "mailbox:\n  capacity: 4\n")

	got, err := Resolve(dir, path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Capacity != 4 {
		t.Errorf("Capacity = %d, want 4", got.Capacity)
	}

	if _, err := Resolve(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"capacity", "mailbox:\n  capacity: 1\n", "mailbox.capacity"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"burst", "driver:\n  burst: -1\n", "driver.burst"},
		{"rate", "driver:\n  rate: -5\n", "driver.rate"},
		{"root id", "scene:\n  - {id: 0, width: 1, height: 1}\n", "reserved"},
		{"duplicate", "scene:\n  - {id: 1, width: 1, height: 1}\n  - {id: 1, width: 1, height: 1}\n", "duplicate id 1"},
		{"forward parent", "scene:\n  - {id: 1, parent: 2, width: 1, height: 1}\n  - {id: 2, width: 1, height: 1}\n", "declared before"},
		{"empty size", "scene:\n  - {id: 1, width: 0, height: 1}\n", "positive"},
		{"syntax", "mailbox: [\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.yaml)

			_, err := Resolve(dir, "")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Resolve() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultAppName(t *testing.T) {
	tests := []struct {
		modulePath string
		dir        string
		want       string
	}{
		{"github.com/acme/oven", "/src/x", "oven"},
		{"github.com/acme/oven/v3", "/src/x", "oven"},
		{"", "/src/lobby", "lobby"},
		{"", "/", "widgetcore"},
	}
	for _, tt := range tests {
		if got := defaultAppName(tt.modulePath, tt.dir); got != tt.want {
			t.Errorf("defaultAppName(%q, %q) = %q, want %q", tt.modulePath, tt.dir, got, tt.want)
		}
	}
}
