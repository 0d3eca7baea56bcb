package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/widgetcore/pkg/dispatch"
	"github.com/rs/zerolog"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project root.
const FileName = "widgetcore.yaml"

// Defaults applied by Resolve.
const (
	DefaultCapacity    = dispatch.DefaultCapacity
	DefaultLogLevel    = "info"
	DefaultDriverRate  = 200
	DefaultDriverBurst = 8
)

// Config represents the optional widgetcore.yaml configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Mailbox  MailboxConfig  `yaml:"mailbox"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Driver   DriverConfig   `yaml:"driver"`
	Scene    []Widget       `yaml:"scene,omitempty"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// MailboxConfig sizes the event queue.
type MailboxConfig struct {
	Capacity int `yaml:"capacity,omitempty"`
}

// DispatchConfig controls message delivery.
type DispatchConfig struct {
	Recover bool `yaml:"recover,omitempty"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// DriverConfig paces the simulated pointer driver.
type DriverConfig struct {
	Rate  float64 `yaml:"rate,omitempty"`
	Burst int     `yaml:"burst,omitempty"`
}

// Widget declares one entity of the scene. Parent 0 is the root; any other
// parent must be declared earlier in the list.
type Widget struct {
	ID     uint8  `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	Parent uint8  `yaml:"parent,omitempty"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	AppName     string
	Capacity    int
	Recover     bool
	LogLevel    zerolog.Level
	Verbose     bool
	MetricsAddr string
	DriverRate  float64
	DriverBurst int
	Scene       []Widget
}

// DefaultScene is used when the configuration declares no widgets: a
// window holding a toolbar with two buttons and a slider.
var DefaultScene = []Widget{
	{ID: 1, Name: "window", X: 0, Y: 0, Width: 320, Height: 240},
	{ID: 2, Name: "toolbar", Parent: 1, X: 0, Y: 0, Width: 320, Height: 40},
	{ID: 3, Name: "ok", Parent: 2, X: 8, Y: 8, Width: 64, Height: 24},
	{ID: 4, Name: "cancel", Parent: 2, X: 80, Y: 8, Width: 64, Height: 24},
	{ID: 5, Name: "slider", Parent: 1, X: 16, Y: 120, Width: 288, Height: 16},
}

// LoadOptional reads widgetcore.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Resolve loads the configuration and resolves defaults. An empty path
// reads widgetcore.yaml from dir if it exists; otherwise path must exist.
func Resolve(dir, path string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg, err = LoadOptional(dir)
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	capacity := cfg.Mailbox.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	levelName := strings.TrimSpace(cfg.Log.Level)
	if levelName == "" {
		levelName = DefaultLogLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	rate := cfg.Driver.Rate
	if rate == 0 {
		rate = DefaultDriverRate
	}
	burst := cfg.Driver.Burst
	if burst == 0 {
		burst = DefaultDriverBurst
	}

	scene := cfg.Scene
	if len(scene) == 0 {
		scene = DefaultScene
	}

	r := &Resolved{
		Root:        dir,
		ModulePath:  modulePath,
		AppName:     appName,
		Capacity:    capacity,
		Recover:     cfg.Dispatch.Recover,
		LogLevel:    level,
		Verbose:     cfg.Log.Verbose,
		MetricsAddr: strings.TrimSpace(cfg.Metrics.Addr),
		DriverRate:  rate,
		DriverBurst: burst,
		Scene:       scene,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FindProjectRoot walks up from the current directory to find go.mod. When
// there is none, the current directory is returned.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	modName, _, ok := module.SplitPathVersion(modulePath)
	if ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "widgetcore"
	}
	return base
}

func (r *Resolved) validate() error {
	if r.Capacity < 2 {
		return fmt.Errorf("mailbox.capacity must be at least 2 (got %d)", r.Capacity)
	}
	if r.DriverRate < 0 {
		return fmt.Errorf("driver.rate cannot be negative (got %v)", r.DriverRate)
	}
	if r.DriverBurst < 1 {
		return fmt.Errorf("driver.burst must be at least 1 (got %d)", r.DriverBurst)
	}

	declared := make(map[uint8]bool, len(r.Scene))
	for i, w := range r.Scene {
		if w.ID == 0 {
			return fmt.Errorf("scene[%d]: id 0 is reserved for the root", i)
		}
		if declared[w.ID] {
			return fmt.Errorf("scene[%d]: duplicate id %d", i, w.ID)
		}
		if w.Parent != 0 && !declared[w.Parent] {
			return fmt.Errorf("scene[%d]: parent %d must be declared before id %d", i, w.Parent, w.ID)
		}
		if w.Width <= 0 || w.Height <= 0 {
			return fmt.Errorf("scene[%d]: width and height must be positive (got %dx%d)", i, w.Width, w.Height)
		}
		declared[w.ID] = true
	}
	return nil
}
