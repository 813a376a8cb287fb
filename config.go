package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"pinboard/internal/board"
)

type Config struct {
	SaveDirectory string     `yaml:"save_directory"`
	Confirmations bool       `yaml:"confirmations"`
	SnapToGrid    bool       `yaml:"snap_to_grid"`
	GridSize      float64    `yaml:"grid_size"`
	ZoomStep      float64    `yaml:"zoom_step"`
	DefaultColor  string     `yaml:"default_color"`
	LogLevel      slog.Level `yaml:"log_level"`
	LogFile       string     `yaml:"log_file"`
	CellWidth     float64    `yaml:"cell_width"`
	CellHeight    float64    `yaml:"cell_height"`
}

func newDefaultConfig() *Config {
	logFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		logFile = filepath.Join(dir, "pinboard", "pinboard.log")
	}
	return &Config{
		Confirmations: true,
		GridSize:      10,
		ZoomStep:      0.1,
		DefaultColor:  board.White.Hex(),
		LogLevel:      slog.LevelInfo,
		LogFile:       logFile,
		CellWidth:     defaultCellWidth,
		CellHeight:    defaultCellHeight,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GridSize, validation.Min(1.0), validation.Max(500.0)),
		validation.Field(&c.ZoomStep, validation.Required, validation.Min(0.01), validation.Max(1.0)),
		validation.Field(&c.DefaultColor, validation.Required, validation.By(func(v any) error {
			_, err := board.ParseHex(v.(string))
			return err
		})),
		validation.Field(&c.CellWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.CellHeight, validation.Required, validation.Min(1.0)),
	)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pinboard.yaml"
	}
	return filepath.Join(home, ".pinboard.yaml")
}

// loadConfig reads path over the defaults. A missing file yields the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := newDefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.SaveDirectory = expandHome(cfg.SaveDirectory)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetSavePath places a bare file name in the save directory. Paths with a
// directory component are used as given.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filename == "" || filepath.IsAbs(filename) || filepath.Base(filename) != filename {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) categoryColor() board.RGBA {
	col, err := board.ParseHex(c.DefaultColor)
	if err != nil {
		return board.White
	}
	return col
}

func (c *Config) gridStep() float64 {
	if !c.SnapToGrid {
		return 0
	}
	return c.GridSize
}
