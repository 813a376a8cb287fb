package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinboard.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Confirmations || cfg.SnapToGrid {
		t.Errorf("confirmations/snap = %v/%v", cfg.Confirmations, cfg.SnapToGrid)
	}
	if cfg.GridSize != 10 || cfg.ZoomStep != 0.1 {
		t.Errorf("grid/zoom = %g/%g", cfg.GridSize, cfg.ZoomStep)
	}
	if cfg.CellWidth != defaultCellWidth || cfg.CellHeight != defaultCellHeight {
		t.Errorf("cell = %gx%g", cfg.CellWidth, cfg.CellHeight)
	}
	if cfg.gridStep() != 0 {
		t.Errorf("gridStep = %g with snapping off", cfg.gridStep())
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PINBOARD_TEST_DIR", dir)
	path := writeConfig(t, strings.Join([]string{
		"save_directory: ${PINBOARD_TEST_DIR}/boards",
		"snap_to_grid: true",
		"grid_size: 25",
		"log_level: debug",
		"default_color: \"#ff8800\"",
		"confirmations: false",
	}, "\n"))

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SaveDirectory != filepath.Join(dir, "boards") {
		t.Errorf("SaveDirectory = %q", cfg.SaveDirectory)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.gridStep() != 25 {
		t.Errorf("gridStep = %g", cfg.gridStep())
	}
	if got := cfg.categoryColor().Hex(); got != "#ff8800" {
		t.Errorf("categoryColor = %s", got)
	}
	if cfg.Confirmations {
		t.Error("confirmations should be off")
	}
	if got := cfg.GetSavePath("a.yaml"); got != filepath.Join(dir, "boards", "a.yaml") {
		t.Errorf("GetSavePath = %q", got)
	}
	if got := cfg.GetSavePath("sub/a.yaml"); got != "sub/a.yaml" {
		t.Errorf("GetSavePath with dir = %q", got)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zoom step too large", "zoom_step: 5"},
		{"bad color", "default_color: blue"},
		{"zero cell", "cell_width: 0"},
		{"grid too small", "grid_size: 0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, "grid_size: [1,")); err == nil {
		t.Fatal("expected parse error")
	}
}
