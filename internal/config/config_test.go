package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Track.TrackWidth != 4 {
		t.Errorf("expected track width 4, got %f", cfg.Track.TrackWidth)
	}
	if cfg.Track.HorizontalResolution != 8 {
		t.Errorf("expected horizontal resolution 8, got %d", cfg.Track.HorizontalResolution)
	}
	if cfg.Track.DivisionsPerSegment != 40 {
		t.Errorf("expected 40 divisions per segment, got %d", cfg.Track.DivisionsPerSegment)
	}
	if cfg.Track.NodeSpacing != 20 {
		t.Errorf("expected node spacing 20, got %f", cfg.Track.NodeSpacing)
	}
	if cfg.Data.SaveDir != "tracks" {
		t.Errorf("expected save dir 'tracks', got %s", cfg.Data.SaveDir)
	}
	if cfg.Preview.Format != "webp" {
		t.Errorf("expected preview format webp, got %s", cfg.Preview.Format)
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if fixed := cfg.Sanitize(); len(fixed) != 0 {
		t.Errorf("defaults should already be valid, sanitize changed %v", fixed)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
track:
  track_width: 6.5
  horizontal_resolution: 12
  divisions_per_segment: 20
  node_spacing: 15

data:
  save_dir: "/var/tracks"

preview:
  size: 512
  format: "png"

logging:
  level: "debug"
  log_file: "tracks.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Track.TrackWidth != 6.5 {
		t.Errorf("expected track width 6.5, got %f", cfg.Track.TrackWidth)
	}
	if cfg.Track.HorizontalResolution != 12 {
		t.Errorf("expected resolution 12, got %d", cfg.Track.HorizontalResolution)
	}
	if cfg.Track.DivisionsPerSegment != 20 {
		t.Errorf("expected 20 divisions, got %d", cfg.Track.DivisionsPerSegment)
	}
	if cfg.Data.SaveDir != "/var/tracks" {
		t.Errorf("expected save dir /var/tracks, got %s", cfg.Data.SaveDir)
	}
	if cfg.Preview.Size != 512 || cfg.Preview.Format != "png" {
		t.Errorf("expected 512 png preview, got %d %s", cfg.Preview.Size, cfg.Preview.Format)
	}
	// Untouched fields keep their defaults
	if cfg.Track.BankAngleDeg != 35 {
		t.Errorf("expected default bank angle 35, got %f", cfg.Track.BankAngleDeg)
	}
	if cfg.Logging.LogFile != "tracks.log" {
		t.Errorf("expected log file 'tracks.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
track:
  track_width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Track.TrackWidth = -1
	cfg.Track.HorizontalResolution = 0
	cfg.Track.DivisionsPerSegment = -3
	cfg.Preview.Format = "gif"

	fixed := cfg.Sanitize()
	if len(fixed) != 4 {
		t.Errorf("expected 4 fixed fields, got %v", fixed)
	}
	if cfg.Track.TrackWidth != 4 {
		t.Errorf("expected track width reset to 4, got %f", cfg.Track.TrackWidth)
	}
	if cfg.Track.HorizontalResolution != 1 {
		t.Errorf("expected resolution clamped to 1, got %d", cfg.Track.HorizontalResolution)
	}
	if cfg.Track.DivisionsPerSegment != 1 {
		t.Errorf("expected divisions clamped to 1, got %d", cfg.Track.DivisionsPerSegment)
	}
	if cfg.Preview.Format != "webp" {
		t.Errorf("expected format reset to webp, got %s", cfg.Preview.Format)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Track.NodeSpacing = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Track.NodeSpacing != 7 {
		t.Errorf("expected node spacing 7, got %f", loaded.Track.NodeSpacing)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "save dir flag",
			setup: func() { *flagSaveDir = "/tmp/tracks" },
			verify: func(cfg *Config) {
				if cfg.Data.SaveDir != "/tmp/tracks" {
					t.Errorf("expected save dir /tmp/tracks, got %s", cfg.Data.SaveDir)
				}
			},
			teardown: func() { *flagSaveDir = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "geometry flags",
			setup: func() {
				*flagResolution = 16
				*flagTrackWidth = 9
			},
			verify: func(cfg *Config) {
				if cfg.Track.HorizontalResolution != 16 {
					t.Errorf("expected resolution 16, got %d", cfg.Track.HorizontalResolution)
				}
				if cfg.Track.TrackWidth != 9 {
					t.Errorf("expected track width 9, got %f", cfg.Track.TrackWidth)
				}
			},
			teardown: func() {
				*flagResolution = 0
				*flagTrackWidth = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
track:
  track_width: 5
  node_spacing: 12
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagTrackWidth = 8
	defer func() {
		*flagConfig = ""
		*flagTrackWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, spacing from file
	if cfg.Track.TrackWidth != 8 {
		t.Errorf("expected track width 8 from flag, got %f", cfg.Track.TrackWidth)
	}
	if cfg.Track.NodeSpacing != 12 {
		t.Errorf("expected node spacing 12 from file, got %f", cfg.Track.NodeSpacing)
	}
}
