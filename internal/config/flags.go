package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSaveDir    = flag.String("save-dir", "", "Directory holding persisted tracks")
	flagWindowed   = flag.Bool("windowed", false, "Run the viewer in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the viewer in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Viewer window width")
	flagHeight     = flag.Int("height", 0, "Viewer window height")
	flagResolution = flag.Int("resolution", 0, "Profile segments per track side")
	flagTrackWidth = flag.Float64("track-width", 0, "Track width in world units")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSaveDir != "" {
		cfg.Data.SaveDir = *flagSaveDir
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if *flagResolution > 0 {
		cfg.Track.HorizontalResolution = *flagResolution
	}
	if *flagTrackWidth > 0 {
		cfg.Track.TrackWidth = float32(*flagTrackWidth)
	}
}
