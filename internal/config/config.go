// Package config handles track generator configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Track   TrackConfig   `yaml:"track"`
	Data    DataConfig    `yaml:"data"`
	Preview PreviewConfig `yaml:"preview"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// TrackConfig holds the geometry parameters shared by every curve and bifurcation.
type TrackConfig struct {
	TrackWidth           float32 `yaml:"track_width"`
	HorizontalResolution int     `yaml:"horizontal_resolution"` // profile segments per side
	DivisionsPerSegment  int     `yaml:"divisions_per_segment"`
	NodeSpacing          float32 `yaml:"node_spacing"`
	HandleRatio          float32 `yaml:"handle_ratio"`   // handle length as a fraction of node spacing
	BankAngleDeg         float32 `yaml:"bank_angle_deg"` // outer angle of the curved profile
}

// DataConfig holds persisted graph locations.
type DataConfig struct {
	SaveDir string `yaml:"save_dir"`
}

// PreviewConfig holds software preview settings.
type PreviewConfig struct {
	Size        int     `yaml:"size"`
	Supersample int     `yaml:"supersample"`
	Format      string  `yaml:"format"` // "webp" or "png"
	Padding     float32 `yaml:"padding"`
}

// ViewerConfig holds display settings for the interactive viewer.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Track: TrackConfig{
			TrackWidth:           4.0,
			HorizontalResolution: 8,
			DivisionsPerSegment:  40,
			NodeSpacing:          20.0,
			HandleRatio:          1.0 / 3.0,
			BankAngleDeg:         35,
		},
		Data: DataConfig{
			SaveDir: "tracks",
		},
		Preview: PreviewConfig{
			Size:        1024,
			Supersample: 2,
			Format:      "webp",
			Padding:     0.05,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Sanitize clamps invalid values to their minimum valid value.
// It returns the names of the fields it changed.
func (c *Config) Sanitize() []string {
	var fixed []string
	d := Default()

	if c.Track.TrackWidth <= 0 {
		c.Track.TrackWidth = d.Track.TrackWidth
		fixed = append(fixed, "track.track_width")
	}
	if c.Track.HorizontalResolution < 1 {
		c.Track.HorizontalResolution = 1
		fixed = append(fixed, "track.horizontal_resolution")
	}
	if c.Track.DivisionsPerSegment < 1 {
		c.Track.DivisionsPerSegment = 1
		fixed = append(fixed, "track.divisions_per_segment")
	}
	if c.Track.NodeSpacing <= 0 {
		c.Track.NodeSpacing = d.Track.NodeSpacing
		fixed = append(fixed, "track.node_spacing")
	}
	if c.Track.HandleRatio <= 0 {
		c.Track.HandleRatio = d.Track.HandleRatio
		fixed = append(fixed, "track.handle_ratio")
	}
	if c.Preview.Size < 16 {
		c.Preview.Size = 16
		fixed = append(fixed, "preview.size")
	}
	if c.Preview.Supersample < 1 {
		c.Preview.Supersample = 1
		fixed = append(fixed, "preview.supersample")
	}
	if c.Preview.Format != "webp" && c.Preview.Format != "png" {
		c.Preview.Format = d.Preview.Format
		fixed = append(fixed, "preview.format")
	}

	return fixed
}
