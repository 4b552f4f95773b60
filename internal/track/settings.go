package track

import (
	"github.com/Faultbox/midgard-tracks/internal/config"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// divisionDensity scales divisions per segment into divisions per track
// width of arc length.
const divisionDensity = 20

// Settings holds geometry parameters shared by a curve's splines.
type Settings struct {
	TrackWidth           float32
	HorizontalResolution int
	DivisionsPerSegment  int
	NodeSpacing          float32
	HandleRatio          float32
	BankAngle            float32 // radians
}

// DefaultSettings returns the geometry defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default().Track)
}

// SettingsFromConfig converts the track config section.
func SettingsFromConfig(c config.TrackConfig) Settings {
	return Settings{
		TrackWidth:           c.TrackWidth,
		HorizontalResolution: c.HorizontalResolution,
		DivisionsPerSegment:  c.DivisionsPerSegment,
		NodeSpacing:          c.NodeSpacing,
		HandleRatio:          c.HandleRatio,
		BankAngle:            math.DegToRad(c.BankAngleDeg),
	}
}

// HandleLength returns the default handle length for new nodes.
func (s Settings) HandleLength() float32 {
	return s.NodeSpacing * s.HandleRatio
}

// Divisions returns the number of cross-section steps for a spline of the
// given arc length. The result is at least 1.
func (s Settings) Divisions(arcLength float32) int {
	if s.TrackWidth <= 0 {
		return 1
	}
	d := math.Round(float32(s.DivisionsPerSegment) * arcLength / s.TrackWidth / divisionDensity)
	if !(d >= 1) {
		return 1
	}
	return int(d)
}
