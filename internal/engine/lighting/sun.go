// Package lighting provides the directional light shared by the viewer and
// the software preview.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// Default sun angles in degrees.
const (
	DefaultAzimuth   = 35
	DefaultElevation = 60
)

// SunDirection converts azimuth/elevation angles to a light direction vector.
// Azimuth is rotation around the Y axis from +Z, elevation is the angle above
// the horizon. Returns a normalized vector pointing towards the sun.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := float64(math.DegToRad(azimuth))
	el := float64(math.DegToRad(elevation))

	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
}

// DefaultSun returns the direction for DefaultAzimuth and DefaultElevation.
func DefaultSun() math.Vec3 {
	return SunDirection(DefaultAzimuth, DefaultElevation)
}
