package math

import "math"

// Epsilon is the tolerance below which lengths are treated as zero.
const Epsilon float32 = 1e-6

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Round rounds half away from zero.
func Round(x float32) float32 {
	return float32(math.Round(float64(x)))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math.Pi / 180
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
