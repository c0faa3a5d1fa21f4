package feed

import "math"

// Radius bounds mirror the server's own clamp and the slider the UI exposes:
// 0.5 km to 5 km in 0.5 km steps, 3 km by default.
const (
	MinRadiusKm     = 0.5
	MaxRadiusKm     = 5.0
	RadiusStepKm    = 0.5
	DefaultRadiusKm = 3.0
)

// NormalizeRadius snaps r to the nearest step and clamps it into range.
// Non-positive values fall back to the default.
func NormalizeRadius(r float64) float64 {
	if r <= 0 {
		return DefaultRadiusKm
	}
	snapped := math.Round(r/RadiusStepKm) * RadiusStepKm
	if snapped < MinRadiusKm {
		return MinRadiusKm
	}
	if snapped > MaxRadiusKm {
		return MaxRadiusKm
	}
	return snapped
}
