package domain

import "math"

// Ring radii used by the panels.
const (
	SnapshotRingRadius = 56.0
	ScoreRingRadius    = 112.0
)

// Ring describes an SVG progress ring of a fixed radius.
type Ring struct {
	Radius float64
}

// Circumference is the full stroke length, 2πr. It is used as the stroke
// dash array.
func (r Ring) Circumference() float64 {
	return 2 * math.Pi * r.Radius
}

// Offset is the stroke dash offset that leaves an arc proportional to
// percent visible: 2πr·(1 − percent/100). The input is not clamped.
func (r Ring) Offset(percent float64) float64 {
	return r.Circumference() * (1 - percent/100)
}
