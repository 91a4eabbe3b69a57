package statediff

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Diff holds the per-epoch difference between two states.
type Diff struct {
	Vector State   // a - b, component-wise
	PosMag float64 // ‖Δposition‖ (km)
	VelMag float64 // ‖Δvelocity‖ (km/s)
	RelPos float64 // RelativeDifference of the position sub-vectors
	RelVel float64 // RelativeDifference of the velocity sub-vectors
}

// Difference computes a - b and its derived magnitudes for a single epoch.
func Difference(a, b State) Diff {
	var d State
	for i := range d {
		d[i] = a[i] - b[i]
	}
	return Diff{
		Vector: d,
		PosMag: r3.Norm(d.Position()),
		VelMag: r3.Norm(d.Velocity()),
		RelPos: RelativeDifference(a.Position(), b.Position()),
		RelVel: RelativeDifference(a.Velocity(), b.Velocity()),
	}
}

// RelativeDifference returns ‖u−v‖ / max(‖u‖, ‖v‖).
// It is 0 when both vectors are zero; the denominator cannot vanish otherwise.
func RelativeDifference(u, v r3.Vec) float64 {
	denom := math.Max(r3.Norm(u), r3.Norm(v))
	if denom == 0 {
		return 0
	}
	return r3.Norm(r3.Sub(u, v)) / denom
}
