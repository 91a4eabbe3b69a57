// Package statediff compares two state-vector series for the same body,
// typically produced by two independent ephemeris sources, and renders
// difference reports.
//
// The comparison runs in a single pass over the epochs. Frame-dependent
// reports (view-frame dump and full statistics) first scan every epoch to make
// sure a trajectory-relative frame can be built from the reference state
// (series A); if any epoch is degenerate they print a diagnostic instead of
// partial projections.
package statediff

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is a position/velocity pair [px, py, pz, vx, vy, vz] in km and km/s.
type State [6]float64

// Position returns the position sub-vector.
func (s State) Position() r3.Vec {
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}
}

// Velocity returns the velocity sub-vector.
func (s State) Velocity() r3.Vec {
	return r3.Vec{X: s[3], Y: s[4], Z: s[5]}
}

// NewState assembles a State from position and velocity vectors.
func NewState(pos, vel r3.Vec) State {
	return State{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z}
}

func (s State) finite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
