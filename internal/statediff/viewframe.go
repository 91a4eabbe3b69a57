package statediff

import "gonum.org/v1/gonum/spatial/r3"

// View frame axis indices.
const (
	DownTrack = 0 // along the reference velocity
	Normal    = 1 // normal to the instantaneous orbit plane (r × v)
	InPlane   = 2 // in the orbit plane, perpendicular to velocity (v × (r × v))
	numAxes   = 3
)

var axisNames = [numAxes]string{"down track", "normal to orbit plane", "in orbit plane"}

// ViewFrame is a trajectory-aligned basis built from a reference state.
// The axes are not normalized; projections divide by the axis norm so they
// keep the units of the projected vector.
type ViewFrame struct {
	Axes  [numAxes]r3.Vec
	norms [numAxes]float64
}

// NewViewFrame builds the view frame of ref. It reports false when any axis
// has zero norm, i.e. the velocity is zero or parallel to the position.
func NewViewFrame(ref State) (ViewFrame, bool) {
	v := ref.Velocity()
	n := r3.Cross(ref.Position(), v)
	ip := r3.Cross(v, n)

	f := ViewFrame{Axes: [numAxes]r3.Vec{v, n, ip}}
	for k, axis := range f.Axes {
		f.norms[k] = r3.Norm(axis)
		if f.norms[k] == 0 {
			return ViewFrame{}, false
		}
	}
	return f, true
}

// Project returns the scaled projection (d · axis_k) / ‖axis_k‖ on each axis.
func (f ViewFrame) Project(d r3.Vec) [numAxes]float64 {
	var out [numAxes]float64
	for k, axis := range f.Axes {
		out[k] = r3.Dot(d, axis) / f.norms[k]
	}
	return out
}

// DownTrackTime converts the down-track component of a projected position
// difference into the equivalent time shift along the path (s).
func (f ViewFrame) DownTrackTime(projectedPos [numAxes]float64) float64 {
	return projectedPos[DownTrack] / f.norms[DownTrack]
}

// Speed returns the reference speed, the norm of the down-track axis.
func (f ViewFrame) Speed() float64 {
	return f.norms[DownTrack]
}

// FrameAvailable scans every reference state and reports whether a view frame
// can be built at each epoch. When it cannot, it returns the index of the
// first degenerate epoch.
func FrameAvailable(ref []State) (int, bool) {
	for i, s := range ref {
		if _, ok := NewViewFrame(s); !ok {
			return i, false
		}
	}
	return -1, true
}
