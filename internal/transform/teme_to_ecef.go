// Package transform provides epoch conversions and the TEME to ECEF rotation
// applied to SGP4 states before they are compared.
//
// The rotation uses GMST only (TEME → PEF ≈ ECEF), ignoring polar motion and
// the equation of the equinoxes. Both series of a comparison go through the
// same rotation, so the approximation does not bias their difference.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// PositionTEME is a position and velocity in the TEME frame (km, km/s).
type PositionTEME struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// PositionECEF is a position and velocity in the ECEF frame (km, km/s).
type PositionECEF struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// TEMEToECEF rotates a TEME state into ECEF at the given UTC time.
func TEMEToECEF(teme PositionTEME, t time.Time) PositionECEF {
	return TEMEToECEFWithGMST(teme, GMST(t))
}

// TEMEToECEFWithGMST rotates a TEME state into ECEF using a precomputed GMST
// angle (radians):
//
//	r_ECEF = R3(θ) r_TEME
//	v_ECEF = R3(θ) v_TEME − ω × r_ECEF,  ω = [0, 0, ω_earth]
func TEMEToECEFWithGMST(teme PositionTEME, gmst float64) PositionECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	x := teme.X*cosG + teme.Y*sinG
	y := -teme.X*sinG + teme.Y*cosG

	vx := teme.VX*cosG + teme.VY*sinG
	vy := -teme.VX*sinG + teme.VY*cosG

	return PositionECEF{
		X:  x,
		Y:  y,
		Z:  teme.Z,
		VX: vx + OmegaEarth*y,
		VY: vy - OmegaEarth*x,
		VZ: teme.VZ,
	}
}

// Earth-orbit radius bounds (km) used to reject diverged propagations.
const (
	MinOrbitRadius = 6200.0
	MaxOrbitRadius = 50000.0
)

// ValidRadius reports whether a position (km) is finite and within the
// Earth-orbit bounds.
func ValidRadius(x, y, z float64) bool {
	for _, v := range [3]float64{x, y, z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	mag := math.Sqrt(x*x + y*y + z*z)
	return mag >= MinOrbitRadius && mag <= MaxOrbitRadius
}
