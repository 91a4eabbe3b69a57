package transform

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{
			name:     "J2000.0 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
		},
		{
			// Vallado Example 3-15: April 6, 2004, 07:51:28.386 UTC
			name:     "Vallado example date",
			time:     time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC),
			expected: 2453101.827411875,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			if diff := math.Abs(got - tt.expected); diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.expected, diff)
			}
		})
	}
}

func TestEpochTime(t *testing.T) {
	tests := []struct {
		sec  float64
		want time.Time
	}{
		{0, time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		{86400.5, time.Date(2000, 1, 2, 12, 0, 0, 500000000, time.UTC)},
		{-43200, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{-0.25, time.Date(2000, 1, 1, 11, 59, 59, 750000000, time.UTC)},
	}
	for _, tt := range tests {
		got := EpochTime(tt.sec)
		if !got.Equal(tt.want) {
			t.Errorf("EpochTime(%v) = %v, want %v", tt.sec, got, tt.want)
		}
		if back := EpochSeconds(got); math.Abs(back-tt.sec) > 1e-9 {
			t.Errorf("EpochSeconds(%v) = %v, want %v", got, back, tt.sec)
		}
	}
}

func TestEpochTimeFarEpochs(t *testing.T) {
	// 1e10 s = 115740 days + 64000 s.
	tests := []struct {
		sec  float64
		want time.Time
	}{
		{1e10, J2000.AddDate(0, 0, 115740).Add(64000 * time.Second)},
		{-1e10, J2000.AddDate(0, 0, -115740).Add(-64000 * time.Second)},
	}
	for _, tt := range tests {
		if !EpochInRange(tt.sec) {
			t.Fatalf("EpochInRange(%v) = false, want true", tt.sec)
		}
		got := EpochTime(tt.sec)
		if !got.Equal(tt.want) {
			t.Errorf("EpochTime(%v) = %v, want %v", tt.sec, got, tt.want)
		}
		if back := EpochSeconds(got); back != tt.sec {
			t.Errorf("EpochSeconds(%v) = %v, want %v", got, back, tt.sec)
		}
		wantJD := jdJ2000 + tt.sec/86400
		if jd := JulianDate(got); math.Abs(jd-wantJD) > 1e-6 {
			t.Errorf("JulianDate(EpochTime(%v)) = %.8f, want %.8f", tt.sec, jd, wantJD)
		}
	}
	if got := EpochTime(1e10).Year(); got != 2316 {
		t.Errorf("EpochTime(1e10).Year() = %d, want 2316", got)
	}
}

func TestEpochRange(t *testing.T) {
	tests := []struct {
		sec  float64
		want bool
	}{
		{0, true},
		{MaxEpochSeconds, true},
		{MinEpochSeconds, true},
		{MaxEpochSeconds + 1, false},
		{MinEpochSeconds - 1, false},
		{1e19, false},
		{-1e19, false},
	}
	for _, tt := range tests {
		if got := EpochInRange(tt.sec); got != tt.want {
			t.Errorf("EpochInRange(%v) = %v, want %v", tt.sec, got, tt.want)
		}
	}
	if y := EpochTime(1e19).Year(); y != 9999 {
		t.Errorf("EpochTime(1e19).Year() = %d, want clamp to 9999", y)
	}
	if y := EpochTime(-1e19).Year(); y != 1 {
		t.Errorf("EpochTime(-1e19).Year() = %d, want clamp to 1", y)
	}
}

// TestGMST validates GMST against go-satellite's GSTimeFromDate (same IAU-82 model).
func TestGMST(t *testing.T) {
	times := []time.Time{
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC),
		time.Date(2026, 2, 6, 4, 1, 0, 0, time.UTC),
	}

	for _, tm := range times {
		t.Run(tm.Format(time.RFC3339), func(t *testing.T) {
			ours := GMST(tm)
			ref := satellite.GSTimeFromDate(tm.Year(), int(tm.Month()), tm.Day(), tm.Hour(), tm.Minute(), tm.Second())
			// 1e-8 rad ≈ 0.002 arcsec.
			if diff := math.Abs(ours - ref); diff > 1e-8 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tm, ours, ref, diff)
			}
		})
	}
}

// TestTEMEToECEF checks the rotation against go-satellite's ECIToECEF.
func TestTEMEToECEF(t *testing.T) {
	tests := []struct {
		name string
		teme PositionTEME
		time time.Time
	}{
		{
			name: "Vallado example 3-15",
			teme: PositionTEME{
				X: 5094.18016, Y: 6127.64465, Z: 6380.34453,
				VX: -4.746131487, VY: 0.786598499, VZ: 5.531931288,
			},
			time: time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC),
		},
		{
			name: "LEO equatorial",
			teme: PositionTEME{X: 6778.0, VY: 7.5},
			time: time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "LEO polar",
			teme: PositionTEME{Z: 6978.0, VX: 7.4},
			time: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gmst := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)

			ours := TEMEToECEFWithGMST(tt.teme, gmst)
			ref := satellite.ECIToECEF(satellite.Vector3{X: tt.teme.X, Y: tt.teme.Y, Z: tt.teme.Z}, gmst)

			got := []float64{ours.X, ours.Y, ours.Z}
			want := []float64{ref.X, ref.Y, ref.Z}
			// 1 mm.
			if !floats.EqualApprox(got, want, 1e-6) {
				t.Errorf("position = %v km, go-satellite = %v km", got, want)
			}

			// Rotation preserves the radius.
			rTEME := math.Sqrt(tt.teme.X*tt.teme.X + tt.teme.Y*tt.teme.Y + tt.teme.Z*tt.teme.Z)
			rECEF := math.Sqrt(ours.X*ours.X + ours.Y*ours.Y + ours.Z*ours.Z)
			if !scalar.EqualWithinAbsOrRel(rTEME, rECEF, 1e-9, 1e-12) {
				t.Errorf("radius changed: TEME %.9f km, ECEF %.9f km", rTEME, rECEF)
			}
			if !ValidRadius(ours.X, ours.Y, ours.Z) {
				t.Errorf("ECEF position failed validation: [%.1f, %.1f, %.1f] km", ours.X, ours.Y, ours.Z)
			}
		})
	}
}

// TestTEMEToECEFVelocity verifies the Earth rotation correction.
func TestTEMEToECEFVelocity(t *testing.T) {
	teme := PositionTEME{X: 6778.0, VY: 7.5}

	// GMST = 0 aligns the TEME and ECEF X axes.
	ecef := TEMEToECEFWithGMST(teme, 0)

	if math.Abs(ecef.X-6778.0) > 1e-9 {
		t.Errorf("X = %.6f km, want 6778.0", ecef.X)
	}

	// ω*R = 7.292115e-5 * 6778 ≈ 0.4943 km/s.
	wantVY := 7.5 - OmegaEarth*6778.0
	if math.Abs(ecef.VY-wantVY) > 1e-9 {
		t.Errorf("VY = %.6f km/s, want %.6f km/s", ecef.VY, wantVY)
	}
}

func TestValidRadius(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		valid   bool
	}{
		{"LEO", 6778, 0, 0, true},
		{"GEO", 42164, 0, 0, true},
		{"too low", 5000, 0, 0, false},
		{"too high", 60000, 0, 0, false},
		{"NaN", math.NaN(), 0, 0, false},
		{"Inf", math.Inf(1), 0, 0, false},
		{"zero", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRadius(tt.x, tt.y, tt.z); got != tt.valid {
				t.Errorf("ValidRadius(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.z, got, tt.valid)
			}
		})
	}
}
