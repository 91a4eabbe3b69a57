package transform

import (
	"math"
	"time"
)

// J2000 is the reference epoch for epoch seconds: 2000-01-01 12:00:00.
// Epoch seconds are treated as UTC for display; leap seconds are ignored.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// jdJ2000 is the Julian Date of J2000.
const jdJ2000 = 2451545.0

// OmegaEarth is Earth's rotation rate in rad/s (IAU value).
const OmegaEarth = 7.292115146706979e-5

// Epoch seconds representable as calendar years 0001 through 9999.
var (
	MinEpochSeconds = float64(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix() - J2000.Unix())
	MaxEpochSeconds = float64(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix() - J2000.Unix())
)

// EpochInRange reports whether sec lies within [MinEpochSeconds, MaxEpochSeconds].
func EpochInRange(sec float64) bool {
	return sec >= MinEpochSeconds && sec <= MaxEpochSeconds
}

// EpochTime converts seconds past J2000 to a UTC time, rounded to the
// nanosecond. Epochs outside EpochInRange are clamped to the nearest bound.
func EpochTime(sec float64) time.Time {
	sec = math.Max(MinEpochSeconds, math.Min(sec, MaxEpochSeconds))
	whole := math.Floor(sec)
	nanos := math.Round((sec - whole) * 1e9)
	return time.Unix(J2000.Unix()+int64(whole), int64(nanos)).UTC()
}

// EpochSeconds converts a time to seconds past J2000.
func EpochSeconds(t time.Time) float64 {
	return float64(t.Unix()-J2000.Unix()) + float64(t.Nanosecond())/1e9
}

// JulianDate converts a UTC time to a Julian Date (Meeus, valid after 4801 BC).
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	frac := (float64(t.Hour()) + float64(t.Minute())/60.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600.0) / 24.0

	// January and February count as months 13 and 14 of the previous year.
	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5 + frac
}

// GMST returns Greenwich Mean Sidereal Time in radians (IAU-82, Vallado Eq 3-47).
func GMST(t time.Time) float64 {
	tUT1 := (JulianDate(t) - jdJ2000) / 36525.0

	// Seconds of time; 876600h = 3155760000 s.
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	sec = math.Mod(sec, 86400.0)
	if sec < 0 {
		sec += 86400.0
	}
	return sec / 86400.0 * 2.0 * math.Pi
}
