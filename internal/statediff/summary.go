package statediff

import "math"

// Moments accumulates the running sums needed for mean, mean-absolute and RMS.
type Moments struct {
	Sum    float64
	SumAbs float64
	SumSq  float64
}

func (m *Moments) add(x float64) {
	m.Sum += x
	m.SumAbs += math.Abs(x)
	m.SumSq += x * x
}

// Mean returns Sum/n.
func (m Moments) Mean(n int) float64 { return m.Sum / float64(n) }

// MeanAbs returns SumAbs/n.
func (m Moments) MeanAbs(n int) float64 { return m.SumAbs / float64(n) }

// RMS returns sqrt(SumSq/n).
func (m Moments) RMS(n int) float64 { return math.Sqrt(m.SumSq / float64(n)) }

// Extremum tracks the sum and the maximum of a non-negative quantity.
type Extremum struct {
	Sum float64
	Max float64
}

func (e *Extremum) add(x float64, first bool) {
	e.Sum += x
	if first || x > e.Max {
		e.Max = x
	}
}

// Mean returns Sum/n.
func (e Extremum) Mean(n int) float64 { return e.Sum / float64(n) }

// Record describes the epoch holding a worst-case position difference.
// Position, Velocity and DownTrackTime are only set when the view frame is
// available for the whole series.
type Record struct {
	Index         int
	Epoch         float64
	Value         float64
	Position      [numAxes]float64
	Velocity      [numAxes]float64
	DownTrackTime float64
}

// Summary is the reduction of one comparison over all N epochs.
type Summary struct {
	N int

	// FrameDefined is false when the view frame is degenerate at DegenerateIndex.
	// The view-frame moments and record projections are then left zero.
	FrameDefined    bool
	DegenerateIndex int

	PosMag Extremum
	VelMag Extremum
	RelPos Extremum
	RelVel Extremum

	Position      [numAxes]Moments
	Velocity      [numAxes]Moments
	DownTrackTime Moments

	MaxAbsolute Record
	MaxRelative Record
}

// Summarize folds the differences of a and b into a Summary. Series a is the
// reference trajectory for the view frame.
func Summarize(a, b []State, epochs []float64) (Summary, error) {
	if err := validate(a, b, epochs); err != nil {
		return Summary{}, err
	}
	idx, ok := FrameAvailable(a)
	return summarize(a, b, epochs, idx, ok), nil
}

// summarize assumes validated input and takes the result of FrameAvailable(a)
// from the caller. With frameDefined false only the frame-independent fields
// are filled.
func summarize(a, b []State, epochs []float64, degenerateIndex int, frameDefined bool) Summary {
	s := Summary{N: len(a), DegenerateIndex: degenerateIndex, FrameDefined: frameDefined}

	for i := range a {
		d := Difference(a[i], b[i])
		first := i == 0

		s.PosMag.add(d.PosMag, first)
		s.VelMag.add(d.VelMag, first)
		s.RelPos.add(d.RelPos, first)
		s.RelVel.add(d.RelVel, first)

		var rec Record
		if s.FrameDefined {
			// Cannot fail: FrameAvailable checked every epoch.
			f, _ := NewViewFrame(a[i])
			rec.Position = f.Project(d.Vector.Position())
			rec.Velocity = f.Project(d.Vector.Velocity())
			rec.DownTrackTime = f.DownTrackTime(rec.Position)

			for k := 0; k < numAxes; k++ {
				s.Position[k].add(rec.Position[k])
				s.Velocity[k].add(rec.Velocity[k])
			}
			s.DownTrackTime.add(rec.DownTrackTime)
		}
		rec.Index = i
		rec.Epoch = epochs[i]

		// Strict comparison: the first epoch seeds both records, later ties keep it.
		if first || d.PosMag > s.MaxAbsolute.Value {
			s.MaxAbsolute = rec
			s.MaxAbsolute.Value = d.PosMag
		}
		if first || d.RelPos > s.MaxRelative.Value {
			s.MaxRelative = rec
			s.MaxRelative.Value = d.RelPos
		}
	}

	return s
}
