package statediff

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Mode selects the report rendered by Compare.
type Mode int

const (
	ModeBasic         Mode = iota // maximum and mean relative/absolute differences
	ModeStats                     // view-frame statistics and worst-case epochs
	ModeDump                      // raw inertial differences, one line per epoch
	ModeDumpViewFrame             // view-frame differences, one line per epoch
)

var modeNames = map[Mode]string{
	ModeBasic:         "basic",
	ModeStats:         "stats",
	ModeDump:          "dump",
	ModeDumpViewFrame: "dumpvf",
}

// String returns the mode name as accepted by ParseMode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// NeedsFrame reports whether the mode depends on the view frame.
func (m Mode) NeedsFrame() bool {
	return m == ModeStats || m == ModeDumpViewFrame
}

// ParseMode parses a report mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options configures Compare.
type Options struct {
	Mode Mode

	// TimeFormat controls how dump epochs are printed (see NewEpochFormatter).
	// When it names a calendar layout, the stats report uses it too.
	TimeFormat string

	// Numbers formats reported values. Nil means DefaultNumbers.
	Numbers NumberFormatter
}

// Result reports what Compare found beyond the written text.
type Result struct {
	// Degenerate is set when a frame-dependent mode found no view frame at
	// DegenerateIndex and wrote the diagnostic paragraph. DegenerateIndex is
	// -1 otherwise.
	Degenerate      bool
	DegenerateIndex int
}

// Compare writes the report selected by opts.Mode for the differences between
// the state series a and b at the given epochs. Series a is the reference for
// the view frame.
//
// Precondition violations are returned before anything is written. A
// degenerate view frame is not an error: frame-dependent modes write a
// diagnostic paragraph instead of numbers and flag it in the Result.
func Compare(w io.Writer, a, b []State, epochs []float64, opts Options) (Result, error) {
	res := Result{DegenerateIndex: -1}
	if err := validate(a, b, epochs); err != nil {
		return res, err
	}
	if _, ok := modeNames[opts.Mode]; !ok {
		return res, fmt.Errorf("%w: %d", ErrUnknownMode, int(opts.Mode))
	}

	r := newReporter(w, opts)
	switch opts.Mode {
	case ModeDump:
		r.dump(a, b, epochs)
	case ModeBasic:
		r.basic(summarize(a, b, epochs, -1, false))
	case ModeDumpViewFrame, ModeStats:
		idx, ok := FrameAvailable(a)
		if !ok {
			res.Degenerate, res.DegenerateIndex = true, idx
			r.degenerate(idx, epochs[idx])
			break
		}
		if opts.Mode == ModeStats {
			r.stats(summarize(a, b, epochs, idx, ok))
		} else {
			r.dumpViewFrame(a, b, epochs)
		}
	}
	return res, r.flush()
}

type reporter struct {
	bw       *bufio.Writer
	err      error
	num      NumberFormatter
	epoch    EpochFormatter
	calendar EpochFormatter
}

func newReporter(w io.Writer, opts Options) *reporter {
	r := &reporter{
		bw:       bufio.NewWriter(w),
		num:      opts.Numbers,
		epoch:    NewEpochFormatter(opts.TimeFormat),
		calendar: CalendarFormatter{},
	}
	if r.num == nil {
		r.num = DefaultNumbers
	}
	if cf, ok := r.epoch.(CalendarFormatter); ok {
		r.calendar = cf
	}
	return r
}

func (r *reporter) line(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.bw, format+"\n", args...)
}

func (r *reporter) row(label string, values ...float64) {
	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = r.num.FormatNumber(v)
	}
	r.line("  %-28s%s", label, strings.Join(cols, "  "))
}

func (r *reporter) flush() error {
	if r.err != nil {
		return fmt.Errorf("writing report: %w", r.err)
	}
	if err := r.bw.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func (r *reporter) values(vs []float64) string {
	cols := make([]string, len(vs))
	for i, v := range vs {
		cols[i] = r.num.FormatNumber(v)
	}
	return strings.Join(cols, " ")
}

func (r *reporter) dump(a, b []State, epochs []float64) {
	for i := range a {
		d := Difference(a[i], b[i])
		r.line("%s %s", r.epoch.FormatEpoch(epochs[i]), r.values(d.Vector[:]))
	}
}

func (r *reporter) dumpViewFrame(a, b []State, epochs []float64) {
	for i := range a {
		f, _ := NewViewFrame(a[i])
		d := Difference(a[i], b[i])
		pos := f.Project(d.Vector.Position())
		vel := f.Project(d.Vector.Velocity())
		r.line("%s %s %s", r.epoch.FormatEpoch(epochs[i]), r.values(pos[:]), r.values(vel[:]))
	}
}

func (r *reporter) degenerate(idx int, epoch float64) {
	r.line("No view-frame analysis is possible for these states.")
	r.line("")
	r.line("At epoch %s (%s, record %d) the reference trajectory has a zero",
		SecondsFormatter{}.FormatEpoch(epoch), r.calendar.FormatEpoch(epoch), idx)
	r.line("velocity, or a position collinear with its velocity, so the down-track,")
	r.line("normal and in-plane axes cannot be constructed. Use the basic or dump")
	r.line("report for this data.")
}

func (r *reporter) basic(s Summary) {
	r.line("Compared states: %d", s.N)
	r.line("")
	r.line("Relative differences in state vectors:")
	r.line("  %-28s%-25s%s", "", "maximum", "average")
	r.row("Position:", s.RelPos.Max, s.RelPos.Mean(s.N))
	r.row("Velocity:", s.RelVel.Max, s.RelVel.Mean(s.N))
	r.line("")
	r.line("Absolute differences in state vectors:")
	r.line("  %-28s%-25s%s", "", "maximum", "average")
	r.row("Position (km):", s.PosMag.Max, s.PosMag.Mean(s.N))
	r.row("Velocity (km/s):", s.VelMag.Max, s.VelMag.Mean(s.N))
}

func (r *reporter) stats(s Summary) {
	n := s.N
	r.line("Compared states: %d", n)
	r.line("")

	r.line("Mean view-frame components of position difference (km):")
	for k := 0; k < numAxes; k++ {
		r.row(axisNames[k]+":", s.Position[k].Mean(n))
	}
	r.line("")

	r.line("Mean |view-frame components| of position difference (km):")
	for k := 0; k < numAxes; k++ {
		r.row(axisNames[k]+":", s.Position[k].MeanAbs(n))
	}
	r.row("|down-track time| (s):", s.DownTrackTime.MeanAbs(n))
	r.line("")

	r.line("RMS view-frame components of position difference (km):")
	for k := 0; k < numAxes; k++ {
		r.row(axisNames[k]+":", s.Position[k].RMS(n))
	}
	r.row("down-track time (s):", s.DownTrackTime.RMS(n))
	r.line("")

	r.line("Maximum relative position difference:")
	r.record(s.MaxRelative)
	r.line("")

	r.line("Maximum absolute position difference (km):")
	r.record(s.MaxAbsolute)
	r.line("")

	r.line("View-frame components of velocity difference (km/s):")
	r.line("  %-28s%-25s%-25s%s", "", "mean", "mean |x|", "rms")
	for k := 0; k < numAxes; k++ {
		r.row(axisNames[k]+":", s.Velocity[k].Mean(n), s.Velocity[k].MeanAbs(n), s.Velocity[k].RMS(n))
	}
}

func (r *reporter) record(rec Record) {
	r.row("value:", rec.Value)
	r.line("  %-28s%s", "epoch (s past J2000):", SecondsFormatter{}.FormatEpoch(rec.Epoch))
	r.line("  %-28s%s", "epoch (calendar):", r.calendar.FormatEpoch(rec.Epoch))
	r.line("  position difference (km):")
	for k := 0; k < numAxes; k++ {
		r.row("  "+axisNames[k]+":", rec.Position[k])
	}
	r.line("  velocity difference (km/s):")
	for k := 0; k < numAxes; k++ {
		r.row("  "+axisNames[k]+":", rec.Velocity[k])
	}
	r.row("down-track time (s):", rec.DownTrackTime)
}
