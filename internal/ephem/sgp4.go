package ephem

import (
	"context"
	"errors"
	"fmt"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/star/stardiff/internal/statediff"
	"github.com/star/stardiff/internal/tle"
	"github.com/star/stardiff/internal/transform"
)

// ErrFractionalEpoch is returned for epochs that are not whole seconds;
// go-satellite only propagates to integer calendar seconds.
var ErrFractionalEpoch = errors.New("ephem: SGP4 epochs must be whole seconds")

// SGP4Provider evaluates one TLE with go-satellite.
//
// satellite.Propagate takes the Satellite by value, so SGP4 error codes are
// not visible here. Failures are detected from NaN/Inf output and
// unreasonable radii instead.
type SGP4Provider struct {
	sat   satellite.Satellite
	entry tle.TLEEntry
	frame Frame
	pool  *WorkerPool
}

// NewSGP4Provider initializes SGP4 for entry. States are evaluated on pool.
//
// The lines are pre-validated because go-satellite calls log.Fatal on
// malformed input.
func NewSGP4Provider(entry tle.TLEEntry, frame Frame, pool *WorkerPool) (*SGP4Provider, error) {
	if err := validateTLELines(entry.Line1, entry.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", entry.NORADID, err)
	}

	sat := satellite.TLEToSat(entry.Line1, entry.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", entry.NORADID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Provider{sat: sat, entry: entry, frame: frame, pool: pool}, nil
}

func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// Name implements Provider.
func (p *SGP4Provider) Name() string {
	return fmt.Sprintf("sgp4 %s epoch %s (%s)", p.entry.Label(), p.entry.Epoch.UTC().Format("2006-01-02T15:04:05Z"), p.frame)
}

// States implements Provider.
func (p *SGP4Provider) States(ctx context.Context, epochs []float64) ([]statediff.State, error) {
	return p.pool.Evaluate(ctx, epochs, p.StateAt)
}

// StateAt evaluates the TLE at one epoch (seconds past J2000).
func (p *SGP4Provider) StateAt(sec float64) (statediff.State, error) {
	t := transform.EpochTime(sec)
	if t.Nanosecond() != 0 {
		return statediff.State{}, fmt.Errorf("%w: %v", ErrFractionalEpoch, sec)
	}

	pos, vel := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	if !transform.ValidRadius(pos.X, pos.Y, pos.Z) {
		return statediff.State{}, fmt.Errorf("sgp4 propagation failed for NORAD %d at %s: position [%g %g %g] km",
			p.entry.NORADID, t.Format("2006-01-02T15:04:05Z"), pos.X, pos.Y, pos.Z)
	}

	teme := transform.PositionTEME{X: pos.X, Y: pos.Y, Z: pos.Z, VX: vel.X, VY: vel.Y, VZ: vel.Z}
	if p.frame == FrameECEF {
		e := transform.TEMEToECEF(teme, t)
		return statediff.State{e.X, e.Y, e.Z, e.VX, e.VY, e.VZ}, nil
	}
	return statediff.State{teme.X, teme.Y, teme.Z, teme.VX, teme.VY, teme.VZ}, nil
}
