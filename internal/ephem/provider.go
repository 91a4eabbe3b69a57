// Package ephem produces the state series that are compared: one Provider per
// ephemeris source, evaluated over a shared epoch grid.
package ephem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/star/stardiff/internal/statediff"
	"github.com/star/stardiff/internal/transform"
)

// Provider evaluates one ephemeris source at epochs given in seconds past J2000.
type Provider interface {
	// Name identifies the source in logs and report headers.
	Name() string

	// States returns one state per epoch, in epoch order.
	States(ctx context.Context, epochs []float64) ([]statediff.State, error)
}

// Frame is the output frame of a provider.
type Frame int

const (
	FrameTEME Frame = iota // SGP4 native frame
	FrameECEF              // Earth-fixed, GMST rotation
)

// String returns the frame name.
func (f Frame) String() string {
	switch f {
	case FrameTEME:
		return "teme"
	case FrameECEF:
		return "ecef"
	default:
		return "unknown"
	}
}

// ParseFrame parses a frame name.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "teme":
		return FrameTEME, nil
	case "ecef":
		return FrameECEF, nil
	default:
		return 0, fmt.Errorf("unknown frame %q (want teme or ecef)", s)
	}
}

// ErrInvalidGrid is returned by Grid for a non-positive count or step.
var ErrInvalidGrid = errors.New("ephem: invalid epoch grid")

// Grid returns count epochs (seconds past J2000) starting at start, step apart.
func Grid(start time.Time, step time.Duration, count int) ([]float64, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidGrid, count)
	}
	if count > 1 && step <= 0 {
		return nil, fmt.Errorf("%w: step %v", ErrInvalidGrid, step)
	}

	epochs := make([]float64, count)
	for i := range epochs {
		epochs[i] = transform.EpochSeconds(start.Add(time.Duration(i) * step))
	}
	return epochs, nil
}

// PropagatePair evaluates a and b over the same epochs concurrently.
func PropagatePair(ctx context.Context, a, b Provider, epochs []float64) ([]statediff.State, []statediff.State, error) {
	var sa, sb []statediff.State
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sa, err = a.States(ctx, epochs)
		if err != nil {
			return fmt.Errorf("source a (%s): %w", a.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sb, err = b.States(ctx, epochs)
		if err != nil {
			return fmt.Errorf("source b (%s): %w", b.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}
