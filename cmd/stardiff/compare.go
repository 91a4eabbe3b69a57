package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/stardiff/internal/config"
	"github.com/star/stardiff/internal/ephem"
	"github.com/star/stardiff/internal/metrics"
	"github.com/star/stardiff/internal/statediff"
	"github.com/star/stardiff/internal/tle"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Propagate two TLE sources over a time grid and compare them",
		Long: `Propagates the element sets read from --a and --b (file paths or http(s)
URLs) with SGP4 at --count epochs spaced --step apart from --start, and
writes the selected report to stdout.

Modes:
  basic   maximum and mean relative/absolute differences
  stats   view-frame statistics and worst-case epochs
  dump    raw differences, one line per epoch
  dumpvf  view-frame differences, one line per epoch`,
		Args: cobra.NoArgs,
	}

	f := cmd.Flags()
	f.String("a", "", "reference TLE source (file or URL)")
	f.String("b", "", "compared TLE source (file or URL)")
	f.Int("norad", 0, "NORAD catalog number to select (default: first entry)")
	f.String("frame", "teme", "output frame: teme or ecef")
	f.String("start", "", "first epoch, RFC 3339 (default: now, whole minute)")
	f.Duration("step", time.Minute, "grid spacing")
	f.Int("count", 1440, "number of epochs")
	f.String("mode", "basic", "report mode: basic, stats, dump, dumpvf")
	f.String("time-format", "", "dump epoch format: empty for seconds past J2000, jd, iso or a Go time layout")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := a.load(cmd, config.Bindings{
			"compare.a":          f.Lookup("a"),
			"compare.b":          f.Lookup("b"),
			"compare.norad":      f.Lookup("norad"),
			"compare.frame":      f.Lookup("frame"),
			"compare.start":      f.Lookup("start"),
			"compare.step":       f.Lookup("step"),
			"compare.count":      f.Lookup("count"),
			"compare.mode":       f.Lookup("mode"),
			"compare.timeFormat": f.Lookup("time-format"),
		})
		if err != nil {
			return err
		}
		if err := runCompare(cmd.Context(), a, cmd); err != nil {
			a.logger.Error("comparison failed", "error", err)
			return err
		}
		return nil
	}
	return cmd
}

func runCompare(ctx context.Context, a *app, cmd *cobra.Command) error {
	cc := a.cfg.Compare
	if err := cc.Validate(); err != nil {
		return err
	}
	mode, _ := statediff.ParseMode(cc.Mode)
	frame, _ := ephem.ParseFrame(cc.Frame)

	start := time.Now().UTC().Truncate(time.Minute)
	if cc.Start != "" {
		start, _ = time.Parse(time.RFC3339, cc.Start)
	}
	epochs, err := ephem.Grid(start, cc.Step, cc.Count)
	if err != nil {
		return err
	}

	loader := &tle.Loader{
		Cache:        tle.NewCache(a.cfg.TLE.CacheDir, a.cfg.TLE.MaxFiles),
		FetchTimeout: a.cfg.TLE.FetchTimeout,
		Logger:       a.logger,
	}
	pool := ephem.NewWorkerPool(a.cfg.Prop.Workers, a.logger)

	pa, err := loadProvider(ctx, loader, cc.A, cc.NoradID, frame, pool)
	if err != nil {
		return err
	}
	pb, err := loadProvider(ctx, loader, cc.B, cc.NoradID, frame, pool)
	if err != nil {
		return err
	}
	a.logger.Info("comparing",
		"a", pa.Name(),
		"b", pb.Name(),
		"mode", mode.String(),
		"epochs", len(epochs),
	)

	sa, sb, err := ephem.PropagatePair(ctx, pa, pb, epochs)
	if err != nil {
		return err
	}

	began := time.Now()
	opts := statediff.Options{Mode: mode, TimeFormat: cc.TimeFormat}
	res, err := statediff.Compare(cmd.OutOrStdout(), sa, sb, epochs, opts)
	if err != nil {
		metrics.RecordComparison(mode.String(), metrics.OutcomeInvalid, len(epochs), 0)
		return err
	}

	outcome := metrics.OutcomeOK
	if res.Degenerate {
		outcome = metrics.OutcomeDegenerateFrame
		a.logger.Warn("view frame undefined", "mode", mode.String(), "epoch_index", res.DegenerateIndex, "epoch", epochs[res.DegenerateIndex])
	}
	metrics.RecordComparison(mode.String(), outcome, len(epochs), time.Since(began))
	return nil
}

func loadProvider(ctx context.Context, loader *tle.Loader, source string, noradID int, frame ephem.Frame, pool *ephem.WorkerPool) (*ephem.SGP4Provider, error) {
	entries, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	entry, err := tle.Select(entries, noradID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return ephem.NewSGP4Provider(entry, frame, pool)
}
