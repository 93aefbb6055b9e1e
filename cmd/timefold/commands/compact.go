package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/timefold/pkg/compactor"
	"github.com/Sumatoshi-tech/timefold/pkg/config"
	"github.com/Sumatoshi-tech/timefold/pkg/differ"
	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/observability"
	"github.com/Sumatoshi-tech/timefold/pkg/patch"
	"github.com/Sumatoshi-tech/timefold/pkg/persist"
	"github.com/Sumatoshi-tech/timefold/pkg/snapshot"
	"github.com/Sumatoshi-tech/timefold/pkg/version"
)

// Sentinel errors for the compact command.
var (
	ErrNoSnapshotSource   = errors.New("either --snapshot or --snapshot-dir is required")
	ErrTwoSnapshotSources = errors.New("--snapshot and --snapshot-dir are mutually exclusive")
)

// CompactCommand holds the flags for the compact command.
type CompactCommand struct {
	logPath      string
	snapshotPath string
	snapshotDir  string
	output       string
	interval     time.Duration
	minTime      int64
	maxTime      int64
	metrics      bool
}

// NewCompactCommand creates and configures the compact command.
func NewCompactCommand() *cobra.Command {
	cc := &CompactCommand{}

	cobraCmd := &cobra.Command{
		Use:   "compact",
		Short: "Coarsen a history log to one entry per time bucket",
		Long: `Compact merges history entries that fall within the same time bucket
inside the [min-time, max-time] window, keeping the log reversible at
reduced granularity. Entries outside the window are preserved verbatim.`,
		RunE: cc.run,
	}

	cobraCmd.Flags().StringVar(&cc.logPath, "log", "", "history log file (.json, .gob, .json.lz4, .gob.lz4)")
	cobraCmd.Flags().StringVar(&cc.snapshotPath, "snapshot", "", "current project snapshot file")
	cobraCmd.Flags().StringVar(&cc.snapshotDir, "snapshot-dir", "", "current project directory (tracked files only)")
	cobraCmd.Flags().StringVarP(&cc.output, "output", "o", "", "output log file (default: overwrite --log)")
	cobraCmd.Flags().DurationVar(&cc.interval, "interval", 0, "bucket size (default from config)")
	cobraCmd.Flags().Int64Var(&cc.minTime, "min-time", 0, "window lower bound, epoch ms")
	cobraCmd.Flags().Int64Var(&cc.maxTime, "max-time", 0, "window upper bound, epoch ms (0 = newest entry)")
	cobraCmd.Flags().BoolVar(&cc.metrics, "metrics", false, "record compaction metrics and dump them on exit")

	_ = cobraCmd.MarkFlagRequired("log")

	return cobraCmd
}

func (cc *CompactCommand) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	tel, err := observability.InitTelemetry(serviceName, version.Version, cc.metrics)
	if err != nil {
		return err
	}
	defer tel.Shutdown(ctx) //nolint:errcheck // best-effort flush on exit.

	runMetrics, err := observability.NewCompactionMetrics(tel.Meter)
	if err != nil {
		return err
	}

	log, snap, err := cc.loadInputs(cfg)
	if err != nil {
		return err
	}

	interval := cc.interval
	if interval == 0 {
		interval = cfg.Compaction.Interval
	}

	pol := compactor.Policy{
		Interval: interval.Milliseconds(),
		MinTime:  cc.minTime,
		MaxTime:  cc.maxTime,
	}
	if pol.MinTime == 0 {
		pol.MinTime = cfg.Compaction.MinTime
	}

	if pol.MaxTime == 0 {
		pol.MaxTime = cfg.Compaction.MaxTime
	}

	engine := patch.NewDMP()
	d := differ.New(engine, trackedSet(cfg), cfg.Editor.Version)
	comp := compactor.New(engine, d)

	logger.InfoContext(ctx, "compacting history",
		"log", cc.logPath,
		"entries", len(log),
		"interval", interval.String(),
	)

	start := time.Now()

	compacted, compactErr := comp.Compact(log, snap, pol)

	runMetrics.RecordRun(ctx, len(log), len(compacted), time.Since(start), compactErr != nil)

	if compactErr != nil {
		logger.ErrorContext(ctx, "compaction failed", "error", compactErr)

		return fmt.Errorf("compact %s: %w", cc.logPath, compactErr)
	}

	outPath := cc.output
	if outPath == "" {
		outPath = cc.logPath
	}

	err = persist.SaveLog(outPath, compacted)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "compaction finished",
		"entries_in", len(log),
		"entries_out", len(compacted),
		"output", outPath,
		"elapsed", time.Since(start).String(),
	)

	color.New(color.FgGreen).Fprintf(os.Stdout, "compacted %d entries down to %d (%s)\n",
		len(log), len(compacted), humanize.RelTime(time.UnixMilli(firstTimestamp(compacted)), time.UnixMilli(lastTimestamp(compacted)), "of history", ""))

	if tel.Registry != nil {
		err = observability.WriteMetricsText(cmd.ErrOrStderr(), tel.Registry)
		if err != nil {
			return err
		}
	}

	return nil
}

// loadInputs reads the history log and the current snapshot.
func (cc *CompactCommand) loadInputs(cfg *config.Config) (history.Log, history.Snapshot, error) {
	log, err := persist.LoadLog(cc.logPath)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case cc.snapshotPath != "" && cc.snapshotDir != "":
		return nil, nil, ErrTwoSnapshotSources

	case cc.snapshotPath != "":
		snap, err := persist.LoadSnapshot(cc.snapshotPath)
		if err != nil {
			return nil, nil, err
		}

		return log, snap, nil

	case cc.snapshotDir != "":
		snap, err := snapshot.FromDir(cc.snapshotDir, trackedSet(cfg))
		if err != nil {
			return nil, nil, err
		}

		return log, snap, nil

	default:
		return nil, nil, ErrNoSnapshotSource
	}
}

// firstTimestamp returns the oldest timestamp in the log, or 0.
func firstTimestamp(log history.Log) int64 {
	if len(log) == 0 {
		return 0
	}

	return log[0].Timestamp
}

// lastTimestamp returns the newest timestamp in the log, or 0.
func lastTimestamp(log history.Log) int64 {
	if len(log) == 0 {
		return 0
	}

	return log[len(log)-1].Timestamp
}
