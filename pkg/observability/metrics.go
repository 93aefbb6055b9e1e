package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricEntriesIn   = "timefold.compaction.entries.in"
	metricEntriesOut  = "timefold.compaction.entries.out"
	metricRunsTotal   = "timefold.compaction.runs.total"
	metricRunDuration = "timefold.compaction.run.duration.seconds"
	metricErrorsTotal = "timefold.compaction.errors.total"

	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s; a compaction pass is a
// bounded loop over the log, so even large logs finish well under a
// minute.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// CompactionMetrics holds the OTel instruments for compaction runs.
type CompactionMetrics struct {
	entriesIn   metric.Int64Counter
	entriesOut  metric.Int64Counter
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
	errorsTotal metric.Int64Counter
}

// NewCompactionMetrics creates compaction instruments from the meter.
func NewCompactionMetrics(mt metric.Meter) (*CompactionMetrics, error) {
	entriesIn, err := mt.Int64Counter(metricEntriesIn,
		metric.WithDescription("History entries consumed by compaction"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEntriesIn, err)
	}

	entriesOut, err := mt.Int64Counter(metricEntriesOut,
		metric.WithDescription("History entries surviving compaction"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEntriesOut, err)
	}

	runsTotal, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total number of compaction runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	runDuration, err := mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Compaction run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	errorsTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed compaction runs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	return &CompactionMetrics{
		entriesIn:   entriesIn,
		entriesOut:  entriesOut,
		runsTotal:   runsTotal,
		runDuration: runDuration,
		errorsTotal: errorsTotal,
	}, nil
}

// RecordRun records a completed compaction run. entriesOut is ignored
// when the run failed.
func (cm *CompactionMetrics) RecordRun(ctx context.Context, entriesIn, entriesOut int, duration time.Duration, failed bool) {
	status := statusOK
	if failed {
		status = statusError
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	cm.runsTotal.Add(ctx, 1, attrs)
	cm.runDuration.Record(ctx, duration.Seconds(), attrs)
	cm.entriesIn.Add(ctx, int64(entriesIn))

	if failed {
		cm.errorsTotal.Add(ctx, 1)

		return
	}

	cm.entriesOut.Add(ctx, int64(entriesOut))
}
