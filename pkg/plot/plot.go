// Package plot renders history logs as HTML timeline charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/safeconv"
)

// timeLabelFormat renders bucket start times on the x axis.
const timeLabelFormat = "2006-01-02 15:04:05"

// Sentinel errors for timeline validation.
var (
	ErrInvalidBucket = errors.New("bucket size must be positive")
	ErrNothingToPlot = errors.New("nothing to plot")
)

// Series pairs a named log with its entry counts per bucket.
type Series struct {
	Name string
	Log  history.Log
}

// Timeline writes an HTML bar chart of entries per time bucket for one
// or more logs sharing an axis, typically an original log next to its
// compacted form. bucketMS controls the x-axis granularity.
func Timeline(w io.Writer, title string, bucketMS int64, series ...Series) error {
	if bucketMS <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBucket, bucketMS)
	}

	if len(series) == 0 {
		return fmt.Errorf("%w: no series given", ErrNothingToPlot)
	}

	minBucket, maxBucket, ok := bucketRange(bucketMS, series)
	if !ok {
		return fmt.Errorf("%w: every series is empty", ErrNothingToPlot)
	}

	bucketCount := safeconv.MustInt64ToInt(maxBucket - minBucket + 1)

	labels := make([]string, 0, bucketCount)
	for b := minBucket; b <= maxBucket; b++ {
		labels = append(labels, time.UnixMilli(b*bucketMS).UTC().Format(timeLabelFormat))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "entries"}),
	)
	bar.SetXAxis(labels)

	for _, s := range series {
		counts := make([]int, bucketCount)
		for _, entry := range s.Log {
			counts[entry.Timestamp/bucketMS-minBucket]++
		}

		data := make([]opts.BarData, len(counts))
		for i, count := range counts {
			data[i] = opts.BarData{Value: count}
		}

		bar.AddSeries(s.Name, data)
	}

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}

	return nil
}

// bucketRange finds the smallest and largest occupied bucket across all
// series. ok is false when every log is empty.
func bucketRange(bucketMS int64, series []Series) (minBucket, maxBucket int64, ok bool) {
	for _, s := range series {
		for _, entry := range s.Log {
			bucket := entry.Timestamp / bucketMS
			if !ok {
				minBucket, maxBucket, ok = bucket, bucket, true

				continue
			}

			if bucket < minBucket {
				minBucket = bucket
			}

			if bucket > maxBucket {
				maxBucket = bucket
			}
		}
	}

	return minBucket, maxBucket, ok
}
