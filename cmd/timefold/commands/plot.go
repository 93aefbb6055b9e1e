package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/timefold/pkg/persist"
	"github.com/Sumatoshi-tech/timefold/pkg/plot"
)

// PlotCommand holds the flags for the plot command.
type PlotCommand struct {
	logPath     string
	comparePath string
	output      string
	bucket      time.Duration
	title       string
}

// NewPlotCommand creates and configures the plot command.
func NewPlotCommand() *cobra.Command {
	pc := &PlotCommand{}

	cobraCmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a history timeline as HTML",
		Long: `Plot renders entry counts per time bucket as an HTML bar chart.
With --compare, a second log is drawn alongside the first, which makes
the effect of compaction visible at a glance.`,
		RunE: pc.run,
	}

	cobraCmd.Flags().StringVar(&pc.logPath, "log", "", "history log file (.json, .gob, .json.lz4, .gob.lz4)")
	cobraCmd.Flags().StringVar(&pc.comparePath, "compare", "", "second log file to draw alongside")
	cobraCmd.Flags().StringVarP(&pc.output, "output", "o", "timeline.html", "output HTML file")
	cobraCmd.Flags().DurationVar(&pc.bucket, "bucket", time.Hour, "histogram bucket size")
	cobraCmd.Flags().StringVar(&pc.title, "title", "history timeline", "chart title")

	_ = cobraCmd.MarkFlagRequired("log")

	return cobraCmd
}

func (pc *PlotCommand) run(cmd *cobra.Command, _ []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	series := make([]plot.Series, 0, 2)

	log, err := persist.LoadLog(pc.logPath)
	if err != nil {
		return err
	}

	series = append(series, plot.Series{Name: pc.logPath, Log: log})

	if pc.comparePath != "" {
		compareLog, err := persist.LoadLog(pc.comparePath)
		if err != nil {
			return err
		}

		series = append(series, plot.Series{Name: pc.comparePath, Log: compareLog})
	}

	out, err := os.Create(pc.output)
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck // render errors surface below.

	err = plot.Timeline(out, pc.title, pc.bucket.Milliseconds(), series...)
	if err != nil {
		return err
	}

	logger.Info("timeline rendered", "output", pc.output, "series", len(series))

	return nil
}
