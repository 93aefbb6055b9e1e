package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/timefold/pkg/history"
	"github.com/Sumatoshi-tech/timefold/pkg/persist"
	"github.com/Sumatoshi-tech/timefold/pkg/safeconv"
)

// ErrUnknownInspectFormat is returned for an unsupported --format value.
var ErrUnknownInspectFormat = errors.New("unknown inspect format")

// InspectCommand holds the flags for the inspect command.
type InspectCommand struct {
	logPath string
	format  string
	limit   int
}

// entrySummary is the per-entry row of the inspect report.
type entrySummary struct {
	Timestamp     int64  `json:"timestamp"      yaml:"timestamp"`
	Time          string `json:"time"           yaml:"time"`
	EditorVersion string `json:"editor_version" yaml:"editor_version"`
	Added         int    `json:"added"          yaml:"added"`
	Removed       int    `json:"removed"        yaml:"removed"`
	Edited        int    `json:"edited"         yaml:"edited"`
	PatchBytes    int    `json:"patch_bytes"    yaml:"patch_bytes"`
}

// inspectReport is the full report rendered by inspect.
type inspectReport struct {
	Log        string         `json:"log"         yaml:"log"`
	Entries    int            `json:"entries"     yaml:"entries"`
	Span       string         `json:"span"        yaml:"span"`
	PatchBytes int            `json:"patch_bytes" yaml:"patch_bytes"`
	Rows       []entrySummary `json:"rows"        yaml:"rows"`
}

// NewInspectCommand creates and configures the inspect command.
func NewInspectCommand() *cobra.Command {
	ic := &InspectCommand{}

	cobraCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a history log",
		Long: `Inspect prints per-entry statistics of a history log: change counts
by kind, patch payload sizes and the covered time span.`,
		RunE: ic.run,
	}

	cobraCmd.Flags().StringVar(&ic.logPath, "log", "", "history log file (.json, .gob, .json.lz4, .gob.lz4)")
	cobraCmd.Flags().StringVar(&ic.format, "format", "table", "output format (table, yaml, json)")
	cobraCmd.Flags().IntVar(&ic.limit, "limit", 0, "show only the newest N entries (0 = all)")

	_ = cobraCmd.MarkFlagRequired("log")

	return cobraCmd
}

func (ic *InspectCommand) run(cmd *cobra.Command, _ []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	log, err := persist.LoadLog(ic.logPath)
	if err != nil {
		return err
	}

	logger.Info("inspecting history", "log", ic.logPath, "entries", len(log))

	report := buildReport(ic.logPath, log, ic.limit)

	return renderReport(os.Stdout, report, ic.format)
}

// buildReport summarizes the log into a renderable report.
func buildReport(path string, log history.Log, limit int) inspectReport {
	report := inspectReport{
		Log:     path,
		Entries: len(log),
		Rows:    make([]entrySummary, 0, len(log)),
	}

	for _, entry := range log {
		row := summarizeEntry(entry)
		report.PatchBytes += row.PatchBytes
		report.Rows = append(report.Rows, row)
	}

	if len(log) > 0 {
		oldest := time.UnixMilli(log[0].Timestamp)
		newest := time.UnixMilli(log[len(log)-1].Timestamp)
		report.Span = humanize.RelTime(oldest, newest, "", "")
	}

	if limit > 0 && len(report.Rows) > limit {
		report.Rows = report.Rows[len(report.Rows)-limit:]
	}

	return report
}

// summarizeEntry counts changes by kind and sums patch payload sizes.
func summarizeEntry(entry history.Entry) entrySummary {
	row := entrySummary{
		Timestamp:     entry.Timestamp,
		Time:          time.UnixMilli(entry.Timestamp).UTC().Format(time.RFC3339),
		EditorVersion: entry.EditorVersion,
	}

	for _, change := range entry.Changes {
		switch change.Kind {
		case history.ChangeAdded:
			row.Added++
		case history.ChangeRemoved:
			row.Removed++
			row.PatchBytes += len(change.Value)
		case history.ChangeEdited:
			row.Edited++
			row.PatchBytes += len(change.Patch)
		}
	}

	return row
}

// renderReport writes the report in the requested format.
func renderReport(w io.Writer, report inspectReport, format string) error {
	switch format {
	case "table":
		renderTable(w, report)

		return nil

	case "yaml":
		return yaml.NewEncoder(w).Encode(report)

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(report)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownInspectFormat, format)
	}
}

func renderTable(w io.Writer, report inspectReport) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Time", "Editor", "Added", "Removed", "Edited", "Patch Size"})

	for _, row := range report.Rows {
		tbl.AppendRow(table.Row{
			row.Time,
			row.EditorVersion,
			row.Added,
			row.Removed,
			row.Edited,
			humanize.Bytes(safeconv.MustIntToUint64(row.PatchBytes)),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "entries", report.Entries})
	tbl.Render()

	color.New(color.FgCyan).Fprintf(w, "%s of history, %s of patches\n",
		report.Span, humanize.Bytes(safeconv.MustIntToUint64(report.PatchBytes)))
}
