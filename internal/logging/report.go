package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linuxmatters/okng/internal/labels"
	"github.com/linuxmatters/okng/internal/processor"
)

// ReportData contains everything needed to write a labeling report
type ReportData struct {
	Source     string // where the samples came from
	OutputPath string // dataset file
	RunID      uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
	Result     *processor.Result
	Final      []labels.Label // nil when the auto labels were accepted unreviewed
	Reviewed   bool
	Padded     int // samples zero-padded at encode
}

// ReportPath derives the report filename from the dataset path:
// dataset.okng → dataset.log
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

// GenerateReport writes the labeling report next to the dataset and returns its path.
func GenerateReport(data ReportData) (string, error) {
	if data.Result == nil {
		return "", fmt.Errorf("no labeling result to report")
	}

	logPath := ReportPath(data.OutputPath)
	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, data); err != nil {
		return "", err
	}
	return logPath, f.Sync()
}

// WriteReport renders the report body to w.
func WriteReport(w io.Writer, data ReportData) error {
	res := data.Result
	final := data.Final
	if final == nil {
		final = res.Auto
	}
	diff, err := labels.Compare(res.Auto, final)
	if err != nil {
		return fmt.Errorf("failed to compare labels: %w", err)
	}

	fmt.Fprintln(w, "okng Labeling Report")
	fmt.Fprintln(w, "====================")
	fmt.Fprintf(w, "Run:     %s\n", data.RunID)
	fmt.Fprintf(w, "Source:  %s\n", data.Source)
	fmt.Fprintf(w, "Dataset: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(w, "Labeled: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	writeSection(w, "Parameters")
	fmt.Fprintf(w, "Sample rate: %d Hz\n", res.Params.SampleRate)
	fmt.Fprintf(w, "Duration:    %d s\n", res.Params.Duration)
	fmt.Fprintf(w, "Metric:      %s\n", res.Params.Metric)
	fmt.Fprintf(w, "Threshold:   %d%%\n", res.Params.ThresholdPercent)
	fmt.Fprintf(w, "Elapsed:     %s\n", formatDuration(data.EndTime.Sub(data.StartTime)))
	fmt.Fprintln(w)

	if res.Missing > 0 || data.Padded > 0 {
		writeSection(w, "Warnings")
		if res.Missing > 0 {
			fmt.Fprintf(w, "Capture was %d samples short; trailing segments are truncated\n", res.Missing)
		}
		if data.Padded > 0 {
			fmt.Fprintf(w, "%d samples zero-padded so every waveform row has the same length\n", data.Padded)
		}
		fmt.Fprintln(w)
	}

	writeSection(w, "Segments")
	fmt.Fprint(w, SegmentTable(res, final).String())
	fmt.Fprintln(w)

	writeSection(w, "Summary")
	fmt.Fprintf(w, "Auto:  %d OK, %d NG\n", labels.Count(res.Auto, labels.OK), labels.Count(res.Auto, labels.NG))
	fmt.Fprintf(w, "Final: %d OK, %d NG\n", labels.Count(final, labels.OK), labels.Count(final, labels.NG))
	switch {
	case !data.Reviewed:
		fmt.Fprintln(w, "Review: skipped")
	case diff.Count == 0:
		fmt.Fprintln(w, "Review: no changes")
	default:
		fmt.Fprintf(w, "Review: %d changed at %v\n", diff.Count, diff.Positions)
	}
	return nil
}

func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// formatDuration formats a duration in human-readable form
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
