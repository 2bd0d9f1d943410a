// This file contains the aligned table used for the per-segment listing on the
// console and in reports.

package logging

import (
	"fmt"
	"math"
	"strings"

	"github.com/linuxmatters/okng/internal/labels"
	"github.com/linuxmatters/okng/internal/processor"
)

// MetricRow represents a single row in a table.
// Values are pre-formatted strings so columns can mix numbers and labels.
type MetricRow struct {
	Label          string   // Row label, e.g. "Segment 3"
	Values         []string // One value per column
	Unit           string   // Unit suffix, "" for unitless
	Interpretation string   // Optional note (only shown if non-empty)
}

// MetricTable formats aligned columns.
// Handles variable column widths, missing values, and an optional note column.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// String renders the table with aligned columns.
// - Labels are left-aligned
// - Values are right-aligned within their column
// - Units are appended after the last value column
// - The note column is only shown if any row has one
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	labelWidth := 0
	unitWidth := 0
	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
		}
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		for i, val := range row.Values {
			if i < len(valueWidths) {
				valueWidths[i] = max(valueWidths[i], len(val))
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Note")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := range t.Headers {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}
		if unitWidth > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitWidth, row.Unit))
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// AddRow adds a row with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// MissingValue is the placeholder for unavailable values
const MissingValue = "-"

// formatMetric formats a numeric value with the given precision.
// Very small non-zero values use scientific notation; NaN/Inf become MissingValue.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatChange renders a relative change as a percentage. A change against an
// unusable reference is +Inf and shown as "inf".
func formatChange(change float64) string {
	if math.IsInf(change, 1) {
		return "inf"
	}
	if math.IsNaN(change) {
		return MissingValue
	}
	return fmt.Sprintf("%.1f%%", change*100)
}

// SegmentTable lists every segment with its metric value, change from the
// previous segment, and auto and final labels. final may be nil, in which case
// the auto labels stand. Rows the reviewer changed are marked "edited".
func SegmentTable(res *processor.Result, final []labels.Label) *MetricTable {
	t := &MetricTable{
		Headers: []string{res.Params.Metric.String(), "Change", "Auto", "Final"},
		Rows:    make([]MetricRow, 0, res.Len()),
	}
	if final == nil {
		final = res.Auto
	}

	for i := 0; i < res.Len(); i++ {
		change := MissingValue
		if i > 0 {
			change = formatChange(res.Changes[i])
		}
		fin := MissingValue
		note := ""
		if i < len(final) {
			fin = final[i].String()
			if final[i] != res.Auto[i] {
				note = "edited"
			}
		}
		t.AddRow(fmt.Sprintf("Segment %d", i), []string{
			formatMetric(res.Values[i], 4),
			change,
			res.Auto[i].String(),
			fin,
		}, "", note)
	}
	return t
}
