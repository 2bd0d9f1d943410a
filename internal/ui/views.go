package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/okng/internal/labels"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	ngStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
	editedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// renderHeader renders the application header
func renderHeader(m Model, subtitle string) string {
	title := titleStyle.Render("okng")
	if m.Title != "" {
		title += " " + m.Title
	}
	return title + "\n" + mutedStyle.Render(subtitle)
}

// renderCapture renders the spinner shown while samples are collected
func renderCapture(m Model) string {
	var b strings.Builder
	b.WriteString(renderHeader(m, "Capturing"))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(spinnerFrames[m.spinnerIndex]))
	b.WriteString(fmt.Sprintf(" Capturing and labeling... [%s]\n", formatElapsed(time.Since(m.StartTime))))
	return b.String()
}

// renderReview renders the segment list with the cursor and edit markers
func renderReview(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m, fmt.Sprintf("Review %d segment(s), %s", len(m.Edited), m.Metric)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.visibleRows(), len(m.Edited))
	for i := m.Offset; i < end; i++ {
		b.WriteString(renderRow(m, i))
		b.WriteString("\n")
	}
	if end < len(m.Edited) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  ... %d more", len(m.Edited)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatus(m))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("↑/↓ move · x toggle · a reset · r reset all · enter save · q quit"))
	return b.String()
}

// renderRow renders one segment: cursor, index, value, change, auto and final label
func renderRow(m Model, i int) string {
	cursor := "  "
	if i == m.Cursor {
		cursor = cursorStyle.Render("▶ ")
	}

	change := "     -"
	if i > 0 {
		change = fmt.Sprintf("%6s", formatChange(m.Changes[i]))
	}

	marker := " "
	if m.Final[i] != m.Auto[i] {
		marker = editedStyle.Render("*")
	}

	return fmt.Sprintf("%s%4d  %10.4f  %s  %s → %s %s",
		cursor, i, m.Values[i], change,
		renderLabel(m.Auto[i]), renderLabel(m.Final[i]), marker)
}

func renderLabel(l labels.Label) string {
	if l == labels.NG {
		return ngStyle.Render(l.String())
	}
	return okStyle.Render(l.String())
}

func formatChange(c float64) string {
	if math.IsInf(c, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.0f%%", c*100)
}

// renderStatus summarises the labels that would be saved
func renderStatus(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1)

	content := fmt.Sprintf("%d NG of %d · %d edited",
		labels.Count(m.Final, labels.NG), len(m.Final), m.Diff.Count)
	return box.Render(content)
}

// renderError renders a failed capture
func renderError(m Model) string {
	return fmt.Sprintf("%s %v\n", ngStyle.Render("✗"), m.Error)
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
