// Package ui provides the Bubbletea review interface for okng: a spinner while
// the recording is captured, then a segment list where the reviewer overrides
// automatic labels.
package ui

import (
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/okng/internal/labels"
	"github.com/linuxmatters/okng/internal/processor"
	"go.uber.org/zap"
)

// Spinner frames for the capture phase
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// State is the phase the review UI is in
type State int

const (
	StateCapturing State = iota
	StateReviewing
	StateAccepted
	StateAborted
	StateError
)

// Model is the Bubbletea model for capture and review.
//
// Edited holds the reviewer's labels. Final and Diff are recomputed through
// labels.Merge and labels.Compare after every edit, so they always describe what
// would be saved.
type Model struct {
	Title  string
	Metric string
	State  State

	Values  []float64
	Changes []float64
	Auto    []labels.Label
	Edited  []labels.Label
	Final   []labels.Label
	Diff    labels.Diff

	Result *processor.Result // set when the model captured the run itself
	Error  error

	Cursor int
	Offset int // first visible row

	StartTime    time.Time
	spinnerIndex int

	// Terminal dimensions
	Width  int
	Height int

	log *zap.SugaredLogger
}

// NewCaptureModel creates a model that waits for a CaptureCompleteMsg before
// entering review.
func NewCaptureModel(title string, log *zap.SugaredLogger) Model {
	return Model{
		Title:     title,
		State:     StateCapturing,
		StartTime: time.Now(),
		log:       orNop(log),
	}
}

// NewReviewModel creates a model that starts in review. initial seeds the edited
// labels (nil starts from auto) and must match auto in length.
func NewReviewModel(title, metric string, values []float64, auto, initial []labels.Label, log *zap.SugaredLogger) (Model, error) {
	if len(values) != len(auto) {
		return Model{}, fmt.Errorf("%w: %d values, %d auto labels", labels.ErrLengthMismatch, len(values), len(auto))
	}
	m := Model{
		Title:     title,
		Metric:    metric,
		State:     StateReviewing,
		StartTime: time.Now(),
		log:       orNop(log),
	}
	if err := m.load(values, auto, initial); err != nil {
		return Model{}, err
	}
	return m, nil
}

func orNop(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}

func (m *Model) load(values []float64, auto, initial []labels.Label) error {
	edited, err := labels.Merge(auto, initial)
	if err != nil {
		return err
	}
	m.Values = values
	m.Changes = processor.Changes(values)
	m.Auto = auto
	m.Edited = edited
	return m.remerge()
}

// remerge recomputes Final and Diff from the current edits.
func (m *Model) remerge() error {
	final, err := labels.Merge(m.Auto, m.Edited)
	if err != nil {
		return err
	}
	diff, err := labels.Compare(m.Auto, final)
	if err != nil {
		return err
	}
	m.Final = final
	m.Diff = diff
	return nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.State == StateCapturing {
		return tickCmd()
	}
	return nil
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.scroll()

	case tickMsg:
		if m.State == StateCapturing {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}

	case CaptureStartMsg:
		m.Title = msg.Source
		m.StartTime = time.Now()

	case CaptureCompleteMsg:
		if msg.Err != nil {
			m.log.Errorw("capture failed", "error", msg.Err)
			m.State = StateError
			m.Error = msg.Err
			return m, tea.Quit
		}
		res := msg.Result
		if err := m.load(res.Values, res.Auto, nil); err != nil {
			m.State = StateError
			m.Error = err
			return m, tea.Quit
		}
		m.Result = res
		m.Metric = res.Params.Metric.String()
		m.State = StateReviewing
		m.log.Debugw("review started", "segments", len(res.Auto), "ng", labels.Count(res.Auto, labels.NG))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.State = StateAborted
		m.log.Debug("review aborted")
		return m, tea.Quit
	}
	if m.State != StateReviewing || len(m.Edited) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.Cursor = max(m.Cursor-1, 0)
	case "down", "j":
		m.Cursor = min(m.Cursor+1, len(m.Edited)-1)
	case "home", "g":
		m.Cursor = 0
	case "end", "G":
		m.Cursor = len(m.Edited) - 1
	case "x", " ", "space":
		m.Edited = slices.Clone(m.Edited)
		m.Edited[m.Cursor] = m.Edited[m.Cursor].Toggle()
		m.edited("toggled")
	case "a":
		m.Edited = slices.Clone(m.Edited)
		m.Edited[m.Cursor] = m.Auto[m.Cursor]
		m.edited("reset")
	case "r":
		m.Edited = slices.Clone(m.Auto)
		m.edited("reset all")
	case "enter", "s":
		m.State = StateAccepted
		m.log.Infow("review accepted", "changed", m.Diff.Count, "positions", m.Diff.Positions)
		return m, tea.Quit
	}
	m.scroll()
	return m, nil
}

// edited re-runs the merge after a change to Edited. Edits replace the slice
// rather than writing through it, so earlier model values keep their labels.
func (m *Model) edited(action string) {
	if err := m.remerge(); err != nil {
		m.State = StateError
		m.Error = err
		return
	}
	m.log.Debugw("label "+action, "segment", m.Cursor, "label", m.Edited[m.Cursor], "changed", m.Diff.Count)
}

// visibleRows is how many segment rows fit the terminal.
func (m Model) visibleRows() int {
	if m.Height <= 0 {
		return 20
	}
	return max(m.Height-8, 3)
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	rows := m.visibleRows()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+rows {
		m.Offset = m.Cursor - rows + 1
	}
}

// Accepted reports whether the reviewer saved their labels.
func (m Model) Accepted() bool {
	return m.State == StateAccepted
}

// View renders the UI
func (m Model) View() string {
	switch m.State {
	case StateCapturing:
		return renderCapture(m)
	case StateReviewing:
		return renderReview(m)
	case StateError:
		return renderError(m)
	default:
		return ""
	}
}
