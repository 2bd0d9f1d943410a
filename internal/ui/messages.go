package ui

import (
	"time"

	"github.com/linuxmatters/okng/internal/processor"
)

// CaptureStartMsg indicates the source has started producing samples
type CaptureStartMsg struct {
	Source string
}

// CaptureCompleteMsg carries the labeling run once capture and segmentation finish
type CaptureCompleteMsg struct {
	Result *processor.Result
	Err    error
}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time
