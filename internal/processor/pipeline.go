package processor

import (
	"errors"
	"fmt"

	"github.com/linuxmatters/okng/internal/labels"
)

// Parameter bounds accepted at the CLI boundary.
const (
	MinSampleRate = 8000
	MaxSampleRate = 96000
	MinDuration   = 1
	MaxDuration   = 300
	MinThreshold  = 0
	MaxThreshold  = 100
)

// ErrInvalidParams wraps every parameter validation failure.
var ErrInvalidParams = errors.New("invalid parameters")

// Params holds the scalar inputs for one labeling run
type Params struct {
	SampleRate       int    // Hz
	Duration         int    // seconds; one segment per second
	ThresholdPercent int    // relative change (0-100) at which a segment becomes NG
	Metric           Metric // feature measured per segment
}

// DefaultParams returns the defaults used when no flag or config value is given.
func DefaultParams() Params {
	return Params{
		SampleRate:       44100,
		Duration:         10,
		ThresholdPercent: 20,
		Metric:           MetricRMS,
	}
}

// Validate checks the documented parameter ranges. Run itself only needs a
// positive sample rate and duration; range checking belongs to whoever collects
// the parameters.
func (p Params) Validate() error {
	if p.SampleRate < MinSampleRate || p.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %d Hz outside %d-%d", ErrInvalidParams, p.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if p.Duration < MinDuration || p.Duration > MaxDuration {
		return fmt.Errorf("%w: duration %d s outside %d-%d", ErrInvalidParams, p.Duration, MinDuration, MaxDuration)
	}
	if p.ThresholdPercent < MinThreshold || p.ThresholdPercent > MaxThreshold {
		return fmt.Errorf("%w: threshold %d%% outside %d-%d", ErrInvalidParams, p.ThresholdPercent, MinThreshold, MaxThreshold)
	}
	switch p.Metric {
	case MetricRMS, MetricKurtosis, MetricCrestFactor:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidParams, p.Metric)
	}
	return nil
}

// ThresholdRatio returns the threshold as a ratio in [0, 1].
func (p Params) ThresholdRatio() float64 {
	return ThresholdRatio(p.ThresholdPercent)
}

// Result holds everything one labeling run produces. Nothing in it is shared
// with the input buffer.
type Result struct {
	Params   Params
	Segments [][]float32    // one row per second
	Values   []float64      // metric value per segment
	Changes  []float64      // relative change from the previous segment (0 for the first)
	Auto     []labels.Label // automatic labels
	Missing  int            // samples the buffer lacked for a full capture
}

// Len returns the number of segments in the run.
func (r *Result) Len() int {
	return len(r.Segments)
}

// Run segments samples, measures every segment and assigns automatic labels.
// Short buffers are truncated, see Segment.
func Run(samples []float32, p Params) (*Result, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParams, p.SampleRate)
	}
	n := SegmentCount(p.Duration)
	if n == 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidParams, p.Duration)
	}

	segments := Segment(samples, p.SampleRate, n)
	values := Features(p.Metric, segments)

	return &Result{
		Params:   p,
		Segments: segments,
		Values:   values,
		Changes:  Changes(values),
		Auto:     AutoLabel(values, p.ThresholdRatio()),
		Missing:  missingSamples(samples, p.SampleRate, n),
	}, nil
}
