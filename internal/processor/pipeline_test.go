package processor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/linuxmatters/okng/internal/labels"
)

// TestRunWorkedExample checks the prev=0 fallback: the jump from silence is not
// flagged because a zero previous value has no relative change.
func TestRunWorkedExample(t *testing.T) {
	buf := []float32{0, 0, 1, 1, 1, 1}
	p := Params{SampleRate: 2, Duration: 3, ThresholdPercent: 50, Metric: MetricRMS}

	result, err := Run(buf, p)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(result.Values, []float64{0, 1, 1}) {
		t.Errorf("Values = %v, want [0 1 1]", result.Values)
	}
	if !reflect.DeepEqual(result.Auto, []labels.Label{ok, ok, ok}) {
		t.Errorf("Auto = %v, want [OK OK OK]", result.Auto)
	}
	if result.Len() != 3 || result.Missing != 0 {
		t.Errorf("Len() = %d, Missing = %d; want 3, 0", result.Len(), result.Missing)
	}
}

func TestRunDetectsBurst(t *testing.T) {
	opts := TestSignalOptions{DurationSecs: 6, ToneFreq: 440, ToneLevel: -20, NoiseLevel: -50}
	opts.Burst.Second = 3
	opts.Burst.Gain = 4
	buf := generateTestSignal(t, opts)

	p := Params{SampleRate: 8000, Duration: 6, ThresholdPercent: 20, Metric: MetricRMS}
	result, err := Run(buf, p)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The burst starts at 3 and ends at 4; both edges are sharp changes
	want := []labels.Label{ok, ok, ok, ng, ng, ok}
	if !reflect.DeepEqual(result.Auto, want) {
		t.Errorf("Auto = %v, want %v (values %v)", result.Auto, want, result.Values)
	}
}

func TestRunKurtosisSilence(t *testing.T) {
	// Silent seconds have undefined kurtosis and fall back to 0, so the step into
	// silence is flagged and the step out of it is not
	buf := make([]float32, 0, 8)
	buf = append(buf, 1, -1, 0, 0) // kurtosis 2
	buf = append(buf, 0, 0, 0, 0)  // undefined -> 0
	buf = append(buf, 1, -1, 0, 0) // prev 0 -> no change
	p := Params{SampleRate: 4, Duration: 3, ThresholdPercent: 50, Metric: MetricKurtosis}

	result, err := Run(buf, p)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(result.Auto, []labels.Label{ok, ng, ok}) {
		t.Errorf("Auto = %v, want [OK NG OK] (values %v)", result.Auto, result.Values)
	}
}

func TestRunShortBuffer(t *testing.T) {
	buf := []float32{1, 1, 1}
	result, err := Run(buf, Params{SampleRate: 2, Duration: 3, ThresholdPercent: 10})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", result.Len())
	}
	if result.Missing != 3 {
		t.Errorf("Missing = %d, want 3", result.Missing)
	}
	if len(result.Segments[2]) != 0 {
		t.Errorf("last segment has %d samples, want 0", len(result.Segments[2]))
	}
	if len(result.Auto) != len(result.Values) || len(result.Changes) != len(result.Values) {
		t.Error("per-segment slices differ in length")
	}
}

func TestRunRejectsUnsegmentable(t *testing.T) {
	if _, err := Run(nil, Params{SampleRate: 0, Duration: 1}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Run(fs=0) error = %v, want ErrInvalidParams", err)
	}
	if _, err := Run(nil, Params{SampleRate: 8000, Duration: 0}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Run(duration=0) error = %v, want ErrInvalidParams", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr bool
	}{
		{"defaults", func(p *Params) {}, false},
		{"min_rate", func(p *Params) { p.SampleRate = 8000 }, false},
		{"rate_too_low", func(p *Params) { p.SampleRate = 7999 }, true},
		{"rate_too_high", func(p *Params) { p.SampleRate = 96001 }, true},
		{"duration_zero", func(p *Params) { p.Duration = 0 }, true},
		{"duration_max", func(p *Params) { p.Duration = 300 }, false},
		{"duration_too_long", func(p *Params) { p.Duration = 301 }, true},
		{"threshold_zero", func(p *Params) { p.ThresholdPercent = 0 }, false},
		{"threshold_full", func(p *Params) { p.ThresholdPercent = 100 }, false},
		{"threshold_negative", func(p *Params) { p.ThresholdPercent = -1 }, true},
		{"threshold_over", func(p *Params) { p.ThresholdPercent = 101 }, true},
		{"unknown_metric", func(p *Params) { p.Metric = Metric(9) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}
