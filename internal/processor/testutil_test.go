package processor

import (
	"math"
	"testing"
)

// TestSignalOptions configures a synthetic mono buffer
type TestSignalOptions struct {
	DurationSecs int     // Total duration in seconds
	SampleRate   int     // Sample rate (default: 8000)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone level in dBFS (e.g., -23.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise)
	Burst        struct {
		Second int     // Segment index that receives the burst
		Gain   float64 // Linear gain applied to that segment (0 = no burst)
	}
}

// generateTestSignal creates a synthetic buffer: sine tone plus deterministic
// noise, optionally with one second scaled by a burst gain.
func generateTestSignal(t *testing.T, opts TestSignalOptions) []float32 {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 8000
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 5
	}

	total := opts.DurationSecs * opts.SampleRate
	samples := make([]float32, total)

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	// LCG from Numerical Recipes, deterministic across runs
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	for i := range samples {
		var s float64
		if toneAmp > 0 {
			tt := float64(i) / float64(opts.SampleRate)
			s += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*tt)
		}
		if noiseAmp > 0 {
			s += noiseAmp * nextRandom()
		}
		if opts.Burst.Gain > 0 && i/opts.SampleRate == opts.Burst.Second {
			s *= opts.Burst.Gain
		}
		samples[i] = float32(math.Max(-1, math.Min(1, s)))
	}
	return samples
}

// approxEqual compares floats with an absolute tolerance
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
