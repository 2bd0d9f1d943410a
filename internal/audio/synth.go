package audio

import (
	"context"
	"fmt"
	"math"
)

// Synth generates a test recording: a steady hum at the local mains frequency
// plus low-level noise. Disturbances scale chosen seconds so the labeler has
// something to find. Useful for demos and for exercising the pipeline without a
// recording.
type Synth struct {
	HumHz        float64         // 0 = local mains frequency
	HumLevel     float64         // dBFS, default -20
	NoiseLevel   float64         // dBFS; 0 disables noise
	Disturbances map[int]float64 // second -> linear gain
	Seed         uint32
}

// Capture renders durationSecs seconds at sampleRate. ctx is checked between
// seconds.
func (s Synth) Capture(ctx context.Context, sampleRate, durationSecs int) (*Buffer, error) {
	if sampleRate <= 0 || durationSecs <= 0 {
		return nil, fmt.Errorf("synth needs a positive sample rate and duration, got %d Hz / %d s", sampleRate, durationSecs)
	}

	humHz := s.HumHz
	if humHz == 0 {
		humHz = float64(MainsFrequency())
	}
	humLevel := s.HumLevel
	if humLevel == 0 {
		humLevel = -20
	}
	humAmp := math.Pow(10, humLevel/20)
	noiseAmp := 0.0
	if s.NoiseLevel < 0 {
		noiseAmp = math.Pow(10, s.NoiseLevel/20)
	}

	// LCG from Numerical Recipes, deterministic for a given seed
	state := s.Seed
	if state == 0 {
		state = 12345
	}
	next := func() float64 {
		state = state*1664525 + 1013904223
		return (float64(state)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	samples := make([]float32, sampleRate*durationSecs)
	for sec := 0; sec < durationSecs; sec++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gain := 1.0
		if g, ok := s.Disturbances[sec]; ok {
			gain = g
		}
		for j := 0; j < sampleRate; j++ {
			i := sec*sampleRate + j
			t := float64(i) / float64(sampleRate)
			v := humAmp*math.Sin(2*math.Pi*humHz*t) + noiseAmp*next()
			v *= gain
			samples[i] = float32(math.Max(-1, math.Min(1, v)))
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Duration:   durationSecs,
		Source:     fmt.Sprintf("synth:%.0fHz", humHz),
	}, nil
}
