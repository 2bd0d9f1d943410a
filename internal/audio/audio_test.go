package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes 16-bit PCM samples to a temporary WAV file.
func writeTestWAV(t *testing.T, samples []int, sampleRate, channels int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create WAV file: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		t.Fatalf("failed to finish WAV file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close WAV file: %v", err)
	}
	return path
}

func TestWAVSourceCapture(t *testing.T) {
	const fs = 8000
	samples := make([]int, 3*fs)
	for i := range samples {
		samples[i] = 16384 // half scale
	}
	path := writeTestWAV(t, samples, fs, 1)

	buf, err := WAVSource{Path: path}.Capture(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if buf.SampleRate != fs {
		t.Errorf("SampleRate = %d, want %d", buf.SampleRate, fs)
	}
	if buf.Duration != 3 {
		t.Errorf("Duration = %d, want 3", buf.Duration)
	}
	if len(buf.Samples) != 3*fs {
		t.Fatalf("len(Samples) = %d, want %d", len(buf.Samples), 3*fs)
	}
	if buf.Samples[0] != 0.5 {
		t.Errorf("Samples[0] = %v, want 0.5", buf.Samples[0])
	}
}

func TestWAVSourceDuration(t *testing.T) {
	const fs = 8000
	path := writeTestWAV(t, make([]int, fs*5/2), fs, 1) // 2.5 s

	tests := []struct {
		name         string
		durationSecs int
		wantDuration int
		wantSamples  int
	}{
		{"whole_file_rounds_up", 0, 3, fs * 5 / 2},
		{"trimmed", 1, 1, fs},
		{"longer_than_file", 4, 4, fs * 5 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := WAVSource{Path: path}.Capture(context.Background(), fs, tt.durationSecs)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if buf.Duration != tt.wantDuration || len(buf.Samples) != tt.wantSamples {
				t.Errorf("Duration, samples = %d, %d; want %d, %d",
					buf.Duration, len(buf.Samples), tt.wantDuration, tt.wantSamples)
			}
		})
	}
}

func TestWAVSourceErrors(t *testing.T) {
	stereo := writeTestWAV(t, make([]int, 200), 8000, 2)
	if _, err := (WAVSource{Path: stereo}).Capture(context.Background(), 0, 0); !errors.Is(err, ErrNotMono) {
		t.Errorf("stereo Capture() error = %v, want ErrNotMono", err)
	}

	mono := writeTestWAV(t, make([]int, 200), 8000, 1)
	if _, err := (WAVSource{Path: mono}).Capture(context.Background(), 44100, 0); !errors.Is(err, ErrSampleRateMismatch) {
		t.Errorf("Capture() error = %v, want ErrSampleRateMismatch", err)
	}

	if _, err := (WAVSource{Path: filepath.Join(t.TempDir(), "missing.wav")}).Capture(context.Background(), 0, 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file Capture() error = %v, want os.ErrNotExist", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (WAVSource{Path: mono}).Capture(ctx, 0, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Capture() error = %v, want context.Canceled", err)
	}
}

func TestProbeWAV(t *testing.T) {
	path := writeTestWAV(t, make([]int, 16000), 8000, 1)
	meta, err := ProbeWAV(path)
	if err != nil {
		t.Fatalf("ProbeWAV() error = %v", err)
	}
	if meta.SampleRate != 8000 || meta.Channels != 1 || meta.BitDepth != 16 {
		t.Errorf("ProbeWAV() = %+v", meta)
	}
	if math.Abs(meta.Duration-2) > 0.01 {
		t.Errorf("Duration = %v, want 2", meta.Duration)
	}
}

func TestSynthCapture(t *testing.T) {
	s := Synth{HumHz: 50, Disturbances: map[int]float64{2: 4}}
	buf, err := s.Capture(context.Background(), 8000, 4)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if len(buf.Samples) != 4*8000 || buf.Duration != 4 || buf.SampleRate != 8000 {
		t.Fatalf("Capture() = %d samples, %d s, %d Hz", len(buf.Samples), buf.Duration, buf.SampleRate)
	}

	rms := func(x []float32) float64 {
		var sum float64
		for _, v := range x {
			sum += float64(v) * float64(v)
		}
		return math.Sqrt(sum / float64(len(x)))
	}
	quiet := rms(buf.Samples[:8000])
	loud := rms(buf.Samples[2*8000 : 3*8000])
	if ratio := loud / quiet; math.Abs(ratio-4) > 0.01 {
		t.Errorf("disturbed second is %.3fx louder, want 4x", ratio)
	}

	again, _ := s.Capture(context.Background(), 8000, 4)
	for i := range buf.Samples {
		if buf.Samples[i] != again.Samples[i] {
			t.Fatal("synth output is not deterministic")
		}
	}

	if _, err := s.Capture(context.Background(), 0, 4); err == nil {
		t.Error("Capture() accepted a zero sample rate")
	}
}

func TestMainsFrequencyFor(t *testing.T) {
	tests := []struct {
		zone string
		want int
	}{
		{"Europe/London", 50},
		{"Australia/Sydney", 50},
		{"Asia/Tokyo", 50},
		{"America/New_York", 60},
		{"America/Sao_Paulo", 60},
		{"Asia/Seoul", 60},
		{"UTC", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			if got := MainsFrequencyFor(tt.zone); got != tt.want {
				t.Errorf("MainsFrequencyFor(%q) = %d, want %d", tt.zone, got, tt.want)
			}
		})
	}

	if f := MainsFrequency(); f != 50 && f != 60 {
		t.Errorf("MainsFrequency() = %d, want 50 or 60", f)
	}
}
