// Package audio provides the capture side of okng: sources that block until a
// complete mono sample buffer is available.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format tags accepted by WAVSource
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var (
	// ErrNotMono is returned for multi-channel input.
	ErrNotMono = errors.New("expected mono audio")
	// ErrUnsupportedFormat is returned for WAV encodings the reader cannot scale.
	ErrUnsupportedFormat = errors.New("unsupported WAV encoding")
	// ErrSampleRateMismatch is returned when a file does not match the requested rate.
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
)

// Buffer is one complete capture: mono samples in [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int // Hz
	Duration   int // nominal seconds; len(Samples) may fall short of Duration*SampleRate
	Source     string
}

// Source produces a Buffer. Capture blocks until the whole buffer is available;
// cancellation through ctx is the source's responsibility.
type Source interface {
	Capture(ctx context.Context, sampleRate, durationSecs int) (*Buffer, error)
}

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Format     string
}

// WAVSource reads a recording from a PCM WAV file.
type WAVSource struct {
	Path string
}

// ProbeWAV reads the header of a WAV file without decoding samples.
func ProbeWAV(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	meta := &Metadata{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Format:     formatName(dec.WavAudioFormat),
	}
	if d, err := dec.Duration(); err == nil {
		meta.Duration = d.Seconds()
	}
	return meta, nil
}

func formatName(tag uint16) string {
	switch tag {
	case wavFormatPCM:
		return "PCM"
	case wavFormatExtensible:
		return "PCM (extensible)"
	case 3:
		return "IEEE float"
	default:
		return fmt.Sprintf("format 0x%04x", tag)
	}
}

// Capture decodes the whole file. The file's own sample rate is used; a non-zero
// sampleRate that disagrees with it is an error. A positive durationSecs keeps
// only that many seconds (a shorter file yields a short buffer); zero keeps the
// whole file, rounding a partial final second up.
func (s WAVSource) Capture(ctx context.Context, sampleRate, durationSecs int) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", s.Path)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnsupportedFormat, formatName(dec.WavAudioFormat), s.Path)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("%w, got %d channels in %s", ErrNotMono, dec.NumChans, s.Path)
	}
	fileRate := int(dec.SampleRate)
	if sampleRate != 0 && sampleRate != fileRate {
		return nil, fmt.Errorf("%w: requested %d Hz, %s is %d Hz", ErrSampleRateMismatch, sampleRate, s.Path, fileRate)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	samples, err := normalise(pcm, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	duration := durationSecs
	if duration <= 0 {
		duration = (len(samples) + fileRate - 1) / fileRate
	} else if want := duration * fileRate; len(samples) > want {
		samples = samples[:want]
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: fileRate,
		Duration:   duration,
		Source:     s.Path,
	}, nil
}

// normalise scales integer PCM to [-1, 1]. 8-bit WAV is unsigned.
func normalise(pcm *goaudio.IntBuffer, bitDepth int) ([]float32, error) {
	out := make([]float32, len(pcm.Data))
	switch bitDepth {
	case 8:
		for i, v := range pcm.Data {
			out[i] = float32(v-128) / 128
		}
	case 16, 24, 32:
		scale := float64(int64(1) << (bitDepth - 1))
		for i, v := range pcm.Data {
			out[i] = float32(float64(v) / scale)
		}
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}
	return out, nil
}
