package processor

import (
	"testing"
)

func TestSegmentRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		fs   int
		n    int
	}{
		{"one_second", 4, 1},
		{"three_seconds", 2, 3},
		{"realistic", 8000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]float32, tt.fs*tt.n)
			for i := range buf {
				buf[i] = float32(i) * 0.001
			}

			segments := Segment(buf, tt.fs, tt.n)
			if len(segments) != tt.n {
				t.Fatalf("Segment() returned %d segments, want %d", len(segments), tt.n)
			}

			var joined []float32
			for i, seg := range segments {
				if len(seg) != tt.fs {
					t.Errorf("segment %d has %d samples, want %d", i, len(seg), tt.fs)
				}
				joined = append(joined, seg...)
			}
			if len(joined) != len(buf) {
				t.Fatalf("concatenation has %d samples, want %d", len(joined), len(buf))
			}
			for i := range buf {
				if joined[i] != buf[i] {
					t.Fatalf("sample %d = %v, want %v", i, joined[i], buf[i])
				}
			}
		})
	}
}

func TestSegmentShortBuffer(t *testing.T) {
	// 2.5 seconds of audio for a 4 second request at fs=4
	buf := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	segments := Segment(buf, 4, 4)
	if len(segments) != 4 {
		t.Fatalf("Segment() returned %d segments, want 4", len(segments))
	}

	wantLens := []int{4, 4, 2, 0}
	for i, want := range wantLens {
		if len(segments[i]) != want {
			t.Errorf("segment %d has %d samples, want %d", i, len(segments[i]), want)
		}
	}
	if segments[2][0] != 9 || segments[2][1] != 10 {
		t.Errorf("truncated segment = %v, want [9 10]", segments[2])
	}

	if got := missingSamples(buf, 4, 4); got != 6 {
		t.Errorf("missingSamples() = %d, want 6", got)
	}
}

func TestSegmentIgnoresSurplus(t *testing.T) {
	buf := []float32{1, 2, 3, 4, 5}
	segments := Segment(buf, 2, 2)
	if len(segments) != 2 || len(segments[1]) != 2 || segments[1][1] != 4 {
		t.Errorf("Segment() = %v, want [[1 2] [3 4]]", segments)
	}
	if got := missingSamples(buf, 2, 2); got != 0 {
		t.Errorf("missingSamples() = %d, want 0", got)
	}
}

func TestSegmentCopies(t *testing.T) {
	buf := []float32{1, 1, 1, 1}
	segments := Segment(buf, 2, 2)
	buf[0] = 99
	if segments[0][0] != 1 {
		t.Error("segment shares memory with the source buffer")
	}
}

func TestSegmentDegenerate(t *testing.T) {
	if got := Segment([]float32{1, 2}, 0, 2); got != nil {
		t.Errorf("Segment(fs=0) = %v, want nil", got)
	}
	if got := Segment([]float32{1, 2}, 2, 0); got != nil {
		t.Errorf("Segment(n=0) = %v, want nil", got)
	}
	if got := SegmentCount(-3); got != 0 {
		t.Errorf("SegmentCount(-3) = %d, want 0", got)
	}
}
