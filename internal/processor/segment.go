// Package processor turns a captured sample buffer into per-second segments,
// measures each one and assigns automatic OK/NG labels.
package processor

// SegmentCount returns the number of one-second segments for a requested
// duration in seconds. Non-positive durations yield no segments.
func SegmentCount(durationSecs int) int {
	if durationSecs < 0 {
		return 0
	}
	return durationSecs
}

// Segment splits samples into n consecutive windows of fs samples each.
// Segment i covers samples[i*fs : (i+1)*fs].
//
// A buffer shorter than n*fs (an early-terminated capture, or rounding in the
// capture layer) does not fail: the window that straddles the end is truncated
// and any windows wholly past the end are empty. Samples beyond n*fs are ignored.
//
// Each segment is a copy, so the caller may reuse or mutate samples afterwards.
func Segment(samples []float32, fs, n int) [][]float32 {
	if fs <= 0 || n <= 0 {
		return nil
	}

	segments := make([][]float32, n)
	for i := 0; i < n; i++ {
		start := min(i*fs, len(samples))
		end := min((i+1)*fs, len(samples))
		seg := make([]float32, end-start)
		copy(seg, samples[start:end])
		segments[i] = seg
	}
	return segments
}

// missingSamples reports how many samples a buffer lacks for n full segments.
func missingSamples(samples []float32, fs, n int) int {
	want := fs * n
	if len(samples) >= want {
		return 0
	}
	return want - len(samples)
}
