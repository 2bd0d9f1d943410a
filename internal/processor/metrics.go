package processor

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric selects the per-segment feature used for labeling. One metric is
// used for the whole run.
type Metric int

const (
	MetricRMS Metric = iota
	MetricKurtosis
	MetricCrestFactor
)

// String returns the name stored in datasets.
func (m Metric) String() string {
	switch m {
	case MetricRMS:
		return "RMS"
	case MetricKurtosis:
		return "Kurtosis"
	case MetricCrestFactor:
		return "CrestFactor"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric accepts the persisted names as well as the short CLI forms.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rms":
		return MetricRMS, nil
	case "kurtosis", "kurt":
		return MetricKurtosis, nil
	case "crest", "crest_factor", "crest-factor", "crestfactor":
		return MetricCrestFactor, nil
	}
	return 0, fmt.Errorf("unknown metric %q (want rms, kurtosis or crest)", s)
}

// widen converts capture samples to float64 for gonum.
func widen(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

// RMS is the square root of the mean of squared samples.
// Empty and all-zero segments yield 0.
func RMS(segment []float32) float64 {
	if len(segment) == 0 {
		return 0
	}
	x := widen(segment)
	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

// Kurtosis returns the non-excess fourth standardized moment m4/m2² using
// population moments, so a Gaussian signal measures about 3.
//
// The moment ratio is undefined for segments with fewer than two samples or with
// zero variance (silence, DC). Kurtosis returns NaN for those; Compute replaces
// that NaN with 0 before it can reach the labeler.
func Kurtosis(segment []float32) float64 {
	if len(segment) < 2 {
		return math.NaN()
	}
	x := widen(segment)
	if floats.Min(x) == floats.Max(x) {
		return math.NaN()
	}

	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return math.NaN()
	}
	m4 := stat.Moment(4, x, nil)
	return m4 / (m2 * m2)
}

// CrestFactor is the peak absolute amplitude divided by RMS, or 0 when RMS is 0.
func CrestFactor(segment []float32) float64 {
	rms := RMS(segment)
	if rms == 0 {
		return 0
	}
	peak := floats.Norm(widen(segment), math.Inf(1))
	return peak / rms
}

// Compute measures one segment with the selected metric. It never returns NaN:
// an undefined kurtosis falls back to 0, matching the crest factor's fallback for
// silent segments.
func Compute(m Metric, segment []float32) float64 {
	switch m {
	case MetricKurtosis:
		k := Kurtosis(segment)
		if math.IsNaN(k) {
			return 0
		}
		return k
	case MetricCrestFactor:
		return CrestFactor(segment)
	default:
		return RMS(segment)
	}
}

// Features computes one value per segment, in segment order.
func Features(m Metric, segments [][]float32) []float64 {
	values := make([]float64, len(segments))
	for i, seg := range segments {
		values[i] = Compute(m, seg)
	}
	return values
}
