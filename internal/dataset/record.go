package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linuxmatters/okng/internal/labels"
)

// DefaultPath is where datasets are written when no path is given.
const DefaultPath = "dataset.okng"

// Attribute names stored alongside the arrays
const (
	AttrRunID   = "run_id"
	AttrCreated = "created"
)

// ErrInvalidRecord is returned when a record breaks the dataset invariants.
var ErrInvalidRecord = errors.New("invalid dataset record")

// Record is one persisted labeling run.
type Record struct {
	Waveforms  [][]float32    // one row per segment
	Labels     []labels.Label // final labels
	AutoLabels []labels.Label // labels before review; optional
	SampleRate int
	Metric     string

	RunID   uuid.UUID // assigned by Encode when zero
	Created time.Time // set by Encode when zero
}

// Validate checks that every per-segment array has one entry per waveform row.
func (r *Record) Validate() error {
	if len(r.Labels) != len(r.Waveforms) {
		return fmt.Errorf("%w: %d waveforms but %d labels", ErrInvalidRecord, len(r.Waveforms), len(r.Labels))
	}
	if r.AutoLabels != nil && len(r.AutoLabels) != len(r.Labels) {
		return fmt.Errorf("%w: %d labels but %d auto labels", ErrInvalidRecord, len(r.Labels), len(r.AutoLabels))
	}
	if r.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidRecord, r.SampleRate)
	}
	return nil
}

// EncodeInfo describes what Encode had to do to fit the record into the container.
type EncodeInfo struct {
	RowLength    int // samples per waveform row
	PaddedRows   int // rows shorter than RowLength
	PaddedValues int // zero samples appended in total
}

// Encode converts a record to a container. Waveform rows shorter than the
// longest row (the truncated tail of a short capture) are zero-padded so the
// waveforms form a rectangular array; EncodeInfo reports how much was added.
// Sample values are stored as float32, the capture sample type, without
// conversion.
func Encode(r *Record) (*Container, EncodeInfo, error) {
	var info EncodeInfo
	if err := r.Validate(); err != nil {
		return nil, info, err
	}

	for _, row := range r.Waveforms {
		info.RowLength = max(info.RowLength, len(row))
	}

	flat := make([]float32, 0, len(r.Waveforms)*info.RowLength)
	for _, row := range r.Waveforms {
		flat = append(flat, row...)
		if pad := info.RowLength - len(row); pad > 0 {
			flat = append(flat, make([]float32, pad)...)
			info.PaddedRows++
			info.PaddedValues += pad
		}
	}

	c := NewContainer()
	c.Arrays[KeyWaveforms] = &Array{
		DType: Float32,
		Shape: []int{len(r.Waveforms), info.RowLength},
		F32:   flat,
	}
	c.Arrays[KeyLabels] = stringVector(labels.Strings(r.Labels))
	c.Arrays[KeyFS] = scalarInt(int64(r.SampleRate))
	c.Arrays[KeyMetric] = scalarString(r.Metric)
	if r.AutoLabels != nil {
		c.Arrays[KeyAutoLabels] = stringVector(labels.Strings(r.AutoLabels))
	}

	runID := r.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	created := r.Created
	if created.IsZero() {
		created = time.Now()
	}
	c.Attrs[AttrRunID] = runID.String()
	c.Attrs[AttrCreated] = created.UTC().Format(time.RFC3339)

	return c, info, nil
}

// SaveRecord encodes r and writes it to path.
func SaveRecord(path string, r *Record) (EncodeInfo, error) {
	c, info, err := Encode(r)
	if err != nil {
		return info, err
	}
	if err := Save(path, c); err != nil {
		return info, err
	}
	return info, nil
}

// Record decodes the container back into a Record. Waveforms, labels and fs are
// required. A missing metric or auto_labels array, or unreadable attributes, are
// reported as warnings.
func (c *Container) Record() (*Record, []Warning, error) {
	var warnings []Warning
	r := &Record{}

	wf, ok := c.Get(KeyWaveforms)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing %q", ErrInvalidRecord, KeyWaveforms)
	}
	rows, err := waveformRows(wf)
	if err != nil {
		return nil, nil, err
	}
	r.Waveforms = rows

	lab, ok := c.Get(KeyLabels)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing %q", ErrInvalidRecord, KeyLabels)
	}
	if r.Labels, err = labelVector(lab); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", KeyLabels, err)
	}

	fsArr, ok := c.Get(KeyFS)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing %q", ErrInvalidRecord, KeyFS)
	}
	fs, err := scalarIntValue(fsArr)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", KeyFS, err)
	}
	r.SampleRate = int(fs)

	if m, ok := c.Get(KeyMetric); ok && m.DType == String && len(m.Str) == 1 {
		r.Metric = m.Str[0]
	} else {
		warnings = append(warnings, missingKey(KeyMetric))
	}

	if auto, ok := c.Get(KeyAutoLabels); ok {
		if r.AutoLabels, err = labelVector(auto); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", KeyAutoLabels, err)
		}
	} else {
		warnings = append(warnings, missingKey(KeyAutoLabels))
	}

	if id, err := uuid.Parse(c.Attrs[AttrRunID]); err == nil {
		r.RunID = id
	} else {
		warnings = append(warnings, Warning{Key: AttrRunID, Message: "run id missing or unreadable"})
	}
	if ts, err := time.Parse(time.RFC3339, c.Attrs[AttrCreated]); err == nil {
		r.Created = ts
	}

	if err := r.Validate(); err != nil {
		return nil, nil, err
	}
	return r, warnings, nil
}

func waveformRows(a *Array) ([][]float32, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("%w: %s must be 2-D, shape %v", ErrBadArray, KeyWaveforms, a.Shape)
	}
	n, width := a.Shape[0], a.Shape[1]

	var flat []float32
	switch a.DType {
	case Float32:
		flat = a.F32
	case Float64:
		// Written by another tool; narrowing to the capture type
		flat = make([]float32, len(a.F64))
		for i, v := range a.F64 {
			flat[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("%w: %s has dtype %s", ErrBadArray, KeyWaveforms, a.DType)
	}

	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = append([]float32(nil), flat[i*width:(i+1)*width]...)
	}
	return rows, nil
}

func labelVector(a *Array) ([]labels.Label, error) {
	if a.DType != String || len(a.Shape) != 1 {
		return nil, fmt.Errorf("%w: want 1-D str, got %s %v", ErrBadArray, a.DType, a.Shape)
	}
	return labels.FromStrings(a.Str)
}

func scalarIntValue(a *Array) (int64, error) {
	if a.Size() != 1 {
		return 0, fmt.Errorf("%w: want scalar, shape %v", ErrBadArray, a.Shape)
	}
	switch a.DType {
	case Int64:
		return a.I64[0], nil
	case Float64:
		return int64(a.F64[0]), nil
	case Float32:
		return int64(a.F32[0]), nil
	}
	return 0, fmt.Errorf("%w: want integer, got %s", ErrBadArray, a.DType)
}
