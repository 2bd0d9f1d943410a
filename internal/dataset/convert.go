package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultJSONPath is where Convert writes when no output path is given.
const DefaultJSONPath = "dataset.json"

// Warning is a non-fatal conversion problem tied to one key.
type Warning struct {
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Key, w.Message)
}

func missingKey(key string) Warning {
	return Warning{Key: key, Message: "not found in dataset"}
}

// Document is the JSON object-of-arrays form of a container. Keys are the
// recognised array names; values are scalars or nested arrays.
type Document map[string]any

// KeySummary describes one converted key for reporting.
type KeySummary struct {
	Key   string
	Shape []int
	Value any // scalar value, nil for arrays
}

// String renders the summary line printed after conversion.
func (k KeySummary) String() string {
	switch len(k.Shape) {
	case 0:
		return fmt.Sprintf("%s: %v", k.Key, k.Value)
	case 1:
		return fmt.Sprintf("%s: %d elements", k.Key, k.Shape[0])
	default:
		dims := make([]string, len(k.Shape))
		for i, d := range k.Shape {
			dims[i] = fmt.Sprint(d)
		}
		return fmt.Sprintf("%s: %s array", k.Key, strings.Join(dims, "x"))
	}
}

// Summary is the outcome of a conversion.
type Summary struct {
	Keys     []KeySummary
	Warnings []Warning
}

// Convert re-encodes the recognised arrays of c as a Document. Missing keys are
// reported as warnings and skipped. float32 values are widened to float64,
// which JSON represents exactly, so no precision is lost.
func Convert(c *Container) (Document, *Summary) {
	doc := Document{}
	sum := &Summary{}

	for _, key := range Keys {
		a, ok := c.Get(key)
		if !ok {
			sum.Warnings = append(sum.Warnings, missingKey(key))
			continue
		}
		v, err := arrayValue(a)
		if err != nil {
			sum.Warnings = append(sum.Warnings, Warning{Key: key, Message: err.Error()})
			continue
		}
		doc[key] = v

		ks := KeySummary{Key: key, Shape: a.Shape}
		if len(a.Shape) == 0 {
			ks.Value = v
		}
		sum.Keys = append(sum.Keys, ks)
	}
	return doc, sum
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ConvertFile converts the container at inPath to JSON at outPath. A missing or
// unreadable input is an error and nothing is written.
func ConvertFile(inPath, outPath string) (*Summary, error) {
	if _, err := os.Stat(inPath); err != nil {
		return nil, fmt.Errorf("dataset file %s not found: %w", inPath, err)
	}

	c, err := Open(inPath)
	if err != nil {
		return nil, err
	}

	doc, sum := Convert(c)
	if err := writeFileAtomic(outPath, func(w io.Writer) error {
		return WriteJSON(w, doc)
	}); err != nil {
		return nil, err
	}
	return sum, nil
}

// arrayValue turns an array into JSON-ready Go values: the element itself for
// scalars, a slice for vectors and nested []any for higher dimensions.
func arrayValue(a *Array) (any, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	switch a.DType {
	case Float32:
		wide := make([]float64, len(a.F32))
		for i, v := range a.F32 {
			wide[i] = float64(v)
		}
		return nest(wide, a.Shape), nil
	case Float64:
		return nest(a.F64, a.Shape), nil
	case Int64:
		return nest(a.I64, a.Shape), nil
	case String:
		return nest(a.Str, a.Shape), nil
	}
	return nil, fmt.Errorf("%w: unknown dtype %q", ErrBadArray, a.DType)
}

func nest[T any](flat []T, shape []int) any {
	switch len(shape) {
	case 0:
		return flat[0]
	case 1:
		out := make([]T, len(flat))
		copy(out, flat)
		return out
	}

	stride := 1
	for _, d := range shape[1:] {
		stride *= d
	}
	out := make([]any, shape[0])
	for i := range out {
		out[i] = nest(flat[i*stride:(i+1)*stride], shape[1:])
	}
	return out
}
