// Package dataset persists labeled segment recordings in a named-array container
// and converts containers to JSON.
//
// The container is a single MessagePack document holding named, typed,
// row-major arrays, in the spirit of NumPy's .npz: every array carries its dtype
// and shape so a reader needs no schema.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Container identification
const (
	Magic   = "okng-dataset"
	Version = 1
)

// Array names written by Encode
const (
	KeyWaveforms  = "waveforms"
	KeyLabels     = "labels"
	KeyFS         = "fs"
	KeyMetric     = "metric"
	KeyAutoLabels = "auto_labels"
)

// Keys lists the recognised arrays in the order they are reported.
var Keys = []string{KeyWaveforms, KeyLabels, KeyFS, KeyMetric, KeyAutoLabels}

var (
	// ErrNotContainer is returned when a file is not an okng dataset.
	ErrNotContainer = errors.New("not an okng dataset")
	// ErrBadArray is returned for arrays whose data does not match their shape or dtype.
	ErrBadArray = errors.New("malformed array")
)

// DType names the element type of an Array
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
	Int64   DType = "int64"
	String  DType = "str"
)

// Array is a typed, row-major n-dimensional array. Exactly one data field is
// populated, selected by DType. A scalar has an empty shape and one element.
type Array struct {
	DType DType     `msgpack:"dtype"`
	Shape []int     `msgpack:"shape"`
	F32   []float32 `msgpack:"f32,omitempty"`
	F64   []float64 `msgpack:"f64,omitempty"`
	I64   []int64   `msgpack:"i64,omitempty"`
	Str   []string  `msgpack:"str,omitempty"`
}

// Size is the element count implied by the shape.
func (a *Array) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// dataLen is the number of elements actually stored.
func (a *Array) dataLen() int {
	switch a.DType {
	case Float32:
		return len(a.F32)
	case Float64:
		return len(a.F64)
	case Int64:
		return len(a.I64)
	case String:
		return len(a.Str)
	}
	return -1
}

// Validate checks dtype, shape and element count agree.
func (a *Array) Validate() error {
	for _, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in shape %v", ErrBadArray, a.Shape)
		}
	}
	got := a.dataLen()
	if got < 0 {
		return fmt.Errorf("%w: unknown dtype %q", ErrBadArray, a.DType)
	}
	if got != a.Size() {
		return fmt.Errorf("%w: shape %v needs %d elements, found %d", ErrBadArray, a.Shape, a.Size(), got)
	}
	return nil
}

func scalarInt(v int64) *Array {
	return &Array{DType: Int64, Shape: []int{}, I64: []int64{v}}
}

func scalarString(s string) *Array {
	return &Array{DType: String, Shape: []int{}, Str: []string{s}}
}

func stringVector(ss []string) *Array {
	return &Array{DType: String, Shape: []int{len(ss)}, Str: ss}
}

// Container is the on-disk unit: named arrays plus free-form string attributes.
type Container struct {
	Magic   string            `msgpack:"magic"`
	Version int               `msgpack:"version"`
	Attrs   map[string]string `msgpack:"attrs,omitempty"`
	Arrays  map[string]*Array `msgpack:"arrays"`
}

// NewContainer returns an empty container ready for arrays.
func NewContainer() *Container {
	return &Container{
		Magic:   Magic,
		Version: Version,
		Attrs:   map[string]string{},
		Arrays:  map[string]*Array{},
	}
}

// Get returns the named array, if present.
func (c *Container) Get(name string) (*Array, bool) {
	a, ok := c.Arrays[name]
	return a, ok && a != nil
}

// Names returns every array name in the container, sorted.
func (c *Container) Names() []string {
	names := make([]string, 0, len(c.Arrays))
	for name := range c.Arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write encodes c to w.
func Write(w io.Writer, c *Container) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// Read decodes and validates a container from r.
func Read(r io.Reader) (*Container, error) {
	var c Container
	if err := msgpack.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotContainer, err)
	}
	if c.Magic != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrNotContainer, c.Magic)
	}
	if c.Version != Version {
		return nil, fmt.Errorf("unsupported dataset version %d", c.Version)
	}
	if c.Arrays == nil {
		c.Arrays = map[string]*Array{}
	}
	for name, a := range c.Arrays {
		if a == nil {
			continue
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("array %q: %w", name, err)
		}
	}
	return &c, nil
}

// Open reads the container at path. A missing file yields an error wrapping
// fs.ErrNotExist.
func Open(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	c, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path. The data goes to a temporary file in the same
// directory which is renamed over path, so readers never see a partial file.
func Save(path string, c *Container) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return Write(w, c)
	})
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}
