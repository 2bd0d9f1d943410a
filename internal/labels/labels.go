// Package labels defines the OK/NG segment labels and the rules for reconciling
// automatic labels with a reviewer's edits.
package labels

import (
	"errors"
	"fmt"
	"strings"
)

// Label is the verdict for one segment. The string form is what gets persisted,
// so datasets stay self-describing.
type Label string

const (
	OK Label = "OK"
	NG Label = "NG"
)

// ErrLengthMismatch is returned when an edited sequence does not line up with the
// automatic sequence it is meant to override.
var ErrLengthMismatch = errors.New("label sequences differ in length")

// ErrUnknownLabel is returned by ParseLabel for anything other than OK or NG.
var ErrUnknownLabel = errors.New("unknown label")

// String implements fmt.Stringer
func (l Label) String() string {
	return string(l)
}

// Toggle flips OK to NG and NG to OK. Anything else becomes NG.
func (l Label) Toggle() Label {
	if l == NG {
		return OK
	}
	return NG
}

// ParseLabel accepts OK or NG in any letter case, ignoring surrounding whitespace.
func ParseLabel(s string) (Label, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OK":
		return OK, nil
	case "NG":
		return NG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// FromStrings parses a persisted label array.
func FromStrings(ss []string) ([]Label, error) {
	out := make([]Label, len(ss))
	for i, s := range ss {
		l, err := ParseLabel(s)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		out[i] = l
	}
	return out, nil
}

// Strings converts labels to their persisted string form.
func Strings(ls []Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}

// Count returns how many entries in ls equal want.
func Count(ls []Label, want Label) int {
	n := 0
	for _, l := range ls {
		if l == want {
			n++
		}
	}
	return n
}

// Merge produces the final label sequence. When edited is nil the automatic
// labels are used as-is; otherwise every position takes the edited value.
// The result is always a fresh slice.
func Merge(auto, edited []Label) ([]Label, error) {
	if edited == nil {
		return append([]Label(nil), auto...), nil
	}
	if len(edited) != len(auto) {
		return nil, fmt.Errorf("%w: auto has %d, edited has %d", ErrLengthMismatch, len(auto), len(edited))
	}
	final := make([]Label, len(auto))
	for i := range auto {
		final[i] = edited[i]
	}
	return final, nil
}

// Diff reports where a reviewer overrode the automatic labels.
type Diff struct {
	Count     int
	Positions []int // zero-based segment indices, ascending
}

// Compare lists the positions where edited differs from auto. A nil edited
// sequence means nothing was overridden.
func Compare(auto, edited []Label) (Diff, error) {
	if edited == nil {
		return Diff{}, nil
	}
	if len(edited) != len(auto) {
		return Diff{}, fmt.Errorf("%w: auto has %d, edited has %d", ErrLengthMismatch, len(auto), len(edited))
	}
	var d Diff
	for i := range auto {
		if auto[i] != edited[i] {
			d.Positions = append(d.Positions, i)
		}
	}
	d.Count = len(d.Positions)
	return d, nil
}
