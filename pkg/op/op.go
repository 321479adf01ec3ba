// Package op implements the closed set of table operations. Every
// operation is a pure function of (frame, config): it validates its
// parameters against the frame it receives, never mutates it, performs
// no I/O, and returns either a new frame plus a human-readable summary
// or a typed *table.Error.
package op

import (
	"fmt"
	"sort"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Operation is one named, parameterized transformation of a Frame.
type Operation interface {
	Name() string
	Apply(f *table.Frame) (*table.Frame, string, error)
}

// Policy controls how an operation reacts to values it cannot handle.
type Policy int

const (
	// Fail rejects the whole step on the first bad value.
	Fail Policy = iota
	// Coerce turns bad values into nulls and continues.
	Coerce
)

func (p Policy) String() string {
	if p == Coerce {
		return "coerce"
	}
	return "fail"
}

// PolicyFromString maps the config spelling to a Policy.
func PolicyFromString(s string) (Policy, error) {
	switch s {
	case "", "fail", "raise":
		return Fail, nil
	case "coerce":
		return Coerce, nil
	default:
		return Fail, fmt.Errorf("unknown error policy %q", s)
	}
}

// resolveColumns validates a requested subset against the frame and
// returns it, or all column names when the subset is empty.
func resolveColumns(f *table.Frame, opName string, subset []string) ([]string, error) {
	if len(subset) == 0 {
		return f.Names(), nil
	}
	for _, name := range subset {
		if _, ok := f.ColumnByName(name); !ok {
			return nil, &table.Error{Op: opName, Column: name, Kind: table.ErrColumnNotFound}
		}
	}
	return subset, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
