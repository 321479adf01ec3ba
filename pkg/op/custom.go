package op

import (
	"errors"
	"fmt"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Func is the custom-transform contract: a table-to-table function. It
// receives a private copy of the working frame and must return a non-nil
// frame or an error.
type Func func(*table.Frame) (*table.Frame, error)

// Custom applies an externally supplied transform. Structural changes are
// accepted and only summarized; errors and panics inside the function
// surface as ErrCustomTransform with the cause attached.
type Custom struct {
	// Label identifies the transform in logs; defaults to "custom".
	Label string
	Fn    Func
}

func (t Custom) Name() string { return "custom_transform" }

func (t Custom) label() string {
	if t.Label != "" {
		return t.Label
	}
	return "custom"
}

func (t Custom) Apply(f *table.Frame) (out *table.Frame, summary string, err error) {
	if t.Fn == nil {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrCustomTransform,
			Detail: t.label() + ": nil function"}
	}
	defer func() {
		if r := recover(); r != nil {
			out, summary = nil, ""
			err = &table.Error{Op: t.Name(), Kind: table.ErrCustomTransform,
				Detail: t.label() + ": panic", Cause: fmt.Errorf("%v", r)}
		}
	}()

	result, fnErr := t.Fn(f.Clone())
	if fnErr != nil {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrCustomTransform,
			Detail: t.label(), Cause: fnErr}
	}
	if result == nil {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrCustomTransform,
			Detail: t.label() + ": returned nil frame", Cause: errors.New("result is not a table")}
	}

	summary = fmt.Sprintf("%s applied", t.label())
	if f.Rows() != result.Rows() || f.Cols() != result.Cols() {
		summary += fmt.Sprintf("; shape (%d,%d) -> (%d,%d)", f.Rows(), f.Cols(), result.Rows(), result.Cols())
	}
	if added, removed := columnDelta(f, result); len(added)+len(removed) > 0 {
		if len(added) > 0 {
			summary += "; added " + strings.Join(added, ",")
		}
		if len(removed) > 0 {
			summary += "; removed " + strings.Join(removed, ",")
		}
	}
	return result, summary, nil
}

func columnDelta(before, after *table.Frame) (added, removed []string) {
	was := make(map[string]bool, before.Cols())
	for _, n := range before.Names() {
		was[n] = true
	}
	now := make(map[string]bool, after.Cols())
	for _, n := range after.Names() {
		now[n] = true
		if !was[n] {
			added = append(added, n)
		}
	}
	for _, n := range before.Names() {
		if !now[n] {
			removed = append(removed, n)
		}
	}
	return added, removed
}
