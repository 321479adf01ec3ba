package op

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Convert casts columns to target types. Under Fail the whole step is
// rejected on the first unconvertible value; under Coerce such values
// become missing and conversion continues.
type Convert struct {
	Types   map[string]string // column name -> target type name
	OnError Policy
}

func (t Convert) Name() string { return "convert_types" }

func kindFromName(name string) (table.Kind, bool) {
	switch name {
	case "float", "float64":
		return table.KindFloat, true
	case "int", "int64":
		return table.KindInt, true
	case "string", "str":
		return table.KindString, true
	case "bool":
		return table.KindBool, true
	case "time", "datetime":
		return table.KindTime, true
	default:
		return table.KindInvalid, false
	}
}

func (t Convert) Apply(f *table.Frame) (*table.Frame, string, error) {
	names := sortedKeys(t.Types)
	for _, name := range names {
		if _, ok := f.ColumnByName(name); !ok {
			return nil, "", &table.Error{Op: t.Name(), Column: name, Kind: table.ErrColumnNotFound}
		}
		if _, ok := kindFromName(t.Types[name]); !ok {
			return nil, "", &table.Error{Op: t.Name(), Column: name, Kind: table.ErrUnsupportedTypeName,
				Detail: fmt.Sprintf("target type %q", t.Types[name])}
		}
	}

	out := f.Clone()
	var changes []string
	var coerced int
	for _, name := range names {
		col, _ := out.ColumnByName(name)
		target, _ := kindFromName(t.Types[name])
		if col.Kind() == target {
			continue
		}
		converted, nulled, err := convertColumn(col, target, t.OnError)
		if err != nil {
			if opErr, ok := err.(*table.Error); ok {
				opErr.Op = t.Name()
				opErr.Column = name
				return nil, "", opErr
			}
			return nil, "", &table.Error{Op: t.Name(), Column: name, Kind: table.ErrParse, Cause: err}
		}
		if err := out.ReplaceColumn(name, converted); err != nil {
			return nil, "", &table.Error{Op: t.Name(), Column: name, Kind: table.ErrParse, Cause: err}
		}
		coerced += nulled
		changes = append(changes, fmt.Sprintf("%s: %s -> %s", name, col.Kind(), target))
	}

	summary := "no type changes needed"
	if len(changes) > 0 {
		summary = "converted " + strings.Join(changes, ", ")
	}
	if coerced > 0 {
		summary += fmt.Sprintf(" (%d unconvertible values coerced to missing)", coerced)
	}
	return out, summary, nil
}

// convertColumn builds a fresh column of the target kind. It returns how
// many cells were nulled under a coercing policy.
func convertColumn(col table.Column, target table.Kind, pol Policy) (table.Column, int, error) {
	n := col.Len()
	name := col.Name()
	nulled := 0

	fail := func(i int, v any) error {
		return &table.Error{Kind: table.ErrParse,
			Detail: fmt.Sprintf("row %d: cannot convert %v (%s) to %s", i, v, col.Kind(), target)}
	}

	switch target {
	case table.KindFloat:
		out := table.NewFloatColumn(name, 0)
		for i := 0; i < n; i++ {
			v, ok, err := cellAsFloat(col, i)
			if err != nil {
				if pol == Fail {
					return nil, 0, fail(i, cellValue(col, i))
				}
				out.AppendNull()
				nulled++
				continue
			}
			if !ok {
				out.AppendNull()
				continue
			}
			out.Append(v)
		}
		return out, nulled, nil

	case table.KindInt:
		out := table.NewIntColumn(name, 0)
		for i := 0; i < n; i++ {
			v, ok, err := cellAsInt(col, i)
			if err != nil {
				if pol == Fail {
					return nil, 0, fail(i, cellValue(col, i))
				}
				out.AppendNull()
				nulled++
				continue
			}
			if !ok {
				out.AppendNull()
				continue
			}
			out.Append(v)
		}
		return out, nulled, nil

	case table.KindString:
		out := table.NewStringColumn(name, 0)
		for i := 0; i < n; i++ {
			if col.IsNull(i) {
				out.AppendNull()
				continue
			}
			out.Append(formatCell(col, i))
		}
		return out, nulled, nil

	case table.KindBool:
		out := table.NewBoolColumn(name, 0)
		for i := 0; i < n; i++ {
			v, ok, err := cellAsBool(col, i)
			if err != nil {
				if pol == Fail {
					return nil, 0, fail(i, cellValue(col, i))
				}
				out.AppendNull()
				nulled++
				continue
			}
			if !ok {
				out.AppendNull()
				continue
			}
			out.Append(v)
		}
		return out, nulled, nil

	case table.KindTime:
		out := table.NewTimeColumn(name, 0)
		for i := 0; i < n; i++ {
			v, ok, err := cellAsTime(col, i)
			if err != nil {
				if pol == Fail {
					return nil, 0, fail(i, cellValue(col, i))
				}
				out.AppendNull()
				nulled++
				continue
			}
			if !ok {
				out.AppendNull()
				continue
			}
			out.Append(v)
		}
		return out, nulled, nil
	}
	return nil, 0, fmt.Errorf("invalid target kind %v", target)
}

func cellValue(col table.Column, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *table.BoolColumn:
		v, _ := c.Get(i)
		return v
	case *table.IntColumn:
		v, _ := c.Get(i)
		return v
	case *table.FloatColumn:
		v, _ := c.Get(i)
		return v
	case *table.StringColumn:
		v, _ := c.Get(i)
		return v
	case *table.TimeColumn:
		v, _ := c.Get(i)
		return v
	}
	return nil
}

func formatCell(col table.Column, i int) string {
	switch c := col.(type) {
	case *table.BoolColumn:
		v, _ := c.Get(i)
		return strconv.FormatBool(v)
	case *table.IntColumn:
		v, _ := c.Get(i)
		return strconv.FormatInt(v, 10)
	case *table.FloatColumn:
		v, _ := c.Get(i)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *table.StringColumn:
		v, _ := c.Get(i)
		return v
	case *table.TimeColumn:
		v, _ := c.Get(i)
		return v.Format(time.RFC3339)
	}
	return ""
}

func cellAsFloat(col table.Column, i int) (float64, bool, error) {
	if col.IsNull(i) {
		return 0, false, nil
	}
	switch c := col.(type) {
	case *table.FloatColumn:
		v, _ := c.Get(i)
		return v, true, nil
	case *table.IntColumn:
		v, _ := c.Get(i)
		return float64(v), true, nil
	case *table.BoolColumn:
		v, _ := c.Get(i)
		if v {
			return 1, true, nil
		}
		return 0, true, nil
	case *table.StringColumn:
		v, _ := c.Get(i)
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false, err
		}
		return x, true, nil
	}
	return 0, false, fmt.Errorf("cannot convert %s to float", col.Kind())
}

func cellAsInt(col table.Column, i int) (int64, bool, error) {
	if col.IsNull(i) {
		return 0, false, nil
	}
	switch c := col.(type) {
	case *table.IntColumn:
		v, _ := c.Get(i)
		return v, true, nil
	case *table.FloatColumn:
		v, _ := c.Get(i)
		return int64(v), true, nil
	case *table.BoolColumn:
		v, _ := c.Get(i)
		if v {
			return 1, true, nil
		}
		return 0, true, nil
	case *table.StringColumn:
		v, _ := c.Get(i)
		s := strings.TrimSpace(v)
		if x, err := strconv.ParseInt(s, 10, 64); err == nil {
			return x, true, nil
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, err
		}
		return int64(x), true, nil
	}
	return 0, false, fmt.Errorf("cannot convert %s to int", col.Kind())
}

func cellAsBool(col table.Column, i int) (bool, bool, error) {
	if col.IsNull(i) {
		return false, false, nil
	}
	switch c := col.(type) {
	case *table.BoolColumn:
		v, _ := c.Get(i)
		return v, true, nil
	case *table.IntColumn:
		v, _ := c.Get(i)
		return v != 0, true, nil
	case *table.FloatColumn:
		v, _ := c.Get(i)
		return v != 0, true, nil
	case *table.StringColumn:
		v, _ := c.Get(i)
		x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return false, false, err
		}
		return x, true, nil
	}
	return false, false, fmt.Errorf("cannot convert %s to bool", col.Kind())
}

func cellAsTime(col table.Column, i int) (time.Time, bool, error) {
	if col.IsNull(i) {
		return time.Time{}, false, nil
	}
	switch c := col.(type) {
	case *table.TimeColumn:
		v, _ := c.Get(i)
		return v, true, nil
	case *table.StringColumn:
		v, _ := c.Get(i)
		ts, err := parseTime(strings.TrimSpace(v), timeLayouts)
		if err != nil {
			return time.Time{}, false, err
		}
		return ts, true, nil
	case *table.IntColumn:
		v, _ := c.Get(i)
		return time.Unix(v, 0).UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot convert %s to time", col.Kind())
}
