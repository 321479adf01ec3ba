package op

import (
	"fmt"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// timeLayouts are tried in order when parsing string timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// TimeIndex parses one column into timestamps and promotes it to the
// frame's row index, dropping it from the regular columns.
type TimeIndex struct {
	Column  string
	OnError Policy
	Layouts []string // overrides the default layout list when set
}

func (t TimeIndex) Name() string { return "set_time_index" }

func (t TimeIndex) Apply(f *table.Frame) (*table.Frame, string, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return nil, "", &table.Error{Op: t.Name(), Column: t.Column, Kind: table.ErrColumnNotFound}
	}

	times := make([]time.Time, f.Rows())
	nulls := make([]bool, f.Rows())
	var coerced int

	fail := func(i int, detail string) error {
		return &table.Error{Op: t.Name(), Column: t.Column, Kind: table.ErrParse,
			Detail: fmt.Sprintf("row %d: %s", i, detail)}
	}

	switch c := col.(type) {
	case *table.TimeColumn:
		for i := 0; i < c.Len(); i++ {
			v, present := c.Get(i)
			times[i], nulls[i] = v, !present
		}
	case *table.StringColumn:
		layouts := t.Layouts
		if len(layouts) == 0 {
			layouts = timeLayouts
		}
		for i := 0; i < c.Len(); i++ {
			v, present := c.Get(i)
			if !present {
				nulls[i] = true
				continue
			}
			ts, err := parseTime(v, layouts)
			if err != nil {
				if t.OnError == Fail {
					return nil, "", fail(i, fmt.Sprintf("cannot parse %q as timestamp", v))
				}
				nulls[i] = true
				coerced++
				continue
			}
			times[i] = ts
		}
	case *table.IntColumn:
		// integer columns are treated as Unix seconds
		for i := 0; i < c.Len(); i++ {
			v, present := c.Get(i)
			if !present {
				nulls[i] = true
				continue
			}
			times[i] = time.Unix(v, 0).UTC()
		}
	default:
		if t.OnError == Fail {
			return nil, "", fail(0, fmt.Sprintf("cannot index by %s column", col.Kind()))
		}
		for i := range nulls {
			nulls[i] = true
		}
		coerced = col.Len()
	}

	out := f.Clone()
	if err := out.DropColumn(t.Column); err != nil {
		return nil, "", &table.Error{Op: t.Name(), Column: t.Column, Kind: table.ErrColumnNotFound, Cause: err}
	}
	if err := out.SetIndex(table.NewTimeIndex(t.Column, times, nulls)); err != nil {
		return nil, "", &table.Error{Op: t.Name(), Column: t.Column, Kind: table.ErrParse, Cause: err}
	}

	summary := fmt.Sprintf("column %q promoted to time index", t.Column)
	if coerced > 0 {
		summary += fmt.Sprintf(" (%d unparseable values coerced to missing)", coerced)
	}
	return out, summary, nil
}

func parseTime(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}
