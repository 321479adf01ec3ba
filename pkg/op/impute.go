package op

import (
	"fmt"
	"sort"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Strategy enumerates the missing-value handling strategies. The set is
// closed: every handler is a case in Impute.Apply and the compiler keeps
// the dispatch exhaustive.
type Strategy int

const (
	ForwardFill Strategy = iota
	BackwardFill
	DropRows
	DropColumns
	Interpolate
	FillConstant
	FillMean
	FillMedian
	FillZero
)

var strategyNames = map[Strategy]string{
	ForwardFill:  "ffill",
	BackwardFill: "bfill",
	DropRows:     "dropna_rows",
	DropColumns:  "dropna_cols",
	Interpolate:  "interpolate",
	FillConstant: "fill_constant",
	FillMean:     "fill_mean",
	FillMedian:   "fill_median",
	FillZero:     "fill_zero",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// StrategyFromString maps the config spelling to a Strategy.
func StrategyFromString(s string) (Strategy, error) {
	for k, v := range strategyNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown missing-value strategy %q", s)
}

// Impute handles missing cells over a subset of columns (all columns when
// Columns is empty).
type Impute struct {
	Strategy Strategy
	Columns  []string
	// FillValue is the constant for FillConstant; it must be coercible to
	// each targeted column's kind.
	FillValue any
	// OverIndex makes Interpolate weight gaps by the temporal index
	// instead of row position. Ignored when the frame has no time index.
	OverIndex bool
}

func (t Impute) Name() string { return "handle_missing" }

func (t Impute) Apply(f *table.Frame) (*table.Frame, string, error) {
	cols, err := resolveColumns(f, t.Name(), t.Columns)
	if err != nil {
		return nil, "", err
	}
	explicit := len(t.Columns) > 0
	before := f.MissingCount(cols)

	out := f.Clone()
	var desc string
	switch t.Strategy {
	case ForwardFill, BackwardFill:
		var filled int
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			filled += fillDirectional(c, t.Strategy == BackwardFill)
		}
		desc = fmt.Sprintf("%s filled %d cells", t.Strategy, filled)

	case DropRows:
		keep := make([]bool, out.Rows())
		for i := range keep {
			keep[i] = true
		}
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			for i := 0; i < c.Len(); i++ {
				if c.IsNull(i) {
					keep[i] = false
				}
			}
		}
		filtered := out.FilterRows(keep)
		if filtered.Rows() == 0 && out.Rows() > 0 {
			return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrEmptyResultAfterFilter,
				Detail: "dropping rows with missing values removes every row"}
		}
		desc = fmt.Sprintf("dropped %d rows with missing values", out.Rows()-filtered.Rows())
		out = filtered

	case DropColumns:
		var dropped []string
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			for i := 0; i < c.Len(); i++ {
				if c.IsNull(i) {
					dropped = append(dropped, name)
					break
				}
			}
		}
		if len(dropped) == out.Cols() && out.Cols() > 0 {
			return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrEmptyResultAfterFilter,
				Detail: "dropping columns with missing values removes every column"}
		}
		for _, name := range dropped {
			_ = out.DropColumn(name)
		}
		desc = fmt.Sprintf("dropped %d columns with missing values", len(dropped))

	case Interpolate:
		var filled int
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			if !c.Kind().Numeric() {
				if explicit {
					return nil, "", &table.Error{Op: t.Name(), Column: name,
						Kind: table.ErrUnsupportedStrategyForType,
						Detail: fmt.Sprintf("cannot interpolate %s column", c.Kind())}
				}
				continue
			}
			filled += interpolateColumn(out, c, t.OverIndex)
		}
		axis := "linear"
		if t.OverIndex && out.HasTimeIndex() {
			axis = "time-weighted"
		}
		desc = fmt.Sprintf("%s interpolation filled %d cells", axis, filled)

	case FillConstant:
		if t.FillValue == nil {
			return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrUnsupportedStrategyForType,
				Detail: "fill_constant requires a fill value"}
		}
		var filled int
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			n, err := fillConstant(c, t.FillValue)
			if err != nil {
				return nil, "", &table.Error{Op: t.Name(), Column: name,
					Kind: table.ErrUnsupportedStrategyForType, Cause: err}
			}
			filled += n
		}
		desc = fmt.Sprintf("constant %v filled %d cells", t.FillValue, filled)

	case FillMean, FillMedian:
		var filled int
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			if !c.Kind().Numeric() {
				if explicit {
					return nil, "", &table.Error{Op: t.Name(), Column: name,
						Kind: table.ErrUnsupportedStrategyForType,
						Detail: fmt.Sprintf("cannot take %s of %s column", t.Strategy, c.Kind())}
				}
				continue
			}
			filled += fillCentral(c, t.Strategy == FillMedian)
		}
		desc = fmt.Sprintf("%s filled %d cells", t.Strategy, filled)

	case FillZero:
		var filled int
		for _, name := range cols {
			c, _ := out.ColumnByName(name)
			if !c.Kind().Numeric() {
				if explicit {
					return nil, "", &table.Error{Op: t.Name(), Column: name,
						Kind: table.ErrUnsupportedStrategyForType,
						Detail: fmt.Sprintf("cannot zero-fill %s column", c.Kind())}
				}
				continue
			}
			switch c := c.(type) {
			case *table.FloatColumn:
				filled += fillAllNulls(c, 0)
			case *table.IntColumn:
				filled += fillAllNulls(c, 0)
			}
		}
		desc = fmt.Sprintf("zero fill filled %d cells", filled)

	default:
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrUnsupportedStrategyForType,
			Detail: fmt.Sprintf("unknown strategy %v", t.Strategy)}
	}

	scope := "all columns"
	if explicit {
		scope = "columns " + strings.Join(t.Columns, ",")
	}
	after := 0
	switch t.Strategy {
	case DropRows, DropColumns:
		after = out.MissingCount(nil)
	default:
		after = out.MissingCount(cols)
	}
	summary := fmt.Sprintf("%s over %s; missing %d -> %d", desc, scope, before, after)
	return out, summary, nil
}

// fillDirectional propagates the last (or, backward, the next) observed
// value into null cells. Works for every column kind.
func fillDirectional(c table.Column, backward bool) int {
	switch col := c.(type) {
	case *table.BoolColumn:
		return propagate(col, backward)
	case *table.IntColumn:
		return propagate(col, backward)
	case *table.FloatColumn:
		return propagate(col, backward)
	case *table.StringColumn:
		return propagate(col, backward)
	case *table.TimeColumn:
		return propagate(col, backward)
	}
	return 0
}

func propagate[T comparable](c *table.Col[T], backward bool) int {
	var last T
	have := false
	filled := 0
	n := c.Len()
	for k := 0; k < n; k++ {
		i := k
		if backward {
			i = n - 1 - k
		}
		if v, ok := c.Get(i); ok {
			last, have = v, true
			continue
		}
		if have {
			c.Set(i, last)
			filled++
		}
	}
	return filled
}

func fillAllNulls[T comparable](c *table.Col[T], v T) int {
	filled := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			c.Set(i, v)
			filled++
		}
	}
	return filled
}

func fillConstant(c table.Column, value any) (int, error) {
	switch col := c.(type) {
	case *table.FloatColumn:
		switch v := value.(type) {
		case float64:
			return fillAllNulls(col, v), nil
		case int:
			return fillAllNulls(col, float64(v)), nil
		case int64:
			return fillAllNulls(col, float64(v)), nil
		}
	case *table.IntColumn:
		switch v := value.(type) {
		case int:
			return fillAllNulls(col, int64(v)), nil
		case int64:
			return fillAllNulls(col, v), nil
		case float64:
			return fillAllNulls(col, int64(v)), nil
		}
	case *table.StringColumn:
		if v, ok := value.(string); ok {
			return fillAllNulls(col, v), nil
		}
	case *table.BoolColumn:
		if v, ok := value.(bool); ok {
			return fillAllNulls(col, v), nil
		}
	}
	return 0, fmt.Errorf("fill value %v (%T) is not assignable to %s column", value, value, c.Kind())
}

// fillCentral fills nulls with the column mean or median, computed from
// the current non-missing values. Integer means round to nearest.
func fillCentral(c table.Column, median bool) int {
	switch col := c.(type) {
	case *table.FloatColumn:
		vals := presentFloats(col)
		if len(vals) == 0 {
			return 0
		}
		return fillAllNulls(col, central(vals, median))
	case *table.IntColumn:
		vals := make([]float64, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Get(i); ok {
				vals = append(vals, float64(v))
			}
		}
		if len(vals) == 0 {
			return 0
		}
		return fillAllNulls(col, int64(central(vals, median)+0.5))
	}
	return 0
}

func presentFloats(c *table.FloatColumn) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func central(vals []float64, median bool) float64 {
	if median {
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// interpolateColumn fills internal null runs linearly between their known
// endpoints and carries the last observation into trailing nulls. Leading
// nulls stay missing. overIndex weights gaps by the time index when one
// is present and fully populated.
func interpolateColumn(f *table.Frame, c table.Column, overIndex bool) int {
	axis := make([]float64, c.Len())
	for i := range axis {
		axis[i] = float64(i)
	}
	if overIndex && f.HasTimeIndex() {
		ix := f.Index()
		usable := true
		for i := 0; i < ix.Len(); i++ {
			ts, ok := ix.Get(i)
			if !ok {
				usable = false
				break
			}
			axis[i] = float64(ts.UnixNano())
		}
		if !usable {
			for i := range axis {
				axis[i] = float64(i)
			}
		}
	}

	switch col := c.(type) {
	case *table.FloatColumn:
		return interpolateInto(col, axis, func(v float64) float64 { return v }, func(v float64) float64 { return v })
	case *table.IntColumn:
		return interpolateInto(col, axis, func(v int64) float64 { return float64(v) }, func(v float64) int64 { return int64(v + 0.5) })
	}
	return 0
}

func interpolateInto[T comparable](c *table.Col[T], axis []float64, toF func(T) float64, fromF func(float64) T) int {
	filled := 0
	lastKnown := -1
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Get(i)
		if !ok {
			continue
		}
		if lastKnown >= 0 && i-lastKnown > 1 {
			v0, _ := c.Get(lastKnown)
			x0, x1 := axis[lastKnown], axis[i]
			f0, f1 := toF(v0), toF(v)
			for k := lastKnown + 1; k < i; k++ {
				frac := 0.0
				if x1 != x0 {
					frac = (axis[k] - x0) / (x1 - x0)
				}
				c.Set(k, fromF(f0+(f1-f0)*frac))
				filled++
			}
		}
		lastKnown = i
	}
	// trailing nulls carry the last observation
	if lastKnown >= 0 {
		v, _ := c.Get(lastKnown)
		for k := lastKnown + 1; k < c.Len(); k++ {
			if c.IsNull(k) {
				c.Set(k, v)
				filled++
			}
		}
	}
	return filled
}
