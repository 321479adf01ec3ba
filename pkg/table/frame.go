package table

import (
	"fmt"
	"time"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Numeric reports whether the kind supports arithmetic (mean, median,
// interpolation).
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a typed, nullable column abstraction. The concrete
// implementations live in this package; a null cell is the explicit
// missing marker.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)

	clone() Column
	filter(keep []bool) Column
	appendNull()
	setName(name string)
	equal(other Column) bool
}

// Col is the shared storage for all column kinds: a value slice plus a
// parallel null mask.
type Col[T comparable] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = Col[bool]
	IntColumn    = Col[int64]
	FloatColumn  = Col[float64]
	StringColumn = Col[string]
	TimeColumn   = Col[time.Time]
)

func newCol[T comparable](name string, kind Kind, n int) *Col[T] {
	return &Col[T]{name: name, kind: kind, data: make([]T, n), nulls: allNull(n)}
}

func allNull(n int) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

func NewBoolColumn(name string, n int) *BoolColumn { return newCol[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn   { return newCol[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn {
	return newCol[float64](name, KindFloat, n)
}
func NewStringColumn(name string, n int) *StringColumn {
	return newCol[string](name, KindString, n)
}
func NewTimeColumn(name string, n int) *TimeColumn { return newCol[time.Time](name, KindTime, n) }

func (c *Col[T]) Name() string      { return c.name }
func (c *Col[T]) Kind() Kind        { return c.kind }
func (c *Col[T]) Len() int          { return len(c.data) }
func (c *Col[T]) IsNull(i int) bool { return c.nulls[i] }
func (c *Col[T]) SetNull(i int) {
	var zero T
	c.data[i] = zero
	c.nulls[i] = true
}

// Get returns the value at i and whether it is present.
func (c *Col[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }

func (c *Col[T]) Set(i int, v T) {
	c.data[i] = v
	c.nulls[i] = false
}

func (c *Col[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

func (c *Col[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

func (c *Col[T]) setName(name string) { c.name = name }
func (c *Col[T]) appendNull()         { c.AppendNull() }

func (c *Col[T]) clone() Column {
	out := &Col[T]{name: c.name, kind: c.kind, data: make([]T, len(c.data)), nulls: make([]bool, len(c.nulls))}
	copy(out.data, c.data)
	copy(out.nulls, c.nulls)
	return out
}

func (c *Col[T]) filter(keep []bool) Column {
	out := &Col[T]{name: c.name, kind: c.kind}
	for i := range c.data {
		if keep[i] {
			out.data = append(out.data, c.data[i])
			out.nulls = append(out.nulls, c.nulls[i])
		}
	}
	return out
}

func (c *Col[T]) equal(other Column) bool {
	o, ok := other.(*Col[T])
	if !ok || o.name != c.name || o.kind != c.kind || len(o.data) != len(c.data) {
		return false
	}
	for i := range c.data {
		if c.nulls[i] != o.nulls[i] {
			return false
		}
		if !c.nulls[i] && c.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// TimeIndex is a temporal row index, established by the time-index
// operation. A Frame without one is addressed by row ordinal.
type TimeIndex struct {
	name  string
	times []time.Time
	nulls []bool
}

// NewTimeIndex builds an index from parsed timestamps. nulls marks entries
// that could not be parsed under a coercing error policy; it may be nil
// when every entry is present.
func NewTimeIndex(name string, times []time.Time, nulls []bool) *TimeIndex {
	if nulls == nil {
		nulls = make([]bool, len(times))
	}
	return &TimeIndex{name: name, times: times, nulls: nulls}
}

func (ix *TimeIndex) Name() string { return ix.name }
func (ix *TimeIndex) Len() int     { return len(ix.times) }

// Get returns the timestamp at i and whether it is present.
func (ix *TimeIndex) Get(i int) (time.Time, bool) { return ix.times[i], !ix.nulls[i] }

func (ix *TimeIndex) clone() *TimeIndex {
	out := &TimeIndex{name: ix.name, times: make([]time.Time, len(ix.times)), nulls: make([]bool, len(ix.nulls))}
	copy(out.times, ix.times)
	copy(out.nulls, ix.nulls)
	return out
}

func (ix *TimeIndex) filter(keep []bool) *TimeIndex {
	out := &TimeIndex{name: ix.name}
	for i := range ix.times {
		if keep[i] {
			out.times = append(out.times, ix.times[i])
			out.nulls = append(out.nulls, ix.nulls[i])
		}
	}
	return out
}

func (ix *TimeIndex) equal(o *TimeIndex) bool {
	if ix == nil || o == nil {
		return ix == o
	}
	if ix.name != o.name || len(ix.times) != len(o.times) {
		return false
	}
	for i := range ix.times {
		if ix.nulls[i] != o.nulls[i] {
			return false
		}
		if !ix.nulls[i] && !ix.times[i].Equal(o.times[i]) {
			return false
		}
	}
	return true
}

// Frame is a columnar container for tabular data: ordered, uniquely named
// columns of equal length, addressed by an ordinal or temporal row index.
type Frame struct {
	schema Schema
	cols   []Column
	byName map[string]int
	nrows  int
	index  *TimeIndex // nil = ordinal index
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), byName: make(map[string]int)}
	for i, cs := range s.Columns {
		switch cs.Type {
		case KindBool:
			f.cols[i] = NewBoolColumn(cs.Name, 0)
		case KindInt:
			f.cols[i] = NewIntColumn(cs.Name, 0)
		case KindFloat:
			f.cols[i] = NewFloatColumn(cs.Name, 0)
		case KindString:
			f.cols[i] = NewStringColumn(cs.Name, 0)
		case KindTime:
			f.cols[i] = NewTimeColumn(cs.Name, 0)
		default:
			panic("invalid column kind")
		}
		if _, dup := f.byName[cs.Name]; dup {
			panic("duplicate column name: " + cs.Name)
		}
		f.byName[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema { return f.schema }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }

// Names returns column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name()
	}
	return out
}

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

func (f *Frame) HasTimeIndex() bool { return f.index != nil }

// Index returns the temporal index, or nil when the frame uses the default
// ordinal index.
func (f *Frame) Index() *TimeIndex { return f.index }

// SetIndex installs a temporal index. Its length must match the row count.
func (f *Frame) SetIndex(ix *TimeIndex) error {
	if ix != nil && ix.Len() != f.nrows {
		return fmt.Errorf("index length %d does not match %d rows", ix.Len(), f.nrows)
	}
	f.index = ix
	return nil
}

// AppendNullRow appends a row with all-null values. A temporal index, if
// present, grows with a null entry.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.appendNull()
	}
	if f.index != nil {
		f.index.times = append(f.index.times, time.Time{})
		f.index.nulls = append(f.index.nulls, true)
	}
	f.nrows++
}

// SetCell sets a single cell value by column name (row must exist). A nil
// value nulls the cell.
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	if v == nil {
		f.cols[i].SetNull(row)
		return nil
	}
	switch col := f.cols[i].(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// Clone deep-copies the frame, its columns and its index.
func (f *Frame) Clone() *Frame {
	out := &Frame{schema: Schema{Columns: make([]ColumnSchema, len(f.schema.Columns))}, cols: make([]Column, len(f.cols)), byName: make(map[string]int, len(f.byName)), nrows: f.nrows}
	copy(out.schema.Columns, f.schema.Columns)
	for i, c := range f.cols {
		out.cols[i] = c.clone()
		out.byName[c.Name()] = i
	}
	if f.index != nil {
		out.index = f.index.clone()
	}
	return out
}

// FilterRows returns a new frame keeping only rows where keep[i] is true.
// The index is filtered alongside. len(keep) must equal Rows().
func (f *Frame) FilterRows(keep []bool) *Frame {
	if len(keep) != f.nrows {
		panic("filter mask length does not match row count")
	}
	out := &Frame{schema: Schema{Columns: make([]ColumnSchema, len(f.schema.Columns))}, cols: make([]Column, len(f.cols)), byName: make(map[string]int, len(f.byName))}
	copy(out.schema.Columns, f.schema.Columns)
	for i, c := range f.cols {
		out.cols[i] = c.filter(keep)
		out.byName[c.Name()] = i
	}
	if len(out.cols) > 0 {
		out.nrows = out.cols[0].Len()
	} else {
		for _, k := range keep {
			if k {
				out.nrows++
			}
		}
	}
	if f.index != nil {
		out.index = f.index.filter(keep)
	}
	return out
}

// ReplaceColumn swaps the named column for col, keeping its position. The
// replacement must carry the same name and row count.
func (f *Frame) ReplaceColumn(name string, col Column) error {
	i, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	if col.Name() != name {
		return fmt.Errorf("replacement column is named %q, want %q", col.Name(), name)
	}
	if col.Len() != f.nrows {
		return fmt.Errorf("replacement column has %d rows, want %d", col.Len(), f.nrows)
	}
	f.cols[i] = col
	f.schema.Columns[i].Type = col.Kind()
	return nil
}

// AddColumn appends a new column at the end. Its name must be unused and
// its length must match the row count.
func (f *Frame) AddColumn(col Column) error {
	if _, taken := f.byName[col.Name()]; taken {
		return fmt.Errorf("column %s already exists", col.Name())
	}
	if col.Len() != f.nrows {
		return fmt.Errorf("new column has %d rows, want %d", col.Len(), f.nrows)
	}
	f.byName[col.Name()] = len(f.cols)
	f.cols = append(f.cols, col)
	f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: col.Name(), Type: col.Kind(), Nullable: true})
	return nil
}

// DropColumn removes the named column.
func (f *Frame) DropColumn(name string) error {
	i, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	f.cols = append(f.cols[:i], f.cols[i+1:]...)
	f.schema.Columns = append(f.schema.Columns[:i], f.schema.Columns[i+1:]...)
	delete(f.byName, name)
	for j := i; j < len(f.cols); j++ {
		f.byName[f.cols[j].Name()] = j
	}
	return nil
}

// RenameColumn renames old to new. Renaming onto an existing column is an
// error; renaming to the current name is a no-op.
func (f *Frame) RenameColumn(old, new string) error {
	i, ok := f.byName[old]
	if !ok {
		return fmt.Errorf("unknown column: %s", old)
	}
	if old == new {
		return nil
	}
	if _, taken := f.byName[new]; taken {
		return fmt.Errorf("column %s already exists", new)
	}
	f.cols[i].setName(new)
	f.schema.Columns[i].Name = new
	delete(f.byName, old)
	f.byName[new] = i
	return nil
}

// Select returns a new frame containing clones of the named columns in the
// requested order. The index carries over.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := &Frame{cols: make([]Column, 0, len(names)), byName: make(map[string]int, len(names)), nrows: f.nrows}
	for _, name := range names {
		i, ok := f.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown column: %s", name)
		}
		if _, dup := out.byName[name]; dup {
			return nil, fmt.Errorf("column %s requested twice", name)
		}
		out.byName[name] = len(out.cols)
		out.cols = append(out.cols, f.cols[i].clone())
		out.schema.Columns = append(out.schema.Columns, f.schema.Columns[i])
	}
	if f.index != nil {
		out.index = f.index.clone()
	}
	return out, nil
}

// Equal reports bit-identity of two frames: schema, cell values, null
// masks and index all match.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.nrows != o.nrows || len(f.cols) != len(o.cols) {
		return false
	}
	for i, c := range f.cols {
		if !c.equal(o.cols[i]) {
			return false
		}
	}
	return f.index.equal(o.index)
}

// MissingCount counts null cells over the named columns, or over every
// column when names is empty. Unknown names are ignored.
func (f *Frame) MissingCount(names []string) int {
	cols := f.cols
	if len(names) > 0 {
		cols = cols[:0:0]
		for _, n := range names {
			if c, ok := f.ColumnByName(n); ok {
				cols = append(cols, c)
			}
		}
	}
	var total int
	for _, c := range cols {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				total++
			}
		}
	}
	return total
}
