package op

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
	"github.com/zeebo/xxh3"
)

// Keep selects which member of a duplicate group survives.
type Keep int

const (
	KeepFirst Keep = iota
	KeepLast
	KeepNone
)

func (k Keep) String() string {
	switch k {
	case KeepLast:
		return "last"
	case KeepNone:
		return "none"
	default:
		return "first"
	}
}

// KeepFromString maps the config spelling to a Keep mode.
func KeepFromString(s string) (Keep, error) {
	switch s {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	case "none", "false":
		return KeepNone, nil
	default:
		return KeepFirst, fmt.Errorf("unknown keep mode %q", s)
	}
}

// DropDuplicates removes rows that duplicate an earlier row when compared
// over Subset (all columns when empty).
type DropDuplicates struct {
	Subset []string
	Keep   Keep
}

func (t DropDuplicates) Name() string { return "drop_duplicates" }

func (t DropDuplicates) Apply(f *table.Frame) (*table.Frame, string, error) {
	cols, err := resolveColumns(f, t.Name(), t.Subset)
	if err != nil {
		return nil, "", err
	}

	// group rows by an xxh3 fingerprint of their subset cells; verify on
	// hash hit so a collision can never merge distinct rows
	groups := make(map[uint64][]int)
	order := make([]uint64, f.Rows())
	var buf []byte
	for i := 0; i < f.Rows(); i++ {
		buf = fingerprintRow(buf[:0], f, cols, i)
		h := xxh3.Hash(buf)
		for {
			members := groups[h]
			if len(members) == 0 || rowsEqual(f, cols, i, members[0]) {
				break
			}
			h++ // open addressing on the (unlikely) collision
		}
		groups[h] = append(groups[h], i)
		order[i] = h
	}

	keep := make([]bool, f.Rows())
	for i := range keep {
		members := groups[order[i]]
		switch t.Keep {
		case KeepFirst:
			keep[i] = i == members[0]
		case KeepLast:
			keep[i] = i == members[len(members)-1]
		case KeepNone:
			keep[i] = len(members) == 1
		}
	}

	out := f.FilterRows(keep)
	if out.Rows() == 0 && f.Rows() > 0 {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrEmptyResultAfterFilter,
			Detail: "deduplication removes every row"}
	}

	scope := "all columns"
	if len(t.Subset) > 0 {
		scope = "columns " + strings.Join(t.Subset, ",")
	}
	summary := fmt.Sprintf("removed %d duplicate rows over %s keeping %s", f.Rows()-out.Rows(), scope, t.Keep)
	return out, summary, nil
}

// fingerprintRow appends a kind-tagged encoding of the row's subset cells
// to dst. Nulls are encoded distinctly from zero values.
func fingerprintRow(dst []byte, f *table.Frame, cols []string, row int) []byte {
	for _, name := range cols {
		c, _ := f.ColumnByName(name)
		dst = append(dst, byte(c.Kind()))
		if c.IsNull(row) {
			dst = append(dst, 0)
			continue
		}
		dst = append(dst, 1)
		switch col := c.(type) {
		case *table.BoolColumn:
			v, _ := col.Get(row)
			if v {
				dst = append(dst, 1)
			} else {
				dst = append(dst, 0)
			}
		case *table.IntColumn:
			v, _ := col.Get(row)
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
		case *table.FloatColumn:
			v, _ := col.Get(row)
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		case *table.StringColumn:
			v, _ := col.Get(row)
			dst = binary.LittleEndian.AppendUint64(dst, uint64(len(v)))
			dst = append(dst, v...)
		case *table.TimeColumn:
			v, _ := col.Get(row)
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v.UnixNano()))
		}
	}
	return dst
}


func rowsEqual(f *table.Frame, cols []string, i, j int) bool {
	for _, name := range cols {
		c, _ := f.ColumnByName(name)
		if c.IsNull(i) != c.IsNull(j) {
			return false
		}
		if c.IsNull(i) {
			continue
		}
		switch col := c.(type) {
		case *table.BoolColumn:
			a, _ := col.Get(i)
			b, _ := col.Get(j)
			if a != b {
				return false
			}
		case *table.IntColumn:
			a, _ := col.Get(i)
			b, _ := col.Get(j)
			if a != b {
				return false
			}
		case *table.FloatColumn:
			a, _ := col.Get(i)
			b, _ := col.Get(j)
			if a != b {
				return false
			}
		case *table.StringColumn:
			a, _ := col.Get(i)
			b, _ := col.Get(j)
			if a != b {
				return false
			}
		case *table.TimeColumn:
			a, _ := col.Get(i)
			b, _ := col.Get(j)
			if !a.Equal(b) {
				return false
			}
		}
	}
	return true
}
