// Package gobio persists a Frame as self-describing binary row records:
// a header carrying names and kinds, the index, then one record per row.
package gobio

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type header struct {
	Names     []string
	Kinds     []int
	Rows      int
	IndexName string // empty when the frame has an ordinal index
}

// cell is one value slot; exactly one field is meaningful per kind.
type cell struct {
	Null  bool
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Time  time.Time
}

type record struct {
	IndexTime time.Time
	IndexNull bool
	Cells     []cell
}

// WriteAll writes a Frame to path in gob encoding.
func WriteAll(path string, f *table.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	bw := bufio.NewWriter(out)
	enc := gob.NewEncoder(bw)

	cols := f.Schema().Columns
	h := header{Rows: f.Rows()}
	for _, cs := range cols {
		h.Names = append(h.Names, cs.Name)
		h.Kinds = append(h.Kinds, int(cs.Type))
	}
	if f.HasTimeIndex() {
		h.IndexName = f.Index().Name()
	}
	if err := enc.Encode(h); err != nil {
		return err
	}

	for r := 0; r < f.Rows(); r++ {
		rec := record{Cells: make([]cell, len(cols))}
		if f.HasTimeIndex() {
			ts, ok := f.Index().Get(r)
			rec.IndexTime, rec.IndexNull = ts, !ok
		}
		for i, cs := range cols {
			col, _ := f.ColumnByName(cs.Name)
			rec.Cells[i] = encodeCell(col, cs.Type, r)
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeCell(col table.Column, kind table.Kind, r int) cell {
	if col.IsNull(r) {
		return cell{Null: true}
	}
	switch kind {
	case table.KindBool:
		v, _ := col.(*table.BoolColumn).Get(r)
		return cell{Bool: v}
	case table.KindInt:
		v, _ := col.(*table.IntColumn).Get(r)
		return cell{Int: v}
	case table.KindFloat:
		v, _ := col.(*table.FloatColumn).Get(r)
		return cell{Float: v}
	case table.KindString:
		v, _ := col.(*table.StringColumn).Get(r)
		return cell{Str: v}
	case table.KindTime:
		v, _ := col.(*table.TimeColumn).Get(r)
		return cell{Time: v}
	}
	return cell{Null: true}
}

// ReadAll loads a Frame previously written by WriteAll.
func ReadAll(path string) (*table.Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()
	dec := gob.NewDecoder(bufio.NewReader(in))

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, err
	}
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(h.Names))}
	for i, name := range h.Names {
		schema.Columns[i] = table.ColumnSchema{Name: name, Type: table.Kind(h.Kinds[i]), Nullable: true}
	}
	f := table.NewFrame(schema)

	var times []time.Time
	var nulls []bool
	for r := 0; r < h.Rows; r++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		f.AppendNullRow()
		for i, cs := range schema.Columns {
			if i >= len(rec.Cells) || rec.Cells[i].Null {
				continue
			}
			c := rec.Cells[i]
			switch cs.Type {
			case table.KindBool:
				_ = f.SetCell(r, cs.Name, c.Bool)
			case table.KindInt:
				_ = f.SetCell(r, cs.Name, c.Int)
			case table.KindFloat:
				_ = f.SetCell(r, cs.Name, c.Float)
			case table.KindString:
				_ = f.SetCell(r, cs.Name, c.Str)
			case table.KindTime:
				_ = f.SetCell(r, cs.Name, c.Time)
			}
		}
		if h.IndexName != "" {
			times = append(times, rec.IndexTime)
			nulls = append(nulls, rec.IndexNull)
		}
	}
	if h.IndexName != "" {
		if err := f.SetIndex(table.NewTimeIndex(h.IndexName, times, nulls)); err != nil {
			return nil, err
		}
	}
	return f, nil
}
