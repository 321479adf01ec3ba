package jsonlio

import (
	"bufio"
	"encoding/json"
	"time"

	iox "github.com/St0rmMaster/Data-prep/pkg/io/ioutils"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// WriteAll writes a Frame as one JSON object per row. Null cells are
// omitted; a temporal index is emitted under its original name.
func WriteAll(path string, f *table.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, f.Cols()+1)
		if f.HasTimeIndex() {
			if ts, ok := f.Index().Get(r); ok {
				m[f.Index().Name()] = ts.Format(time.RFC3339Nano)
			}
		}
		for _, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch cs.Type {
			case table.KindFloat:
				if v, ok := col.(*table.FloatColumn).Get(r); ok {
					m[cs.Name] = v
				}
			case table.KindInt:
				if v, ok := col.(*table.IntColumn).Get(r); ok {
					m[cs.Name] = v
				}
			case table.KindBool:
				if v, ok := col.(*table.BoolColumn).Get(r); ok {
					m[cs.Name] = v
				}
			case table.KindString:
				if v, ok := col.(*table.StringColumn).Get(r); ok {
					m[cs.Name] = v
				}
			case table.KindTime:
				if v, ok := col.(*table.TimeColumn).Get(r); ok {
					m[cs.Name] = v.Format(time.RFC3339Nano)
				}
			}
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return w.Flush()
}
