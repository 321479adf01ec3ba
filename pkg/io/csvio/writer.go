package csvio

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// WriteAll writes a Frame to a CSV file with a header row. A temporal
// index is emitted as the first column under its original name.
func WriteAll(path string, f *table.Frame, opt WriterOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	cols := f.Schema().Columns
	hdr := make([]string, 0, len(cols)+1)
	if f.HasTimeIndex() {
		hdr = append(hdr, f.Index().Name())
	}
	for _, cs := range cols {
		hdr = append(hdr, cs.Name)
	}
	if err := w.Write(hdr); err != nil {
		return err
	}

	row := make([]string, len(hdr))
	for r := 0; r < f.Rows(); r++ {
		for i := range row {
			row[i] = ""
		}
		pos := 0
		if f.HasTimeIndex() {
			if ts, ok := f.Index().Get(r); ok {
				row[0] = ts.Format(timeFormat)
			}
			pos = 1
		}
		for c, cs := range cols {
			col, _ := f.ColumnByName(cs.Name)
			row[pos+c] = formatValue(col, cs.Type, r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(col table.Column, kind table.Kind, r int) string {
	switch kind {
	case table.KindFloat:
		if v, ok := col.(*table.FloatColumn).Get(r); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case table.KindInt:
		if v, ok := col.(*table.IntColumn).Get(r); ok {
			return strconv.FormatInt(v, 10)
		}
	case table.KindBool:
		if v, ok := col.(*table.BoolColumn).Get(r); ok {
			return strconv.FormatBool(v)
		}
	case table.KindString:
		if v, ok := col.(*table.StringColumn).Get(r); ok {
			return v
		}
	case table.KindTime:
		if v, ok := col.(*table.TimeColumn).Get(r); ok {
			return v.Format(timeFormat)
		}
	}
	return ""
}
