package op

import (
	"fmt"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// SelectColumns retains only the named columns, in the requested order.
type SelectColumns struct {
	Columns []string
}

func (t SelectColumns) Name() string { return "select_columns" }

func (t SelectColumns) Apply(f *table.Frame) (*table.Frame, string, error) {
	if len(t.Columns) == 0 {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrEmptyResultAfterFilter,
			Detail: "no columns requested"}
	}
	for _, name := range t.Columns {
		if _, ok := f.ColumnByName(name); !ok {
			return nil, "", &table.Error{Op: t.Name(), Column: name, Kind: table.ErrColumnNotFound}
		}
	}
	out, err := f.Select(t.Columns)
	if err != nil {
		return nil, "", &table.Error{Op: t.Name(), Kind: table.ErrColumnNotFound, Cause: err}
	}
	dropped := f.Cols() - out.Cols()
	summary := fmt.Sprintf("kept columns %s (%d dropped)", strings.Join(t.Columns, ","), dropped)
	return out, summary, nil
}
