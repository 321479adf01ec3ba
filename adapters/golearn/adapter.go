// Package golearn converts between the engine's Frame and golearn's
// DenseInstances, so custom transforms can hand a table to ML tooling
// and bring the result back.
package golearn

import (
	"time"

	"github.com/sjwhitworth/golearn/base"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Numeric
// columns become float attributes; everything else becomes categorical
// (times are formatted as RFC3339 strings). The last column is marked as
// the class attribute, golearn's usual convention.
func ToDenseInstances(f *table.Frame) (*base.DenseInstances, error) {
	cols := f.Schema().Columns
	attrs := make([]base.Attribute, len(cols))
	for i, cs := range cols {
		if cs.Type.Numeric() {
			attrs[i] = base.NewFloatAttribute(cs.Name)
		} else {
			ca := new(base.CategoricalAttribute)
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for r := 0; r < f.Rows(); r++ {
		for c, cs := range cols {
			col, _ := f.ColumnByName(cs.Name)
			switch cc := col.(type) {
			case *table.FloatColumn:
				if v, ok := cc.Get(r); ok {
					inst.Set(specs[c], r, base.PackFloatToBytes(v))
				}
			case *table.IntColumn:
				if v, ok := cc.Get(r); ok {
					inst.Set(specs[c], r, base.PackFloatToBytes(float64(v)))
				}
			case *table.BoolColumn:
				if v, ok := cc.Get(r); ok {
					s := "false"
					if v {
						s = "true"
					}
					inst.Set(specs[c], r, base.Attribute.GetSysValFromString(attrs[c], s))
				}
			case *table.StringColumn:
				if v, ok := cc.Get(r); ok {
					inst.Set(specs[c], r, base.Attribute.GetSysValFromString(attrs[c], v))
				}
			case *table.TimeColumn:
				if v, ok := cc.Get(r); ok {
					inst.Set(specs[c], r, base.Attribute.GetSysValFromString(attrs[c], v.Format(time.RFC3339)))
				}
			}
		}
	}
	if len(attrs) > 0 {
		if err := inst.AddClassAttribute(attrs[len(attrs)-1]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame. Float
// attributes become float columns, categorical ones string columns.
func FromDenseInstances(inst *base.DenseInstances) (*table.Frame, error) {
	attrs := inst.AllAttributes()
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		kind := table.KindString
		if a.GetType() == 1 { // golearn's float attribute type
			kind = table.KindFloat
		}
		schema.Columns[i] = table.ColumnSchema{Name: a.GetName(), Type: kind, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := table.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			if cs.Type == table.KindFloat {
				v := base.UnpackBytesToFloat(inst.Get(specs[c], r))
				_ = f.SetCell(r, cs.Name, v)
			} else {
				v := base.Attribute.GetStringFromSysVal(specs[c].GetAttribute(), inst.Get(specs[c], r))
				_ = f.SetCell(r, cs.Name, v)
			}
		}
	}
	return f, nil
}
