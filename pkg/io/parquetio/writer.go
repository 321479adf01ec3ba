package parquetio

import (
	"encoding/json"
	"fmt"

	"github.com/St0rmMaster/Data-prep/pkg/table"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// parquetSchemaJSON builds the JSON schema consumed by parquet-go's
// JSONWriter. Every field is OPTIONAL so null cells round-trip.
func parquetSchemaJSON(f *table.Frame) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	add := func(name string, kind table.Kind) {
		tag := "name=" + name + ", repetitiontype=OPTIONAL, type="
		switch kind {
		case table.KindFloat:
			tag += "DOUBLE"
		case table.KindInt:
			tag += "INT64"
		case table.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	if f.HasTimeIndex() {
		add(f.Index().Name(), table.KindTime)
	}
	for _, cs := range f.Schema().Columns {
		add(cs.Name, cs.Type)
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file. A temporal index is stored
// as a leading UTF8 column under its original name.
func WriteAll(path string, f *table.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols()+1)
		if f.HasTimeIndex() {
			if ts, ok := f.Index().Get(r); ok {
				rec[f.Index().Name()] = ts.Format(timeFormat)
			}
		}
		for _, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch cs.Type {
			case table.KindFloat:
				if v, ok := col.(*table.FloatColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case table.KindInt:
				if v, ok := col.(*table.IntColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case table.KindBool:
				if v, ok := col.(*table.BoolColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case table.KindString:
				if v, ok := col.(*table.StringColumn).Get(r); ok {
					rec[cs.Name] = v
				}
			case table.KindTime:
				if v, ok := col.(*table.TimeColumn).Get(r); ok {
					rec[cs.Name] = v.Format(timeFormat)
				}
			}
		}
		if err := writer.Write(rec); err != nil {
			_ = writer.WriteStop()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		return fmt.Errorf("parquet finalize: %w", err)
	}
	return nil
}
