package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
	"time"

	iox "github.com/St0rmMaster/Data-prep/pkg/io/ioutils"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type ReaderOptions struct {
	SampleRows int // rows sampled for kind inference; default 100
}

type Reader struct {
	dec   *json.Decoder
	opt   ReaderOptions
	close func() error
	buf   []map[string]any
}

// Open opens a JSONL file (gzip-transparent, "-" for stdin).
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bufio.NewReader(rc))
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt, close: rc.Close}, nil
}

func (r *Reader) Close() error { return r.close() }

// InferSchema samples objects to determine column names and kinds.
// Columns are ordered by name for determinism.
func (r *Reader) InferSchema() (table.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	kinds := map[string]table.Kind{}
	for len(r.buf) < max {
		var obj map[string]any
		if err := r.dec.Decode(&obj); err == io.EOF {
			break
		} else if err != nil {
			return table.Schema{}, err
		}
		r.buf = append(r.buf, obj)
		for k, v := range obj {
			kinds[k] = mergeKind(kinds[k], kindOf(v))
		}
	}

	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for i, n := range names {
		kind := kinds[n]
		if kind == table.KindInvalid {
			kind = table.KindString
		}
		schema.Columns[i] = table.ColumnSchema{Name: n, Type: kind, Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the remaining objects (including the inference sample)
// into a Frame. Fields missing from an object stay null.
func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for _, obj := range r.buf {
		appendObject(f, schema, obj)
	}
	r.buf = nil
	for {
		var obj map[string]any
		if err := r.dec.Decode(&obj); err == io.EOF {
			return f, nil
		} else if err != nil {
			return nil, err
		}
		appendObject(f, schema, obj)
	}
}

func appendObject(f *table.Frame, schema table.Schema, obj map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range schema.Columns {
		v, ok := obj[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case table.KindFloat:
			if n, ok := v.(json.Number); ok {
				if x, err := n.Float64(); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case table.KindInt:
			if n, ok := v.(json.Number); ok {
				if x, err := n.Int64(); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				} else if fx, err := n.Float64(); err == nil {
					_ = f.SetCell(row, cs.Name, int64(fx))
				}
			}
		case table.KindBool:
			if b, ok := v.(bool); ok {
				_ = f.SetCell(row, cs.Name, b)
			}
		case table.KindTime:
			if s, ok := v.(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					_ = f.SetCell(row, cs.Name, ts)
				}
			}
		default:
			switch s := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, s)
			case json.Number:
				_ = f.SetCell(row, cs.Name, s.String())
			}
		}
	}
}

func kindOf(v any) table.Kind {
	switch n := v.(type) {
	case bool:
		return table.KindBool
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return table.KindInt
		}
		return table.KindFloat
	case string:
		return table.KindString
	default:
		return table.KindInvalid
	}
}

// mergeKind widens the running kind for a field across sampled rows.
func mergeKind(have, next table.Kind) table.Kind {
	switch {
	case have == table.KindInvalid:
		return next
	case have == next:
		return have
	case have == table.KindInt && next == table.KindFloat,
		have == table.KindFloat && next == table.KindInt:
		return table.KindFloat
	default:
		return table.KindString
	}
}
