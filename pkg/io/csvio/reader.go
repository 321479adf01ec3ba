package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	iox "github.com/St0rmMaster/Data-prep/pkg/io/ioutils"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // rows sampled for kind inference; default 100
}

type Reader struct {
	r     *csv.Reader
	opt   ReaderOptions
	close func() error
	buf   [][]string // rows consumed during inference, replayed by ReadAll
}

// Open opens a CSV file (gzip-transparent, "-" for stdin) and returns a
// Reader. Close releases the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(rc)
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(br)
	}
	rr := csv.NewReader(br)
	rr.Comma = opt.Delimiter
	rr.LazyQuotes = true
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt, close: rc.Close}, nil
}

// NewReaderFrom constructs a Reader over an arbitrary io.Reader.
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
	rr.Comma = opt.Delimiter
	rr.LazyQuotes = true
	rr.ReuseRecord = true
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt, close: func() error { return nil }}
}

func (r *Reader) Close() error { return r.close() }

// InferSchema reads the header (when present) and samples rows to decide
// column kinds.
func (r *Reader) InferSchema() (table.Schema, error) {
	rec, err := r.r.Read()
	if err != nil {
		return table.Schema{}, err
	}
	var names []string
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.ToValidUTF8(rec[i], "?")
		}
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		rec, err = r.r.Read()
		if err == io.EOF {
			return schemaFor(names, nil), nil
		}
		if err != nil {
			return table.Schema{}, err
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := [][]string{copyRecord(rec)}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Schema{}, err
		}
		sample = append(sample, copyRecord(rec))
	}
	r.buf = sample
	return schemaFor(names, sample), nil
}

// ReadAll loads the remaining rows (including the inference sample) into
// a Frame.
func (r *Reader) ReadAll(schema table.Schema) (*table.Frame, error) {
	f := table.NewFrame(schema)
	for _, rec := range r.buf {
		appendRecord(f, schema, rec)
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		appendRecord(f, schema, rec)
	}
}

func copyRecord(rec []string) []string {
	out := make([]string, len(rec))
	copy(out, rec)
	return out
}

// appendRecord appends a null row and fills parseable non-empty cells.
// Short records leave trailing columns null.
func appendRecord(f *table.Frame, schema table.Schema, rec []string) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			continue
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case table.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case table.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case table.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
}

var numRe = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func schemaFor(names []string, sample [][]string) table.Schema {
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(names))}
	for c := range names {
		num, integer, str := 0, 0, 0
		for _, row := range sample {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			switch {
			case numRe.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case strings.EqualFold(v, "true") || strings.EqualFold(v, "false"):
				// bool tokens don't count against numeric inference
			default:
				str++
			}
		}
		kind := table.KindString
		if num > str {
			if integer == num {
				kind = table.KindInt
			} else {
				kind = table.KindFloat
			}
		}
		schema.Columns[c] = table.ColumnSchema{Name: names[c], Type: kind, Nullable: true}
	}
	return schema
}

func sniffDelimiter(br *bufio.Reader) rune {
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ','
	}
	best, bestCount := ',', -1
	for _, cand := range []byte{',', '\t', ';', '|'} {
		count := 0
		for _, b := range sample {
			if b == cand {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = rune(cand), count
		}
	}
	return best
}
