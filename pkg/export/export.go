// Package export is the persistence boundary: it writes a finished Frame
// to a named location in one of a small set of encodings and returns the
// artifact path. It never mutates the frame it receives; a failed export
// leaves the in-memory table intact and retryable.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/io/csvio"
	"github.com/St0rmMaster/Data-prep/pkg/io/gobio"
	"github.com/St0rmMaster/Data-prep/pkg/io/jsonlio"
	"github.com/St0rmMaster/Data-prep/pkg/io/parquetio"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Format enumerates the supported artifact encodings.
type Format int

const (
	FormatParquet Format = iota // columnar binary
	FormatCSV                   // delimited text
	FormatJSONL                 // one JSON object per row
	FormatGob                   // self-describing binary rows
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatGob:
		return "gob"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

func (f Format) ext() string { return "." + f.String() }

// FormatFromString maps the config spelling to a Format.
func FormatFromString(s string) (Format, error) {
	switch s {
	case "", "parquet":
		return FormatParquet, nil
	case "csv":
		return FormatCSV, nil
	case "jsonl":
		return FormatJSONL, nil
	case "gob":
		return FormatGob, nil
	default:
		return 0, &table.Error{Op: "export", Kind: table.ErrEncodingUnsupported,
			Detail: fmt.Sprintf("encoding %q", s)}
	}
}

// Options configures one export.
type Options struct {
	// Stem is the filename without extension; "processed" when empty.
	Stem   string
	Format Format
	// Timestamped appends _YYYYMMDD_HHMMSS to the stem so repeated
	// exports never overwrite each other.
	Timestamped bool
	// Metadata, when non-nil, is written to a JSON sidecar next to the
	// artifact, enriched with the frame's shape, columns and types.
	Metadata map[string]any
}

const stampLayout = "20060102_150405"

// Exporter persists frames under one base directory.
type Exporter struct {
	baseDir string
	now     func() time.Time
}

// New ensures baseDir exists and returns an Exporter for it.
func New(baseDir string) (*Exporter, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &table.Error{Op: "export", Kind: table.ErrStorageUnavailable,
			Detail: baseDir, Cause: err}
	}
	return &Exporter{baseDir: baseDir, now: time.Now}, nil
}

// Save writes the frame per opt and returns the artifact path.
func (e *Exporter) Save(f *table.Frame, opt Options) (string, error) {
	if _, err := os.Stat(e.baseDir); err != nil {
		return "", &table.Error{Op: "export", Kind: table.ErrStorageUnavailable,
			Detail: e.baseDir, Cause: err}
	}

	stem := opt.Stem
	if stem == "" {
		stem = "processed"
	}
	if opt.Timestamped {
		stem += "_" + e.now().Format(stampLayout)
	}
	path := filepath.Join(e.baseDir, stem+opt.Format.ext())

	var err error
	switch opt.Format {
	case FormatParquet:
		err = parquetio.WriteAll(path, f)
	case FormatCSV:
		err = csvio.WriteAll(path, f, csvio.WriterOptions{})
	case FormatJSONL:
		err = jsonlio.WriteAll(path, f)
	case FormatGob:
		err = gobio.WriteAll(path, f)
	default:
		return "", &table.Error{Op: "export", Kind: table.ErrEncodingUnsupported,
			Detail: opt.Format.String()}
	}
	if err != nil {
		return "", &table.Error{Op: "export", Kind: table.ErrWriteFailed,
			Detail: path, Cause: err}
	}

	if opt.Metadata != nil {
		if err := e.writeMetadata(f, stem, opt); err != nil {
			return "", err
		}
	}
	return path, nil
}

func (e *Exporter) writeMetadata(f *table.Frame, stem string, opt Options) error {
	dtypes := make(map[string]string, f.Cols())
	for _, cs := range f.Schema().Columns {
		dtypes[cs.Name] = cs.Type.String()
	}
	meta := map[string]any{
		"file_format": opt.Format.String(),
		"timestamp":   e.now().Format(time.RFC3339),
		"shape":       []int{f.Rows(), f.Cols()},
		"columns":     f.Names(),
		"dtypes":      dtypes,
	}
	if f.HasTimeIndex() {
		meta["index"] = f.Index().Name()
	}
	for k, v := range opt.Metadata {
		meta[k] = v
	}

	path := filepath.Join(e.baseDir, stem+"_metadata.json")
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &table.Error{Op: "export", Kind: table.ErrWriteFailed, Detail: path, Cause: err}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &table.Error{Op: "export", Kind: table.ErrWriteFailed, Detail: path, Cause: err}
	}
	return nil
}
