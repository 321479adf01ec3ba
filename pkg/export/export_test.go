package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/io/gobio"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

func resultFrame(t *testing.T) *table.Frame {
	t.Helper()
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: "reading", Type: table.KindFloat, Nullable: true},
		{Name: "site", Type: table.KindString, Nullable: true},
	}})
	for i := 0; i < 4; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "reading", float64(i)*1.5)
		_ = f.SetCell(i, "site", "lab")
	}
	ts := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 4)
	for i := range times {
		times[i] = ts.Add(time.Duration(i) * time.Hour)
	}
	if err := f.SetIndex(table.NewTimeIndex("ts", times, nil)); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestSaveCSVDefaultStem(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	path, err := e.Save(resultFrame(t), Options{Format: FormatCSV})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "processed.csv" {
		t.Fatalf("path = %s, want processed.csv", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestTimestampedStem(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	e.now = func() time.Time { return time.Date(2024, 7, 2, 13, 14, 15, 0, time.UTC) }

	path, err := e.Save(resultFrame(t), Options{Stem: "run", Format: FormatGob, Timestamped: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "run_20240702_131415.gob"
	if filepath.Base(path) != want {
		t.Fatalf("path = %s, want %s", filepath.Base(path), want)
	}
	re := regexp.MustCompile(`^run_\d{8}_\d{6}\.gob$`)
	if !re.MatchString(filepath.Base(path)) {
		t.Fatalf("stamp layout broken: %s", path)
	}
}

func TestSecondExportLeavesFirstArtifact(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	f := resultFrame(t)
	first, err := e.Save(f, Options{Stem: "a", Format: FormatGob})
	if err != nil {
		t.Fatal(err)
	}
	before, err := gobio.ReadAll(first)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Save(f.FilterRows([]bool{true, false, false, false}), Options{Stem: "b", Format: FormatGob}); err != nil {
		t.Fatal(err)
	}

	after, err := gobio.ReadAll(first)
	if err != nil {
		t.Fatal(err)
	}
	if !before.Equal(after) {
		t.Fatal("second export altered the first artifact")
	}
}

func TestMetadataSidecar(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Save(resultFrame(t), Options{
		Stem:     "meta",
		Format:   FormatJSONL,
		Metadata: map[string]any{"source": "unit test"},
	})
	if err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "meta_metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	var meta map[string]any
	if err := json.Unmarshal(b, &meta); err != nil {
		t.Fatal(err)
	}
	if meta["file_format"] != "jsonl" {
		t.Fatalf("file_format = %v", meta["file_format"])
	}
	if meta["source"] != "unit test" {
		t.Fatal("custom metadata entry missing")
	}
	if meta["index"] != "ts" {
		t.Fatalf("index = %v, want ts", meta["index"])
	}
	shape, ok := meta["shape"].([]any)
	if !ok || len(shape) != 2 || shape[0].(float64) != 4 || shape[1].(float64) != 2 {
		t.Fatalf("shape = %v", meta["shape"])
	}
}

func TestUnknownEncoding(t *testing.T) {
	_, err := FormatFromString("pickle")
	if !errors.Is(err, table.ErrEncodingUnsupported) {
		t.Fatalf("want ErrEncodingUnsupported, got %v", err)
	}
	if f, err := FormatFromString(""); err != nil || f != FormatParquet {
		t.Fatalf("empty spelling should default to parquet, got %v, %v", f, err)
	}
}

func TestStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	gone := filepath.Join(dir, "out")
	e, err := New(gone)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(gone); err != nil {
		t.Fatal(err)
	}
	_, err = e.Save(resultFrame(t), Options{Format: FormatCSV})
	if !errors.Is(err, table.ErrStorageUnavailable) {
		t.Fatalf("want ErrStorageUnavailable, got %v", err)
	}
}
