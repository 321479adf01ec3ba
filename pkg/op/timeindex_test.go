package op

import (
	"errors"
	"testing"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

func stringFrame(t *testing.T, name string, vals []any) *table.Frame {
	t.Helper()
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: name, Type: table.KindString, Nullable: true},
		{Name: "v", Type: table.KindFloat, Nullable: true},
	}})
	for i, v := range vals {
		f.AppendNullRow()
		_ = f.SetCell(i, name, v)
		_ = f.SetCell(i, "v", float64(i))
	}
	return f
}

func TestTimeIndexPromotesColumn(t *testing.T) {
	f := stringFrame(t, "ts", []any{"2024-01-01", "2024-01-02T12:30:00Z", "2024-01-03"})
	out, _, err := TimeIndex{Column: "ts"}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if !out.HasTimeIndex() || out.Index().Name() != "ts" {
		t.Fatal("time index not installed")
	}
	if _, ok := out.ColumnByName("ts"); ok {
		t.Fatal("indexed column should leave the regular columns")
	}
	ts, ok := out.Index().Get(1)
	if !ok {
		t.Fatal("index[1] should be present")
	}
	want := time.Date(2024, 1, 2, 12, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("index[1] = %v, want %v", ts, want)
	}
	// input untouched
	if _, ok := f.ColumnByName("ts"); !ok {
		t.Fatal("input frame was mutated")
	}
}

func TestTimeIndexFailPolicy(t *testing.T) {
	f := stringFrame(t, "ts", []any{"2024-01-01", "not a date"})
	_, _, err := TimeIndex{Column: "ts", OnError: Fail}.Apply(f)
	if !errors.Is(err, table.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
}

func TestTimeIndexCoercePolicy(t *testing.T) {
	f := stringFrame(t, "ts", []any{"2024-01-01", "garbage", nil})
	out, summary, err := TimeIndex{Column: "ts", OnError: Coerce}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Index().Get(1); ok {
		t.Fatal("unparseable entry should be missing")
	}
	if _, ok := out.Index().Get(2); ok {
		t.Fatal("null entry should stay missing")
	}
	if summary == "" {
		t.Fatal("summary should mention the coercion")
	}
}

func TestTimeIndexFromUnixSeconds(t *testing.T) {
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: "epoch", Type: table.KindInt, Nullable: true},
	}})
	f.AppendNullRow()
	_ = f.SetCell(0, "epoch", int64(1700000000))
	out, _, err := TimeIndex{Column: "epoch"}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	ts, _ := out.Index().Get(0)
	if ts.Unix() != 1700000000 {
		t.Fatalf("index[0] = %v", ts)
	}
}

func TestTimeIndexUnknownColumn(t *testing.T) {
	f := stringFrame(t, "ts", []any{"2024-01-01"})
	_, _, err := TimeIndex{Column: "missing"}.Apply(f)
	if !errors.Is(err, table.ErrColumnNotFound) {
		t.Fatalf("want ErrColumnNotFound, got %v", err)
	}
}
