package table

import (
	"testing"
	"time"
)

func makeFrame(t *testing.T) *Frame {
	t.Helper()
	f := NewFrame(Schema{Columns: []ColumnSchema{
		{Name: "x", Type: KindFloat, Nullable: true},
		{Name: "n", Type: KindInt, Nullable: true},
		{Name: "s", Type: KindString, Nullable: true},
	}})
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "x", 1.5)
	_ = f.SetCell(1, "x", 2.5)
	_ = f.SetCell(0, "n", int64(10))
	_ = f.SetCell(2, "n", int64(30))
	_ = f.SetCell(0, "s", "a")
	_ = f.SetCell(1, "s", "b")
	return f
}

func TestCloneIsIndependent(t *testing.T) {
	f := makeFrame(t)
	c := f.Clone()
	if !f.Equal(c) {
		t.Fatal("clone should equal original")
	}
	_ = c.SetCell(0, "x", 99.0)
	col, _ := f.ColumnByName("x")
	v, _ := col.(*FloatColumn).Get(0)
	if v != 1.5 {
		t.Fatalf("mutating the clone leaked into the original: got %v", v)
	}
	if f.Equal(c) {
		t.Fatal("frames should differ after clone mutation")
	}
}

func TestFilterRowsKeepsIndex(t *testing.T) {
	f := makeFrame(t)
	times := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	if err := f.SetIndex(NewTimeIndex("ts", times, nil)); err != nil {
		t.Fatal(err)
	}
	out := f.FilterRows([]bool{true, false, true})
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
	if !out.HasTimeIndex() || out.Index().Len() != 2 {
		t.Fatal("index should be filtered alongside the rows")
	}
	ts, ok := out.Index().Get(1)
	if !ok || !ts.Equal(times[2]) {
		t.Fatalf("index[1] = %v, want %v", ts, times[2])
	}
}

func TestSetIndexLengthMismatch(t *testing.T) {
	f := makeFrame(t)
	err := f.SetIndex(NewTimeIndex("ts", []time.Time{{}}, nil))
	if err == nil {
		t.Fatal("expected error for short index")
	}
}

func TestRenameCollision(t *testing.T) {
	f := makeFrame(t)
	if err := f.RenameColumn("x", "s"); err == nil {
		t.Fatal("renaming onto an existing column must fail")
	}
	if err := f.RenameColumn("x", "x"); err != nil {
		t.Fatalf("self-rename should be a no-op, got %v", err)
	}
	if err := f.RenameColumn("x", "y"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.ColumnByName("y"); !ok {
		t.Fatal("renamed column not addressable by new name")
	}
	if _, ok := f.ColumnByName("x"); ok {
		t.Fatal("old name should be gone")
	}
}

func TestSelectOrderAndDuplicates(t *testing.T) {
	f := makeFrame(t)
	out, err := f.Select([]string{"s", "x"})
	if err != nil {
		t.Fatal(err)
	}
	names := out.Names()
	if len(names) != 2 || names[0] != "s" || names[1] != "x" {
		t.Fatalf("names = %v, want [s x]", names)
	}
	if _, err := f.Select([]string{"x", "x"}); err == nil {
		t.Fatal("duplicate selection must fail")
	}
}

func TestAddReplaceDropColumn(t *testing.T) {
	f := makeFrame(t)
	b := NewBoolColumn("flag", f.Rows())
	b.Set(0, true)
	if err := f.AddColumn(b); err != nil {
		t.Fatal(err)
	}
	if f.Cols() != 4 {
		t.Fatalf("cols = %d, want 4", f.Cols())
	}
	if err := f.AddColumn(NewBoolColumn("flag", f.Rows())); err == nil {
		t.Fatal("duplicate AddColumn must fail")
	}

	repl := NewStringColumn("n", f.Rows())
	repl.Set(0, "ten")
	if err := f.ReplaceColumn("n", repl); err != nil {
		t.Fatal(err)
	}
	if f.Schema().Columns[1].Type != KindString {
		t.Fatal("schema kind not updated after replace")
	}

	if err := f.DropColumn("flag"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.ColumnByName("flag"); ok {
		t.Fatal("dropped column still addressable")
	}
	// positions after the dropped column must stay addressable
	col, ok := f.ColumnByName("s")
	if !ok || col.Name() != "s" {
		t.Fatal("byName mapping broken after drop")
	}
}

func TestMissingCount(t *testing.T) {
	f := makeFrame(t)
	if got := f.MissingCount(nil); got != 3 {
		t.Fatalf("total missing = %d, want 3", got)
	}
	if got := f.MissingCount([]string{"x"}); got != 1 {
		t.Fatalf("missing in x = %d, want 1", got)
	}
}

func TestAppendNullRowGrowsIndex(t *testing.T) {
	f := makeFrame(t)
	_ = f.SetIndex(NewTimeIndex("ts", make([]time.Time, 3), nil))
	f.AppendNullRow()
	if f.Index().Len() != 4 {
		t.Fatalf("index len = %d, want 4", f.Index().Len())
	}
	if _, ok := f.Index().Get(3); ok {
		t.Fatal("appended index entry should be null")
	}
}
