package op

import (
	"errors"
	"testing"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

func dupFrame(t *testing.T) *table.Frame {
	t.Helper()
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: "k", Type: table.KindString, Nullable: true},
		{Name: "v", Type: table.KindInt, Nullable: true},
	}})
	rows := []struct {
		k any
		v any
	}{
		{"a", int64(1)},
		{"b", int64(2)},
		{"a", int64(1)}, // dup of row 0
		{"a", int64(3)}, // dup of row 0 over subset [k] only
		{nil, int64(4)},
		{nil, int64(4)}, // dup with null key
	}
	for i, r := range rows {
		f.AppendNullRow()
		_ = f.SetCell(i, "k", r.k)
		_ = f.SetCell(i, "v", r.v)
	}
	return f
}

func TestDropDuplicatesKeepFirst(t *testing.T) {
	f := dupFrame(t)
	out, _, err := DropDuplicates{Keep: KeepFirst}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	// full-row dups: (a,1) and (null,4) collapse
	if out.Rows() != 4 {
		t.Fatalf("rows = %d, want 4", out.Rows())
	}
	c, _ := out.ColumnByName("v")
	v, _ := c.(*table.IntColumn).Get(0)
	if v != 1 {
		t.Fatalf("first survivor v = %d, want 1", v)
	}
	if f.Rows() != 6 {
		t.Fatal("input frame was mutated")
	}
}

func TestDropDuplicatesSubsetKeepLast(t *testing.T) {
	f := dupFrame(t)
	out, _, err := DropDuplicates{Subset: []string{"k"}, Keep: KeepLast}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	// groups over k: {a,a,a}, {b}, {null,null} -> 3 survivors, row order kept
	if out.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", out.Rows())
	}
	// the "a" survivor is the last member of its group, carrying v=3
	kc, _ := out.ColumnByName("k")
	vc, _ := out.ColumnByName("v")
	k1, _ := kc.(*table.StringColumn).Get(1)
	v1, _ := vc.(*table.IntColumn).Get(1)
	if k1 != "a" || v1 != 3 {
		t.Fatalf("row 1 = (%q,%d), want (a,3)", k1, v1)
	}
}

func TestDropDuplicatesKeepNone(t *testing.T) {
	f := dupFrame(t)
	out, _, err := DropDuplicates{Keep: KeepNone}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	// only the two singleton rows survive: (b,2) and (a,3)
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
}

func TestDropDuplicatesIdempotent(t *testing.T) {
	f := dupFrame(t)
	once, _, err := DropDuplicates{Keep: KeepFirst}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	twice, _, err := DropDuplicates{Keep: KeepFirst}.Apply(once)
	if err != nil {
		t.Fatal(err)
	}
	if !once.Equal(twice) {
		t.Fatal("second pass should change nothing")
	}
}

func TestDropDuplicatesRejectsEmptyResult(t *testing.T) {
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: "k", Type: table.KindString, Nullable: true},
	}})
	for i := 0; i < 2; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "k", "same")
	}
	_, _, err := DropDuplicates{Keep: KeepNone}.Apply(f)
	if !errors.Is(err, table.ErrEmptyResultAfterFilter) {
		t.Fatalf("want ErrEmptyResultAfterFilter, got %v", err)
	}
}

func TestDropDuplicatesUnknownSubset(t *testing.T) {
	f := dupFrame(t)
	_, _, err := DropDuplicates{Subset: []string{"nope"}}.Apply(f)
	if !errors.Is(err, table.ErrColumnNotFound) {
		t.Fatalf("want ErrColumnNotFound, got %v", err)
	}
}
