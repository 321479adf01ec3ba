package op

import (
	"errors"
	"testing"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

func floatFrame(t *testing.T, vals []any) *table.Frame {
	t.Helper()
	f := table.NewFrame(table.Schema{Columns: []table.ColumnSchema{
		{Name: "x", Type: table.KindFloat, Nullable: true},
		{Name: "label", Type: table.KindString, Nullable: true},
	}})
	for i, v := range vals {
		f.AppendNullRow()
		_ = f.SetCell(i, "x", v)
		_ = f.SetCell(i, "label", "r")
	}
	return f
}

func getFloat(t *testing.T, f *table.Frame, name string, i int) (float64, bool) {
	t.Helper()
	c, ok := f.ColumnByName(name)
	if !ok {
		t.Fatalf("no column %s", name)
	}
	return c.(*table.FloatColumn).Get(i)
}

func TestForwardFill(t *testing.T) {
	f := floatFrame(t, []any{nil, 1.0, nil, nil, 4.0})
	out, _, err := Impute{Strategy: ForwardFill}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := getFloat(t, out, "x", 0); ok {
		t.Fatal("leading null has nothing to fill from")
	}
	for i, want := range map[int]float64{2: 1.0, 3: 1.0, 4: 4.0} {
		v, ok := getFloat(t, out, "x", i)
		if !ok || v != want {
			t.Fatalf("row %d = %v (present=%v), want %v", i, v, ok, want)
		}
	}
	// input untouched
	if _, ok := getFloat(t, f, "x", 2); ok {
		t.Fatal("input frame was mutated")
	}
}

func TestBackwardFill(t *testing.T) {
	f := floatFrame(t, []any{nil, 1.0, nil, 4.0, nil})
	out, _, err := Impute{Strategy: BackwardFill}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := getFloat(t, out, "x", 0)
	if !ok || v != 1.0 {
		t.Fatalf("row 0 = %v, want 1", v)
	}
	v, ok = getFloat(t, out, "x", 2)
	if !ok || v != 4.0 {
		t.Fatalf("row 2 = %v, want 4", v)
	}
	if _, ok := getFloat(t, out, "x", 4); ok {
		t.Fatal("trailing null has nothing to backfill from")
	}
}

func TestDropRows(t *testing.T) {
	f := floatFrame(t, []any{1.0, nil, 3.0})
	out, _, err := Impute{Strategy: DropRows}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
}

func TestDropRowsRejectsEmptyResult(t *testing.T) {
	f := floatFrame(t, []any{nil, nil})
	_, _, err := Impute{Strategy: DropRows, Columns: []string{"x"}}.Apply(f)
	if !errors.Is(err, table.ErrEmptyResultAfterFilter) {
		t.Fatalf("want ErrEmptyResultAfterFilter, got %v", err)
	}
}

func TestDropColumns(t *testing.T) {
	f := floatFrame(t, []any{1.0, nil})
	out, _, err := Impute{Strategy: DropColumns}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.ColumnByName("x"); ok {
		t.Fatal("column with nulls should be dropped")
	}
	if _, ok := out.ColumnByName("label"); !ok {
		t.Fatal("complete column should survive")
	}
}

func TestFillMeanAndMedian(t *testing.T) {
	f := floatFrame(t, []any{1.0, nil, 3.0, 8.0})
	out, _, err := Impute{Strategy: FillMean, Columns: []string{"x"}}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := getFloat(t, out, "x", 1)
	if v != 4.0 {
		t.Fatalf("mean fill = %v, want 4", v)
	}

	out, _, err = Impute{Strategy: FillMedian, Columns: []string{"x"}}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, _ = getFloat(t, out, "x", 1)
	if v != 3.0 {
		t.Fatalf("median fill = %v, want 3", v)
	}
}

func TestFillMeanRejectsExplicitNonNumeric(t *testing.T) {
	f := floatFrame(t, []any{1.0, nil})
	_, _, err := Impute{Strategy: FillMean, Columns: []string{"label"}}.Apply(f)
	if !errors.Is(err, table.ErrUnsupportedStrategyForType) {
		t.Fatalf("want ErrUnsupportedStrategyForType, got %v", err)
	}
	// all-columns mode skips non-numeric columns instead
	if _, _, err := (Impute{Strategy: FillMean}).Apply(f); err != nil {
		t.Fatalf("all-columns mean should skip strings, got %v", err)
	}
}

func TestFillConstant(t *testing.T) {
	f := floatFrame(t, []any{nil, 2.0})
	out, _, err := Impute{Strategy: FillConstant, Columns: []string{"x"}, FillValue: 7.0}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := getFloat(t, out, "x", 0)
	if v != 7.0 {
		t.Fatalf("constant fill = %v, want 7", v)
	}

	_, _, err = Impute{Strategy: FillConstant, Columns: []string{"x"}, FillValue: "oops"}.Apply(f)
	if !errors.Is(err, table.ErrUnsupportedStrategyForType) {
		t.Fatalf("mismatched fill value: want ErrUnsupportedStrategyForType, got %v", err)
	}
	_, _, err = Impute{Strategy: FillConstant, Columns: []string{"x"}}.Apply(f)
	if err == nil {
		t.Fatal("fill_constant without a value must fail")
	}
}

func TestFillZero(t *testing.T) {
	f := floatFrame(t, []any{nil, 2.0})
	out, _, err := Impute{Strategy: FillZero}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := getFloat(t, out, "x", 0)
	if !ok || v != 0 {
		t.Fatalf("zero fill = %v (present=%v)", v, ok)
	}
}

func TestInterpolateLinear(t *testing.T) {
	f := floatFrame(t, []any{nil, 10.0, nil, nil, 40.0, nil})
	out, _, err := Impute{Strategy: Interpolate}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := getFloat(t, out, "x", 0); ok {
		t.Fatal("leading null must stay missing")
	}
	v, _ := getFloat(t, out, "x", 2)
	if v != 20.0 {
		t.Fatalf("row 2 = %v, want 20", v)
	}
	v, _ = getFloat(t, out, "x", 3)
	if v != 30.0 {
		t.Fatalf("row 3 = %v, want 30", v)
	}
	// trailing null carries the last observation
	v, ok := getFloat(t, out, "x", 5)
	if !ok || v != 40.0 {
		t.Fatalf("row 5 = %v (present=%v), want 40", v, ok)
	}
}

func TestInterpolateOverTimeIndex(t *testing.T) {
	f := floatFrame(t, []any{0.0, nil, 30.0})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// uneven spacing: the gap sits 1/3 of the way through the interval
	times := []time.Time{base, base.Add(1 * time.Hour), base.Add(3 * time.Hour)}
	if err := f.SetIndex(table.NewTimeIndex("ts", times, nil)); err != nil {
		t.Fatal(err)
	}
	out, _, err := Impute{Strategy: Interpolate, OverIndex: true}.Apply(f)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := getFloat(t, out, "x", 1)
	if v != 10.0 {
		t.Fatalf("time-weighted fill = %v, want 10", v)
	}
}

func TestImputeUnknownColumn(t *testing.T) {
	f := floatFrame(t, []any{1.0})
	_, _, err := Impute{Strategy: ForwardFill, Columns: []string{"nope"}}.Apply(f)
	if !errors.Is(err, table.ErrColumnNotFound) {
		t.Fatalf("want ErrColumnNotFound, got %v", err)
	}
}

func TestStrategyRoundTrip(t *testing.T) {
	for s, name := range strategyNames {
		got, err := StrategyFromString(name)
		if err != nil || got != s {
			t.Fatalf("%q: got %v, %v", name, got, err)
		}
	}
	if _, err := StrategyFromString("mystery"); err == nil {
		t.Fatal("unknown strategy should error")
	}
}
