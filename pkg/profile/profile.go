// Package profile computes per-column summary statistics, used by the
// CLI to describe the finished table.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type NumStats struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Sum   float64
}

func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int
	Nulls int
	True  int
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind table.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Collect profiles every column of the frame. topK bounds the reported
// value frequencies for string columns (0 disables them).
func Collect(f *table.Frame, topK int) []ColumnProfile {
	out := make([]ColumnProfile, 0, f.Cols())
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch c := col.(type) {
		case *table.FloatColumn:
			cp.Num = numStats(c.Len(), func(i int) (float64, bool) { return c.Get(i) })
		case *table.IntColumn:
			cp.Num = numStats(c.Len(), func(i int) (float64, bool) {
				v, ok := c.Get(i)
				return float64(v), ok
			})
		case *table.BoolColumn:
			st := &BoolStats{}
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				if !ok {
					st.Nulls++
					continue
				}
				st.Count++
				if v {
					st.True++
				}
			}
			cp.Bool = st
		case *table.StringColumn:
			st := &StringStats{Freqs: map[string]int{}}
			for i := 0; i < c.Len(); i++ {
				v, ok := c.Get(i)
				if !ok {
					st.Nulls++
					continue
				}
				st.Count++
				if topK > 0 {
					st.Freqs[v]++
				}
			}
			cp.Str = st
		case *table.TimeColumn:
			st := &StringStats{Freqs: map[string]int{}}
			for i := 0; i < c.Len(); i++ {
				if _, ok := c.Get(i); !ok {
					st.Nulls++
					continue
				}
				st.Count++
			}
			cp.Str = st
		}
		out = append(out, cp)
	}
	return out
}

func numStats(n int, get func(int) (float64, bool)) *NumStats {
	st := &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := 0; i < n; i++ {
		v, ok := get(i)
		if !ok {
			st.Nulls++
			continue
		}
		st.Count++
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		st.Sum += v
	}
	return st
}

// ReportText renders profiles as an indented text summary.
func ReportText(profiles []ColumnProfile, topK int) string {
	var b strings.Builder
	b.WriteString("column profile\n")
	for _, cp := range profiles {
		fmt.Fprintf(&b, "- %s (%s): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n",
				cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.Count-cp.Bool.True)
		case cp.Str != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			if topK > 0 && len(cp.Str.Freqs) > 0 {
				type kv struct {
					k string
					v int
				}
				arr := make([]kv, 0, len(cp.Str.Freqs))
				for k, v := range cp.Str.Freqs {
					arr = append(arr, kv{k, v})
				}
				sort.Slice(arr, func(i, j int) bool {
					if arr[i].v != arr[j].v {
						return arr[i].v > arr[j].v
					}
					return arr[i].k < arr[j].k
				})
				if topK < len(arr) {
					arr = arr[:topK]
				}
				for _, e := range arr {
					fmt.Fprintf(&b, "    %q: %d\n", e.k, e.v)
				}
			}
		default:
			b.WriteString("no data\n")
		}
	}
	return b.String()
}
