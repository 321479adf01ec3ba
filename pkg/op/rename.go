package op

import (
	"fmt"
	"strings"

	"github.com/St0rmMaster/Data-prep/pkg/table"
)

// Rename applies an old-name -> new-name mapping to the frame's columns.
type Rename struct {
	Mapping map[string]string
}

func (t Rename) Name() string { return "rename_columns" }

func (t Rename) Apply(f *table.Frame) (*table.Frame, string, error) {
	olds := sortedKeys(t.Mapping)
	for _, old := range olds {
		if _, ok := f.ColumnByName(old); !ok {
			return nil, "", &table.Error{Op: t.Name(), Column: old, Kind: table.ErrColumnNotFound}
		}
	}

	// simulate the final name set before touching anything
	final := make(map[string]string, f.Cols()) // final name -> source name
	for _, name := range f.Names() {
		target := name
		if mapped, ok := t.Mapping[name]; ok {
			target = mapped
		}
		if prev, taken := final[target]; taken {
			return nil, "", &table.Error{Op: t.Name(), Column: target, Kind: table.ErrNameCollision,
				Detail: fmt.Sprintf("both %q and %q map to %q", prev, name, target)}
		}
		final[target] = name
	}

	// two passes through temporary names so cyclic mappings (a<->b) work
	out := f.Clone()
	var pairs []string
	for i, old := range olds {
		if t.Mapping[old] == old {
			continue
		}
		if err := out.RenameColumn(old, tmpName(i)); err != nil {
			return nil, "", &table.Error{Op: t.Name(), Column: old, Kind: table.ErrNameCollision, Cause: err}
		}
	}
	for i, old := range olds {
		new := t.Mapping[old]
		if new == old {
			continue
		}
		if err := out.RenameColumn(tmpName(i), new); err != nil {
			return nil, "", &table.Error{Op: t.Name(), Column: new, Kind: table.ErrNameCollision, Cause: err}
		}
		pairs = append(pairs, fmt.Sprintf("%s -> %s", old, new))
	}
	summary := "renamed " + strings.Join(pairs, ", ")
	if len(pairs) == 0 {
		summary = "no columns renamed"
	}
	return out, summary, nil
}

func tmpName(i int) string { return fmt.Sprintf("\x00rename%d", i) }
