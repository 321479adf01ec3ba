// Package processor drives the cleaning of one table: it owns a private
// working copy of the input frame, exposes one method per operation kind,
// applies operations strictly in invocation order and keeps an auditable
// log of every step. The input frame is never mutated.
//
// Each method call is independently atomic: a rejected step leaves the
// working frame at its last good state and is recorded in the log. The
// processor never rolls back committed steps; after a rejection the
// caller decides whether to continue, abort, or start over from the
// untouched original.
//
// A Processor is single-use and not safe for concurrent calls.
package processor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/St0rmMaster/Data-prep/pkg/op"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

type Processor struct {
	original *table.Frame
	working  *table.Frame
	log      []LogEntry
	failed   bool
}

// New deep-copies raw into the working frame. The original is retained
// read-only for Original(); the caller's frame is never touched.
func New(raw *table.Frame) *Processor {
	p := &Processor{original: raw.Clone(), working: raw.Clone()}
	p.log = append(p.log, LogEntry{
		Op:      "init",
		Outcome: fmt.Sprintf("working copy created, %d rows x %d columns", raw.Rows(), raw.Cols()),
		OK:      true,
		At:      time.Now(),
	})
	return p
}

// run dispatches one operation: on success the working frame is replaced
// wholesale and a log entry appended; on rejection the failure is logged
// and the typed error returned with the working frame untouched.
func (p *Processor) run(o op.Operation, params string) error {
	out, summary, err := o.Apply(p.working)
	entry := LogEntry{Op: o.Name(), Params: params, At: time.Now()}
	if err != nil {
		entry.Outcome = err.Error()
		p.log = append(p.log, entry)
		p.failed = true
		return err
	}
	entry.Outcome = summary
	entry.OK = true
	p.log = append(p.log, entry)
	p.working = out
	return nil
}

// SetTimeIndex parses column into timestamps and promotes it to the row
// index.
func (p *Processor) SetTimeIndex(column string, onError op.Policy) error {
	return p.run(
		op.TimeIndex{Column: column, OnError: onError},
		fmt.Sprintf("column=%s on_error=%s", column, onError),
	)
}

// HandleMissing applies a missing-value strategy over cfg.Columns (all
// columns when empty).
func (p *Processor) HandleMissing(cfg op.Impute) error {
	params := "strategy=" + cfg.Strategy.String()
	if len(cfg.Columns) > 0 {
		params += " columns=" + strings.Join(cfg.Columns, ",")
	}
	if cfg.FillValue != nil {
		params += fmt.Sprintf(" fill=%v", cfg.FillValue)
	}
	if cfg.OverIndex {
		params += " axis=index"
	}
	return p.run(cfg, params)
}

// ConvertTypes casts columns to the named target types.
func (p *Processor) ConvertTypes(types map[string]string, onError op.Policy) error {
	pairs := make([]string, 0, len(types))
	for name, target := range types {
		pairs = append(pairs, name+":"+target)
	}
	sort.Strings(pairs)
	return p.run(
		op.Convert{Types: types, OnError: onError},
		fmt.Sprintf("types=%s on_error=%s", strings.Join(pairs, ","), onError),
	)
}

// DropDuplicates removes duplicate rows compared over subset (all columns
// when nil).
func (p *Processor) DropDuplicates(subset []string, keep op.Keep) error {
	params := "keep=" + keep.String()
	if len(subset) > 0 {
		params += " subset=" + strings.Join(subset, ",")
	}
	return p.run(op.DropDuplicates{Subset: subset, Keep: keep}, params)
}

// RenameColumns applies an old->new column name mapping.
func (p *Processor) RenameColumns(mapping map[string]string) error {
	pairs := make([]string, 0, len(mapping))
	for old, new := range mapping {
		pairs = append(pairs, old+"->"+new)
	}
	sort.Strings(pairs)
	return p.run(op.Rename{Mapping: mapping}, strings.Join(pairs, ","))
}

// SelectColumns keeps only the named columns, in the requested order.
func (p *Processor) SelectColumns(columns []string) error {
	return p.run(op.SelectColumns{Columns: columns}, "columns="+strings.Join(columns, ","))
}

// Apply runs a caller-supplied table-to-table function against a copy of
// the working frame.
func (p *Processor) Apply(label string, fn op.Func) error {
	return p.run(op.Custom{Label: label, Fn: fn}, "fn="+label)
}

// Frame returns a defensive copy of the current working frame.
func (p *Processor) Frame() *table.Frame { return p.working.Clone() }

// Original returns a copy of the untouched input frame.
func (p *Processor) Original() *table.Frame { return p.original.Clone() }

// Failed reports whether any step has been rejected since construction.
func (p *Processor) Failed() bool { return p.failed }

// Log returns the audit trail in application order. The returned slice is
// a copy; only the processor appends to the log.
func (p *Processor) Log() []LogEntry {
	out := make([]LogEntry, len(p.log))
	copy(out, p.log)
	return out
}

// Messages renders the log as human-readable lines.
func (p *Processor) Messages() []string {
	out := make([]string, len(p.log))
	for i, e := range p.log {
		out[i] = e.String()
	}
	return out
}
