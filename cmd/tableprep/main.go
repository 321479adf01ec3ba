// Command tableprep runs a declarative cleaning pipeline over a table:
// it loads a CSV or JSONL input, applies the configured steps in order
// through a processor, prints the audit log and a preview, and exports
// the result.
//
// Usage:
//
//	tableprep -config pipeline.yaml
//
// The config may be JSON, TOML or YAML; the extension picks the decoder.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/St0rmMaster/Data-prep/pkg/export"
	"github.com/St0rmMaster/Data-prep/pkg/io/csvio"
	"github.com/St0rmMaster/Data-prep/pkg/io/jsonlio"
	"github.com/St0rmMaster/Data-prep/pkg/op"
	"github.com/St0rmMaster/Data-prep/pkg/processor"
	"github.com/St0rmMaster/Data-prep/pkg/profile"
	"github.com/St0rmMaster/Data-prep/pkg/table"
)

const version = "0.3.0"

func main() {
	var (
		configPath  = flag.String("config", "", "pipeline config file (.json, .toml or .yaml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("tableprep", version)
		return
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "tableprep: -config is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*configPath, logger); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Input.Path == "" {
		return fmt.Errorf("config: input.path is required")
	}

	start := time.Now()
	f, err := loadInput(cfg)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input.Path, err)
	}
	logger.Info("input loaded",
		"path", cfg.Input.Path, "rows", f.Rows(), "cols", f.Cols(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	p := processor.New(f)
	for i, step := range cfg.Steps {
		if len(step) != 1 {
			return fmt.Errorf("steps[%d]: expected exactly one operation, got %d", i, len(step))
		}
		for name, args := range step {
			if err := applyStep(p, name, args); err != nil {
				// fail fast: a rejected step aborts the run, the log still
				// shows everything up to and including the rejection.
				printMessages(p)
				return fmt.Errorf("steps[%d] %s: %w", i, name, err)
			}
			logger.Info("step applied", "step", name, "rows", p.Frame().Rows())
		}
	}

	printMessages(p)
	result := p.Frame()

	previewRows := cfg.PreviewRows
	if previewRows <= 0 {
		previewRows = 10
	}
	printPreview(result, previewRows)

	if cfg.Profile {
		fmt.Print(profile.ReportText(profile.Collect(result, 5), 5))
	}

	if cfg.Export != nil {
		format, err := export.FormatFromString(cfg.Export.Format)
		if err != nil {
			return err
		}
		exp, err := export.New(cfg.Export.Dir)
		if err != nil {
			return err
		}
		path, err := exp.Save(result, export.Options{
			Stem:        cfg.Export.Stem,
			Format:      format,
			Timestamped: cfg.Export.Timestamped,
			Metadata:    cfg.Export.Metadata,
		})
		if err != nil {
			return err
		}
		logger.Info("exported", "path", path, "format", format.String())
		fmt.Println(path)
	}
	return nil
}

func loadInput(cfg Config) (*table.Frame, error) {
	switch cfg.Input.Type {
	case "", "csv":
		opt := csvio.ReaderOptions{HasHeader: cfg.Input.HasHeader}
		if cfg.Input.Delimiter != "" {
			opt.Delimiter = rune(cfg.Input.Delimiter[0])
		}
		r, err := csvio.Open(cfg.Input.Path, opt)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, err
		}
		return r.ReadAll(schema)
	case "jsonl":
		r, err := jsonlio.Open(cfg.Input.Path, jsonlio.ReaderOptions{})
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		schema, err := r.InferSchema()
		if err != nil {
			return nil, err
		}
		return r.ReadAll(schema)
	default:
		return nil, fmt.Errorf("unknown input type %q (want csv or jsonl)", cfg.Input.Type)
	}
}

// applyStep translates one config entry into a processor call.
func applyStep(p *processor.Processor, name string, args map[string]any) error {
	switch name {
	case "set_time_index":
		policy, err := op.PolicyFromString(argString(args, "on_error"))
		if err != nil {
			return err
		}
		return p.SetTimeIndex(argString(args, "column"), policy)

	case "handle_missing":
		strategy, err := op.StrategyFromString(argString(args, "strategy"))
		if err != nil {
			return err
		}
		columns, err := argStringSlice(args, "columns")
		if err != nil {
			return err
		}
		return p.HandleMissing(op.Impute{
			Strategy:  strategy,
			Columns:   columns,
			FillValue: args["fill_value"],
			OverIndex: argBool(args, "over_index"),
		})

	case "convert_types":
		types, err := argStringMap(args, "types")
		if err != nil {
			return err
		}
		policy, err := op.PolicyFromString(argString(args, "on_error"))
		if err != nil {
			return err
		}
		return p.ConvertTypes(types, policy)

	case "drop_duplicates":
		subset, err := argStringSlice(args, "subset")
		if err != nil {
			return err
		}
		keep, err := op.KeepFromString(argString(args, "keep"))
		if err != nil {
			return err
		}
		return p.DropDuplicates(subset, keep)

	case "rename_columns":
		mapping, err := argStringMap(args, "mapping")
		if err != nil {
			return err
		}
		return p.RenameColumns(mapping)

	case "select_columns":
		columns, err := argStringSlice(args, "columns")
		if err != nil {
			return err
		}
		return p.SelectColumns(columns)

	default:
		return fmt.Errorf("unknown step %q", name)
	}
}

func printMessages(p *processor.Processor) {
	for _, m := range p.Messages() {
		fmt.Println(m)
	}
}

// printPreview renders the first max rows as a text table, the temporal
// index (when set) as the leading column.
func printPreview(f *table.Frame, max int) {
	t := prettytable.NewWriter()
	t.SetOutputMirror(os.Stdout)

	header := prettytable.Row{}
	if f.HasTimeIndex() {
		header = append(header, f.Index().Name())
	}
	for _, name := range f.Names() {
		header = append(header, name)
	}
	t.AppendHeader(header)

	n := f.Rows()
	if n > max {
		n = max
	}
	for r := 0; r < n; r++ {
		row := prettytable.Row{}
		if f.HasTimeIndex() {
			if ts, ok := f.Index().Get(r); ok {
				row = append(row, ts.Format(time.RFC3339))
			} else {
				row = append(row, "")
			}
		}
		for _, name := range f.Names() {
			col, _ := f.ColumnByName(name)
			row = append(row, cellString(col, r))
		}
		t.AppendRow(row)
	}
	t.Render()
	if f.Rows() > max {
		fmt.Printf("... %d more rows\n", f.Rows()-max)
	}
}

func cellString(col table.Column, r int) string {
	if col.IsNull(r) {
		return ""
	}
	switch c := col.(type) {
	case *table.BoolColumn:
		v, _ := c.Get(r)
		return strconv.FormatBool(v)
	case *table.IntColumn:
		v, _ := c.Get(r)
		return strconv.FormatInt(v, 10)
	case *table.FloatColumn:
		v, _ := c.Get(r)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *table.StringColumn:
		v, _ := c.Get(r)
		return v
	case *table.TimeColumn:
		v, _ := c.Get(r)
		return v.Format(time.RFC3339)
	}
	return ""
}
