// Package format renders query results for people and scripts.
//
// Outputs:
//
//	horizontal  a header of aliases, then one line per record; every cell is
//	            right-padded to Config.Padding
//	vertical    one "alias:" line per field, a blank line after each record
//	json        one JSON object per record, values in relaxed Extended JSON
//	<path>      anything else names a CSV file to write
//
// A wildcard query has no fixed columns, so horizontal and CSV output fall
// back to vertical.
package format

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/ir"
)

// Output names.
const (
	OutputHorizontal = "horizontal"
	OutputVertical   = "vertical"
	OutputJSON       = "json"
)

// DefaultDateLayout is the Go layout dates are shown with unless configured.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Config controls presentation. The zero value is usable: horizontal output,
// no padding, empty nulls, DefaultDateLayout and comma-separated CSV.
type Config struct {
	// Output is OutputHorizontal, OutputVertical, OutputJSON or a CSV file path.
	Output string

	// Padding is the minimum width of a horizontal cell or a vertical label.
	Padding int

	// NullValue is shown for null and missing values.
	NullValue string

	// DateLayout is a Go time layout. Dates are shown in UTC.
	DateLayout string

	// CSVSeparator separates CSV cells.
	CSVSeparator rune
}

func (c Config) dateLayout() string {
	if c.DateLayout == "" {
		return DefaultDateLayout
	}
	return c.DateLayout
}

// Mode returns the output actually used for res. Wildcard results cannot be
// laid out in fixed columns, so only vertical and JSON output are kept.
func (c Config) Mode(wildcard bool) string {
	out := c.Output
	if out == "" {
		out = OutputHorizontal
	}
	if wildcard && out != OutputVertical && out != OutputJSON {
		return OutputVertical
	}
	return out
}

// Print writes res to w in the configured output. For CSV output the records
// go to the named file and w receives progress lines.
//
// Print consumes res and closes it.
func Print(ctx context.Context, w io.Writer, res *engine.Result, cfg Config) error {
	defer res.Close(ctx)

	mode := cfg.Mode(res.Wildcard())
	if requested := cfg.Output; requested != "" && mode != requested {
		slog.Warn("retrieving all fields requires vertical output, forcing vertical output",
			"requested", requested)
	}

	switch mode {
	case OutputHorizontal:
		return Horizontal(ctx, w, res, cfg)
	case OutputVertical:
		return Vertical(ctx, w, res, cfg)
	case OutputJSON:
		return JSON(ctx, w, res, cfg)
	default:
		return printCSVFile(ctx, w, res, cfg, mode)
	}
}

// Horizontal writes a padded table: a header line of aliases and one line
// per record.
func Horizontal(ctx context.Context, w io.Writer, res *engine.Result, cfg Config) error {
	bw := bufio.NewWriter(w)
	fields := res.Fields()

	writeRow(bw, fields.Aliases(), cfg.Padding)
	for doc, err := range res.All(ctx) {
		if err != nil {
			bw.Flush()
			return err
		}
		cells := make([]string, 0, fields.Len())
		for _, path := range fields.All() {
			cells = append(cells, Value(doc.GetValue(path), cfg))
		}
		writeRow(bw, cells, cfg.Padding)
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, cells []string, padding int) {
	for _, c := range cells {
		w.WriteString(pad(c, padding))
	}
	w.WriteByte('\n')
}

// Vertical writes each record as "alias:" lines followed by a blank line.
// In wildcard mode every stored field is listed under its own name.
func Vertical(ctx context.Context, w io.Writer, res *engine.Result, cfg Config) error {
	bw := bufio.NewWriter(w)
	fields := res.Fields()

	for doc, err := range res.All(ctx) {
		if err != nil {
			bw.Flush()
			return err
		}
		if res.Wildcard() {
			for _, f := range doc.Document() {
				writeLabeled(bw, f.Key, Value(f.Value, cfg), cfg.Padding)
			}
		} else {
			for alias, path := range fields.All() {
				writeLabeled(bw, alias, Value(doc.GetValue(path), cfg), cfg.Padding)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func writeLabeled(w *bufio.Writer, label, value string, padding int) {
	w.WriteString(pad(label+":", padding))
	w.WriteString(value)
	w.WriteByte('\n')
}

// JSON writes one object per record. Selected fields appear under their
// aliases with typed values; a wildcard record is written whole.
func JSON(ctx context.Context, w io.Writer, res *engine.Result, cfg Config) error {
	bw := bufio.NewWriter(w)
	fields := res.Fields()

	for doc, err := range res.All(ctx) {
		if err != nil {
			bw.Flush()
			return err
		}
		row := doc.Document()
		if !res.Wildcard() {
			row = make(ir.IRDocument, 0, fields.Len())
			for alias, path := range fields.All() {
				row = append(row, ir.F(alias, doc.GetValue(path)))
			}
		}
		b, err := row.MarshalJSON()
		if err != nil {
			bw.Flush()
			return fmt.Errorf("encode record: %w", err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// CSV writes a header of aliases and one row per record.
func CSV(ctx context.Context, w io.Writer, res *engine.Result, cfg Config) error {
	cw := csv.NewWriter(w)
	if cfg.CSVSeparator != 0 {
		cw.Comma = cfg.CSVSeparator
	}
	fields := res.Fields()

	if err := cw.Write(fields.Aliases()); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for doc, err := range res.All(ctx) {
		if err != nil {
			cw.Flush()
			return err
		}
		row := make([]string, 0, fields.Len())
		for _, path := range fields.All() {
			row = append(row, Value(doc.GetValue(path), cfg))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func printCSVFile(ctx context.Context, w io.Writer, res *engine.Result, cfg Config, path string) error {
	fmt.Fprintf(w, "Writing output to CSV file: %s ...\n", path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	if err := CSV(ctx, f, res, cfg); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close CSV file: %w", err)
	}

	fmt.Fprintln(w, "Done")
	return nil
}

// Value renders one value as text. Null and missing values show as
// cfg.NullValue, dates use cfg.DateLayout, and documents and arrays are
// written as relaxed Extended JSON.
func Value(v ir.IRValue, cfg Config) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return cfg.NullValue
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRFloat:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case ir.IRBool:
		return strconv.FormatBool(bool(val))
	case ir.IRDateTime:
		return val.Time().UTC().Format(cfg.dateLayout())
	default:
		b, err := ir.MarshalIRValue(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// pad right-pads s with spaces to width runes. Longer strings are kept whole.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
