package reader

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

// TableOptions configures a delimited-text read.
type TableOptions struct {
	// Delimiter separates fields. Single-rune delimiters go through
	// encoding/csv with lazy quoting; longer ones (e.g. "::") are split
	// literally, with no quote handling.
	Delimiter string

	// SelectIdx picks raw columns by position. Mutually exclusive with
	// SelectNames. Empty means all columns.
	SelectIdx []int

	// SelectNames picks raw columns by header name. Requires Header.
	SelectNames []string

	// Columns are the canonical names for the selected columns, in order.
	Columns []string

	// Types are the declared types for Columns, in order.
	Types []table.Type

	// Header marks the first row as a header row.
	Header bool
}

// ReadTable reads a delimited-text file into a typed table. Rows with a
// null value in any retained column, a failed type coercion, or a short
// record are dropped and reported as diagnostics. Selecting a column
// absent from the source is a structural error.
func ReadTable(path string, opts TableOptions) (*table.Table, []Diagnostic, error) {
	if len(opts.Columns) == 0 {
		return nil, nil, eris.New("reader: no output columns declared")
	}
	if len(opts.Types) != len(opts.Columns) {
		return nil, nil, eris.Errorf("reader: %d columns but %d types",
			len(opts.Columns), len(opts.Types))
	}
	if len(opts.SelectIdx) > 0 && len(opts.SelectNames) > 0 {
		return nil, nil, eris.New("reader: select by index and by name are mutually exclusive")
	}
	if len(opts.SelectNames) > 0 && !opts.Header {
		return nil, nil, eris.New("reader: select by name requires a header row")
	}

	r, err := openRaw(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	records, diags, err := readRecords(r, opts.Delimiter)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "reader: %s", path)
	}

	start := 0
	var header []string
	if opts.Header {
		if len(records) == 0 {
			return nil, nil, eris.Errorf("reader: %s: missing header row", path)
		}
		header = records[0].fields
		start = 1
	}

	sel, err := resolveSelection(opts, header)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "reader: %s", path)
	}
	// An index selection beyond the source width is a structural error,
	// like naming an absent column. The first record stands in for the
	// source's width; genuinely ragged rows still degrade per-row.
	if len(opts.SelectIdx) > 0 && len(records) > 0 {
		width := len(records[0].fields)
		for _, j := range opts.SelectIdx {
			if j >= width {
				return nil, nil, eris.Errorf("reader: %s: column index %d out of range (%d columns)",
					path, j, width)
			}
		}
	}

	schema := make(table.Schema, len(opts.Columns))
	for i, name := range opts.Columns {
		schema[i] = table.Column{Name: name, Type: opts.Types[i]}
	}
	t := table.New(schema)

	for _, rec := range records[start:] {
		fields, err := project(rec.fields, sel, len(opts.Columns))
		if err != nil {
			diags = append(diags, newDiagnostic(rec.line, strings.Join(rec.fields, opts.Delimiter), err))
			continue
		}
		if err := t.AppendStrings(fields); err != nil {
			diags = append(diags, newDiagnostic(rec.line, strings.Join(fields, ","), err))
		}
	}
	return t, diags, nil
}

type record struct {
	line   int
	fields []string
}

// readRecords splits the input into field records. Unparseable records
// become diagnostics, never read failures.
func readRecords(r io.Reader, delim string) ([]record, []Diagnostic, error) {
	if delim == "" {
		return nil, nil, eris.New("reader: empty delimiter")
	}
	if utf8.RuneCountInString(delim) == 1 {
		return readCSVRecords(r, []rune(delim)[0])
	}
	return readSplitRecords(r, delim)
}

func readCSVRecords(r io.Reader, comma rune) ([]record, []Diagnostic, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var records []record
	var diags []Diagnostic
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return records, diags, nil
		}
		if err != nil {
			line := 0
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.Line
			}
			diags = append(diags, newDiagnostic(line, "", err))
			continue
		}
		// Physical line, not record index: quoted fields can span lines.
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
}

func readSplitRecords(r io.Reader, delim string) ([]record, []Diagnostic, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records []record
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		records = append(records, record{line: line, fields: strings.Split(text, delim)})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "reader: scan")
	}
	return records, nil, nil
}

// resolveSelection maps the configured column selection to raw field
// positions. nil means the record is used as-is.
func resolveSelection(opts TableOptions, header []string) ([]int, error) {
	if len(opts.SelectIdx) > 0 {
		return opts.SelectIdx, nil
	}
	if len(opts.SelectNames) > 0 {
		byName := make(map[string]int, len(header))
		for i, h := range header {
			byName[strings.TrimSpace(h)] = i
		}
		sel := make([]int, len(opts.SelectNames))
		for i, name := range opts.SelectNames {
			j, ok := byName[name]
			if !ok {
				return nil, eris.Errorf("column %q not found in header %v", name, header)
			}
			sel[i] = j
		}
		return sel, nil
	}
	return nil, nil
}

func project(fields []string, sel []int, width int) ([]string, error) {
	if sel == nil {
		if len(fields) != width {
			return nil, eris.Errorf("expected %d fields, got %d", width, len(fields))
		}
		return fields, nil
	}
	out := make([]string, len(sel))
	for i, j := range sel {
		if j >= len(fields) {
			return nil, eris.Errorf("field index %d out of range (%d fields)", j, len(fields))
		}
		out[i] = fields[j]
	}
	return out, nil
}
