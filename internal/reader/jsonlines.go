package reader

import (
	"bufio"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

// JSONOptions configures a JSON-record read.
type JSONOptions struct {
	// Fields are the source field names to project, in order.
	Fields []string

	// Columns are the canonical names for Fields, in order.
	Columns []string

	// Types are the declared types for Columns, in order.
	Types []table.Type

	// Standard selects strict JSON-lines decoding. When false, each line
	// is parsed as a language-literal dictionary instead (pseudo-JSON).
	Standard bool
}

// ReadJSONLines reads a JSON-lines or pseudo-JSON file into a typed
// table. Each non-blank line is parsed independently: an unparseable
// line becomes a diagnostic and the read continues, so the output row
// count is always at most the input line count. Projecting a field that
// appears in no record is a structural error.
func ReadJSONLines(path string, opts JSONOptions) (*table.Table, []Diagnostic, error) {
	if len(opts.Fields) == 0 {
		return nil, nil, eris.New("reader: no fields selected")
	}
	if len(opts.Columns) != len(opts.Fields) || len(opts.Types) != len(opts.Fields) {
		return nil, nil, eris.Errorf("reader: %d fields but %d columns and %d types",
			len(opts.Fields), len(opts.Columns), len(opts.Types))
	}

	r, err := openRaw(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	type jsonRecord struct {
		line   int
		fields map[string]any
	}
	var records []jsonRecord
	var diags []Diagnostic
	seen := make(map[string]bool)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := decodeLine(text, opts.Standard)
		if err != nil {
			diags = append(diags, newDiagnostic(line, text, err))
			continue
		}
		for k := range rec {
			seen[k] = true
		}
		records = append(records, jsonRecord{line: line, fields: rec})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, eris.Wrapf(err, "reader: scan %s", path)
	}

	for _, f := range opts.Fields {
		if !seen[f] {
			return nil, nil, eris.Errorf("reader: %s: field %q not present in any record", path, f)
		}
	}

	schema := make(table.Schema, len(opts.Columns))
	for i, name := range opts.Columns {
		schema[i] = table.Column{Name: name, Type: opts.Types[i]}
	}
	t := table.New(schema)

	for _, rec := range records {
		vals := make([]any, len(opts.Fields))
		for i, f := range opts.Fields {
			vals[i] = rec.fields[f]
		}
		// Null selected fields drop the row silently, like any other
		// null retained value.
		if err := t.Append(vals); err != nil && !eris.Is(err, table.ErrNull) {
			diags = append(diags, newDiagnostic(rec.line, "", err))
		}
	}
	return t, diags, nil
}

func decodeLine(text string, standard bool) (map[string]any, error) {
	if standard {
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, eris.Wrap(err, "decode json")
		}
		return rec, nil
	}
	if !validLiteralStart(text) {
		return nil, eris.New("literal: line does not start a dictionary")
	}
	return parseLiteralDict(text)
}
