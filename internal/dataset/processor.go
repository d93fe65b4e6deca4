// Package dataset implements the per-source processors that normalize
// raw recommendation-interaction dumps into the canonical
// (UserID, ItemID, Timestamp) schema, with an optional (ItemID, Title)
// metadata mapping.
package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Canonical column names shared by every processor.
const (
	ColUserID    = "UserID"
	ColItemID    = "ItemID"
	ColTimestamp = "Timestamp"
	ColTitle     = "Title"
)

// Options holds the construction parameters shared by all processors.
// KCore and SampleUserSize are carried for the downstream pipeline; the
// load step itself does not consume them.
type Options struct {
	MetaAvailable  bool
	KCore          int
	SampleUserSize int
}

// Processor loads one dataset family into the canonical schema.
type Processor interface {
	// Name returns the canonical dataset name, taken from the last
	// segment of the dataset directory (e.g. "movielens-1m").
	Name() string

	// Family returns the source family (e.g. "movielens").
	Family() string

	// Load reads the raw files and returns the interaction table with
	// exactly the columns (UserID, ItemID, Timestamp), plus the metadata
	// table (ItemID, Title) or nil when the source has no usable titles.
	Load(ctx context.Context) (*table.Table, *table.Table, error)
}

// base carries the directory layout and options common to all processors.
type base struct {
	dir  string
	name string
	opts Options
}

func newBase(dir string, opts Options) base {
	return base{
		dir:  filepath.Clean(dir),
		name: filepath.Base(filepath.Clean(dir)),
		opts: opts,
	}
}

func (b *base) Name() string     { return b.name }
func (b *base) Options() Options { return b.opts }

// rawPath returns the path of a raw source file under {dir}/raw.
func (b *base) rawPath(file string) string {
	return filepath.Join(b.dir, "raw", file)
}

// logDiagnostics reports recovered row-level failures. Ingestion has
// already continued past them; this is visibility only.
func logDiagnostics(log *zap.Logger, file string, diags []reader.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	log.Warn("dropped malformed rows",
		zap.String("file", file),
		zap.Int("count", len(diags)),
	)
	for _, d := range diags {
		log.Debug("bad row",
			zap.String("file", file),
			zap.Int("line", d.Line),
			zap.String("content", d.Content),
			zap.String("error", d.Err),
		)
	}
}

// interactionsView projects a loaded table to the canonical interaction
// columns, in canonical order.
func interactionsView(t *table.Table) (*table.Table, error) {
	out, err := t.Select(ColUserID, ColItemID, ColTimestamp)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: project interactions")
	}
	return out, nil
}

// cleanMetadata drops title rows that are null-stringified ("nan"),
// applies the per-source title cleanup, and drops titles that clean to
// empty. Null titles were already dropped at read time.
func cleanMetadata(meta *table.Table, clean func(string) string) (*table.Table, error) {
	j := meta.Schema().Index(ColTitle)
	if j < 0 {
		return nil, eris.New("dataset: metadata table has no Title column")
	}
	// Both null and the literal "nan" are checked: some upstream
	// serializers stringify null titles.
	meta = meta.Filter(func(row []any) bool {
		return row[j].(string) != "nan"
	})
	if clean == nil {
		return meta, nil
	}
	if _, err := meta.Convert(ColTitle, table.String, func(v any) (any, error) {
		s := clean(v.(string))
		if s == "" {
			return nil, table.ErrNull
		}
		return s, nil
	}); err != nil {
		return nil, eris.Wrap(err, "dataset: clean titles")
	}
	return meta, nil
}

// collapseSpaces trims s and collapses runs of whitespace to one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
