package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Douban processes the Douban rating dumps (douban-book, douban-movie,
// douban-music). Each variant ships a single {name}.tsv with columns
// UserID, ItemID, Rating, Timestamp; the timestamp is fractional epoch
// seconds and is truncated to integer seconds. No title metadata exists.
type Douban struct {
	base
}

// NewDouban creates a Douban processor for the given dataset directory.
func NewDouban(dir string, opts Options) (*Douban, error) {
	opts.MetaAvailable = false // source carries no titles
	return &Douban{base: newBase(dir, opts)}, nil
}

func (d *Douban) Family() string { return "douban" }

func (d *Douban) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	file := d.name + ".tsv"
	interactions, diags, err := reader.ReadTable(d.rawPath(file), reader.TableOptions{
		Delimiter: "\t",
		Columns:   []string{ColUserID, ColItemID, "Rating", ColTimestamp},
		Types:     []table.Type{table.Int, table.Int, table.Float, table.Float},
		Header:    true,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "douban: read %s", file)
	}
	logDiagnostics(log, file, diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, truncateToSeconds)
	if err != nil {
		return nil, nil, eris.Wrap(err, "douban: normalize timestamp")
	}
	if dropped > 0 {
		log.Warn("dropped rows with bad timestamps", zap.Int("count", dropped))
	}

	interactions, err = interactionsView(interactions)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded interactions", zap.Int("rows", interactions.Len()))
	return interactions, nil, nil
}
