package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Gowalla processes the Gowalla check-in dump: one gzipped
// tab-separated file without a header, columns UserID, Timestamp
// (ISO-8601), Latitude, Longitude, ItemID. Location coordinates are
// discarded; the check-in location id is the item. A location-based
// social network has no title metadata.
type Gowalla struct {
	base
}

// NewGowalla creates a Gowalla processor for the given dataset directory.
func NewGowalla(dir string, opts Options) (*Gowalla, error) {
	opts.MetaAvailable = false
	return &Gowalla{base: newBase(dir, opts)}, nil
}

func (d *Gowalla) Family() string { return "gowalla" }

func (d *Gowalla) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	const file = "loc-gowalla_totalCheckins.txt.gz"
	interactions, diags, err := reader.ReadTable(d.rawPath(file), reader.TableOptions{
		Delimiter: "\t",
		Columns:   []string{ColUserID, ColTimestamp, "Latitude", "Longitude", ColItemID},
		Types:     []table.Type{table.Int, table.String, table.Float, table.Float, table.Int},
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "gowalla: read %s", file)
	}
	logDiagnostics(log, file, diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, epochSeconds(layoutISO))
	if err != nil {
		return nil, nil, eris.Wrap(err, "gowalla: normalize timestamp")
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
