package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// YooChoose processes the YooChoose session datasets (yoochoose-buys,
// yoochoose-clicks). The single {name}.dat file is headerless CSV whose
// first three columns are session id (used as the user), an ISO-8601
// timestamp with millisecond precision, and item id. Timestamps are
// normalized to epoch milliseconds to keep that precision. No title
// metadata exists.
type YooChoose struct {
	base
}

// NewYooChoose creates a YooChoose processor for the given dataset
// directory.
func NewYooChoose(dir string, opts Options) (*YooChoose, error) {
	opts.MetaAvailable = false
	return &YooChoose{base: newBase(dir, opts)}, nil
}

func (d *YooChoose) Family() string { return "yoochoose" }

func (d *YooChoose) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	file := d.name + ".dat"
	interactions, diags, err := reader.ReadTable(d.rawPath(file), reader.TableOptions{
		Delimiter: ",",
		SelectIdx: []int{0, 1, 2},
		Columns:   []string{ColUserID, ColTimestamp, ColItemID},
		Types:     []table.Type{table.Int, table.String, table.Int},
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "yoochoose: read %s", file)
	}
	logDiagnostics(log, file, diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, epochMillis(layoutISOMilli))
	if err != nil {
		return nil, nil, eris.Wrap(err, "yoochoose: normalize timestamp")
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
