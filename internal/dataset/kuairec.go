package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// kuaiRecWatchRatioMin is the engagement threshold: interactions where
// the cumulative watch time is less than twice the video duration are
// treated as negative and dropped.
const kuaiRecWatchRatioMin = 2.0

// KuaiRec processes the KuaiRec short-video dataset. Two
// partially-overlapping interaction files are unioned: big_matrix.csv
// (sparse) and small_matrix.csv (fully observed). Rows below the
// watch-ratio threshold are dropped, then the ratio column itself.
//
// The timestamp column is deliberately left as the raw
// fractional-seconds float (millisecond resolution) instead of being
// normalized to integer epoch seconds like every other source. Keep
// that in mind when comparing timestamps across sources.
type KuaiRec struct {
	base
}

// NewKuaiRec creates a KuaiRec processor for the given dataset directory.
func NewKuaiRec(dir string, opts Options) (*KuaiRec, error) {
	opts.MetaAvailable = false // video captions are unusable as titles
	return &KuaiRec{base: newBase(dir, opts)}, nil
}

func (d *KuaiRec) Family() string { return "kuairec" }

func (d *KuaiRec) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	big, err := d.readMatrix(log, "big_matrix.csv")
	if err != nil {
		return nil, nil, err
	}
	small, err := d.readMatrix(log, "small_matrix.csv")
	if err != nil {
		return nil, nil, err
	}
	if err := big.Concat(small); err != nil {
		return nil, nil, eris.Wrap(err, "kuairec: union matrices")
	}

	j := big.Schema().Index("WatchRatio")
	interactions := big.Filter(func(row []any) bool {
		return row[j].(float64) >= kuaiRecWatchRatioMin
	})

	interactions, err = interactionsView(interactions)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded interactions",
		zap.Int("rows", interactions.Len()),
		zap.Int("below_threshold", big.Len()-interactions.Len()),
	)
	return interactions, nil, nil
}

func (d *KuaiRec) readMatrix(log *zap.Logger, file string) (*table.Table, error) {
	t, diags, err := reader.ReadTable(d.rawPath(file), reader.TableOptions{
		Delimiter:   ",",
		SelectNames: []string{"user_id", "video_id", "timestamp", "watch_ratio"},
		Columns:     []string{ColUserID, ColItemID, ColTimestamp, "WatchRatio"},
		Types:       []table.Type{table.Int, table.Int, table.Float, table.Float},
		Header:      true,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "kuairec: read %s", file)
	}
	logDiagnostics(log, file, diags)
	return t, nil
}
