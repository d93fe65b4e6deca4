package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Yelp processes the Yelp academic dataset releases (yelp2018,
// yelp2022). Interactions come from the review file (user_id,
// business_id, date); titles from the business file. Both are standard
// JSON-lines. User and item ids are 22-character opaque strings.
type Yelp struct {
	base
}

// NewYelp creates a Yelp processor for the given dataset directory.
func NewYelp(dir string, opts Options) (*Yelp, error) {
	return &Yelp{base: newBase(dir, opts)}, nil
}

func (d *Yelp) Family() string { return "yelp" }

func (d *Yelp) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	interactions, diags, err := reader.ReadJSONLines(
		d.rawPath("yelp_academic_dataset_review.json"), reader.JSONOptions{
			Fields:   []string{"user_id", "business_id", "date"},
			Columns:  []string{ColUserID, ColItemID, ColTimestamp},
			Types:    []table.Type{table.String, table.String, table.String},
			Standard: true,
		})
	if err != nil {
		return nil, nil, eris.Wrap(err, "yelp: read reviews")
	}
	logDiagnostics(log, "yelp_academic_dataset_review.json", diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, epochSeconds(layoutDate))
	if err != nil {
		return nil, nil, eris.Wrap(err, "yelp: normalize timestamp")
	}
	if dropped > 0 {
		log.Warn("dropped rows with bad timestamps", zap.Int("count", dropped))
	}
	log.Info("loaded interactions", zap.Int("rows", interactions.Len()))

	if !d.opts.MetaAvailable {
		return interactions, nil, nil
	}

	meta, diags, err := reader.ReadJSONLines(
		d.rawPath("yelp_academic_dataset_business.json"), reader.JSONOptions{
			Fields:   []string{"business_id", "name"},
			Columns:  []string{ColItemID, ColTitle},
			Types:    []table.Type{table.String, table.String},
			Standard: true,
		})
	if err != nil {
		return nil, nil, eris.Wrap(err, "yelp: read businesses")
	}
	logDiagnostics(log, "yelp_academic_dataset_business.json", diags)

	meta, err = cleanMetadata(meta, nil)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded metadata", zap.Int("rows", meta.Len()))
	return interactions, meta, nil
}
