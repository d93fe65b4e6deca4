package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Food processes the Food.com recipe dataset. Interactions come from
// RAW_interactions.csv (user_id, recipe_id, date, rating, review; only
// the first three columns are read) with calendar-date timestamps.
// Titles come from RAW_recipes.csv; runs of whitespace in a title are
// collapsed to a single space.
type Food struct {
	base
}

// NewFood creates a Food processor for the given dataset directory.
func NewFood(dir string, opts Options) (*Food, error) {
	return &Food{base: newBase(dir, opts)}, nil
}

func (d *Food) Family() string { return "food" }

func (d *Food) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	interactions, diags, err := reader.ReadTable(d.rawPath("RAW_interactions.csv"), reader.TableOptions{
		Delimiter: ",",
		SelectIdx: []int{0, 1, 2},
		Columns:   []string{ColUserID, ColItemID, ColTimestamp},
		Types:     []table.Type{table.Int, table.Int, table.String},
		Header:    true,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "food: read RAW_interactions.csv")
	}
	logDiagnostics(log, "RAW_interactions.csv", diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, epochSeconds(layoutDate))
	if err != nil {
		return nil, nil, eris.Wrap(err, "food: normalize timestamp")
	}
	if dropped > 0 {
		log.Warn("dropped rows with bad timestamps", zap.Int("count", dropped))
	}
	log.Info("loaded interactions", zap.Int("rows", interactions.Len()))

	if !d.opts.MetaAvailable {
		return interactions, nil, nil
	}

	meta, diags, err := reader.ReadTable(d.rawPath("RAW_recipes.csv"), reader.TableOptions{
		Delimiter: ",",
		SelectIdx: []int{0, 1},
		Columns:   []string{ColTitle, ColItemID},
		Types:     []table.Type{table.String, table.Int},
		Header:    true,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "food: read RAW_recipes.csv")
	}
	logDiagnostics(log, "RAW_recipes.csv", diags)

	meta, err = meta.Select(ColItemID, ColTitle)
	if err != nil {
		return nil, nil, eris.Wrap(err, "food: project metadata")
	}
	meta, err = cleanMetadata(meta, collapseSpaces)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded metadata", zap.Int("rows", meta.Len()))
	return interactions, meta, nil
}
