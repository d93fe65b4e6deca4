package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Steam processes the Steam review dumps. Neither file is valid
// JSON-lines: each line is a language-literal dictionary, so both go
// through the tolerant pseudo-JSON reader. Reviews provide the
// interactions (username, product_id, calendar date); games provide the
// titles. Item ids are normalized to strings since the raw dumps mix
// numeric and string forms.
type Steam struct {
	base
}

// NewSteam creates a Steam processor for the given dataset directory.
func NewSteam(dir string, opts Options) (*Steam, error) {
	return &Steam{base: newBase(dir, opts)}, nil
}

func (d *Steam) Family() string { return "steam" }

func (d *Steam) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	interactions, diags, err := reader.ReadJSONLines(d.rawPath("steam_reviews.json"), reader.JSONOptions{
		Fields:  []string{"username", "product_id", "date"},
		Columns: []string{ColUserID, ColItemID, ColTimestamp},
		Types:   []table.Type{table.String, table.String, table.String},
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "steam: read steam_reviews.json")
	}
	logDiagnostics(log, "steam_reviews.json", diags)

	dropped, err := interactions.Convert(ColTimestamp, table.Int, epochSeconds(layoutDate))
	if err != nil {
		return nil, nil, eris.Wrap(err, "steam: normalize timestamp")
	}
	if dropped > 0 {
		log.Warn("dropped rows with bad timestamps", zap.Int("count", dropped))
	}
	log.Info("loaded interactions", zap.Int("rows", interactions.Len()))

	if !d.opts.MetaAvailable {
		return interactions, nil, nil
	}

	meta, diags, err := reader.ReadJSONLines(d.rawPath("steam_games.json"), reader.JSONOptions{
		Fields:  []string{"id", "title"},
		Columns: []string{ColItemID, ColTitle},
		Types:   []table.Type{table.String, table.String},
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "steam: read steam_games.json")
	}
	logDiagnostics(log, "steam_games.json", diags)

	meta, err = cleanMetadata(meta, nil)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded metadata", zap.Int("rows", meta.Len()))
	return interactions, meta, nil
}
