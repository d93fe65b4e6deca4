package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// RetailRocket processes the RetailRocket e-commerce event log
// (events.csv). Only "view" events count as interactions; addtocart and
// transaction events are discarded. Timestamps are already integer epoch
// milliseconds in the raw file. No title metadata exists.
type RetailRocket struct {
	base
}

// NewRetailRocket creates a RetailRocket processor for the given
// dataset directory.
func NewRetailRocket(dir string, opts Options) (*RetailRocket, error) {
	opts.MetaAvailable = false
	return &RetailRocket{base: newBase(dir, opts)}, nil
}

func (d *RetailRocket) Family() string { return "retailrocket" }

func (d *RetailRocket) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	events, diags, err := reader.ReadTable(d.rawPath("events.csv"), reader.TableOptions{
		Delimiter:   ",",
		SelectNames: []string{"timestamp", "visitorid", "event", "itemid"},
		Columns:     []string{ColTimestamp, ColUserID, "Event", ColItemID},
		Types:       []table.Type{table.Int, table.Int, table.String, table.Int},
		Header:      true,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "retailrocket: read events.csv")
	}
	logDiagnostics(log, "events.csv", diags)

	j := events.Schema().Index("Event")
	views := events.Filter(func(row []any) bool {
		return row[j].(string) == "view"
	})

	interactions, err := interactionsView(views)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded interactions",
		zap.Int("rows", interactions.Len()),
		zap.Int("non_view_events", events.Len()-views.Len()),
	)
	return interactions, nil, nil
}
