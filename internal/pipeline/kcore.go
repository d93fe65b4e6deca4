package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// KCore repeatedly removes interactions whose user or item has fewer
// than k interactions until every remaining user and item has degree at
// least k. k <= 1 keeps everything.
func KCore(t *table.Table, k int) (*table.Table, error) {
	if k <= 1 {
		return t, nil
	}
	ui := t.Schema().Index(dataset.ColUserID)
	ii := t.Schema().Index(dataset.ColItemID)
	if ui < 0 || ii < 0 {
		return nil, eris.New("pipeline: table is not an interaction table")
	}

	for {
		userDeg := make(map[any]int)
		itemDeg := make(map[any]int)
		for r := 0; r < t.Len(); r++ {
			row := t.Row(r)
			userDeg[row[ui]]++
			itemDeg[row[ii]]++
		}

		filtered := t.Filter(func(row []any) bool {
			return userDeg[row[ui]] >= k && itemDeg[row[ii]] >= k
		})
		if filtered.Len() == t.Len() {
			return filtered, nil
		}
		t = filtered
	}
}
