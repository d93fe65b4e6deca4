package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

func interactions(t *testing.T, rows ...[3]string) *table.Table {
	t.Helper()
	tb := table.New(table.Schema{
		{Name: dataset.ColUserID, Type: table.Int},
		{Name: dataset.ColItemID, Type: table.Int},
		{Name: dataset.ColTimestamp, Type: table.Int},
	})
	for _, r := range rows {
		require.NoError(t, tb.AppendStrings(r[:]))
	}
	return tb
}

func TestKCore_Identity(t *testing.T) {
	tb := interactions(t, [3]string{"1", "10", "100"})

	out, err := KCore(tb, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	out, err = KCore(tb, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestKCore_DropsLowDegree(t *testing.T) {
	tb := interactions(t,
		[3]string{"1", "10", "100"},
		[3]string{"1", "20", "101"},
		[3]string{"2", "10", "102"},
		[3]string{"2", "20", "103"},
		[3]string{"3", "30", "104"}, // user 3 and item 30 both below 2
	)

	out, err := KCore(tb, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
}

func TestKCore_Cascades(t *testing.T) {
	// Dropping user 4 leaves item 30 with degree 1, which in turn drops
	// user 3's last interaction. Filtering must iterate to a fixpoint.
	tb := interactions(t,
		[3]string{"1", "10", "100"},
		[3]string{"1", "20", "101"},
		[3]string{"2", "10", "102"},
		[3]string{"2", "20", "103"},
		[3]string{"3", "20", "104"},
		[3]string{"3", "30", "105"},
		[3]string{"4", "30", "106"},
	)

	out, err := KCore(tb, 2)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	for r := 0; r < out.Len(); r++ {
		assert.NotEqual(t, int64(30), out.Row(r)[1])
		assert.NotEqual(t, int64(4), out.Row(r)[0])
	}
}

func TestKCore_NotAnInteractionTable(t *testing.T) {
	tb := table.New(table.Schema{{Name: "X", Type: table.Int}})
	_, err := KCore(tb, 2)
	assert.Error(t, err)
}
