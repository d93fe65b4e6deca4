package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

func TestSampleUsers_KeepsAllWhenSmall(t *testing.T) {
	tb := interactions(t,
		[3]string{"1", "10", "100"},
		[3]string{"2", "20", "101"},
	)

	out, err := SampleUsers(tb, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = SampleUsers(tb, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestSampleUsers_CapsDistinctUsers(t *testing.T) {
	tb := interactions(t,
		[3]string{"1", "10", "100"},
		[3]string{"1", "20", "101"},
		[3]string{"2", "10", "102"},
		[3]string{"3", "20", "103"},
		[3]string{"4", "30", "104"},
		[3]string{"5", "30", "105"},
	)

	out, err := SampleUsers(tb, 2)
	require.NoError(t, err)

	users := make(map[any]bool)
	for r := 0; r < out.Len(); r++ {
		users[out.Row(r)[0]] = true
	}
	assert.Len(t, users, 2)
	// Every kept row keeps its original relative order.
	assert.LessOrEqual(t, out.Len(), tb.Len())
}

func TestSampleUsers_Deterministic(t *testing.T) {
	build := func() *table.Table {
		return interactions(t,
			[3]string{"1", "10", "100"},
			[3]string{"2", "20", "101"},
			[3]string{"3", "30", "102"},
			[3]string{"4", "40", "103"},
			[3]string{"5", "50", "104"},
		)
	}

	a, err := SampleUsers(build(), 3)
	require.NoError(t, err)
	b, err := SampleUsers(build(), 3)
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for r := 0; r < a.Len(); r++ {
		assert.Equal(t, a.Row(r), b.Row(r))
	}
}
