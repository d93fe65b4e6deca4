package reader

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTable_HeaderAndTypes(t *testing.T) {
	path := writeFile(t, "ratings.csv", "user,item,ts\n1,10,100\n2,20,200\n")

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		Columns:   []string{"UserID", "ItemID", "Timestamp"},
		Types:     []table.Type{table.Int, table.Int, table.Int},
		Header:    true,
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, []any{int64(1), int64(10), int64(100)}, tb.Row(0))
}

func TestReadTable_MultiCharDelimiter(t *testing.T) {
	path := writeFile(t, "ratings.dat", "1::10::5::100\n2::20::4::200\n")

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: "::",
		Columns:   []string{"UserID", "ItemID", "Rating", "Timestamp"},
		Types:     []table.Type{table.Int, table.Int, table.Float, table.Int},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, []any{int64(2), int64(20), 4.0, int64(200)}, tb.Row(1))
}

func TestReadTable_SelectByIndex(t *testing.T) {
	path := writeFile(t, "in.csv", "u,i,d,rating,review\n1,10,2003-02-17,5,great\n")

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		SelectIdx: []int{0, 1, 2},
		Columns:   []string{"UserID", "ItemID", "Timestamp"},
		Types:     []table.Type{table.Int, table.Int, table.String},
		Header:    true,
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 1, tb.Len())
	assert.Equal(t, []any{int64(1), int64(10), "2003-02-17"}, tb.Row(0))
}

func TestReadTable_SelectByName(t *testing.T) {
	path := writeFile(t, "events.csv", "timestamp,visitorid,event,itemid,extra\n100,1,view,10,x\n")

	tb, _, err := ReadTable(path, TableOptions{
		Delimiter:   ",",
		SelectNames: []string{"timestamp", "visitorid", "event", "itemid"},
		Columns:     []string{"Timestamp", "UserID", "Event", "ItemID"},
		Types:       []table.Type{table.Int, table.Int, table.String, table.Int},
		Header:      true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, tb.Len())
	assert.Equal(t, []any{int64(100), int64(1), "view", int64(10)}, tb.Row(0))
}

func TestReadTable_MissingColumnIsStructural(t *testing.T) {
	path := writeFile(t, "events.csv", "timestamp,visitorid\n100,1\n")

	_, _, err := ReadTable(path, TableOptions{
		Delimiter:   ",",
		SelectNames: []string{"timestamp", "itemid"},
		Columns:     []string{"Timestamp", "ItemID"},
		Types:       []table.Type{table.Int, table.Int},
		Header:      true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itemid")
}

func TestReadTable_IndexOutOfRangeIsStructural(t *testing.T) {
	// A source uniformly narrower than the index selection must fail the
	// load, not degrade every row to a diagnostic.
	path := writeFile(t, "clicks.dat", "1,2014-04-07T10:51:09.277Z\n2,2014-04-07T10:54:09.868Z\n3,2014-04-07T10:57:00.306Z\n")

	_, _, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		SelectIdx: []int{0, 1, 2},
		Columns:   []string{"UserID", "Timestamp", "ItemID"},
		Types:     []table.Type{table.Int, table.String, table.Int},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadTable_DiagnosticLinesAfterQuotedNewline(t *testing.T) {
	// The first record's quoted field spans two physical lines; the bad
	// row after it must still be reported at its real line number.
	path := writeFile(t, "in.csv", "a,\"multi\nline\",c\nx,,z\n")

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		Columns:   []string{"A", "B", "C"},
		Types:     []table.Type{table.String, table.String, table.String},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tb.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
}

func TestReadTable_DropsBadRows(t *testing.T) {
	// Second row has a null field, third a non-numeric id, fourth is short.
	path := writeFile(t, "in.csv", "1,10,100\n2,,200\n3,abc,300\n4,40\n5,50,500\n")

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		Columns:   []string{"UserID", "ItemID", "Timestamp"},
		Types:     []table.Type{table.Int, table.Int, table.Int},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Len(t, diags, 3)
	// Output row count never exceeds input line count.
	assert.LessOrEqual(t, tb.Len(), 5)
}

func TestReadTable_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkins.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("1\t2010-10-19T23:55:27Z\t30.2\t-97.7\t10\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: "\t",
		Columns:   []string{"UserID", "Timestamp", "Latitude", "Longitude", "ItemID"},
		Types:     []table.Type{table.Int, table.String, table.Float, table.Float, table.Int},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 1, tb.Len())
	assert.Equal(t, "2010-10-19T23:55:27Z", tb.Row(0)[1])
}

func TestReadTable_InvalidUTF8Replaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,caf\xe9,100\n"), 0o644))

	tb, diags, err := ReadTable(path, TableOptions{
		Delimiter: ",",
		Columns:   []string{"UserID", "Title", "Timestamp"},
		Types:     []table.Type{table.Int, table.String, table.Int},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Equal(t, 1, tb.Len())
	assert.Equal(t, "caf�", tb.Row(0)[1])
}

func TestReadTable_MissingFile(t *testing.T) {
	_, _, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"), TableOptions{
		Delimiter: ",",
		Columns:   []string{"UserID"},
		Types:     []table.Type{table.Int},
	})
	assert.Error(t, err)
}
