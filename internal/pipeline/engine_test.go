package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
)

func writeMovieLens1M(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "movielens-1m")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "raw"), 0o755))
	content := "1::10::5::100\n" +
		"1::20::4::101\n" +
		"2::10::3::102\n" +
		"2::20::5::103\n" +
		"3::30::1::104\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "ratings.dat"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw", "movies.dat"),
		[]byte("10::Heat (1995)::Action\n20::Casino (1995)::Crime\n30::nan::Drama\n"), 0o644))
	return dir
}

func TestEngine_Run(t *testing.T) {
	dir := writeMovieLens1M(t, t.TempDir())

	eng := NewEngine(dataset.NewRegistry(), nil, Config{
		KCore:         2,
		MetaAvailable: true,
	})
	results, err := eng.Run(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "movielens-1m", res.Dataset)
	assert.Equal(t, "movielens", res.Family)
	assert.Equal(t, 4, res.Interactions) // user 3 / item 30 fall out of the 2-core
	assert.Equal(t, 2, res.MetadataRows)
	assert.NotEmpty(t, res.RunID)

	data, err := os.ReadFile(filepath.Join(res.OutDir, "interactions.csv"))
	require.NoError(t, err)
	assert.Equal(t, "UserID,ItemID,Timestamp\n1,10,100\n1,20,101\n2,10,102\n2,20,103\n", string(data))

	data, err = os.ReadFile(filepath.Join(res.OutDir, "item2title.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ItemID,Title\n10,Heat\n20,Casino\n", string(data))

	data, err = os.ReadFile(filepath.Join(res.OutDir, "manifest.yaml"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, res.RunID, m.RunID)
	assert.Equal(t, 4, m.Interactions)
	assert.Equal(t, []string{"interactions.csv", "item2title.csv"}, m.Files)
}

func TestEngine_RunRecordsCatalog(t *testing.T) {
	ctx := context.Background()
	dir := writeMovieLens1M(t, t.TempDir())
	c := openTestCatalog(t)

	eng := NewEngine(dataset.NewRegistry(), c, Config{Concurrency: 2})
	results, err := eng.Run(ctx, []string{dir})
	require.NoError(t, err)
	require.Len(t, results, 1)

	last, err := c.LastCompleted(ctx, "movielens-1m")
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestEngine_RunFailureRecorded(t *testing.T) {
	ctx := context.Background()
	// Directory exists but the raw file does not.
	dir := filepath.Join(t.TempDir(), "movielens-1m")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "raw"), 0o755))
	c := openTestCatalog(t)

	eng := NewEngine(dataset.NewRegistry(), c, Config{})
	_, err := eng.Run(ctx, []string{dir})
	require.Error(t, err)

	last, err := c.LastCompleted(ctx, "movielens-1m")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestEngine_UnknownDataset(t *testing.T) {
	eng := NewEngine(dataset.NewRegistry(), nil, Config{})
	_, err := eng.Run(context.Background(), []string{"/data/netflix"})
	assert.Error(t, err)
}
