package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieLens_UnknownVariant(t *testing.T) {
	dir := newDatasetDir(t, "movielens-100k")
	_, err := NewMovieLens(dir, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movielens-100k")
	assert.Contains(t, err.Error(), "movielens-1m")
}

func TestMovieLens_1M(t *testing.T) {
	dir := newDatasetDir(t, "movielens-1m")
	writeRaw(t, dir, "ratings.dat",
		"1::1193::5::978300760\n"+
			"1::661::3::978302109\n")
	writeRaw(t, dir, "movies.dat",
		"1193::One Flew Over the Cuckoo's Nest (1975)::Drama\n"+
			"661::James and the Giant Peach (1996)::Animation|Children's|Musical\n")

	p, err := NewMovieLens(dir, Options{MetaAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, "movielens", p.Family())

	interactions, meta, err := p.Load(context.Background())
	require.NoError(t, err)
	assertInteractionSchema(t, interactions)
	require.Equal(t, 2, interactions.Len())
	assert.Equal(t, []any{int64(1), int64(1193), int64(978300760)}, interactions.Row(0))

	assertMetadataSchema(t, meta)
	require.Equal(t, 2, meta.Len())
	assert.Equal(t, []any{int64(1193), "One Flew Over the Cuckoo's Nest"}, meta.Row(0))
}

func TestMovieLens_20M(t *testing.T) {
	dir := newDatasetDir(t, "movielens-20m")
	writeRaw(t, dir, "ratings.csv",
		"userId,movieId,rating,timestamp\n"+
			"1,2,3.5,1112486027\n") // half-star ratings exist in this release
	writeRaw(t, dir, "movies.csv",
		"movieId,title,genres\n"+
			"2,Jumanji (1995),Adventure|Children|Fantasy\n"+
			"3,nan,Comedy\n"+
			"4,(1999),Drama\n")

	p, err := NewMovieLens(dir, Options{MetaAvailable: true})
	require.NoError(t, err)

	interactions, meta, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, interactions.Len())
	assert.Equal(t, []any{int64(1), int64(2), int64(1112486027)}, interactions.Row(0))

	// The "nan" title and the title that cleans to empty are both dropped.
	require.Equal(t, 1, meta.Len())
	assert.Equal(t, []any{int64(2), "Jumanji"}, meta.Row(0))
}

func TestMovieLens_NoMetadataRequested(t *testing.T) {
	dir := newDatasetDir(t, "movielens-1m")
	writeRaw(t, dir, "ratings.dat", "1::1193::5::978300760\n")

	p, err := NewMovieLens(dir, Options{})
	require.NoError(t, err)

	interactions, meta, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, interactions.Len())
	assert.Nil(t, meta)
}
