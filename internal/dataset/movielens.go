package dataset

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seqrec-group/ingest-cli/internal/reader"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// movielensVariant holds the file format of one MovieLens release.
type movielensVariant struct {
	delimiter string
	suffix    string
	header    bool
}

// movielensVariants maps the canonical dataset name to its file format.
// The 1M/10M releases use ::-delimited .dat files without headers; the
// 20M/25M/32M releases use headed CSV.
var movielensVariants = map[string]movielensVariant{
	"movielens-1m":  {delimiter: "::", suffix: ".dat"},
	"movielens-10m": {delimiter: "::", suffix: ".dat"},
	"movielens-20m": {delimiter: ",", suffix: ".csv", header: true},
	"movielens-25m": {delimiter: ",", suffix: ".csv", header: true},
	"movielens-32m": {delimiter: ",", suffix: ".csv", header: true},
}

// titleYear matches the " (YYYY)" release-year suffix MovieLens appends
// to every title.
var titleYear = regexp.MustCompile(`\s*\(\d{4}\)`)

// MovieLens processes the MovieLens rating datasets. Ratings come from
// ratings.dat/.csv (UserID, ItemID, Rating, Timestamp in epoch seconds),
// titles from movies.dat/.csv with the release year stripped.
type MovieLens struct {
	base
	variant movielensVariant
}

// NewMovieLens creates a MovieLens processor. The dataset variant is
// taken from the directory name and must name a known release.
func NewMovieLens(dir string, opts Options) (*MovieLens, error) {
	b := newBase(dir, opts)
	variant, ok := movielensVariants[b.name]
	if !ok {
		known := make([]string, 0, len(movielensVariants))
		for name := range movielensVariants {
			known = append(known, name)
		}
		sort.Strings(known)
		return nil, eris.Errorf("movielens: unknown dataset %q (known: %s)",
			b.name, strings.Join(known, ", "))
	}
	return &MovieLens{base: b, variant: variant}, nil
}

func (d *MovieLens) Family() string { return "movielens" }

func (d *MovieLens) Load(ctx context.Context) (*table.Table, *table.Table, error) {
	log := zap.L().With(zap.String("dataset", d.name))

	ratings := "ratings" + d.variant.suffix
	interactions, diags, err := reader.ReadTable(d.rawPath(ratings), reader.TableOptions{
		Delimiter: d.variant.delimiter,
		Columns:   []string{ColUserID, ColItemID, "Rating", ColTimestamp},
		Types:     []table.Type{table.Int, table.Int, table.Float, table.Int},
		Header:    d.variant.header,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "movielens: read %s", ratings)
	}
	logDiagnostics(log, ratings, diags)

	interactions, err = interactionsView(interactions)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded interactions", zap.Int("rows", interactions.Len()))

	if !d.opts.MetaAvailable {
		return interactions, nil, nil
	}

	movies := "movies" + d.variant.suffix
	meta, diags, err := reader.ReadTable(d.rawPath(movies), reader.TableOptions{
		Delimiter: d.variant.delimiter,
		Columns:   []string{ColItemID, ColTitle, "Genres"},
		Types:     []table.Type{table.Int, table.String, table.String},
		Header:    d.variant.header,
	})
	if err != nil {
		return nil, nil, eris.Wrapf(err, "movielens: read %s", movies)
	}
	logDiagnostics(log, movies, diags)

	meta, err = meta.Select(ColItemID, ColTitle)
	if err != nil {
		return nil, nil, eris.Wrap(err, "movielens: project metadata")
	}
	meta, err = cleanMetadata(meta, func(s string) string {
		return strings.TrimSpace(titleYear.ReplaceAllString(s, ""))
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("loaded metadata", zap.Int("rows", meta.Len()))
	return interactions, meta, nil
}
