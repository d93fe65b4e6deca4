package dataset

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/seqrec-group/ingest-cli/internal/table"
)

// Raw timestamp layouts seen across the source families.
const (
	layoutDate     = "2006-01-02"              // Food, Steam, Yelp
	layoutISO      = "2006-01-02T15:04:05Z"    // Gowalla
	layoutISOMilli = "2006-01-02T15:04:05.000Z" // YooChoose
)

// epochSeconds returns a column converter that parses a date-time string
// with the given layout and yields integer epoch seconds.
func epochSeconds(layout string) table.ConvertFunc {
	return func(v any) (any, error) {
		t, err := parseUTC(layout, v)
		if err != nil {
			return nil, err
		}
		return t.Unix(), nil
	}
}

// epochMillis is like epochSeconds but yields integer epoch milliseconds.
func epochMillis(layout string) table.ConvertFunc {
	return func(v any) (any, error) {
		t, err := parseUTC(layout, v)
		if err != nil {
			return nil, err
		}
		return t.UnixMilli(), nil
	}
}

func parseUTC(layout string, v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, eris.Errorf("dataset: timestamp is %T, not string", v)
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "dataset: parse timestamp %q", s)
	}
	return t, nil
}

// truncateToSeconds converts a fractional-seconds epoch float to integer
// seconds by truncation.
func truncateToSeconds(v any) (any, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, eris.Errorf("dataset: timestamp is %T, not float", v)
	}
	return int64(math.Trunc(f)), nil
}
