package pipeline

import (
	"math/rand"

	"github.com/rotisserie/eris"

	"github.com/seqrec-group/ingest-cli/internal/dataset"
	"github.com/seqrec-group/ingest-cli/internal/table"
)

// sampleSeed fixes the user-sampling permutation so that re-running a
// pipeline against unchanged raw files yields identical output.
const sampleSeed = 42

// SampleUsers caps the interaction table at n distinct users, chosen by
// a deterministic shuffle of the users in first-appearance order.
// n <= 0 keeps all users.
func SampleUsers(t *table.Table, n int) (*table.Table, error) {
	if n <= 0 {
		return t, nil
	}
	ui := t.Schema().Index(dataset.ColUserID)
	if ui < 0 {
		return nil, eris.New("pipeline: table is not an interaction table")
	}

	var users []any
	seen := make(map[any]bool)
	for r := 0; r < t.Len(); r++ {
		u := t.Row(r)[ui]
		if !seen[u] {
			seen[u] = true
			users = append(users, u)
		}
	}
	if n >= len(users) {
		return t, nil
	}

	rng := rand.New(rand.NewSource(sampleSeed))
	rng.Shuffle(len(users), func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})

	keep := make(map[any]bool, n)
	for _, u := range users[:n] {
		keep[u] = true
	}
	return t.Filter(func(row []any) bool {
		return keep[row[ui]]
	}), nil
}
