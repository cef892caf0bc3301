package refdata

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/refdata/value"
)

type recordSnapshot struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// genreSnapshot captures the observable state of the end-to-end genre
// scenario for golden comparison. Records are in primary-key order,
// symbols and albums sorted by the JSON marshaler.
type genreSnapshot struct {
	Collection string           `json:"collection"`
	Count      int64            `json:"count"`
	Records    []recordSnapshot `json:"records"`
	Symbols    map[string]int64 `json:"symbols"`
	RockAlbums []string         `json:"rock_albums"`
}

// TestGolden_GenreScenario runs the canonical scenario end to end and
// compares the resulting state against a golden file.
//
// To regenerate golden files, run:
//
//	go test . -update
func TestGolden_GenreScenario(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()
	genres, _, _ := musicFixture(t, reg)

	require.NoError(t, genres.HasMany(Association{
		Name:    "albums",
		Kind:    AssocThrough,
		Through: "album_genres",
	}))

	// Exercise the reload trigger before snapshotting: the state must
	// be indistinguishable from the pre-reset one.
	require.NoError(t, reg.Store().Reset())

	snap := genreSnapshot{
		Collection: genres.Name(),
		Symbols:    make(map[string]int64),
	}

	n, err := genres.Count(ctx)
	require.NoError(t, err)
	snap.Count = n

	recs, err := genres.All(ctx)
	require.NoError(t, err)
	for _, r := range recs {
		name, _ := r.Get("name")
		slug, _ := r.Get("slug")
		snap.Records = append(snap.Records, recordSnapshot{
			ID:   int64(r.PK().(value.Int)),
			Name: string(name.(value.String)),
			Slug: string(slug.(value.String)),
		})
	}

	for tok, pk := range genres.Symbols() {
		snap.Symbols[tok] = int64(pk.(value.Int))
	}

	rock, ok, err := genres.Find(ctx, value.Int(1))
	require.NoError(t, err)
	require.True(t, ok)
	albums, err := genres.Associated(ctx, rock, "albums")
	require.NoError(t, err)
	for _, a := range albums {
		title, _ := a.Get("title")
		snap.RockAlbums = append(snap.RockAlbums, string(title.(value.String)))
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t)
	g.Assert(t, "genre_scenario", data)
}
