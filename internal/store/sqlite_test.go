package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "underwrite.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteBaskets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("load before save returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)
		_, err := st.LoadBasket(ctx, "p1", "the_deal")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("values round-trip exactly", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)

		acq, err := time.Parse(model.DateLayout, "2025-06-01")
		require.NoError(t, err)
		values := model.ValueMap{
			"purchase_price":   model.Number(1_000_000),
			"property_name":    model.Str("Maple Court"),
			"interest_only":    model.Bool(false),
			"acquisition_date": model.Date(acq),
		}
		require.NoError(t, st.SaveBasket(ctx, "p1", "the_deal", values))

		loaded, err := st.LoadBasket(ctx, "p1", "the_deal")
		require.NoError(t, err)
		assert.True(t, values.Equal(loaded))
	})

	t.Run("save is an upsert per project and basket", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)

		require.NoError(t, st.SaveBasket(ctx, "p1", "the_deal", model.ValueMap{
			"purchase_price": model.Number(1_000_000),
		}))
		require.NoError(t, st.SaveBasket(ctx, "p1", "the_deal", model.ValueMap{
			"purchase_price": model.Number(2_000_000),
		}))

		loaded, err := st.LoadBasket(ctx, "p1", "the_deal")
		require.NoError(t, err)
		price, ok := loaded.Float64("purchase_price")
		require.True(t, ok)
		assert.Equal(t, 2_000_000.0, price)
	})

	t.Run("baskets are isolated per project", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)

		require.NoError(t, st.SaveBasket(ctx, "p1", "the_deal", model.ValueMap{
			"purchase_price": model.Number(1),
		}))
		require.NoError(t, st.SaveBasket(ctx, "p2", "the_deal", model.ValueMap{
			"purchase_price": model.Number(2),
		}))

		loaded, err := st.LoadBasket(ctx, "p2", "the_deal")
		require.NoError(t, err)
		price, _ := loaded.Float64("purchase_price")
		assert.Equal(t, 2.0, price)
	})

	t.Run("ListProjects is distinct and sorted", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)

		for _, p := range []string{"zeta", "alpha", "alpha"} {
			require.NoError(t, st.SaveBasket(ctx, p, "the_deal", model.ValueMap{}))
			require.NoError(t, st.SaveBasket(ctx, p, "cash_in", model.ValueMap{}))
		}

		projects, err := st.ListProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "zeta"}, projects)
	})
}

func TestSQLiteTracks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty project has no tracks", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)
		tracks, err := st.LoadTracks(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, tracks)
	})

	t.Run("tracks round-trip and upsert by name", func(t *testing.T) {
		t.Parallel()
		st := newTestSQLite(t)

		track := schedule.Track{Name: "Custom 1", Steps: []schedule.Step{
			{Rate: "3.0%", Periods: "12"},
			{Rate: "2.5%", Periods: "E"},
		}}
		require.NoError(t, st.SaveTrack(ctx, "p1", track))

		track.Steps[0].Periods = "24"
		require.NoError(t, st.SaveTrack(ctx, "p1", track))
		require.NoError(t, st.SaveTrack(ctx, "p1", schedule.Track{
			Name:  "Aggressive",
			Steps: []schedule.Step{{Rate: "5%", Periods: "E"}},
		}))

		tracks, err := st.LoadTracks(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, tracks, 2)

		// Ordered by name.
		assert.Equal(t, "Aggressive", tracks[0].Name)
		assert.Equal(t, "Custom 1", tracks[1].Name)
		assert.Equal(t, "24", tracks[1].Steps[0].Periods)
	})
}
