package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/depgraph"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
	"github.com/sells-group/underwrite-cli/internal/store"
)

// memStore is an in-memory Store for runtime tests; it records saves so
// tests can assert whether a blocked save reached persistence.
type memStore struct {
	baskets map[string]model.ValueMap // projectID/basketID
	saves   int
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{baskets: map[string]model.ValueMap{}}
}

func (m *memStore) key(projectID, basketID string) string { return projectID + "/" + basketID }

func (m *memStore) LoadBasket(_ context.Context, projectID, basketID string) (model.ValueMap, error) {
	values, ok := m.baskets[m.key(projectID, basketID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return values.Clone(), nil
}

func (m *memStore) SaveBasket(_ context.Context, projectID, basketID string, values model.ValueMap) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.baskets[m.key(projectID, basketID)] = values.Clone()
	return nil
}

func (m *memStore) ListProjects(context.Context) ([]string, error) { return nil, nil }

func (m *memStore) LoadTracks(context.Context, string) ([]schedule.Track, error) { return nil, nil }

func (m *memStore) SaveTrack(context.Context, string, schedule.Track) error { return nil }

func (m *memStore) Migrate(context.Context) error { return nil }

func (m *memStore) Close() error { return nil }

func newDealRuntime(t *testing.T, st store.Store) *Runtime {
	t.Helper()
	cat, err := catalog.BuiltinByID("the_deal")
	require.NoError(t, err)
	graph, err := depgraph.Build(cat)
	require.NoError(t, err)
	return New(cat, graph, st, "proj-1")
}

func TestNewSeedsDefaults(t *testing.T) {
	t.Parallel()
	rt := newDealRuntime(t, newMemStore())

	values := rt.Values()
	pct, ok := values.Float64("closing_costs_pct")
	require.True(t, ok)
	assert.Equal(t, 2.0, pct)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("unsaved project starts from defaults", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())
		snap, err := rt.Load(context.Background(), model.TierNapkin)
		require.NoError(t, err)

		pct, ok := snap.Values.Float64("land_pct")
		require.True(t, ok)
		assert.Equal(t, 20.0, pct)
	})

	t.Run("stored values override defaults and recompute", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		st.baskets["proj-1/the_deal"] = model.ValueMap{
			"purchase_price": model.Number(1_000_000),
			"land_pct":       model.Number(30),
		}

		rt := newDealRuntime(t, st)
		snap, err := rt.Load(context.Background(), model.TierNapkin)
		require.NoError(t, err)

		imp, ok := snap.Values.Float64("improvement_pct")
		require.True(t, ok)
		assert.Equal(t, 70.0, imp)

		basis, ok := snap.Values.Float64("depreciation_basis")
		require.True(t, ok)
		assert.Equal(t, 700_000.0, basis)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		rt := newDealRuntime(t, failingStore{st})
		_, err := rt.Load(context.Background(), model.TierNapkin)
		require.Error(t, err)
	})
}

type failingStore struct{ store.Store }

func (failingStore) LoadBasket(context.Context, string, string) (model.ValueMap, error) {
	return nil, eris.New("connection refused")
}

func TestSetField(t *testing.T) {
	t.Parallel()

	t.Run("recompute settles before validation", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())

		snap, err := rt.SetField("purchase_price", model.Number(1_000_000), model.TierMid)
		require.NoError(t, err)

		// closing_costs derives immediately from the 2% default.
		costs, ok := snap.Values.Float64("closing_costs")
		require.True(t, ok)
		assert.Equal(t, 20_000.0, costs)

		// Still missing required napkin inputs, reported in the same snapshot.
		keys := map[string]bool{}
		for _, issue := range snap.Issues {
			keys[issue.FieldKey] = true
		}
		assert.True(t, keys["acquisition_date"])
	})

	t.Run("derived field rejected", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())

		_, err := rt.SetField("closing_costs", model.Number(999), model.TierMid)
		var derived *ErrDerivedField
		require.True(t, errors.As(err, &derived))
		assert.Equal(t, "closing_costs", derived.Key)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())
		_, err := rt.SetField("cap_rate", model.Number(5), model.TierMid)
		require.Error(t, err)
	})

	t.Run("absent value clears the field and its dependents recompute", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())

		_, err := rt.SetField("purchase_price", model.Number(1_000_000), model.TierNapkin)
		require.NoError(t, err)
		_, err = rt.SetField("unit_count", model.Number(10), model.TierNapkin)
		require.NoError(t, err)

		ppu, ok := rt.Values().Float64("price_per_unit")
		require.True(t, ok)
		assert.Equal(t, 100_000.0, ppu)

		snap, err := rt.SetField("unit_count", model.Value{}, model.TierNapkin)
		require.NoError(t, err)
		_, ok = snap.Values.Get("unit_count")
		assert.False(t, ok)

		// price_per_unit is no longer computable; its prior value stays.
		stale, ok := snap.Values.Float64("price_per_unit")
		require.True(t, ok)
		assert.Equal(t, 100_000.0, stale)
	})

	t.Run("type-incompatible input surfaces as issue not error", func(t *testing.T) {
		t.Parallel()
		rt := newDealRuntime(t, newMemStore())

		snap, err := rt.SetField("purchase_price", model.Str("one million"), model.TierNapkin)
		require.NoError(t, err)

		found := false
		for _, issue := range snap.Issues {
			if issue.FieldKey == "purchase_price" && issue.Kind == model.IssueTypeMismatch {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestHydrate(t *testing.T) {
	t.Parallel()
	rt := newDealRuntime(t, newMemStore())

	snap := rt.Hydrate(model.ValueMap{
		"purchase_price": model.Number(2_000_000),
		"land_pct":       model.Number(25),
	}, model.TierMid)

	basis, ok := snap.Values.Float64("depreciation_basis")
	require.True(t, ok)
	assert.Equal(t, 1_500_000.0, basis)

	// Defaults fill the gaps the client snapshot leaves.
	years, ok := snap.Values.Float64("hold_period_years")
	require.True(t, ok)
	assert.Equal(t, 5.0, years)
}

func TestSave(t *testing.T) {
	t.Parallel()

	complete := func(t *testing.T, rt *Runtime) {
		t.Helper()
		_, err := rt.SetField("purchase_price", model.Number(1_000_000), model.TierNapkin)
		require.NoError(t, err)
		_, err = rt.SetField("acquisition_date", mustDate(t, "2025-06-01"), model.TierNapkin)
		require.NoError(t, err)
	}

	t.Run("missing required blocks and never hits the store", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		rt := newDealRuntime(t, st)

		err := rt.Save(context.Background(), model.TierNapkin)
		var blocked *BlockedSaveError
		require.True(t, errors.As(err, &blocked))
		assert.True(t, model.HasBlocking(blocked.Issues))
		assert.Zero(t, st.saves)
	})

	t.Run("out-of-range values save fine", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		rt := newDealRuntime(t, st)
		complete(t, rt)

		_, err := rt.SetField("unit_count", model.Number(0), model.TierNapkin)
		require.NoError(t, err)

		require.NoError(t, rt.Save(context.Background(), model.TierNapkin))
		assert.Equal(t, 1, st.saves)
	})

	t.Run("saved values round-trip through Load", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		rt := newDealRuntime(t, st)
		complete(t, rt)
		require.NoError(t, rt.Save(context.Background(), model.TierNapkin))

		fresh := newDealRuntime(t, st)
		snap, err := fresh.Load(context.Background(), model.TierNapkin)
		require.NoError(t, err)

		price, ok := snap.Values.Float64("purchase_price")
		require.True(t, ok)
		assert.Equal(t, 1_000_000.0, price)
	})

	t.Run("failed write leaves session values untouched", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		st.saveErr = eris.New("disk full")
		rt := newDealRuntime(t, st)
		complete(t, rt)

		before := rt.Values()
		err := rt.Save(context.Background(), model.TierNapkin)
		require.Error(t, err)
		assert.True(t, before.Equal(rt.Values()))
	})

	t.Run("hidden-tier problems do not block a napkin save", func(t *testing.T) {
		t.Parallel()
		st := newMemStore()
		rt := newDealRuntime(t, st)
		complete(t, rt)

		// property_class is mid-tier; a bad value there is dormant at napkin.
		_, err := rt.SetField("property_class", model.Str("Class Z"), model.TierNapkin)
		require.NoError(t, err)

		require.NoError(t, rt.Save(context.Background(), model.TierNapkin))

		err = rt.Save(context.Background(), model.TierMid)
		var blocked *BlockedSaveError
		require.True(t, errors.As(err, &blocked))
	})
}

func mustDate(t *testing.T, s string) model.Value {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return model.Date(d)
}
