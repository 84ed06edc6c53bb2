package depgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/model"
)

func noop(model.ValueMap) (model.Value, bool) { return model.Value{}, false }

// buildCatalog assembles a minimal catalogue where each entry maps a key to
// its dependency list. Declaration order follows the keys slice.
func buildCatalog(t *testing.T, keys []string, deps map[string][]string) *catalog.Catalog {
	t.Helper()

	cfg := model.BasketConfig{ID: "graph_test", Name: "Graph Test"}
	formulas := map[string]catalog.Formula{}
	for _, key := range keys {
		cfg.Fields = append(cfg.Fields, model.FieldDefinition{
			Key:       key,
			Label:     model.Text(key),
			Type:      model.TypeNumber,
			Tier:      model.TierNapkin,
			DependsOn: deps[key],
		})
		if len(deps[key]) > 0 {
			formulas[key] = noop
		}
	}

	c, err := catalog.New(cfg, formulas)
	require.NoError(t, err)
	return c
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("order respects dependencies", func(t *testing.T) {
		t.Parallel()
		c := buildCatalog(t, []string{"d", "c", "b", "a"}, map[string][]string{
			"c": {"d"},
			"b": {"c"},
			"a": {"b", "d"},
		})
		g, err := Build(c)
		require.NoError(t, err)

		order := g.EvaluationOrder()
		pos := map[string]int{}
		for i, key := range order {
			pos[key] = i
		}
		assert.Less(t, pos["d"], pos["c"])
		assert.Less(t, pos["c"], pos["b"])
		assert.Less(t, pos["b"], pos["a"])
		assert.Less(t, pos["d"], pos["a"])
	})

	t.Run("ties break by declaration order", func(t *testing.T) {
		t.Parallel()
		// No edges at all: order must be exactly the declaration order.
		keys := []string{"z", "m", "a", "q"}
		c := buildCatalog(t, keys, nil)
		g, err := Build(c)
		require.NoError(t, err)
		assert.Equal(t, keys, g.EvaluationOrder())
	})

	t.Run("order is deterministic across rebuilds", func(t *testing.T) {
		t.Parallel()
		deps := map[string][]string{
			"egi":     {"gpr", "vacancy"},
			"vacancy": {"gpr"},
			"noi":     {"egi"},
		}
		keys := []string{"gpr", "vacancy", "egi", "noi", "other"}

		first, err := Build(buildCatalog(t, keys, deps))
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			g, err := Build(buildCatalog(t, keys, deps))
			require.NoError(t, err)
			assert.Equal(t, first.EvaluationOrder(), g.EvaluationOrder())
		}
	})

	t.Run("two-node cycle names both fields", func(t *testing.T) {
		t.Parallel()
		c := buildCatalog(t, []string{"a", "b"}, map[string][]string{
			"a": {"b"},
			"b": {"a"},
		})
		_, err := Build(c)
		require.Error(t, err)

		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, "graph_test", cycle.Basket)
		assert.Equal(t, []string{"a", "b"}, cycle.Path)
		assert.Contains(t, cycle.Error(), "a -> b -> a")
	})

	t.Run("longer cycle reported from its first-declared member", func(t *testing.T) {
		t.Parallel()
		c := buildCatalog(t, []string{"x", "y", "z"}, map[string][]string{
			"x": {"z"},
			"y": {"x"},
			"z": {"y"},
		})
		_, err := Build(c)
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		require.Len(t, cycle.Path, 3)
		assert.Equal(t, "x", cycle.Path[0])
	})

	t.Run("self-dependency is a cycle", func(t *testing.T) {
		t.Parallel()
		c := buildCatalog(t, []string{"a"}, map[string][]string{"a": {"a"}})
		_, err := Build(c)
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []string{"a"}, cycle.Path)
	})
}

func TestAffected(t *testing.T) {
	t.Parallel()
	c := buildCatalog(t, []string{"gpr", "vacancy_pct", "vacancy_loss", "egi", "noi", "taxes"}, map[string][]string{
		"vacancy_loss": {"gpr", "vacancy_pct"},
		"egi":          {"gpr", "vacancy_loss"},
		"noi":          {"egi", "taxes"},
	})
	g, err := Build(c)
	require.NoError(t, err)

	t.Run("transitive closure in evaluation order", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"vacancy_loss", "egi", "noi"}, g.Affected("gpr"))
		assert.Equal(t, []string{"vacancy_loss", "egi", "noi"}, g.Affected("vacancy_pct"))
		assert.Equal(t, []string{"noi"}, g.Affected("taxes"))
	})

	t.Run("changed keys themselves are not included", func(t *testing.T) {
		t.Parallel()
		assert.NotContains(t, g.Affected("gpr"), "gpr")
	})

	t.Run("leaf change affects nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, g.Affected("noi"))
	})

	t.Run("multiple changed keys union their closures", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"vacancy_loss", "egi", "noi"}, g.Affected("vacancy_pct", "taxes"))
	})
}

func TestBuiltinBasketsAcyclic(t *testing.T) {
	t.Parallel()
	cats, err := catalog.Builtin()
	require.NoError(t, err)
	for _, c := range cats {
		g, err := Build(c)
		require.NoError(t, err, c.ID())
		assert.Len(t, g.EvaluationOrder(), len(c.Fields()), c.ID())
	}
}
