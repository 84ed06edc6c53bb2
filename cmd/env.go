package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/depgraph"
	"github.com/sells-group/underwrite-cli/internal/store"
)

// basketBundle pairs a basket catalogue with its prebuilt dependency graph.
type basketBundle struct {
	cat   *catalog.Catalog
	graph *depgraph.Graph
}

// appEnv holds everything a command needs: the loaded basket catalogues and
// an open store. Catalogue or cycle errors here are configuration bugs and
// abort startup.
type appEnv struct {
	st      store.Store
	baskets []*basketBundle
	byID    map[string]*basketBundle
	horizon int
}

// loadBaskets builds all built-in catalogues and their graphs, failing fast
// on any UnknownFieldError or CycleError.
func loadBaskets() ([]*basketBundle, error) {
	cats, err := catalog.Builtin()
	if err != nil {
		return nil, err
	}

	bundles := make([]*basketBundle, 0, len(cats))
	for _, cat := range cats {
		graph, err := depgraph.Build(cat)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, &basketBundle{cat: cat, graph: graph})
	}
	return bundles, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.DatabaseURL, cfg.Pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func initEnv(ctx context.Context) (*appEnv, error) {
	baskets, err := loadBaskets()
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	byID := make(map[string]*basketBundle, len(baskets))
	for _, b := range baskets {
		byID[b.cat.ID()] = b
	}

	zap.L().Info("engine initialized",
		zap.Int("baskets", len(baskets)),
		zap.String("store", cfg.Store.Driver),
	)

	return &appEnv{
		st:      st,
		baskets: baskets,
		byID:    byID,
		horizon: cfg.Engine.HorizonPeriods,
	}, nil
}

func (e *appEnv) Close() {
	if err := e.st.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
