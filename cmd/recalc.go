package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/underwrite-cli/internal/engine"
	"github.com/sells-group/underwrite-cli/internal/store"
)

var (
	recalcWrite       bool
	recalcConcurrency int
)

// recalcCmd re-derives every stored basket of every project against the
// current catalogues. Useful after a formula change: stored snapshots keep
// derived values, and this reports (or fixes) any drift.
var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute all stored baskets and report derived-value drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		projects, err := env.st.ListProjects(ctx)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(recalcConcurrency)

		type drift struct {
			project, basket string
			changed         int
		}
		results := make(chan drift, len(projects)*len(env.baskets))

		for _, projectID := range projects {
			for _, b := range env.baskets {
				g.Go(func() error {
					changed, err := recalcBasket(ctx, env, projectID, b)
					if err != nil {
						return err
					}
					if changed > 0 {
						results <- drift{project: projectID, basket: b.cat.ID(), changed: changed}
					}
					return nil
				})
			}
		}

		if err := g.Wait(); err != nil {
			return err
		}
		close(results)

		drifted := 0
		for d := range results {
			drifted++
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %d derived value(s) drifted\n",
				d.project, d.basket, d.changed)
		}
		if drifted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "all stored baskets up to date")
		} else if recalcWrite {
			fmt.Fprintf(cmd.OutOrStdout(), "rewrote %d basket(s)\n", drifted)
		}
		return nil
	},
}

// recalcBasket recomputes one stored basket and returns how many derived
// values changed. Each basket gets its own value map, so concurrent workers
// never share state.
func recalcBasket(ctx context.Context, env *appEnv, projectID string, b *basketBundle) (int, error) {
	stored, err := env.st.LoadBasket(ctx, projectID, b.cat.ID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	result := engine.Recompute(b.cat, b.graph, stored)
	for _, warning := range result.Warnings {
		zap.L().Warn("recalc warning",
			zap.String("project", projectID),
			zap.String("basket", b.cat.ID()),
			zap.String("field", warning.FieldKey),
			zap.Error(warning.Cause),
		)
	}

	changed := 0
	for _, key := range b.cat.DerivedKeys() {
		before, beforeOK := stored.Get(key)
		after, afterOK := result.Values.Get(key)
		if beforeOK != afterOK || (beforeOK && !before.Equal(after)) {
			changed++
		}
	}

	if changed > 0 && recalcWrite {
		if err := env.st.SaveBasket(ctx, projectID, b.cat.ID(), result.Values); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func init() {
	recalcCmd.Flags().BoolVar(&recalcWrite, "write", false, "persist recomputed values instead of only reporting drift")
	recalcCmd.Flags().IntVar(&recalcConcurrency, "concurrency", 4, "max projects recomputed in parallel")
	rootCmd.AddCommand(recalcCmd)
}
