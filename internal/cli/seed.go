package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/internal/dataset"
	"github.com/mesh-intelligence/dexhub/internal/metrics"
	"github.com/mesh-intelligence/dexhub/internal/seed"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

func newSeedCmd(a *app) *cobra.Command {
	var datasetPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty catalog from a dataset",
		Long: `Seed loads a JSON or JSONL dataset into the catalog if the catalog is empty.
A catalog that already holds creatures is left untouched.

Example:
  dexhub seed --dataset pokedex.json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				datasetPath = a.config.Dataset
			}
			if datasetPath == "" {
				return fmt.Errorf("%w: no dataset (use --dataset or set dataset in config)", errUsage)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			res, err := a.seed(cmd.Context(), store, nil, datasetPath)
			if err != nil {
				return err
			}

			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			switch res.Status {
			case seed.StatusAlreadySeeded:
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog already seeded; nothing written.")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d creature(s), skipped %d.\n", res.Written, res.Skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file, .json or .jsonl (default: dataset from config)")
	return cmd
}

// seed loads the dataset at path and runs the seeding pipeline against store.
func (a *app) seed(ctx context.Context, store types.Store, m *metrics.Metrics, path string) (seed.Result, error) {
	opts, err := a.config.seedOptions()
	if err != nil {
		return seed.Result{}, fmt.Errorf("%w: seed config: %v", errUsage, err)
	}
	seeder, err := seed.New(store, opts, seed.WithLogger(a.logger), seed.WithMetrics(m))
	if err != nil {
		return seed.Result{}, err
	}

	ds, err := dataset.Load(path)
	if err != nil {
		return seed.Result{}, err
	}
	if ds.Malformed > 0 {
		a.logger.Warn("skipped malformed dataset lines", "path", path, "count", ds.Malformed)
	}
	return seeder.Seed(ctx, ds.Entries)
}
