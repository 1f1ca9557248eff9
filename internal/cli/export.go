package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/internal/catalog"
	"github.com/mesh-intelligence/dexhub/internal/dataset"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the catalog to a JSONL dataset",
		Long: `Export writes every creature as one JSONL entry. The file can seed an empty
catalog with "dexhub seed --dataset <file>".`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return a.withCatalog(func(svc *catalog.Service) error {
				all, err := svc.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				if err := dataset.WriteExport(path, all); err != nil {
					return err
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "records": len(all)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d creature(s) to %s\n", len(all), path)
				return nil
			})
		},
	}
}
