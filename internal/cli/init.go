package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize dexhub configuration and storage",
		Long: "Create the configuration directory with a default config.yaml if missing,\n" +
			"then create the data directory and the catalog schema. Existing data is kept.",
		Args: exactArgs(0),
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg := defaultConfig()
	cfg.DataDir = a.config.DataDir
	created, err := writeConfigIfMissing(paths.ConfigFile(a.configDir), cfg)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	if err := store.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	a.logger.Debug("initialized", "config_dir", a.configDir, "data_dir", a.config.DataDir, "config_created", created)
	fmt.Fprintln(cmd.OutOrStdout(), "dexhub initialized successfully")
	return nil
}
