// Package cli implements the dexhub command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dexhub/internal/logging"
	"github.com/mesh-intelligence/dexhub/internal/paths"
	"github.com/mesh-intelligence/dexhub/pkg/sqlite"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks invalid command-line input.
var errUsage = errors.New("usage error")

// app holds global flag values and the state loaded before a subcommand runs.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string

	viper  *viper.Viper
	config Config
	logger *log.Logger
}

// NewRootCmd creates the top-level "dexhub" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{viper: viper.New()}

	root := &cobra.Command{
		Use:   "dexhub",
		Short: "A creature catalog with an idempotent seed and optimistic updates",
		Long: "dexhub seeds a creature catalog from a pokedex dataset once, then serves\n" +
			"reads, version-checked updates, and deletes from SQLite.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $DEXHUB_CONFIG_DIR)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: data_dir from config, or platform data dir)")
	pf.BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default: log.level from config)")
	_ = a.viper.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSeedCmd(a),
		newServeCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(root.ErrOrStderr(), "dexhub:", err)
	return exitCode(err)
}

// exitCode classifies err: bad input and catalog rejections are user errors,
// everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidField),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrUnknownType),
		errors.Is(err, types.ErrConcurrentModification):
		return exitUserError
	default:
		return exitSysError
	}
}

// load resolves directories, reads configuration, and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	cfg, err := loadConfig(a.viper, configDir)
	if err != nil {
		return err
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	a.config = cfg

	a.logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// openStore attaches the configured backend. The caller must Detach it.
func (a *app) openStore() (types.Store, error) {
	store, err := sqlite.Open(types.Config{
		Backend: a.config.Backend,
		DataDir: a.config.DataDir,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return store, nil
}
