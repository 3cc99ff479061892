package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tasklist/config"
	"tasklist/store"
	"tasklist/utils"
)

type options struct {
	configPath string
	dbPath     string
	memory     bool
	verbose    bool

	cfg *config.Config
}

// NewRootCmd builds the tasklist command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "tasklist",
		Short: "A local task list with priorities",
		Long: `tasklist keeps short text tasks with a priority tag in a local SQLite file.

Every change is written through immediately. Run "tasklist serve" for the HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = opts.dbPath
			}
			if cmd.Flags().Changed("memory") {
				cfg.Memory = opts.memory
			}
			opts.cfg = cfg
			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default ./tasks.db)")
	root.PersistentFlags().BoolVar(&opts.memory, "memory", false, "Keep tasks in memory only")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newStatsCmd(opts),
		newSeedCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// openStore builds a loaded Store on the configured backend. The returned
// func releases the backend.
func (o *options) openStore(ctx context.Context) (*store.Store, func(), error) {
	var kv utils.KV
	closeFn := func() {}
	if o.cfg.Memory {
		kv = utils.NewMemoryKV()
	} else {
		db, err := utils.OpenDB(o.cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		kv = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				log.Printf("close db: %v", err)
			}
		}
	}

	st := store.New(utils.NewAdapter(kv, o.cfg.StorageKey))
	st.Load(ctx)
	return st, closeFn, nil
}
