// Command spawnhooks runs the entity tracker against a simulated world and
// exposes the operator console on stdin.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comalice/spawnhooks/internal/config"
	"github.com/comalice/spawnhooks/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spawnhooks",
	Short: "Track spawned entities and emit added/removed hooks",
	Long: `spawnhooks watches a population of world entities, tracks the ones
matching the configured categories, and emits OnEntitySpawned,
OnEntityRemoved and OnGroupEntityRemoved hooks as they come and go.

Removal is detected by polling each tracked entity on its category's
update interval.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, created, err := config.LoadOrCreate(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyEnv(loaded); err != nil {
			return err
		}
		warnings := loaded.Normalize()
		cfg = loaded

		opts := logging.Options{
			Console:       cfg.LogToConsole || verbose,
			ConsoleWriter: cmd.ErrOrStderr(),
			Debug:         verbose,
		}
		if cfg.LogToFile {
			opts.File = cfg.LogFile
		}
		if cfg.LogToBroadcast {
			out := cmd.OutOrStdout()
			opts.Broadcast = logging.BroadcastFunc(func(line string) {
				fmt.Fprintf(out, "[chat] %s\n", line)
			})
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if created {
			logger.Info("wrote default config", zap.String("path", configPath))
		}
		for _, w := range warnings {
			logger.Warn(w, zap.String("path", configPath))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "spawnhooks.yaml", "config file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to the console")

	rootCmd.AddCommand(runCmd, configCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
