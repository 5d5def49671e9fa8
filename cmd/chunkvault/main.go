// chunkvault is the chunked object storage engine CLI. It operates on
// the engine's durable checkpoint file directly: each command restores
// state, applies one operation, and checkpoints atomically.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chunkvault/chunkvault/internal/checkpoint"
	"github.com/chunkvault/chunkvault/internal/config"
	"github.com/chunkvault/chunkvault/internal/storage"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	cfgFile  string
	logLevel string
	dataDir  string
	identity string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chunkvault",
		Short: "chunkvault - chunked object storage engine",
		Long: `chunkvault stores large binary objects as bounded-size chunks with
owner indexing, visibility enforcement, and per-owner byte accounting.

State lives in a single checkpoint file under the data directory; every
command restores it, applies one operation, and checkpoints atomically.

Examples:

  # Create an object and upload a file as chunks
  chunkvault -i alice create report.pdf --content-type application/pdf --size 1.5MB
  chunkvault -i alice put <object-id> ./report.pdf

  # Read it back
  chunkvault -i alice cat <object-id> > report.pdf

  # Listings and accounting
  chunkvault ls --public
  chunkvault stats`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&identity, "identity", "i", "", "caller identity (empty = anonymous)")

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newPutCmd())
	rootCmd.AddCommand(newCatCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newOwnersCmd())
	rootCmd.AddCommand(newStatsCmd())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chunkvault %s (%s)\n", Version, Commit)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// loadConfig resolves the effective configuration from the config file
// and CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openEngine builds an engine from the checkpoint file, or empty state
// when no checkpoint exists yet. A version mismatch is fatal.
func openEngine(cfg *config.Config) (*storage.Engine, error) {
	engine := storage.NewEngine(storage.Limits{
		MaxObjectSize: cfg.MaxObjectSize.Bytes(),
		MaxChunkSize:  cfg.MaxChunkSize.Bytes(),
	})

	snap, err := checkpoint.Load(cfg.CheckpointPath())
	if errors.Is(err, os.ErrNotExist) {
		return engine, nil // first boot, all tables start empty
	}
	if err != nil {
		return nil, err
	}

	checkpoint.Import(engine, snap)
	return engine, nil
}

// saveEngine checkpoints the engine state.
func saveEngine(cfg *config.Config, engine *storage.Engine) error {
	return checkpoint.Save(cfg.CheckpointPath(), checkpoint.Export(engine))
}
