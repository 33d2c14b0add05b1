package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.tinydb/internal/config"
	"go.tinydb/internal/logger"
	"go.tinydb/internal/storage"
)

var (
	cfg          *config.Config
	homeOverride string
	cfgOverride  string
)

var rootCmd = &cobra.Command{
	Use:   "tinydb [path]",
	Short: "tinydb - single-file page store and B+Tree engine",
	Long: `tinydb opens (or creates) the database file, reports the page count,
allocates one page to prove the store works, reports the new count and
closes the file.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(homeOverride, cfgOverride)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.DefaultDB
		if len(args) == 1 {
			path = args[0]
		}

		log, closeLog, err := openLogger()
		if err != nil {
			return err
		}
		defer closeLog()

		pager, err := storage.Open(path, log)
		if err != nil {
			return fmt.Errorf("failed to open/create database '%s': %w", path, err)
		}

		fmt.Printf("Database file '%s' opened successfully.\n", path)
		fmt.Printf("Current page count: %d\n", pager.PageCount())

		page, err := pager.AllocatePage(storage.PageTypeLeaf)
		if err != nil {
			pager.Close()
			return fmt.Errorf("page allocation failed: %w", err)
		}

		fmt.Printf("Allocated fresh page number: %d\n", page.ID)
		fmt.Printf("New page count after allocation: %d\n", pager.PageCount())

		if err := pager.Close(); err != nil {
			return err
		}
		fmt.Println("Database closed.")
		return nil
	},
}

// openLogger sends engine logs to a per-installation file under the
// configured log directory.
func openLogger() (*logger.Logger, func(), error) {
	path := filepath.Join(cfg.LogDir, "tinydb.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log := logger.New(f, logger.INFO)
	return log, func() {
		log.Sync()
		f.Close()
	}, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", err, storage.CodeOf(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeOverride, "home", "", "tinydb home directory (default $TINYDB_HOME)")
	rootCmd.PersistentFlags().StringVar(&cfgOverride, "config", "", "path to config.yaml")
}
