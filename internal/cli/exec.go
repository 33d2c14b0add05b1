package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.tinydb/internal/engine"
	"go.tinydb/internal/sql"
)

var execDBPath string

var execCmd = &cobra.Command{
	Use:   "exec <statement>",
	Short: "Run a single SQL statement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := execDBPath
		if path == "" {
			path = cfg.DefaultDB
		}

		log, closeLog, err := openLogger()
		if err != nil {
			return err
		}
		defer closeLog()

		db, err := engine.Open(path, log)
		if err != nil {
			return err
		}
		defer db.Close()

		stmt, err := sql.Parse(strings.Join(args, " "))
		if err != nil {
			return err
		}

		result, err := db.Execute(stmt)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func init() {
	execCmd.Flags().StringVar(&execDBPath, "db", "", "database file (defaults to the configured path)")
	rootCmd.AddCommand(execCmd)
}
