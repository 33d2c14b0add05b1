package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.tinydb/internal/engine"
	"go.tinydb/internal/sql"
	"go.tinydb/internal/storage"
)

var replCmd = &cobra.Command{
	Use:   "repl [path]",
	Short: "Interactive SQL session against a database file",
	Args:  cobra.MaximumNArgs(1),
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

		db, err := engine.Open(path, log)
		if err != nil {
			return err
		}
		defer db.Close()

		startREPL(db)
		return nil
	},
}

func startREPL(db *engine.Database) {
	reader := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("tinydb> ")

		if !reader.Scan() {
			return
		}

		input := strings.TrimSpace(reader.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return
		}

		runStatement(db, input)
	}
}

func runStatement(db *engine.Database, input string) {
	stmt, err := sql.Parse(input)
	if err != nil {
		fmt.Printf("Parse error: %s\n", err)
		return
	}

	result, err := db.Execute(stmt)
	if err != nil {
		fmt.Printf("Error: %s (%s)\n", err, storage.CodeOf(err))
		return
	}
	printResult(result)
}

func printResult(result *engine.Result) {
	if len(result.Columns) == 0 {
		fmt.Println("OK")
		return
	}

	fmt.Println(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = formatValue(v)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	fmt.Printf("(%d rows)\n", len(result.Rows))
}

func formatValue(v storage.Value) string {
	switch val := v.(type) {
	case storage.IntegerValue:
		return fmt.Sprintf("%d", int32(val))
	case storage.FloatValue:
		return fmt.Sprintf("%g", float32(val))
	case storage.DoubleValue:
		return fmt.Sprintf("%g", float64(val))
	case storage.StringValue:
		return string(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
}
