package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/structs"
	"github.com/sarchlab/arap/datarecording"
	"github.com/sarchlab/arap/report"
	"github.com/spf13/cobra"
)

// dumpTables maps the tables a run database holds to their row types.
var dumpTables = map[string]any{
	report.ProbTable:        report.ProbEntry{},
	report.LoadPathTable:    report.LoadPathEntry{},
	report.LoadSummaryTable: report.LoadSummaryEntry{},
	datarecording.ExecTable: datarecording.ExecInfo{},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print a table of a run database as CSV.",
	Long: "`dump --db arap_1_1.sqlite3 --table load_summary` prints the rows " +
		"of one table written by `run --db`.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		filename, _ := flags.GetString("db")
		tableName, _ := flags.GetString("table")
		where, _ := flags.GetString("where")
		limit, _ := flags.GetInt("limit")

		return dumpTable(cmd, filename, tableName, datarecording.QueryParams{
			Where: where,
			Limit: limit,
		})
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	flags := dumpCmd.Flags()
	flags.String("db", "", "The database written by run --db.")
	flags.String("table", report.LoadSummaryTable,
		"The table to print: "+dumpTableNames()+".")
	flags.String("where", "", "An SQL condition on the rows, e.g. \"Node = '10.0.0.1'\".")
	flags.Int("limit", 0, "The maximum number of rows, all if 0.")

	_ = dumpCmd.MarkFlagRequired("db")
}

func dumpTableNames() string {
	names := make([]string, 0, len(dumpTables))
	for name := range dumpTables {
		names = append(names, name)
	}

	sort.Strings(names)

	list := names[0]
	for _, name := range names[1:] {
		list += ", " + name
	}

	return list
}

func dumpTable(
	cmd *cobra.Command,
	filename, tableName string,
	params datarecording.QueryParams,
) error {
	sample, ok := dumpTables[tableName]
	if !ok {
		return fmt.Errorf("%w: %s", datarecording.ErrUnknownTable, tableName)
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tableName, sample)

	rows, total, err := reader.Query(context.Background(), tableName, params)
	if err != nil {
		return err
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write(structs.Names(sample)); err != nil {
		return err
	}

	for _, row := range rows {
		values := structs.Values(row)
		record := make([]string, len(values))

		for i, v := range values {
			record[i] = fmt.Sprint(v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if len(rows) < total {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d rows\n", len(rows), total)
	}

	return nil
}
