package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	rowsTable   string
	rowsColumns []string
	rowsLimit   int
)

func newRowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Read recent rows of a backend table",
		Args:  cobra.NoArgs,
		RunE:  runRows,
	}
	addClientFlags(cmd)
	cmd.Flags().StringVar(&rowsTable, "table", "", "Table name, e.g. cleanup_location_entries")
	cmd.Flags().StringSliceVar(&rowsColumns, "select", nil, "Columns to return (default all)")
	cmd.Flags().IntVar(&rowsLimit, "limit", 20, "Maximum rows")
	cmd.MarkFlagRequired("table")
	return cmd
}

func runRows(cmd *cobra.Command, args []string) error {
	client, _, err := resolveClient()
	if err != nil {
		return err
	}

	var rows []map[string]json.RawMessage
	if err := client.Select(cmd.Context(), rowsTable, rowsColumns, rowsLimit, &rows); err != nil {
		return fmt.Errorf("select %s: %w", rowsTable, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if rows == nil {
			rows = []map[string]json.RawMessage{}
		}
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No rows found.")
		return nil
	}

	columns := rowsColumns
	if len(columns) == 0 {
		for k := range rows[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellText(row[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// cellText prints strings without quotes and everything else as raw JSON.
func cellText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "-"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
