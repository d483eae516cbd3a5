package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"

	"github.com/spf13/cobra"
)

var flagPreviewRows int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the detected column mapping and the first rows",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().IntVarP(&flagPreviewRows, "rows", "r", 10, "Number of rows to show")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	fmt.Println()
	fmt.Println(cli.RenderTitle("COLUMN MAPPING  " + sourceLabel(t)))
	fmt.Println()

	fields := append([]model.Field{model.FieldDate}, model.NumericFields...)
	mapRows := make([][]string, 0, len(fields))
	for _, f := range fields {
		col, ok := t.Mapping[f]
		if !ok {
			col = cli.RenderMuted(cli.NA)
		}
		mapRows = append(mapRows, []string{f.Label(), col})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Column"},
		Rows:    mapRows,
	}))

	if missing := source.Unmapped(t.Mapping); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		fmt.Printf("  %s\n", cli.RenderMuted("unmapped: "+strings.Join(names, ", ")))
	}

	var cols []model.Field
	for _, f := range model.NumericFields {
		if t.Has(f) {
			cols = append(cols, f)
		}
	}

	n := min(max(flagPreviewRows, 0), t.Len())
	headers := []string{"Date"}
	for _, f := range cols {
		headers = append(headers, f.Label())
	}
	rows := make([][]string, 0, n)
	for _, r := range t.Records[:n] {
		row := []string{cli.FormatDate(r.Date)}
		for _, f := range cols {
			cell := cli.NA
			if v, ok := r.Get(f); ok {
				cell = cli.FormatMetric(f, v)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("First %d of %d rows", n, t.Len()),
		Headers: headers,
		Rows:    rows,
	}))
	return nil
}
