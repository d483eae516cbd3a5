package cmd

import (
	"fmt"

	"github.com/theirongolddev/echolon/internal/cli"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show snapshots recorded by previous summary runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Max entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	entries, err := cache.ListHistory(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	fmt.Println()
	if len(entries) == 0 {
		fmt.Println("  No history yet. Run `echolon summary` to record a snapshot.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, h := range entries {
		rows = append(rows, []string{
			h.CreatedAt.Local().Format("2006-01-02 15:04"),
			h.Source,
			cli.FormatNumber(int64(h.Periods)),
			cli.FormatCompactMoney(h.Revenue),
			cli.FormatCompactMoney(h.Expenses),
			cli.FormatCompactMoney(h.Profit),
			cli.FormatCount(h.Customers),
			cli.FormatRate(h.ChurnRate),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Run History",
		Headers: []string{"When", "Source", "Periods", "Revenue", "Expenses", "Profit", "Customers", "Churn"},
		Rows:    rows,
	}))
	return nil
}
