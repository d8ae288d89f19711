package zipcrack

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/zipcrack/internal/history"
	"github.com/spf13/cobra"
)

var (
	flagHistoryJSON  bool
	flagHistoryLimit int
	flagHistoryClear bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous password searches",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&flagHistoryJSON, "json", false, "emit records as JSON")
	cmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "show at most N records (0 = all)")
	cmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "delete the history log")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := resolve(cmd, nil)
	if err != nil {
		return err
	}
	hl := history.New(st.historyPath)
	out := cmd.OutOrStdout()
	if flagHistoryClear {
		if err := hl.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}
	records, err := hl.Load()
	if err != nil {
		// an absent log just means nothing has run yet
		records = nil
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}
	if flagHistoryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []history.RunRecord{}
		}
		return enc.Encode(records)
	}
	return renderHistory(out, records)
}

func renderHistory(w io.Writer, records []history.RunRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Archive,
			r.Outcome,
			r.Password,
			strconv.Itoa(r.Attempts),
			r.Duration,
		})
	}
	table := tablewriter.NewWriter(w)
	table.Header("When", "Archive", "Outcome", "Password", "Attempts", "Duration")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
