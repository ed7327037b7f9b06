package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gtrack/internal/query"
	"gtrack/internal/tui"
)

var browseTotal bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored playtime interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().BoolVarP(&browseTotal, "total", "t", false, "Use the whole stored period")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	req := query.Request{
		Scope: query.Scope{Total: browseTotal},
		Sort:  query.SortPlaytimeDesc,
	}
	rows, err := query.Run(st.DB(), req, time.Now())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No playtime recorded in the selected period.")
		return nil
	}

	return tui.Browse(rows)
}
