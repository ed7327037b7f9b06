package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gtrack/internal/cli"
	"gtrack/internal/filter"
	"gtrack/internal/model"
	"gtrack/internal/query"
	"gtrack/internal/store"
)

var (
	printDates   []string
	printDaily   bool
	printMonthly bool
	printTotal   bool
	printVerbose bool
	printIDs     []int64
	printName    string
	printFilter  string
	printSum     bool
	printMean    bool
	printSort    string
)

var printCmd = &cobra.Command{
	Use:   "print [-t | -d SDATE [EDATE]] [--daily|--monthly] [--gid GID...|--gname NAME] [-f EXPR] [-v]",
	Short: "Print games and playtime totals",
	Long:  "Print playtime reports: totals, daily or monthly breakdowns, per-game filters and flag-expression queries.",
	RunE:  runPrint,
}

func init() {
	printCmd.Flags().StringSliceVarP(&printDates, "date", "d", nil, "Start and optional end date (YYYY-MM-DD)")
	printCmd.Flags().BoolVar(&printDaily, "daily", false, "Compute totals day by day")
	printCmd.Flags().BoolVar(&printMonthly, "monthly", false, "Compute totals month by month")
	printCmd.Flags().BoolVarP(&printTotal, "total", "t", false, "Total playtime without any date bound")
	printCmd.Flags().BoolVarP(&printVerbose, "verbose", "v", false, "Include catalog fields and flag columns")
	printCmd.Flags().Int64SliceVar(&printIDs, "gid", nil, "Restrict to the given game IDs")
	printCmd.Flags().StringVar(&printName, "gname", "", "Restrict to games whose name contains this text")
	printCmd.Flags().StringVarP(&printFilter, "filter", "f", "", "Flag filter expression, e.g. \"1 AND NOT 2\"")
	printCmd.Flags().BoolVar(&printSum, "sum", false, "Single playtime total across matching games")
	printCmd.Flags().BoolVar(&printMean, "mean", false, "Daily mean playtime across matching games")
	printCmd.Flags().StringVar(&printSort, "sort", "playtime", "Sort key: playtime | name | first | last")

	printCmd.MarkFlagsMutuallyExclusive("daily", "monthly")
	printCmd.MarkFlagsMutuallyExclusive("gid", "gname")
	printCmd.MarkFlagsMutuallyExclusive("sum", "mean")
	printCmd.MarkFlagsMutuallyExclusive("total", "date")
	printCmd.MarkFlagsMutuallyExclusive("sum", "daily")
	printCmd.MarkFlagsMutuallyExclusive("sum", "monthly")
	printCmd.MarkFlagsMutuallyExclusive("mean", "daily")
	printCmd.MarkFlagsMutuallyExclusive("mean", "monthly")
	printCmd.MarkFlagsMutuallyExclusive("total", "daily")
	printCmd.MarkFlagsMutuallyExclusive("total", "monthly")

	rootCmd.AddCommand(printCmd)
}

func runPrint(_ *cobra.Command, _ []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	now := time.Now()

	if req.Aggregate != query.AggNone {
		total, err := query.RunAggregate(st.DB(), req, now)
		if err != nil {
			return err
		}
		label := "Total playtime"
		if req.Aggregate == query.AggMean {
			label = "Mean playtime per day"
		}
		fmt.Printf("%s: %s\n", label, cli.FormatPlaytime(total))
		return nil
	}

	rows, err := query.Run(st.DB(), req, now)
	if err != nil {
		return err
	}

	if req.Verbose {
		return printVerboseTable(st, req, rows)
	}
	printPlainTable(req, rows)
	return nil
}

// buildRequest translates the command's flags into a report request. The
// filter expression is parsed up front: a syntax error aborts the request
// before any query executes.
func buildRequest() (query.Request, error) {
	var req query.Request

	req.Scope.Total = printTotal
	switch len(printDates) {
	case 0:
	case 1:
		from, err := parseDate(printDates[0])
		if err != nil {
			return req, err
		}
		req.Scope.From = from
	case 2:
		from, err := parseDate(printDates[0])
		if err != nil {
			return req, err
		}
		to, err := parseDate(printDates[1])
		if err != nil {
			return req, err
		}
		if from.After(to) {
			return req, fmt.Errorf("interval bounds not well defined: %s is after %s", printDates[0], printDates[1])
		}
		req.Scope.From, req.Scope.To = from, to
	default:
		return req, errors.New("--date takes one or two dates")
	}

	req.Identity.IDs = printIDs
	req.Identity.NameSubstring = printName

	if printFilter != "" {
		expr, err := filter.Parse(printFilter)
		if err != nil {
			return req, err
		}
		req.Tag = expr
	}

	req.Verbose = printVerbose
	switch {
	case printDaily:
		req.Granularity = query.GranDaily
	case printMonthly:
		req.Granularity = query.GranMonthly
	}
	switch {
	case printSum:
		req.Aggregate = query.AggSum
	case printMean:
		req.Aggregate = query.AggMean
	}

	switch printSort {
	case "playtime":
		req.Sort = query.SortPlaytimeDesc
	case "name":
		req.Sort = query.SortNameAsc
	case "first":
		req.Sort = query.SortFirstPlayedAsc
	case "last":
		req.Sort = query.SortLastPlayedDesc
	default:
		return req, fmt.Errorf("unknown sort key %q", printSort)
	}

	return req, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// printPlainTable renders identity + playtime rows, with a separator line
// between date groups in daily/monthly mode.
func printPlainTable(req query.Request, rows []query.Row) {
	headers := []string{"game_id", "game_name"}
	switch req.Granularity {
	case query.GranDaily:
		headers = append(headers, "day")
	case query.GranMonthly:
		headers = append(headers, "month")
	}
	headers = append(headers, "playtime (HH:MM:SS)")

	var out [][]string
	prevBucket := ""
	for i, r := range rows {
		if req.Granularity != query.GranNone && i > 0 && r.Bucket != prevBucket {
			out = append(out, []string{"---"})
		}
		prevBucket = r.Bucket

		row := []string{fmt.Sprintf("%d", r.GameID), r.DisplayName}
		if req.Granularity != query.GranNone {
			row = append(row, r.Bucket)
		}
		row = append(row, cli.FormatPlaytime(r.Playtime))
		out = append(out, row)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   headers,
		Rows:      out,
		LeftAlign: map[int]bool{1: true},
	}))
}

// printVerboseTable pivots each flag into its own column and adds the
// catalog's descriptive fields.
func printVerboseTable(st *store.Store, req query.Request, rows []query.Row) error {
	flags, err := st.Flags()
	if err != nil {
		return err
	}
	values, err := st.FlagValues()
	if err != nil {
		return err
	}

	byGame := make(map[int64]map[int64]bool)
	for _, v := range values {
		m, ok := byGame[v.GameID]
		if !ok {
			m = make(map[int64]bool)
			byGame[v.GameID] = m
		}
		m[v.FlagID] = v.Value
	}

	headers := []string{"game_id", "game_name", "game_exe"}
	for _, f := range flags {
		headers = append(headers, f.Name)
	}
	if req.Granularity == query.GranDaily {
		headers = append(headers, "day")
	} else if req.Granularity == query.GranMonthly {
		headers = append(headers, "month")
	}
	headers = append(headers, "playtime (HH:MM:SS)")

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{fmt.Sprintf("%d", r.GameID), r.DisplayName, r.Executable}
		row = append(row, flagCells(flags, byGame[r.GameID])...)
		if req.Granularity != query.GranNone {
			row = append(row, r.Bucket)
		}
		row = append(row, cli.FormatPlaytime(r.Playtime))
		out = append(out, row)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   headers,
		Rows:      out,
		LeftAlign: map[int]bool{1: true, 2: true},
	}))
	return nil
}

func flagCells(flags []model.Flag, values map[int64]bool) []string {
	cells := make([]string, len(flags))
	for i, f := range flags {
		cells[i] = cli.FormatBool(values[f.ID])
	}
	return cells
}
