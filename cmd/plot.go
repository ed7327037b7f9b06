package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gtrack/internal/cli"
	"gtrack/internal/filter"
	"gtrack/internal/query"
)

var (
	plotDates  []string
	plotTotal  bool
	plotFilter string
)

var plotCmd = &cobra.Command{
	Use:       "plot [pot|mhot]",
	Short:     "Terminal charts of stored playtime",
	Long:      "pot draws playtime-over-total bars per game; mhot draws hours played per day over the scope.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"pot", "mhot"},
	RunE:      runPlot,
}

func init() {
	plotCmd.Flags().StringSliceVarP(&plotDates, "date", "d", nil, "Start and optional end date (YYYY-MM-DD)")
	plotCmd.Flags().BoolVarP(&plotTotal, "total", "t", false, "Use the whole stored period")
	plotCmd.Flags().StringVarP(&plotFilter, "filter", "f", "", "Flag filter expression; pot highlights matching games")
	plotCmd.MarkFlagsMutuallyExclusive("total", "date")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(_ *cobra.Command, args []string) error {
	scope, err := plotScope()
	if err != nil {
		return err
	}

	var expr filter.Expr
	if plotFilter != "" {
		expr, err = filter.Parse(plotFilter)
		if err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	now := time.Now()

	switch args[0] {
	case "pot":
		return plotPlaytimeOverTotal(st.DB(), scope, expr, now)
	default:
		return plotHoursOverTime(st.DB(), scope, expr, now)
	}
}

func plotScope() (query.Scope, error) {
	scope := query.Scope{Total: plotTotal}
	switch len(plotDates) {
	case 0:
	case 1:
		from, err := parseDate(plotDates[0])
		if err != nil {
			return scope, err
		}
		scope.From = from
	case 2:
		from, err := parseDate(plotDates[0])
		if err != nil {
			return scope, err
		}
		to, err := parseDate(plotDates[1])
		if err != nil {
			return scope, err
		}
		if from.After(to) {
			return scope, fmt.Errorf("interval bounds not well defined: %s is after %s", plotDates[0], plotDates[1])
		}
		scope.From, scope.To = from, to
	default:
		return scope, fmt.Errorf("--date takes one or two dates")
	}
	return scope, nil
}

// plotPlaytimeOverTotal draws one horizontal bar per game, longest play
// first. With a filter expression, matching games are highlighted rather
// than excluded.
func plotPlaytimeOverTotal(db *sql.DB, scope query.Scope, expr filter.Expr, now time.Time) error {
	rows, err := query.Run(db, query.Request{Scope: scope, Sort: query.SortPlaytimeDesc}, now)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No playtime recorded in the selected period.")
		return nil
	}

	highlight := map[int64]bool{}
	if expr != nil {
		frag := filter.Compile(expr, "game.id")
		matched, err := db.Query("SELECT game.id FROM game WHERE "+frag.SQL, frag.Args...)
		if err != nil {
			return err
		}
		defer func() { _ = matched.Close() }()
		for matched.Next() {
			var id int64
			if err := matched.Scan(&id); err != nil {
				return err
			}
			highlight[id] = true
		}
		if err := matched.Err(); err != nil {
			return err
		}
	}

	max := rows[0].Playtime

	fmt.Println()
	fmt.Println(cli.RenderTitle("PLAYTIME PER GAME"))
	fmt.Println()
	for _, r := range rows {
		fmt.Println(cli.RenderHorizontalBar(r.DisplayName, r.Playtime, max, 40, highlight[r.GameID]))
	}
	fmt.Println()
	return nil
}

// plotHoursOverTime draws a sparkline of hours played per calendar day,
// zero-filled so gaps show as gaps.
func plotHoursOverTime(db *sql.DB, scope query.Scope, expr filter.Expr, now time.Time) error {
	req := query.Request{Scope: scope, Tag: expr, Granularity: query.GranDaily}
	rows, err := query.Run(db, req, now)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No playtime recorded in the selected period.")
		return nil
	}

	perDay := make(map[string]float64)
	minDay, maxDay := rows[0].Bucket, rows[0].Bucket
	for _, r := range rows {
		perDay[r.Bucket] += r.Playtime
		if r.Bucket < minDay {
			minDay = r.Bucket
		}
		if r.Bucket > maxDay {
			maxDay = r.Bucket
		}
	}

	from, err := time.ParseInLocation("2006-01-02", minDay, time.Local)
	if err != nil {
		return err
	}
	to, err := time.ParseInLocation("2006-01-02", maxDay, time.Local)
	if err != nil {
		return err
	}

	var values []float64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		values = append(values, perDay[d.Format("2006-01-02")]/3600)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HOURS PLAYED PER DAY"))
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSparkline(values))
	fmt.Printf("  %s .. %s (peak %s)\n", minDay, maxDay, cli.FormatHours(peak(values)*3600))
	fmt.Println()
	return nil
}

func peak(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
