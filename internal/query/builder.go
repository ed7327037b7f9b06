package query

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gtrack/internal/filter"
)

// Build assembles the SQL for a report request. Each enabled feature is a
// pure transformation: the granularity-aware base query carries the date
// and identity filtering exactly once, and verbose shape, tag predicate
// and cross-game aggregation wrap it as inner scopes.
func Build(req Request, now time.Time) (string, []any) {
	q, args := baseQuery(req, now)

	if req.Verbose {
		q = verboseWrap(q, req.Granularity)
	}
	if req.Tag != nil {
		frag := filter.Compile(req.Tag, "sub.id")
		q = "SELECT sub.* FROM (" + q + ") AS sub WHERE " + frag.SQL
		args = append(args, frag.Args...)
	}
	if req.Aggregate != AggNone {
		return "SELECT IFNULL(SUM(sub.total_playtime), 0) FROM (" + q + ") AS sub", args
	}

	return q + orderBy(req), args
}

func baseQuery(req Request, now time.Time) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT game.id AS id, game.display_name AS display_name, ")
	switch req.Granularity {
	case GranDaily:
		b.WriteString("strftime('%Y-%m-%d', activity.start_time, 'localtime') AS bucket, ")
	case GranMonthly:
		b.WriteString("strftime('%Y-%m', activity.start_time, 'localtime') AS bucket, ")
	}
	b.WriteString("SUM(activity.playtime) AS total_playtime, ")
	b.WriteString("MIN(activity.start_time) AS first_played, ")
	b.WriteString("MAX(activity.start_time) AS last_played ")
	b.WriteString("FROM game JOIN activity ON activity.game_id = game.id ")
	b.WriteString("WHERE 1 = 1")

	if !req.Scope.Total {
		b.WriteString(" AND date(activity.start_time, 'localtime') >= ?")
		args = append(args, req.Scope.effectiveFrom(now).Format("2006-01-02"))
		if !req.Scope.To.IsZero() {
			b.WriteString(" AND date(activity.start_time, 'localtime') <= ?")
			args = append(args, req.Scope.To.Format("2006-01-02"))
		}
	}

	switch {
	case len(req.Identity.IDs) > 0:
		b.WriteString(" AND game.id IN (")
		for i, id := range req.Identity.IDs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, id)
		}
		b.WriteString(")")

	case req.Identity.NameSubstring != "":
		b.WriteString(" AND game.display_name LIKE ?")
		args = append(args, "%"+req.Identity.NameSubstring+"%")
	}

	b.WriteString(" GROUP BY game.id")
	if req.Granularity != GranNone {
		b.WriteString(", bucket")
	}

	return b.String(), args
}

// verboseWrap joins the catalog back in for its descriptive fields. Column
// aliases are preserved so further wraps can keep selecting sub.*.
func verboseWrap(inner string, gran Granularity) string {
	var b strings.Builder
	b.WriteString("SELECT sub.id AS id, sub.display_name AS display_name, ")
	b.WriteString("game.executable_name AS executable_name, ")
	if gran != GranNone {
		b.WriteString("sub.bucket AS bucket, ")
	}
	b.WriteString("sub.total_playtime AS total_playtime, ")
	b.WriteString("sub.first_played AS first_played, ")
	b.WriteString("sub.last_played AS last_played ")
	b.WriteString("FROM (")
	b.WriteString(inner)
	b.WriteString(") AS sub JOIN game ON game.id = sub.id")
	return b.String()
}

func orderBy(req Request) string {
	var keys []string
	if req.Granularity != GranNone {
		keys = append(keys, "bucket DESC")
	}

	switch req.Sort {
	case SortNameAsc:
		keys = append(keys, "display_name COLLATE NOCASE ASC")
	case SortFirstPlayedAsc:
		keys = append(keys, "first_played ASC")
	case SortLastPlayedDesc:
		keys = append(keys, "last_played DESC")
	default:
		keys = append(keys, "total_playtime DESC")
	}

	return " ORDER BY " + strings.Join(keys, ", ")
}

// Run executes a row-shaped report request.
func Run(db *sql.DB, req Request, now time.Time) ([]Row, error) {
	q, args := Build(req, now)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var r Row
		var first, last string

		dest := []any{&r.GameID, &r.DisplayName}
		if req.Verbose {
			dest = append(dest, &r.Executable)
		}
		if req.Granularity != GranNone {
			dest = append(dest, &r.Bucket)
		}
		dest = append(dest, &r.Playtime, &first, &last)

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if r.FirstPlayed, err = time.Parse(time.RFC3339Nano, first); err != nil {
			return nil, fmt.Errorf("parsing stored first_played %q: %w", first, err)
		}
		if r.LastPlayed, err = time.Parse(time.RFC3339Nano, last); err != nil {
			return nil, fmt.Errorf("parsing stored last_played %q: %w", last, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunAggregate executes a sum or mean report, returning seconds.
func RunAggregate(db *sql.DB, req Request, now time.Time) (float64, error) {
	q, args := Build(req, now)

	var total float64
	if err := db.QueryRow(q, args...).Scan(&total); err != nil {
		return 0, err
	}

	if req.Aggregate == AggMean {
		days := req.Scope.ElapsedDays(now)
		if days <= 0 {
			return 0, nil
		}
		return total / float64(days), nil
	}
	return total, nil
}
