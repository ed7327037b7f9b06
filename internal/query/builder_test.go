package query

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gtrack/internal/filter"
	"gtrack/internal/model"
	"gtrack/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestBuild_DefaultScopeStartsAtYearStart(t *testing.T) {
	q, args := Build(Request{}, testNow)

	if !strings.Contains(q, "date(activity.start_time, 'localtime') >= ?") {
		t.Errorf("query lacks the lower date bound:\n%s", q)
	}
	if len(args) != 1 || args[0] != "2024-01-01" {
		t.Errorf("args = %v, want the start of the current year", args)
	}
}

func TestBuild_TotalScopeHasNoDateBounds(t *testing.T) {
	q, args := Build(Request{Scope: Scope{Total: true}}, testNow)

	if strings.Contains(q, "date(activity.start_time") {
		t.Errorf("total scope must not filter by date:\n%s", q)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuild_ClosedInterval(t *testing.T) {
	req := Request{Scope: Scope{
		From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
		To:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local),
	}}
	_, args := Build(req, testNow)

	want := []any{"2024-02-01", "2024-02-29"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuild_IdentityByIDs(t *testing.T) {
	req := Request{Scope: Scope{Total: true}, Identity: Identity{IDs: []int64{3, 7}}}
	q, args := Build(req, testNow)

	if !strings.Contains(q, "game.id IN (?, ?)") {
		t.Errorf("query lacks the id restriction:\n%s", q)
	}
	if !reflect.DeepEqual(args, []any{int64(3), int64(7)}) {
		t.Errorf("args = %v, want the ids", args)
	}
}

func TestBuild_IdentityByName(t *testing.T) {
	req := Request{Scope: Scope{Total: true}, Identity: Identity{NameSubstring: "rocket"}}
	q, args := Build(req, testNow)

	if !strings.Contains(q, "game.display_name LIKE ?") {
		t.Errorf("query lacks the name restriction:\n%s", q)
	}
	if !reflect.DeepEqual(args, []any{"%rocket%"}) {
		t.Errorf("args = %v, want the wrapped substring", args)
	}
}

func TestBuild_Granularity(t *testing.T) {
	q, _ := Build(Request{Scope: Scope{Total: true}, Granularity: GranDaily}, testNow)
	if !strings.Contains(q, "strftime('%Y-%m-%d', activity.start_time, 'localtime') AS bucket") {
		t.Errorf("daily query lacks the day bucket:\n%s", q)
	}
	if !strings.Contains(q, "GROUP BY game.id, bucket") {
		t.Errorf("daily query lacks bucket grouping:\n%s", q)
	}
	if !strings.Contains(q, "ORDER BY bucket DESC") {
		t.Errorf("daily query must order newest bucket first:\n%s", q)
	}

	q, _ = Build(Request{Scope: Scope{Total: true}, Granularity: GranMonthly}, testNow)
	if !strings.Contains(q, "strftime('%Y-%m', activity.start_time, 'localtime') AS bucket") {
		t.Errorf("monthly query lacks the month bucket:\n%s", q)
	}
}

func TestBuild_TagWrapsBaseQuery(t *testing.T) {
	expr, err := filter.Parse("1 and not 2")
	if err != nil {
		t.Fatal(err)
	}
	req := Request{Scope: Scope{Total: true}, Tag: expr}
	q, args := Build(req, testNow)

	if !strings.Contains(q, "FROM (SELECT") {
		t.Errorf("tag filter must wrap the base query:\n%s", q)
	}
	if !strings.Contains(q, "has_flag.game_id = sub.id") {
		t.Errorf("tag predicate must test the wrapped id column:\n%s", q)
	}
	if !reflect.DeepEqual(args, []any{int64(1), int64(2)}) {
		t.Errorf("args = %v, want the flag ids", args)
	}
}

func TestBuild_AggregateIsOutermost(t *testing.T) {
	expr, err := filter.Parse("1")
	if err != nil {
		t.Fatal(err)
	}
	req := Request{Scope: Scope{Total: true}, Tag: expr, Aggregate: AggSum}
	q, _ := Build(req, testNow)

	if !strings.HasPrefix(q, "SELECT IFNULL(SUM(sub.total_playtime), 0)") {
		t.Errorf("aggregate must be the outermost layer:\n%s", q)
	}
	if strings.Contains(q, "ORDER BY") {
		t.Errorf("aggregate query must not order:\n%s", q)
	}
}

func TestBuild_SortKeys(t *testing.T) {
	cases := []struct {
		sort SortKey
		want string
	}{
		{SortPlaytimeDesc, "ORDER BY total_playtime DESC"},
		{SortNameAsc, "ORDER BY display_name COLLATE NOCASE ASC"},
		{SortFirstPlayedAsc, "ORDER BY first_played ASC"},
		{SortLastPlayedDesc, "ORDER BY last_played DESC"},
	}

	for _, tc := range cases {
		q, _ := Build(Request{Scope: Scope{Total: true}, Sort: tc.sort}, testNow)
		if !strings.HasSuffix(q, tc.want) {
			t.Errorf("sort %v: query ends %q, want %q", tc.sort, q[len(q)-40:], tc.want)
		}
	}
}

func TestElapsedDays(t *testing.T) {
	cases := []struct {
		name  string
		scope Scope
		now   time.Time
		want  int
	}{
		{
			"defaults to year start through today",
			Scope{},
			time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			75,
		},
		{
			"single day",
			Scope{From: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
			testNow,
			1,
		},
		{
			"inclusive interval",
			Scope{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
			testNow,
			10,
		},
		{
			"across a year boundary",
			Scope{From: time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			testNow,
			4,
		},
		{
			"across a full intermediate year",
			Scope{From: time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			testNow,
			367,
		},
		{
			"inverted bounds",
			Scope{From: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			testNow,
			0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.scope.ElapsedDays(tc.now); got != tc.want {
				t.Errorf("ElapsedDays = %d, want %d", got, tc.want)
			}
		})
	}
}

func openSeededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "gtrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	games := []struct {
		name, exe string
		finished  bool
		playtime  float64
		start     time.Time
	}{
		{"Alpha", "alpha.exe", true, 3600, time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)},
		{"Beta", "beta.exe", false, 1200, time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC)},
	}

	flagID, err := st.AddFlag("finished")
	if err != nil {
		t.Fatal(err)
	}

	for _, g := range games {
		id, _, err := st.UpsertGame(g.name, g.exe)
		if err != nil {
			t.Fatal(err)
		}
		if err := st.SetFlagValues(id, map[int64]bool{flagID: g.finished}); err != nil {
			t.Fatal(err)
		}

		tx, err := st.Begin()
		if err != nil {
			t.Fatal(err)
		}
		c := model.Candidate{GameID: id, Start: g.start, Playtime: g.playtime, Events: 1}
		if _, err := st.SaveCandidate(tx, c, 180); err != nil {
			t.Fatal(err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func TestRun_TotalScope(t *testing.T) {
	st := openSeededStore(t)

	rows, err := Run(st.DB(), Request{Scope: Scope{Total: true}}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Default sort is playtime descending.
	if rows[0].DisplayName != "Alpha" || rows[0].Playtime != 3600 {
		t.Errorf("row 0 = %+v, want Alpha with 3600s", rows[0])
	}
	if rows[1].DisplayName != "Beta" {
		t.Errorf("row 1 = %+v, want Beta", rows[1])
	}
	if rows[0].FirstPlayed.IsZero() || rows[0].LastPlayed.IsZero() {
		t.Error("first/last played not populated")
	}
}

func TestRun_TagFilter(t *testing.T) {
	st := openSeededStore(t)

	expr, err := filter.Parse("1")
	if err != nil {
		t.Fatal(err)
	}
	rows, err := Run(st.DB(), Request{Scope: Scope{Total: true}, Tag: expr}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "Alpha" {
		t.Fatalf("rows = %+v, want only the finished game", rows)
	}

	expr, err = filter.Parse("not 1")
	if err != nil {
		t.Fatal(err)
	}
	rows, err = Run(st.DB(), Request{Scope: Scope{Total: true}, Tag: expr}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "Beta" {
		t.Fatalf("rows = %+v, want only the unfinished game", rows)
	}
}

func TestRun_VerboseIncludesExecutable(t *testing.T) {
	st := openSeededStore(t)

	rows, err := Run(st.DB(), Request{Scope: Scope{Total: true}, Verbose: true}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Executable != "alpha.exe" {
		t.Errorf("executable = %q, want alpha.exe", rows[0].Executable)
	}
}

func TestRunAggregate_SumAndMean(t *testing.T) {
	st := openSeededStore(t)

	total, err := RunAggregate(st.DB(), Request{Scope: Scope{Total: true}, Aggregate: AggSum}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if total != 4800 {
		t.Errorf("sum = %v, want 4800", total)
	}

	scope := Scope{
		From: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
	}
	mean, err := RunAggregate(st.DB(), Request{Scope: scope, Aggregate: AggMean}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if mean != 1200 {
		t.Errorf("mean = %v, want 4800 over 4 days", mean)
	}
}

func TestRun_MalformedStoredTimestamp(t *testing.T) {
	st := openSeededStore(t)

	_, err := st.DB().Exec(
		"INSERT INTO activity (game_id, start_time, playtime) VALUES (1, 'garbage', 600)")
	if err != nil {
		t.Fatal(err)
	}

	_, err = Run(st.DB(), Request{Scope: Scope{Total: true}}, testNow)
	if err == nil {
		t.Fatal("expected an error for an unparseable stored timestamp")
	}
	if !strings.Contains(err.Error(), "garbage") {
		t.Errorf("error %q does not name the offending value", err)
	}
}

func TestRunAggregate_EmptyScopeIsZero(t *testing.T) {
	st := openSeededStore(t)

	req := Request{
		Scope:     Scope{Total: true},
		Identity:  Identity{NameSubstring: "nonexistent"},
		Aggregate: AggSum,
	}
	total, err := RunAggregate(st.DB(), req, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("sum = %v, want 0", total)
	}
}
