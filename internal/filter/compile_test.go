package filter

import (
	"reflect"
	"testing"
)

const (
	existsTrue  = "EXISTS (SELECT 1 FROM has_flag WHERE has_flag.game_id = game.id AND has_flag.flag_id = ? AND has_flag.value = 1)"
	existsFalse = "EXISTS (SELECT 1 FROM has_flag WHERE has_flag.game_id = game.id AND has_flag.flag_id = ? AND has_flag.value = 0)"
)

func mustParse(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return expr
}

func TestCompile_Shapes(t *testing.T) {
	cases := []struct {
		input    string
		wantSQL  string
		wantArgs []any
	}{
		{
			"1",
			existsTrue,
			[]any{int64(1)},
		},
		{
			"not 1",
			existsFalse,
			[]any{int64(1)},
		},
		{
			// Double negation cancels.
			"not not 7",
			existsTrue,
			[]any{int64(7)},
		},
		{
			"1 and 2",
			"(" + existsTrue + " AND " + existsTrue + ")",
			[]any{int64(1), int64(2)},
		},
		{
			// De Morgan: NOT(a AND b) becomes NOT a OR NOT b.
			"not (1 and 2)",
			"(" + existsFalse + " OR " + existsFalse + ")",
			[]any{int64(1), int64(2)},
		},
		{
			// De Morgan: NOT(a OR b) becomes NOT a AND NOT b.
			"not (1 or 2)",
			"(" + existsFalse + " AND " + existsFalse + ")",
			[]any{int64(1), int64(2)},
		},
		{
			// Push-down recurses: the inner negation flips back to true.
			"not (1 and not 2)",
			"(" + existsFalse + " OR " + existsTrue + ")",
			[]any{int64(1), int64(2)},
		},
	}

	for _, tc := range cases {
		frag := Compile(mustParse(t, tc.input), "game.id")
		if frag.SQL != tc.wantSQL {
			t.Errorf("Compile(%q).SQL =\n%s\nwant\n%s", tc.input, frag.SQL, tc.wantSQL)
		}
		if !reflect.DeepEqual(frag.Args, tc.wantArgs) {
			t.Errorf("Compile(%q).Args = %v, want %v", tc.input, frag.Args, tc.wantArgs)
		}
	}
}

func TestCompile_GameColumn(t *testing.T) {
	frag := Compile(mustParse(t, "3"), "sub.id")
	want := "EXISTS (SELECT 1 FROM has_flag WHERE has_flag.game_id = sub.id AND has_flag.flag_id = ? AND has_flag.value = 1)"
	if frag.SQL != want {
		t.Errorf("SQL = %s, want %s", frag.SQL, want)
	}
}

func TestCompile_ArgOrderFollowsExpression(t *testing.T) {
	frag := Compile(mustParse(t, "3 or (1 and 2)"), "game.id")
	want := []any{int64(3), int64(1), int64(2)}
	if !reflect.DeepEqual(frag.Args, want) {
		t.Errorf("Args = %v, want %v", frag.Args, want)
	}
}
