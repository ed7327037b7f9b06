package filter

import (
	"errors"
	"testing"
)

func TestParse_Shapes(t *testing.T) {
	cases := []struct {
		input string
		want  string // canonical String() rendering
	}{
		{"1", "1"},
		{"  42  ", "42"},
		{"not 1", "NOT 1"},
		{"NOT NOT 1", "NOT (NOT 1)"},
		{"1 and 2", "1 AND 2"},
		{"1 or 2", "1 OR 2"},
		{"1 and 2 and 3", "(1 AND 2) AND 3"},
		{"1 or 2 or 3", "(1 OR 2) OR 3"},
		{"1 or 2 and 3", "1 OR (2 AND 3)"},
		{"(1 or 2) and 3", "(1 OR 2) AND 3"},
		{"not 1 and 2", "(NOT 1) AND 2"},
		{"not (1 and 2)", "NOT (1 AND 2)"},
		{"((1))", "1"},
	}

	for _, tc := range cases {
		expr, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got := expr.String(); got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"and",
		"1 2",
		"1 and",
		"not",
		"(1 or 2",
		"1)",
		"xor 1",
		"1 & 2",
	}

	for _, input := range cases {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected an error", input)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): error %v is not a ParseError", input, err)
		}
	}
}

func TestParse_CaseInsensitiveOperators(t *testing.T) {
	a, err := Parse("1 AND not 2")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("1 and NOT 2")
	if err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("case variants parse differently: %q vs %q", a, b)
	}
}

// FuzzParse checks that arbitrary input never panics and that accepted
// expressions re-parse to the same tree.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"1",
		"not 1 and (2 or 3)",
		"NOT (1 AND NOT 2) OR 3",
		"((",
		"1 and or 2",
		"9999999999999999999999",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		expr, err := Parse(input)
		if err != nil {
			return
		}
		again, err := Parse(expr.String())
		if err != nil {
			t.Fatalf("canonical form %q does not re-parse: %v", expr.String(), err)
		}
		if again.String() != expr.String() {
			t.Fatalf("re-parse changed the tree: %q vs %q", again.String(), expr.String())
		}
	})
}
