package filter

import (
	"fmt"
	"strings"
)

// Fragment is a compiled predicate: a SQL condition over a game-id column
// plus its bound arguments. Callers embed it into a report query's filter
// slot without inspecting it.
type Fragment struct {
	SQL  string
	Args []any
}

// Compile lowers an expression tree into a predicate selecting games that
// satisfy the tag logic. gameCol names the column the predicate tests,
// e.g. "game.id" or "sub.id".
//
// NOT is value-negation, not row-absence: every game has an association row
// for every flag, so NOT t matches the rows where the value is false.
// Negations over composites are pushed inward (double negations cancel,
// De Morgan rewrites NOT(a AND b) and NOT(a OR b)) so only literal-level
// negations reach the emitted SQL.
func Compile(e Expr, gameCol string) Fragment {
	var b strings.Builder
	var args []any
	compile(e, gameCol, &b, &args)
	return Fragment{SQL: b.String(), Args: args}
}

func compile(e Expr, gameCol string, b *strings.Builder, args *[]any) {
	switch n := e.(type) {
	case Literal:
		literal(n.Flag, true, gameCol, b, args)

	case Not:
		switch inner := n.X.(type) {
		case Literal:
			literal(inner.Flag, false, gameCol, b, args)
		case Not:
			compile(inner.X, gameCol, b, args)
		case And:
			compile(Or{L: Not{X: inner.L}, R: Not{X: inner.R}}, gameCol, b, args)
		case Or:
			compile(And{L: Not{X: inner.L}, R: Not{X: inner.R}}, gameCol, b, args)
		}

	case And:
		binary(n.L, n.R, "AND", gameCol, b, args)

	case Or:
		binary(n.L, n.R, "OR", gameCol, b, args)
	}
}

func literal(flag int64, value bool, gameCol string, b *strings.Builder, args *[]any) {
	want := 0
	if value {
		want = 1
	}
	fmt.Fprintf(b, "EXISTS (SELECT 1 FROM has_flag WHERE has_flag.game_id = %s AND has_flag.flag_id = ? AND has_flag.value = %d)",
		gameCol, want)
	*args = append(*args, flag)
}

func binary(l, r Expr, op, gameCol string, b *strings.Builder, args *[]any) {
	b.WriteByte('(')
	compile(l, gameCol, b, args)
	b.WriteString(" ")
	b.WriteString(op)
	b.WriteString(" ")
	compile(r, gameCol, b, args)
	b.WriteByte(')')
}
