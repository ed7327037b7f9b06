// Package filter parses boolean tag-filter expressions and compiles them
// into SQL predicate fragments over the has_flag table.
package filter

import (
	"fmt"
	"strings"
)

// Expr is a node of the parsed filter expression tree.
type Expr interface {
	isExpr()
	String() string
}

// Literal references one flag id: games carrying the flag with value true.
type Literal struct {
	Flag int64
}

// Not negates its child.
type Not struct {
	X Expr
}

// And requires both children.
type And struct {
	L, R Expr
}

// Or requires either child.
type Or struct {
	L, R Expr
}

func (Literal) isExpr() {}
func (Not) isExpr()     {}
func (And) isExpr()     {}
func (Or) isExpr()      {}

func (l Literal) String() string { return fmt.Sprintf("%d", l.Flag) }
func (n Not) String() string     { return "NOT " + parenthesize(n.X) }
func (a And) String() string     { return parenthesize(a.L) + " AND " + parenthesize(a.R) }
func (o Or) String() string      { return parenthesize(o.L) + " OR " + parenthesize(o.R) }

func parenthesize(e Expr) string {
	if _, ok := e.(Literal); ok {
		return e.String()
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(e.String())
	b.WriteByte(')')
	return b.String()
}
