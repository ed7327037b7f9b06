package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError reports a syntax error in a filter expression. It is fatal:
// the surrounding report request aborts before any query runs.
type ParseError struct {
	Input string
	Pos   int // token index, -1 for end of input
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("filter %q: %s at end of expression", e.Input, e.Msg)
	}
	return fmt.Sprintf("filter %q: %s at token %d", e.Input, e.Msg, e.Pos+1)
}

type tokenKind int

const (
	tokFlag tokenKind = iota
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	flag int64 // valid for tokFlag
	text string
}

// tokenize splits a filter string into tokens. Operators are matched
// case-insensitively; flag references are non-negative integers.
func tokenize(input string) ([]token, error) {
	var toks []token

	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++

		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++

		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++

		case c >= '0' && c <= '9':
			j := i
			for j < len(input) && input[j] >= '0' && input[j] <= '9' {
				j++
			}
			n, err := strconv.ParseInt(input[i:j], 10, 64)
			if err != nil {
				return nil, &ParseError{Input: input, Pos: len(toks), Msg: "invalid flag id"}
			}
			toks = append(toks, token{kind: tokFlag, flag: n, text: input[i:j]})
			i = j

		case unicode.IsLetter(c):
			j := i
			for j < len(input) && unicode.IsLetter(rune(input[j])) {
				j++
			}
			word := input[i:j]
			switch strings.ToUpper(word) {
			case "NOT":
				toks = append(toks, token{kind: tokNot, text: word})
			case "AND":
				toks = append(toks, token{kind: tokAnd, text: word})
			case "OR":
				toks = append(toks, token{kind: tokOr, text: word})
			default:
				return nil, &ParseError{Input: input, Pos: len(toks), Msg: fmt.Sprintf("unknown operator %q", word)}
			}
			i = j

		default:
			return nil, &ParseError{Input: input, Pos: len(toks), Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}

	return toks, nil
}

// parser is a recursive-descent parser with the usual precedence ladder:
// OR < AND < NOT, binaries left-associative, NOT right-associative.
type parser struct {
	input string
	toks  []token
	pos   int
}

// Parse builds the expression tree for a filter string.
func Parse(input string) (Expr, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &ParseError{Input: input, Pos: -1, Msg: "empty expression"}
	}

	p := &parser{input: input, toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, p.errorf("unexpected token %q", p.toks[p.pos].text)
	}
	return expr, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	// A chain of more than two operands folds left-to-right into nested
	// binary nodes.
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.accept(tokNot) {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.pos >= len(p.toks) {
		return nil, &ParseError{Input: p.input, Pos: -1, Msg: "expected flag id or parenthesized expression"}
	}

	tok := p.toks[p.pos]
	switch tok.kind {
	case tokFlag:
		p.pos++
		return Literal{Flag: tok.flag}, nil

	case tokLParen:
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, p.errorf("missing closing parenthesis")
		}
		return expr, nil

	default:
		return nil, p.errorf("unexpected token %q", tok.text)
	}
}

func (p *parser) accept(kind tokenKind) bool {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	pos := p.pos
	if pos >= len(p.toks) {
		pos = -1
	}
	return &ParseError{Input: p.input, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
