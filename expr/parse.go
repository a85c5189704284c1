package expr

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ParseError reports a rejected input with the offending position.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	ch := l.input[l.pos]
	switch {
	case ch == '+':
		l.pos++
		return token{tokPlus, "+", start}, nil
	case ch == '-':
		l.pos++
		return token{tokMinus, "-", start}, nil
	case ch == '*':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '*' {
			l.pos++
			return token{tokCaret, "**", start}, nil
		}
		return token{tokStar, "*", start}, nil
	case ch == '/':
		l.pos++
		return token{tokSlash, "/", start}, nil
	case ch == '^':
		l.pos++
		return token{tokCaret, "^", start}, nil
	case ch == '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case ch == ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case ch == ',':
		l.pos++
		return token{tokComma, ",", start}, nil
	case ch >= '0' && ch <= '9' || ch == '.':
		seenDot := false
		for l.pos < len(l.input) {
			c := l.input[l.pos]
			if c == '.' {
				if seenDot {
					return token{}, &ParseError{l.input, l.pos, "unexpected '.'"}
				}
				seenDot = true
			} else if c < '0' || c > '9' {
				break
			}
			l.pos++
		}
		text := l.input[start:l.pos]
		if text == "." {
			return token{}, &ParseError{l.input, start, "malformed number"}
		}
		return token{tokNumber, text, start}, nil
	case isIdentStart(ch):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{tokIdent, l.input[start:l.pos], start}, nil
	}
	return token{}, &ParseError{l.input, start, fmt.Sprintf("unexpected character %q", string(ch))}
}

func isIdentStart(c byte) bool { return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || c >= '0' && c <= '9' }

type parser struct {
	input   string
	lex     *lexer
	tok     token
	varName string
}

// Parse turns input text into an expression tree. Only the designated
// variable name may appear; varName "" admits constant expressions only.
func Parse(input, varName string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{input, 0, "empty expression"}
	}
	p := &parser{input: input, lex: &lexer{input: input}, varName: varName}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errf("unexpected %q", p.tok.text)
	}
	return e, nil
}

// ParseFunction parses a function body over varName, requiring the variable
// to actually occur, matching the analyzer's single-variable contract.
func ParseFunction(input, varName string) (Expr, error) {
	e, err := Parse(input, varName)
	if err != nil {
		return nil, err
	}
	if !ContainsVar(e, varName) {
		return nil, &ParseError{input, 0, fmt.Sprintf("expression must be a function of %s", varName)}
	}
	return e, nil
}

// ParsePoint parses a constant expression such as "1.5", "3/4" or "pi/4".
func ParsePoint(input string) (Expr, error) {
	e, err := Parse(input, "")
	if err != nil {
		return nil, errors.Wrap(err, "point value")
	}
	if _, ok := e.Eval(); !ok {
		return nil, &ParseError{input, 0, "point value is not a real constant"}
	}
	return e, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &ParseError{p.input, p.tok.pos, fmt.Sprintf(format, args...)}
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		neg := p.tok.kind == tokMinus
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Neg(right)
		}
		left = Add(left, right)
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		div := p.tok.kind == tokSlash
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if div {
			left = Div(left, right)
		} else {
			left = Mul(left, right)
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.tok.kind {
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokCaret {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	// Right-associative, and the exponent admits a leading sign: x^-2.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Pow(base, exp), nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(p.tok.text)
		if !ok {
			return nil, p.errf("malformed number %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Number{val: r}, nil

	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokLParen {
			return p.parseCall(name)
		}
		switch name {
		case "pi":
			return Pi(), nil
		case "e":
			return E(), nil
		}
		if p.varName != "" && name == p.varName {
			return Var(name), nil
		}
		if isFuncName(name) {
			return nil, p.errf("function %s requires parentheses", name)
		}
		if p.varName == "" {
			return nil, p.errf("variable %q not allowed here", name)
		}
		return nil, p.errf("unknown identifier %q (the variable is %s)", name, p.varName)

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errf("missing closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errf("unexpected %q", p.tok.text)
}

func isFuncName(name string) bool {
	switch name {
	case "sin", "cos", "tan", "sqrt", "log", "ln", "exp", "abs":
		return true
	}
	return false
}

func (p *parser) parseCall(name string) (Expr, error) {
	if !isFuncName(name) {
		return nil, p.errf("unknown function %q", name)
	}
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	arg, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	var logBase Expr
	if p.tok.kind == tokComma {
		if name != "log" {
			return nil, p.errf("%s takes a single argument", name)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		logBase, err = p.parseSum()
		if err != nil {
			return nil, err
		}
		if b, ok := logBase.Eval(); !ok || b.Float64() <= 0 || b.IsOne() {
			return nil, p.errf("log base must be a positive constant other than 1")
		}
	}
	if p.tok.kind != tokRParen {
		return nil, p.errf("missing closing parenthesis in %s(...)", name)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch name {
	case "sin":
		return Sin(arg), nil
	case "cos":
		return Cos(arg), nil
	case "tan":
		return Tan(arg), nil
	case "sqrt":
		return Sqrt(arg), nil
	case "log", "ln":
		if logBase != nil {
			return LogBase(arg, logBase), nil
		}
		return Log(arg), nil
	case "exp":
		return Exp(arg), nil
	case "abs":
		return Abs(arg), nil
	}
	return nil, p.errf("unknown function %q", name)
}
