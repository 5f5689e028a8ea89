package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pgavlin/gvars"
)

// The REPL reads one statement per line:
//
//	statement := name '=' expr | expr
//	expr      := number | string | '#t' | '#f' | '\'' name
//	           | '[' expr* ']' | name | name '(' [expr {',' expr}] ')'

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLiteral
	tokName
	tokOpenParen
	tokCloseParen
	tokOpenBracket
	tokCloseBracket
	tokComma
)

type token struct {
	kind  tokenKind
	text  string
	value gvars.Value
	pos   int
}

const delimiters = `()[],"'`

func isNameRune(c rune) bool {
	return !unicode.IsSpace(c) && !strings.ContainsRune(delimiters, c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ErrIncomplete is returned for input that ends inside a string, vector or
// argument list.
var ErrIncomplete = errors.New("incomplete input")

type lexer struct {
	src string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(c) {
			return
		}
		l.pos += size
	}
}

// name consumes a run of name runes.
func (l *lexer) name() string {
	start := l.pos
	for l.pos < len(l.src) {
		c, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isNameRune(c) {
			break
		}
		l.pos += size
	}
	return l.src[start:l.pos]
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos == len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokOpenParen, text: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{kind: tokCloseParen, text: ")", pos: start}, nil
	case '[':
		l.pos++
		return token{kind: tokOpenBracket, text: "[", pos: start}, nil
	case ']':
		l.pos++
		return token{kind: tokCloseBracket, text: "]", pos: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}, nil
	case '"':
		return l.string()
	case '\'':
		l.pos++
		name := l.name()
		if name == "" {
			return token{}, fmt.Errorf("%d: expected a name after '", start)
		}
		return token{kind: tokLiteral, text: l.src[start:l.pos], value: gvars.Symbol(name), pos: start}, nil
	case '#':
		text := l.name()
		switch text {
		case "#t":
			return token{kind: tokLiteral, text: text, value: gvars.Boolean(true), pos: start}, nil
		case "#f":
			return token{kind: tokLiteral, text: text, value: gvars.Boolean(false), pos: start}, nil
		}
		return token{}, fmt.Errorf("%d: unknown literal %s", start, text)
	case '+', '-', '.':
		if l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
			return l.number()
		}
	default:
		if isDigit(c) {
			return l.number()
		}
	}

	return token{kind: tokName, text: l.name(), pos: start}, nil
}

func (l *lexer) number() (token, error) {
	start := l.pos
	text := l.name()
	n, err := gvars.ParseNumber(text)
	if err != nil {
		return token{}, fmt.Errorf("%d: bad number %s", start, text)
	}
	return token{kind: tokLiteral, text: text, value: n, pos: start}, nil
}

func (l *lexer) string() (token, error) {
	start := l.pos
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '\\':
			i++
		case '"':
			text := l.src[start : i+1]
			s, err := strconv.Unquote(text)
			if err != nil {
				return token{}, fmt.Errorf("%d: bad string %s", start, text)
			}
			l.pos = i + 1
			return token{kind: tokLiteral, text: text, value: gvars.String(s), pos: start}, nil
		}
	}
	return token{}, fmt.Errorf("%d: string was not terminated: %w", start, ErrIncomplete)
}

// Node is a parsed expression.
type Node interface {
	Eval(g *gvars.Globals) (gvars.Value, error)
}

// Literal is a constant.
type Literal struct {
	Value gvars.Value
}

func (n Literal) Eval(*gvars.Globals) (gvars.Value, error) {
	return n.Value, nil
}

// Name reads a global.
type Name string

func (n Name) Eval(g *gvars.Globals) (gvars.Value, error) {
	return g.AutoValueOf(string(n))
}

// Call calls the procedure held by a global.
type Call struct {
	Name string
	Args []Node
}

func (n *Call) Eval(g *gvars.Globals) (gvars.Value, error) {
	h := g.Intern(n.Name)
	v, err := g.AutoValue(h)
	if err != nil {
		return nil, err
	}
	proc, ok := gvars.Callable(v)
	if !ok {
		return nil, &gvars.Error{Kind: gvars.NotAFunction, Handle: h, Name: n.Name}
	}
	args, err := evalAll(g, n.Args)
	if err != nil {
		return nil, err
	}
	return proc.Apply(args)
}

// List builds a vector.
type List []Node

func (n List) Eval(g *gvars.Globals) (gvars.Value, error) {
	return evalAll(g, n)
}

func evalAll(g *gvars.Globals, nodes []Node) (gvars.Vector, error) {
	vs := make(gvars.Vector, len(nodes))
	for i, n := range nodes {
		v, err := n.Eval(g)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errors.New("procedure returned no value")
		}
		vs[i] = v
	}
	return vs, nil
}

// Assignment assigns the value of an expression to a global.
type Assignment struct {
	Name string
	Expr Node
}

func (n *Assignment) Eval(g *gvars.Globals) (gvars.Value, error) {
	v, err := n.Expr.Eval(g)
	if err != nil {
		return nil, err
	}
	if err := g.AssignName(n.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

type parser struct {
	lex  lexer
	tok  token
	peek *token
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok, p.peek = *p.peek, nil
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) lookahead() (token, error) {
	if p.peek == nil {
		tok, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peek = &tok
	}
	return *p.peek, nil
}

func (p *parser) expected(what string) error {
	if p.tok.kind == tokEOF {
		return fmt.Errorf("%d: expected %s: %w", p.tok.pos, what, ErrIncomplete)
	}
	return fmt.Errorf("%d: expected %s, found %s", p.tok.pos, what, p.tok.text)
}

// Parse parses one statement.
func Parse(line string) (Node, error) {
	p := &parser{lex: lexer{src: line}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.expected("an expression")
	}

	var node Node
	if p.tok.kind == tokName {
		next, err := p.lookahead()
		if err != nil {
			return nil, err
		}
		if next.kind == tokName && next.text == "=" {
			name := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.expr()
			if err != nil {
				return nil, err
			}
			node = &Assignment{Name: name, Expr: expr}
		}
	}
	if node == nil {
		expr, err := p.expr()
		if err != nil {
			return nil, err
		}
		node = expr
	}

	if p.tok.kind != tokEOF {
		return nil, p.expected("end of input")
	}
	return node, nil
}

// expr parses the expression starting at the current token and leaves the
// parser on the token after it.
func (p *parser) expr() (Node, error) {
	switch p.tok.kind {
	case tokLiteral:
		n := Literal{Value: p.tok.value}
		return n, p.advance()
	case tokOpenBracket:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var elements List
		for p.tok.kind != tokCloseBracket {
			if p.tok.kind == tokEOF {
				return nil, p.expected("]")
			}
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			elements = append(elements, e)
		}
		if elements == nil {
			elements = List{}
		}
		return elements, p.advance()
	case tokName:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokOpenParen {
			return Name(name), nil
		}
		return p.call(name)
	default:
		return nil, p.expected("an expression")
	}
}

func (p *parser) call(name string) (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	c := &Call{Name: name}
	if p.tok.kind == tokCloseParen {
		return c, p.advance()
	}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, arg)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokCloseParen:
			return c, p.advance()
		default:
			return nil, p.expected(", or )")
		}
	}
}
