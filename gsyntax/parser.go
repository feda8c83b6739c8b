package gsyntax

import (
	"fmt"
	"io"

	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/pattern"
)

// Parse reads barg's concrete grammar syntax from r and returns the parsed
// AST: `Name := Expr;` assignments over regex/struct/enum/list/variable/
// transform expressions.
func Parse(r io.Reader) (*ast.Toplevel, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := newParser(string(buf))
	return p.parseToplevel()
}

type parser struct {
	lex    *lexer
	cur    token
	peeked *token
}

func newParser(src string) *parser {
	return &parser{lex: newLexer(src)}
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) peekNext() (token, error) {
	if p.peeked == nil {
		tok, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *parser) errf(format string, args ...interface{}) error {
	return bargerr.NewGrammarErrorf(format, args...).WithLine(p.cur.line)
}

func (p *parser) expect(k tokenKind) error {
	if p.cur.kind != k {
		return p.errf("expected %s, got %s", k, p.cur.kind)
	}
	return p.advance()
}

func (p *parser) parseToplevel() (*ast.Toplevel, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var assignments []*ast.Assignment
	for p.cur.kind != tokEOF {
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return ast.NewToplevel(assignments), nil
}

func (p *parser) parseAssignment() (*ast.Assignment, error) {
	if p.cur.kind != tokID {
		return nil, p.errf("expected a production name, got %s", p.cur.kind)
	}
	name := p.cur.text
	line := p.cur.line
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return ast.NewAssignment(line, name, expr), nil
}

// parseExpr parses bare alternation `A | B | ...` into an Enum with
// positional string tags; `enum { tag: Expr, ... }` (parsed as a Primary)
// is the form that gives variants explicit tags.
func (p *parser) parseExpr() (ast.Node, error) {
	line := p.cur.line
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokPipe {
		return first, nil
	}
	variants := []ast.Variant{{Tag: "0", Expr: first}}
	for p.cur.kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		alt, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		variants = append(variants, ast.Variant{Tag: fmt.Sprintf("%d", len(variants)), Expr: alt})
	}
	return ast.NewEnum(line, variants), nil
}

func (p *parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		line := p.cur.line
		switch p.cur.kind {
		case tokStar:
			if err := p.advance(); err != nil {
				return nil, err
			}
			lazy, err := p.consumeLazyMarker()
			if err != nil {
				return nil, err
			}
			expr = ast.NewList(line, expr, lazy, 0, ast.Unbounded)
		case tokPlus:
			if err := p.advance(); err != nil {
				return nil, err
			}
			lazy, err := p.consumeLazyMarker()
			if err != nil {
				return nil, err
			}
			expr = ast.NewList(line, expr, lazy, 1, ast.Unbounded)
		case tokQuestion:
			if err := p.advance(); err != nil {
				return nil, err
			}
			lazy, err := p.consumeLazyMarker()
			if err != nil {
				return nil, err
			}
			expr = ast.NewList(line, expr, lazy, 0, ast.Bounded(1))
		case tokLBrace:
			e, err := p.parseBoundedRepeat(line, expr)
			if err != nil {
				return nil, err
			}
			expr = e
		default:
			return expr, nil
		}
	}
}

func (p *parser) consumeLazyMarker() (ast.ListMode, error) {
	if p.cur.kind == tokQuestion {
		if err := p.advance(); err != nil {
			return ast.Greedy, err
		}
		return ast.Lazy, nil
	}
	return ast.Greedy, nil
}

// parseBoundedRepeat parses `{n}`, `{n,}`, or `{n,m}`, optionally followed
// by a lazy-marker `?`.
func (p *parser) parseBoundedRepeat(line int, inner ast.Node) (ast.Node, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	if p.cur.kind != tokInt {
		return nil, p.errf("expected an integer bound, got %s", p.cur.kind)
	}
	start := p.cur.num
	if err := p.advance(); err != nil {
		return nil, err
	}
	end := ast.Bounded(start)
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokInt {
			end = ast.Bounded(p.cur.num)
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			end = ast.Unbounded
		}
	}
	if err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	lazy, err := p.consumeLazyMarker()
	if err != nil {
		return nil, err
	}
	return ast.NewList(line, inner, lazy, start, end), nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	line := p.cur.line
	switch p.cur.kind {
	case tokID:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewVariable(line, name), nil
	case tokRegex:
		src := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		pat, err := pattern.Compile(src)
		if err != nil {
			if ge, ok := err.(*bargerr.GrammarError); ok {
				return nil, ge.WithLine(line)
			}
			return nil, err
		}
		return ast.NewString(line, pat), nil
	case tokTextStr:
		// A text-string binding: `Code := """...""";`. Never matched
		// against input, only fetched by name as a transform argument.
		value := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewTextString(line, value), nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokKWStruct:
		return p.parseStruct()
	case tokKWEnum:
		return p.parseEnum()
	case tokDollar:
		return p.parseTransform()
	default:
		return nil, p.errf("unexpected token %s in expression", p.cur.kind)
	}
}

func (p *parser) parseStruct() (ast.Node, error) {
	line := p.cur.line
	if err := p.advance(); err != nil { // consume 'struct'
		return nil, err
	}
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for p.cur.kind != tokRBrace {
		name := ""
		if p.cur.kind == tokID {
			if next, err := p.peekNext(); err == nil && next.kind == tokColon {
				name = p.cur.text
				if err := p.advance(); err != nil {
					return nil, err
				}
				if err := p.advance(); err != nil { // consume ':'
					return nil, err
				}
			}
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: name, Expr: expr})
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return ast.NewStruct(line, fields), nil
}

func (p *parser) parseEnum() (ast.Node, error) {
	line := p.cur.line
	if err := p.advance(); err != nil { // consume 'enum'
		return nil, err
	}
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var variants []ast.Variant
	for p.cur.kind != tokRBrace {
		if p.cur.kind != tokID {
			return nil, p.errf("expected a variant tag, got %s", p.cur.kind)
		}
		tag := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(tokColon); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		variants = append(variants, ast.Variant{Tag: tag, Expr: expr})
		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return ast.NewEnum(line, variants), nil
}

// parseTransform parses `$dotted.name(Expr, arg, ...)`: the first
// parenthesized argument is the expression being transformed, the rest are
// transform arguments (a text string literal, or a bare identifier: a
// field name, a mark name, or the name of a module-level text binding,
// resolved at match time).
func (p *parser) parseTransform() (ast.Node, error) {
	line := p.cur.line
	if err := p.advance(); err != nil { // consume '$'
		return nil, err
	}
	if p.cur.kind != tokID {
		return nil, p.errf("expected a transform name after '$', got %s", p.cur.kind)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokID {
			return nil, p.errf("expected a name segment after '.', got %s", p.cur.kind)
		}
		name += "." + p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	if p.cur.kind == tokRParen {
		return nil, p.errf("transform %q needs at least the expression being transformed", name)
	}
	base, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var args []ast.Node
	for p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		argLine := p.cur.line
		switch p.cur.kind {
		case tokTextStr:
			args = append(args, ast.NewTextString(argLine, p.cur.text))
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokID:
			args = append(args, ast.NewVariable(argLine, p.cur.text))
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf("transform arguments must be a text string or a name, got %s", p.cur.kind)
		}
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return ast.NewTransform(line, base, name, args), nil
}
