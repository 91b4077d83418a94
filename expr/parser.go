package expr

import (
	"fmt"
	"strconv"

	"github.com/jelly-lidong/cmd-codec/errs"
)

// parser is a recursive-descent, precedence-climbing parser over a flat
// token slice, in the current/advance/at style of the opal parser
// (_examples/opal-lang-opal/runtime/parser/parser.go).
type parser struct {
	tokens []token
	pos    int
}

// Parse compiles source into an evaluable expression tree.
func Parse(source string) (*Expr, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, wrapSyntax(err)
	}

	p := &parser{tokens: toks}

	root, err := p.parseTernary()
	if err != nil {
		return nil, wrapSyntax(err)
	}

	if !p.at(tokEOF) {
		return nil, wrapSyntax(fmt.Errorf("expr: unexpected trailing token %q", p.current().text))
	}

	return &Expr{root: root, source: source}, nil
}

func wrapSyntax(err error) error {
	return errs.New(errs.KindConfiguration, "", "", "", fmt.Errorf("%w: %v", errs.ErrExpressionSyntax, err))
}

// Expr is a parsed, reusable expression.
type Expr struct {
	root   node
	source string
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.source }

func (p *parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{kind: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) at(k tokenKind) bool { return p.current().kind == k }

func (p *parser) atOp(ops ...string) bool {
	c := p.current()
	if c.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if c.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if !p.at(k) {
		return token{}, fmt.Errorf("expr: expected %s, got %q", what, p.current().text)
	}
	return p.advance(), nil
}

// parseTernary parses `cond ? then : else`, the lowest-precedence
// construct in the grammar.
func (p *parser) parseTernary() (node, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}

	if p.at(tokQuestion) {
		p.advance()
		then, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return ternary{cond, then, els}, nil
	}

	return cond, nil
}

// parseBinary implements precedence climbing over the operator table in
// ops.go: minPrec is the lowest-binding-power operator this call will
// consume, so each recursive step only absorbs tighter-binding operators.
func (p *parser) parseBinary(minPrec int) (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		c := p.current()
		if c.kind != tokOp {
			break
		}

		prec := precedence(c.text)
		if prec == 0 || prec < minPrec {
			break
		}

		op := p.advance().text
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		left = binary{op: op, l: left, r: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.atOp("-") || p.atOp("!") {
		op := p.advance().text
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unary{op: op, x: x}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	c := p.current()

	switch c.kind {
	case tokNumber:
		p.advance()
		v, err := parseNumberToken(c.text)
		if err != nil {
			return nil, err
		}
		return numberLit{v}, nil
	case tokString:
		p.advance()
		return stringLit{c.text}, nil
	case tokRef:
		p.advance()
		return nodeRef{ref: c.text}, nil
	case tokIdent:
		if b, ok := isBoolLiteral(c.text); ok {
			p.advance()
			return boolLit{b}, nil
		}
		return p.parseIdentOrCall()
	case tokLParen:
		p.advance()
		inner, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("expr: unexpected token %q", c.text)
	}
}

func (p *parser) parseIdentOrCall() (node, error) {
	name := p.advance().text

	if !p.at(tokLParen) {
		return ident{name}, nil
	}

	p.advance() // consume '('

	var args []node
	if !p.at(tokRParen) {
		for {
			arg, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.at(tokComma) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	return call{name: name, args: args}, nil
}

func parseNumberToken(text string) (Value, error) {
	if len(text) > 1 && (text[1] == 'x' || text[1] == 'X') {
		n, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return Value{}, err
		}
		return Number(float64(n)), nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, err
	}

	return Number(f), nil
}
