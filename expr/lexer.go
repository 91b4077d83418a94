package expr

import (
	"fmt"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokRef    // #id or #protocolId:id
	tokOp     // operator or punctuation, literal text in Text
	tokLParen
	tokRParen
	tokComma
	tokQuestion
	tokColon
)

type token struct {
	kind tokenKind
	text string
}

// lex tokenizes an expression source string. It is intentionally small:
// the grammar has no statements, only one expression, so a single linear
// scan covers it.
func lex(src string) ([]token, error) {
	var toks []token

	runes := []rune(src)
	i := 0
	n := len(runes)

	peek := func(off int) rune {
		if i+off >= n {
			return 0
		}
		return runes[i+off]
	}

	for i < n {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '?':
			toks = append(toks, token{tokQuestion, "?"})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":"})
			i++
		case c == '#':
			start := i
			i++
			for i < n && (isIdentRune(runes[i]) || runes[i] == ':') {
				i++
			}
			toks = append(toks, token{tokRef, string(runes[start:i])})
		case c == '\'':
			start := i + 1
			i++
			for i < n && runes[i] != '\'' {
				i++
			}
			if i >= n {
				return nil, fmt.Errorf("expr: unterminated string literal")
			}
			toks = append(toks, token{tokString, string(runes[start:i])})
			i++
		case isDigit(c):
			start := i
			if c == '0' && (peek(1) == 'x' || peek(1) == 'X') {
				i += 2
				for i < n && isHexDigit(runes[i]) {
					i++
				}
			} else {
				for i < n && (isDigit(runes[i]) || runes[i] == '.') {
					i++
				}
			}
			toks = append(toks, token{tokNumber, string(runes[start:i])})
		case isIdentRune(c):
			start := i
			for i < n && isIdentRune(runes[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, string(runes[start:i])})
		default:
			op, width, err := lexOperator(runes[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokOp, op})
			i += width
		}
	}

	toks = append(toks, token{tokEOF, ""})

	return toks, nil
}

func lexOperator(rest []rune) (string, int, error) {
	two := ""
	if len(rest) >= 2 {
		two = string(rest[:2])
	}

	switch two {
	case "&&", "||", "==", "!=", "<=", ">=", "<<", ">>":
		return two, 2, nil
	}

	one := string(rest[0])
	switch one {
	case "+", "-", "*", "/", "%", "&", "|", "^", "!", "<", ">":
		return one, 1, nil
	}

	return "", 0, fmt.Errorf("expr: unexpected character %q", one)
}

func isDigit(c rune) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c rune) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isIdentRune(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c)
}

// isBoolLiteral reports whether ident is the boolean literal "true" or
// "false" (case-sensitive, matching spec.md §4.3's literal set).
func isBoolLiteral(ident string) (bool, bool) {
	switch ident {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
