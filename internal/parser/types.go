package parser

import (
	"strings"

	"github.com/gmofishsauce/ccc/internal/token"
)

// parseTypeName consumes a type-name per spec.md §3's grammar: an
// optional "const " prefix, a base type (built-in keyword, "struct
// <name>", "enum <name>", or a recorded typedef name), and any number
// of trailing '*'. It does not consume a trailing identifier — callers
// parse the declared name separately.
func (p *Parser) parseTypeName() string {
	var b strings.Builder

	if p.at(token.KW_CONST) {
		b.WriteString("const ")
		p.advance()
	}

	switch p.cur.Kind {
	case token.KW_INT:
		b.WriteString("int")
		p.advance()
	case token.KW_CHAR:
		b.WriteString("char")
		p.advance()
	case token.KW_FLOAT:
		b.WriteString("float")
		p.advance()
	case token.KW_DOUBLE:
		b.WriteString("double")
		p.advance()
	case token.KW_VOID:
		b.WriteString("void")
		p.advance()
	case token.KW_STRUCT, token.KW_UNION:
		kw := p.cur.Kind
		p.advance()
		name := p.parseIdentName()
		if kw == token.KW_STRUCT {
			b.WriteString("struct ")
		} else {
			b.WriteString("union ")
		}
		b.WriteString(name)
	case token.KW_ENUM:
		p.advance()
		name := p.parseIdentName()
		b.WriteString("enum ")
		b.WriteString(name)
	case token.IDENT:
		if p.typedefNames[p.cur.Lexeme] {
			b.WriteString(p.cur.Lexeme)
			p.advance()
		} else {
			p.errorf(p.cur.Pos, "expected type name, found identifier %q", p.cur.Lexeme)
		}
	default:
		p.errorf(p.cur.Pos, "expected type name, found %s", p.cur.Kind)
	}

	for p.at(token.STAR) {
		b.WriteString("*")
		p.advance()
	}

	return b.String()
}

// looksLikeCastAhead reports whether, with cur == LPAREN, the
// parenthesized content is a cast rather than a parenthesized
// expression: a type keyword or typedef name directly followed by ')'
// or '*', per spec.md §4.2's precedence-15 disambiguation rule.
func (p *Parser) looksLikeCastAhead() bool {
	if !p.at(token.LPAREN) {
		return false
	}
	isTypeTok := func(k token.Kind, lexeme string) bool {
		switch k {
		case token.KW_CONST, token.KW_INT, token.KW_CHAR, token.KW_FLOAT,
			token.KW_DOUBLE, token.KW_VOID, token.KW_STRUCT, token.KW_UNION, token.KW_ENUM:
			return true
		case token.IDENT:
			return p.typedefNames[lexeme]
		}
		return false
	}
	if !isTypeTok(p.peek.Kind, p.peek.Lexeme) {
		return false
	}
	// Confirm with a checkpointed scan: consume the candidate type
	// name and check what follows is ')' or the pointer-suffix form
	// leading to ')'.
	save := p.snapshot()
	p.advance() // (
	_ = p.parseTypeName()
	ok := p.at(token.RPAREN)
	p.restore(save)
	return ok
}
