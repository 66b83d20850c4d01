package parser

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/token"
)

// parseExpr parses a full expression, starting at the comma operator,
// the lowest of the 15 precedence levels spec.md §4.2 names. Call
// arguments, which must not consume a comma, go straight to
// parseAssignExpr instead; the clauses of a for(...) header are
// separated by ';' and are parsed here, so each may hold a comma
// expression.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseCommaExpr()
}

// parseCommaExpr implements precedence level 1: a left-folded binary
// tree with the comma operator, each operand parsed at assignment
// precedence (spec.md §4.2, "produces a pairwise left-folded binary
// tree with the comma operator").
func (p *Parser) parseCommaExpr() ast.Expr {
	left := p.parseAssignExpr()
	for p.at(token.COMMA) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseAssignExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.COMMA, Left: left, Right: right}
	}
	return left
}

// parseAssignExpr handles simple and compound assignment. Assignment
// targets are restricted to a bare identifier (ast.AssignExpr.Name is
// a string), matching spec.md §3's AssignExpr shape; compound forms
// are lowered here into AssignExpr{Name: x, Value: BinaryExpr{op,
// Ident{x'}, rhs}} with x' an independently constructed clone of the
// target identifier, per spec.md §3 invariant 4.
func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseTernaryExpr()

	if token.IsAssignOp(p.cur.Kind) {
		op := p.cur.Kind
		pos := p.cur.Pos
		ident, ok := left.(*ast.Ident)
		if !ok {
			p.errorf(pos, "assignment target must be an identifier")
			p.advance()
			p.parseAssignExpr()
			return left
		}
		p.advance()
		rhs := p.parseAssignExpr()

		if op == token.ASSIGN {
			return &ast.AssignExpr{Base: ast.NewBase(pos), Name: ident.Name, Value: rhs}
		}
		binOp := token.CompoundBinOp(op)
		clone := &ast.Ident{Base: ast.NewBase(ident.Pos()), Name: ident.Name}
		return &ast.AssignExpr{
			Base: ast.NewBase(pos),
			Name: ident.Name,
			Value: &ast.BinaryExpr{
				Base: ast.NewBase(pos), Op: binOp, Left: clone, Right: rhs,
			},
		}
	}
	return left
}

func (p *Parser) parseTernaryExpr() ast.Expr {
	cond := p.parseLogicalOrExpr()
	if p.at(token.QUESTION) {
		pos := p.cur.Pos
		p.advance()
		then := p.parseAssignExpr()
		p.expect(token.COLON)
		els := p.parseAssignExpr()
		return &ast.TernaryExpr{Base: ast.NewBase(pos), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOrExpr() ast.Expr {
	left := p.parseLogicalAndExpr()
	for p.at(token.OR_OR) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseLogicalAndExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.OR_OR, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAndExpr() ast.Expr {
	left := p.parseBitOrExpr()
	for p.at(token.AND_AND) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseBitOrExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.AND_AND, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitOrExpr() ast.Expr {
	left := p.parseBitXorExpr()
	for p.at(token.PIPE) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseBitXorExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.PIPE, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXorExpr() ast.Expr {
	left := p.parseBitAndExpr()
	for p.at(token.CARET) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseBitAndExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.CARET, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAndExpr() ast.Expr {
	left := p.parseEqualityExpr()
	for p.at(token.AMP) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseEqualityExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: token.AMP, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEqualityExpr() ast.Expr {
	left := p.parseRelationalExpr()
	for p.at(token.EQ) || p.at(token.NEQ) {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseRelationalExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseRelationalExpr() ast.Expr {
	left := p.parseShiftExpr()
	for p.at(token.LT) || p.at(token.GT) || p.at(token.LE) || p.at(token.GE) {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseShiftExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShiftExpr() ast.Expr {
	left := p.parseAdditiveExpr()
	for p.at(token.SHL) || p.at(token.SHR) {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseAdditiveExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditiveExpr() ast.Expr {
	left := p.parseMultiplicativeExpr()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseMultiplicativeExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicativeExpr() ast.Expr {
	left := p.parseCastExpr()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		right := p.parseCastExpr()
		left = &ast.BinaryExpr{Base: ast.NewBase(pos), Op: op, Left: left, Right: right}
	}
	return left
}

// parseCastExpr handles the precedence-15 cast-vs-parenthesized
// disambiguation: '(' begins a cast only when looksLikeCastAhead
// confirms a type name fills the parens (spec.md §4.2, §9).
func (p *Parser) parseCastExpr() ast.Expr {
	if p.looksLikeCastAhead() {
		pos := p.cur.Pos
		p.advance() // (
		typ := p.parseTypeName()
		p.expect(token.RPAREN)
		operand := p.parseCastExpr()
		return &ast.CastExpr{Base: ast.NewBase(pos), TargetType: typ, Operand: operand}
	}
	return p.parseUnaryExpr()
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.AMP:
		p.advance()
		operand := p.parseCastExpr()
		return &ast.AddrOfExpr{Base: ast.NewBase(pos), Operand: operand}
	case token.STAR:
		p.advance()
		operand := p.parseCastExpr()
		return &ast.DerefExpr{Base: ast.NewBase(pos), Operand: operand}
	case token.MINUS, token.BANG, token.TILDE:
		op := p.cur.Kind
		p.advance()
		operand := p.parseCastExpr()
		return &ast.UnaryExpr{Base: ast.NewBase(pos), Op: op, Operand: operand}
	case token.INC, token.DEC:
		op := p.cur.Kind
		p.advance()
		operand := p.parseUnaryExpr()
		return &ast.UnaryExpr{Base: ast.NewBase(pos), Op: op, Operand: operand}
	case token.KW_SIZEOF:
		return p.parseSizeofExpr()
	}
	return p.parsePostfixExpr()
}

// parseSizeofExpr handles both sizeof forms: sizeof(type-name) and
// sizeof expr (spec.md §3 invariant 3). The type-name form requires a
// parenthesized type; everything else falls back to the expression
// form, including a parenthesized non-type expression like
// sizeof(x + 1).
func (p *Parser) parseSizeofExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // sizeof
	if p.at(token.LPAREN) && p.looksLikeCastAhead() {
		p.advance() // (
		typ := p.parseTypeName()
		p.expect(token.RPAREN)
		return &ast.SizeofExpr{Base: ast.NewBase(pos), TypeName: typ}
	}
	operand := p.parseUnaryExpr()
	return &ast.SizeofExpr{Base: ast.NewBase(pos), Operand: operand}
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch p.cur.Kind {
		case token.LBRACKET:
			pos := p.cur.Pos
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACKET)
			e = &ast.IndexExpr{Base: ast.NewBase(pos), Array: e, Index: idx}
		case token.DOT:
			pos := p.cur.Pos
			p.advance()
			field := p.parseIdentName()
			e = &ast.MemberExpr{Base: ast.NewBase(pos), Object: e, Field: field}
		case token.ARROW:
			pos := p.cur.Pos
			p.advance()
			field := p.parseIdentName()
			e = &ast.MemberExpr{Base: ast.NewBase(pos), Object: &ast.DerefExpr{Base: ast.NewBase(pos), Operand: e}, Field: field}
		case token.INC, token.DEC:
			op := p.cur.Kind
			pos := p.cur.Pos
			p.advance()
			e = &ast.UnaryExpr{Base: ast.NewBase(pos), Op: op, Operand: e, IsPostfix: true}
		default:
			return e
		}
	}
}

// parsePrimaryExpr parses literals, identifiers, calls, and
// parenthesized expressions. It is also used directly by switch/case
// value parsing (spec.md §3 invariant 5 restricts case values to this
// level).
func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT_LIT:
		v := p.cur.Literal.IntVal
		p.advance()
		return &ast.IntLit{Base: ast.NewBase(pos), Value: v}
	case token.FLOAT_LIT:
		v := p.cur.Literal.FloatVal
		p.advance()
		return &ast.FloatLit{Base: ast.NewBase(pos), Value: v}
	case token.CHAR_LIT:
		v := p.cur.Literal.CharVal
		p.advance()
		return &ast.CharLit{Base: ast.NewBase(pos), Value: v}
	case token.STRING_LIT:
		v := p.cur.Lexeme
		p.advance()
		return &ast.StringLit{Base: ast.NewBase(pos), Value: v}
	case token.IDENT:
		name := p.cur.Lexeme
		p.advance()
		if p.at(token.LPAREN) {
			return p.parseCallExpr(pos, name)
		}
		return &ast.Ident{Base: ast.NewBase(pos), Name: name}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	}
	p.errorf(pos, "expected expression, found %s", p.cur.Kind)
	p.advance()
	return &ast.IntLit{Base: ast.NewBase(pos), Value: 0}
}

func (p *Parser) parseCallExpr(pos token.Position, name string) ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseAssignExpr())
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpr{Base: ast.NewBase(pos), Name: name, Args: args}
}
