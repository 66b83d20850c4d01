package parser

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/symtab"
	"github.com/gmofishsauce/ccc/internal/token"
)

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	pos := p.cur.Pos
	p.expect(token.LBRACE)

	cs := &ast.CompoundStmt{Base: ast.NewBase(pos)}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		s := p.parseStmt()
		if s != nil {
			cs.Stmts = append(cs.Stmts, s)
		}
	}
	p.expect(token.RBRACE)
	return cs
}

// parseStmt parses one statement. Declarations begin with a
// storage-class keyword, const, a type keyword, or a recorded typedef
// name (spec.md §4.2).
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LBRACE:
		childScope := p.scope.Enter()
		p.scope = childScope
		cs := p.parseCompoundStmt()
		p.scope = p.scope.Parent()
		return cs
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_DO:
		return p.parseDoWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_SWITCH:
		return p.parseSwitchStmt()
	case token.KW_BREAK:
		pos := p.cur.Pos
		p.advance()
		p.expect(token.SEMI)
		return &ast.BreakStmt{Base: ast.NewBase(pos)}
	case token.KW_CONTINUE:
		pos := p.cur.Pos
		p.advance()
		p.expect(token.SEMI)
		return &ast.ContinueStmt{Base: ast.NewBase(pos)}
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_TYPEDEF:
		return p.parseTypedef().(ast.Stmt)
	case token.SEMI:
		pos := p.cur.Pos
		p.advance()
		return &ast.ExprStmt{Base: ast.NewBase(pos)}
	}

	if p.isTypeStart() {
		return p.parseLocalVarDecl()
	}

	pos := p.cur.Pos
	e := p.parseExpr()
	p.expectSemiWithRecovery()
	return &ast.ExprStmt{Base: ast.NewBase(pos), X: e}
}

// expectSemiWithRecovery implements spec.md §4.2's one recovery: a
// missing semicolon is logged but not consumed when the following
// token plausibly begins a new statement (a type keyword,
// control-flow keyword, '}', or end-of-input).
func (p *Parser) expectSemiWithRecovery() {
	if p.at(token.SEMI) {
		p.advance()
		return
	}
	if p.isTypeStart() || p.at(token.RBRACE) || p.at(token.EOF) || isControlFlowKeyword(p.cur.Kind) {
		p.diag.Warnf(p.cur.Pos, "missing ';' before %s", p.cur.Kind)
		return
	}
	p.errorf(p.cur.Pos, "expected ';', found %s", p.cur.Kind)
}

func isControlFlowKeyword(k token.Kind) bool {
	switch k {
	case token.KW_IF, token.KW_ELSE, token.KW_WHILE, token.KW_DO, token.KW_FOR,
		token.KW_SWITCH, token.KW_CASE, token.KW_DEFAULT, token.KW_BREAK,
		token.KW_CONTINUE, token.KW_RETURN:
		return true
	}
	return false
}

func (p *Parser) parseLocalVarDecl() ast.Stmt {
	pos := p.cur.Pos
	isStatic, isExtern := p.parseStorageClass()
	isConst := false
	if p.at(token.KW_CONST) {
		isConst = true
		p.advance()
	}
	typ := p.parseTypeName()
	name := p.parseIdentName()

	vd := &ast.VarDecl{Base: ast.NewBase(pos), Name: name, Type: typ, IsStatic: isStatic, IsExtern: isExtern, IsConst: isConst}
	if p.at(token.LBRACKET) {
		p.advance()
		if !p.at(token.RBRACKET) {
			vd.ArraySize = p.parseExpr()
		}
		p.expect(token.RBRACKET)
	}
	if p.at(token.ASSIGN) {
		p.advance()
		vd.Init = p.parseAssignExpr()
	}
	p.expectSemiWithRecovery()

	if err := p.scope.Insert(&symtab.Symbol{Name: name, Kind: symtab.Variable, Type: typ, IsConst: isConst, IsArray: vd.ArraySize != nil}); err != nil {
		p.errorf(pos, "%s", err)
	}
	return vd
}

func (p *Parser) parseIfStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // if
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStmt()
	var elseStmt ast.Stmt
	if p.at(token.KW_ELSE) {
		p.advance()
		elseStmt = p.parseStmt()
	}
	return &ast.IfStmt{Base: ast.NewBase(pos), Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // while
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{Base: ast.NewBase(pos), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // do
	body := p.parseStmt()
	p.expect(token.KW_WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return &ast.DoWhileStmt{Base: ast.NewBase(pos), Body: body, Cond: cond}
}

func (p *Parser) parseForStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // for
	p.expect(token.LPAREN)

	childScope := p.scope.Enter()
	p.scope = childScope
	defer func() { p.scope = p.scope.Parent() }()

	var init ast.Stmt
	if !p.at(token.SEMI) {
		if p.isTypeStart() {
			init = p.parseLocalVarDecl() // consumes its own trailing ';'
		} else {
			ipos := p.cur.Pos
			e := p.parseExpr()
			p.expect(token.SEMI)
			init = &ast.ExprStmt{Base: ast.NewBase(ipos), X: e}
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var update ast.Expr
	if !p.at(token.RPAREN) {
		update = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	return &ast.ForStmt{Base: ast.NewBase(pos), Init: init, Cond: cond, Update: update, Body: body}
}

// parseSwitchStmt accepts a sequence of case/default blocks inside a
// '{}' body. Fall-through is preserved; case values must be
// integer-primary expressions (spec.md §4.2).
func (p *Parser) parseSwitchStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // switch
	p.expect(token.LPAREN)
	x := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	sw := &ast.SwitchStmt{Base: ast.NewBase(pos), X: x}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch p.cur.Kind {
		case token.KW_CASE:
			cpos := p.cur.Pos
			p.advance()
			val := p.parsePrimaryExpr()
			p.expect(token.COLON)
			body := p.parseCaseBody()
			sw.Cases = append(sw.Cases, &ast.CaseStmt{Base: ast.NewBase(cpos), Value: val, Body: body})
		case token.KW_DEFAULT:
			dpos := p.cur.Pos
			p.advance()
			p.expect(token.COLON)
			body := p.parseCaseBody()
			sw.Default = &ast.DefaultStmt{Base: ast.NewBase(dpos), Body: body}
		default:
			p.errorf(p.cur.Pos, "expected 'case' or 'default', found %s", p.cur.Kind)
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return sw
}

func (p *Parser) parseCaseBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.at(token.KW_CASE) && !p.at(token.KW_DEFAULT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // return
	var val ast.Expr
	if !p.at(token.SEMI) {
		val = p.parseExpr()
	}
	p.expectSemiWithRecovery()
	return &ast.ReturnStmt{Base: ast.NewBase(pos), Value: val}
}
