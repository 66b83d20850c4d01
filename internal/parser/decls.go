package parser

import (
	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/symtab"
	"github.com/gmofishsauce/ccc/internal/token"
)

func (p *Parser) recordStruct(sd *ast.StructDecl) {
	members := make([]symtab.MemberInfo, 0, len(sd.Members))
	offset := 0
	for _, m := range sd.Members {
		align := ast.AlignOf(m.Type, nil)
		offset = ast.AlignUp(offset, align)
		members = append(members, symtab.MemberInfo{Name: m.Name, Type: m.Type, Offset: offset})
		size := ast.SizeOf(m.Type, nil)
		if size < 0 {
			size = 4
		}
		offset += size
	}
	p.global.Insert(&symtab.Symbol{Name: sd.Name, Kind: symtab.StructSym, Members: members})
}

func (p *Parser) parseStructMembers() []ast.Member {
	p.expect(token.LBRACE)
	var members []ast.Member
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		typ := p.parseTypeName()
		name := p.parseIdentName()
		members = append(members, ast.Member{Name: name, Type: typ})
		p.expect(token.SEMI)
	}
	p.expect(token.RBRACE)
	return members
}

func (p *Parser) parseStructDecl(topLevel bool) ast.Decl {
	pos := p.cur.Pos
	p.advance() // struct
	name := p.parseIdentName()
	members := p.parseStructMembers()
	if topLevel {
		p.expect(token.SEMI)
	}
	sd := &ast.StructDecl{Base: ast.NewBase(pos), Name: name, Members: members}
	p.recordStruct(sd)
	return sd
}

func (p *Parser) parseEnumDecl(topLevel bool) ast.Decl {
	pos := p.cur.Pos
	p.advance() // enum
	name := ""
	if p.at(token.IDENT) {
		name = p.parseIdentName()
	}
	p.expect(token.LBRACE)

	var enumerators []ast.Enumerator
	next := int64(0)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		enumName := p.parseIdentName()
		val := next
		if p.at(token.ASSIGN) {
			p.advance()
			val = p.parseConstIntExpr()
		}
		enumerators = append(enumerators, ast.Enumerator{Name: enumName, Value: val})
		p.global.Insert(&symtab.Symbol{Name: enumName, Kind: symtab.EnumConstant, Type: "int"})
		next = val + 1
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	if topLevel {
		p.expect(token.SEMI)
	}
	return &ast.EnumDecl{Base: ast.NewBase(pos), Name: name, Enumerators: enumerators}
}

// parseConstIntExpr parses a compile-time integer constant. Enum
// initializers need only an integer-literal-or-simple-expression
// grammar; the general expression parser with constant folding
// applied later handles richer forms, but enum values must be known at
// parse time, so this mirrors the teacher's "case values must be
// primary expressions" restriction (spec.md §3 invariant 5) by folding
// a small literal/identifier/unary-minus grammar directly.
func (p *Parser) parseConstIntExpr() int64 {
	neg := false
	if p.at(token.MINUS) {
		neg = true
		p.advance()
	}
	if p.at(token.INT_LIT) {
		v := p.cur.Literal.IntVal
		p.advance()
		if neg {
			v = -v
		}
		return v
	}
	if p.at(token.IDENT) {
		// A named constant (e.g. a prior enumerator) used as an
		// initializer; resolving its value is out of scope for this
		// restricted constant grammar, so it folds to 0.
		p.advance()
		return 0
	}
	p.errorf(p.cur.Pos, "expected constant integer expression")
	return 0
}

// parseGlobalDeclarator parses a storage-class-qualified type and
// identifier, then commits to either a function or a global variable
// based on whether '(' follows, per spec.md §4.2's one-token
// discriminator.
func (p *Parser) parseGlobalDeclarator() ast.Decl {
	pos := p.cur.Pos
	isStatic, isExtern := p.parseStorageClass()
	typ := p.parseTypeName()
	name := p.parseIdentName()

	if p.at(token.LPAREN) {
		return p.parseFunctionRest(pos, typ, name, isStatic, isExtern)
	}
	return p.parseGlobalVarRest(pos, typ, name, isStatic, isExtern)
}

func (p *Parser) parseStorageClass() (isStatic, isExtern bool) {
	for {
		switch p.cur.Kind {
		case token.KW_STATIC:
			isStatic = true
			p.advance()
		case token.KW_EXTERN:
			isExtern = true
			p.advance()
		default:
			return
		}
	}
}

func (p *Parser) parseFunctionRest(pos token.Position, returnType, name string, isStatic, isExtern bool) ast.Decl {
	p.expect(token.LPAREN)
	var params []*ast.Param
	variadic := false
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		if p.at(token.ELLIPSIS) {
			variadic = true
			p.advance()
			break
		}
		ptype := p.parseTypeName()
		pname := ""
		if p.at(token.IDENT) {
			pname = p.parseIdentName()
		}
		params = append(params, &ast.Param{Name: pname, Type: ptype})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)

	paramTypes := make([]string, len(params))
	paramNames := make([]string, len(params))
	for i, pr := range params {
		paramTypes[i] = pr.Type
		paramNames[i] = pr.Name
	}
	p.global.Insert(&symtab.Symbol{
		Name: name, Kind: symtab.FunctionSym, Type: returnType,
		ParamTypes: paramTypes, ParamNames: paramNames, Variadic: variadic,
	})

	fn := &ast.Function{
		Base: ast.NewBase(pos), Name: name, ReturnType: returnType,
		Params: params, Variadic: variadic, IsStatic: isStatic, IsExtern: isExtern,
	}

	if p.at(token.SEMI) {
		p.advance() // prototype only, no body (spec.md §3 invariant 6)
		return fn
	}

	funcScope := p.scope.Enter()
	p.scope = funcScope
	for i, pr := range params {
		p.scope.Insert(&symtab.Symbol{Name: pr.Name, Kind: symtab.Variable, Type: pr.Type, IsParam: true, StackOffset: i})
	}
	fn.Body = p.parseCompoundStmt()
	p.scope = p.scope.Parent()

	return fn
}

func (p *Parser) parseGlobalVarRest(pos token.Position, typ, name string, isStatic, isExtern bool) ast.Decl {
	vd := &ast.VarDecl{Base: ast.NewBase(pos), Name: name, Type: typ, IsStatic: isStatic, IsExtern: isExtern, IsGlobal: true}
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
	p.expect(token.SEMI)
	p.global.Insert(&symtab.Symbol{Name: name, Kind: symtab.Variable, Type: typ, IsArray: vd.ArraySize != nil, IsGlobal: true})
	return vd
}
