// Package parser builds an AST from a token stream using recursive
// descent with two tokens of lookahead (current + peek), per spec.md
// §4.2. It also records a declared-typedef-name set and builds the
// scoped symbol table as it goes.
//
// Modeled structurally on yapl-1/parse.go's declaration-dispatch and
// resync-on-error idiom, and on yparse's TokenReader.Expect family for
// token consumption, generalized from yapl-1's arena-indexed AST nodes
// to the pointer-based internal/ast tree (matching yparse's own node
// style, which is closer to idiomatic modern Go).
package parser

import (
	"fmt"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/lexer"
	"github.com/gmofishsauce/ccc/internal/symtab"
	"github.com/gmofishsauce/ccc/internal/token"
)

// Parser holds the lookahead cursor, the accumulating diagnostics, the
// declared-typedef-name set, and the scope chain under construction.
type Parser struct {
	lex  *lexer.Lexer
	diag *diag.Manager

	cur  token.Token
	peek token.Token

	// typedefNames grows monotonically during parsing (spec.md §9):
	// a name is recorded at its typedef declaration point, before any
	// later type-position identifier is tested against the set.
	typedefNames map[string]bool

	global      *symtab.Scope
	scope       *symtab.Scope
	anonStructN int

	failed bool
}

// New creates a Parser reading tokens from lex.
func New(lex *lexer.Lexer, d *diag.Manager) *Parser {
	p := &Parser{
		lex:          lex,
		diag:         d,
		typedefNames: make(map[string]bool),
	}
	p.global = symtab.NewGlobalScope()
	p.scope = p.global
	p.cur = lex.Next()
	p.peek = lex.Next()
	return p
}

// GlobalScope returns the file-scope symbol table built while parsing.
func (p *Parser) GlobalScope() *symtab.Scope { return p.global }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) at(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekAt(k token.Kind) bool { return p.peek.Kind == k }

// expect consumes the current token if it matches k, or records a
// syntax error with an expected-vs-found description (spec.md §7).
func (p *Parser) expect(k token.Kind) token.Token {
	t := p.cur
	if t.Kind != k {
		p.diag.ErrorfHint(t.Pos, "", "expected %s, found %s", k, t.Kind)
		p.failed = true
		return t
	}
	p.advance()
	return t
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.diag.Errorf(pos, format, args...)
	p.failed = true
}

// isTypeStart reports whether the current token can begin a type in
// declaration position: a storage-class keyword, const, a type
// keyword, or an identifier already recorded in typedefNames.
func (p *Parser) isTypeStart() bool {
	switch p.cur.Kind {
	case token.KW_STATIC, token.KW_EXTERN, token.KW_CONST,
		token.KW_INT, token.KW_CHAR, token.KW_FLOAT, token.KW_DOUBLE,
		token.KW_VOID, token.KW_STRUCT, token.KW_UNION, token.KW_ENUM:
		return true
	case token.IDENT:
		return p.typedefNames[p.cur.Lexeme]
	}
	return false
}

// Parse builds the program AST root, or returns a nil root and false on
// an unrecoverable error, per spec.md §4.2's contract. It also returns the
// file-scope symbol table the parser built while resolving
// declarations, which the emitter needs to resolve global names.
func Parse(src, filename string, d *diag.Manager) (*ast.Program, *symtab.Scope, bool) {
	lx := lexer.New(src, filename, d)
	p := New(lx, d)
	prog := p.parseProgram()
	if p.failed {
		return nil, p.GlobalScope(), false
	}
	return prog, p.GlobalScope(), true
}

func (p *Parser) parseProgram() *ast.Program {
	pos := p.cur.Pos
	prog := &ast.Program{Base: ast.NewBase(pos)}

	for !p.at(token.EOF) {
		before := p.cur
		d := p.parseTopLevel()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
		if p.failed && p.cur == before {
			// No progress made; avoid an infinite loop on a token the
			// top-level dispatcher can't resynchronize past.
			p.advance()
		}
	}
	return prog
}

// parseTopLevel parses one top-level item: typedef, enum, struct,
// global variable, or function (spec.md §4.2's grammar-at-design-level).
func (p *Parser) parseTopLevel() ast.Decl {
	switch p.cur.Kind {
	case token.KW_TYPEDEF:
		return p.parseTypedef()
	case token.KW_ENUM:
		return p.parseEnumDecl(true)
	case token.KW_STRUCT:
		if p.peekAt(token.LBRACE) || (p.peekAt(token.IDENT) && p.isStructDeclAhead()) {
			return p.parseStructDecl(true)
		}
	}
	if p.isTypeStart() {
		return p.parseGlobalDeclarator()
	}
	p.errorf(p.cur.Pos, "unexpected token %s at top level", p.cur.Kind)
	p.resyncTopLevel()
	return nil
}

// isStructDeclAhead disambiguates `struct Name { ... }` (a struct
// declaration) from `struct Name *p;` / `struct Name x;` (a variable
// whose type happens to be a struct) by looking two tokens past the
// struct keyword.
func (p *Parser) isStructDeclAhead() bool {
	// At this point cur=STRUCT, peek=IDENT. We need one more token of
	// lookahead than the parser keeps; a lexer checkpoint/restore is
	// the simplest correct approach and mirrors the "committing after
	// reading the declarator, rewinding if needed" idiom of spec.md §9.
	save := p.snapshot()
	p.advance() // consume struct
	p.advance() // consume identifier
	isDecl := p.at(token.LBRACE)
	p.restore(save)
	return isDecl
}

// parserSnapshot captures enough state to rewind the parser's
// lookahead cursor. The lexer itself is a pull-based, non-rewindable
// stream (spec.md §4.1), so snapshotting re-lexes from a saved byte
// offset; Lexer exposes that through Checkpoint/Restore.
type parserSnapshot struct {
	lexState lexer.Checkpoint
	cur      token.Token
	peek     token.Token
}

func (p *Parser) snapshot() parserSnapshot {
	return parserSnapshot{lexState: p.lex.Checkpoint(), cur: p.cur, peek: p.peek}
}

func (p *Parser) restore(s parserSnapshot) {
	p.lex.Restore(s.lexState)
	p.cur = s.cur
	p.peek = s.peek
}

// resyncTopLevel consumes tokens until one that plausibly begins a new
// top-level item, matching spec.md §4.2's recovery policy.
func (p *Parser) resyncTopLevel() {
	for !p.at(token.EOF) {
		if p.at(token.SEMI) {
			p.advance()
			return
		}
		if p.isTypeStart() || p.at(token.KW_TYPEDEF) || p.at(token.KW_ENUM) || p.at(token.KW_STRUCT) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseTypedef() ast.Decl {
	pos := p.cur.Pos
	p.advance() // typedef

	if p.at(token.KW_STRUCT) && p.peekAt(token.LBRACE) {
		// typedef struct { ... } Name; — the anonymous struct gets a
		// synthetic name and the typedef resolves to "struct __anon_struct_N"
		// per spec.md §4.2.
		structDecl := p.parseAnonStructBody(pos)
		name := p.parseIdentName()
		p.expect(token.SEMI)
		p.typedefNames[name] = true
		underlying := "struct " + structDecl.Name
		td := &ast.TypedefDecl{Base: ast.NewBase(pos), Name: name, Underlying: underlying}
		p.global.Insert(&symtab.Symbol{Name: name, Kind: symtab.TypedefSym, Type: underlying})
		// The synthetic struct declaration itself is not returned here;
		// it has already been recorded as a global struct symbol and is
		// visible to later type resolution via the typedef.
		return td
	}

	underlying := p.parseTypeName()
	name := p.parseIdentName()
	p.expect(token.SEMI)
	p.typedefNames[name] = true
	p.global.Insert(&symtab.Symbol{Name: name, Kind: symtab.TypedefSym, Type: underlying})
	return &ast.TypedefDecl{Base: ast.NewBase(pos), Name: name, Underlying: underlying}
}

func (p *Parser) parseAnonStructBody(pos token.Position) *ast.StructDecl {
	p.advance() // struct
	name := fmt.Sprintf("__anon_struct_%d", p.anonStructN)
	p.anonStructN++
	members := p.parseStructMembers()
	sd := &ast.StructDecl{Base: ast.NewBase(pos), Name: name, Members: members}
	p.recordStruct(sd)
	return sd
}

func (p *Parser) parseIdentName() string {
	t := p.expect(token.IDENT)
	return t.Lexeme
}
