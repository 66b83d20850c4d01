// Package ast defines the tagged tree the parser builds, the
// optimizer rewrites, and the emitter walks read-only. Variants are
// finite and closed, per spec.md §9: implementations favor exhaustive
// switches over open-ended interface hierarchies, and every node
// carries its source position (spec.md §3).
//
// Ownership: a node's children are exclusively owned by it (spec.md §3
// invariant 1). Replacing a child releases the old subtree atomically;
// callers that splice in a replacement node simply overwrite the slot,
// and Go's garbage collector reclaims the detached subtree once no
// other reference survives — the collector is the releasing mechanism
// to which that invariant delegates.
package ast

import "github.com/gmofishsauce/ccc/internal/token"

// Node is implemented by every AST variant.
type Node interface {
	Pos() token.Position
}

// Decl is the interface for top-level program items: typedefs, enums,
// struct declarations, global variables, and function definitions.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for all statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for all expression variants.
type Expr interface {
	Node
	exprNode()
}

// Base is embedded by every node to carry its source position
// (spec.md §3: "every node carries source position"). It is exported
// so packages outside ast (chiefly the parser) can construct node
// literals directly.
type Base struct {
	Position token.Position
}

func (b Base) Pos() token.Position { return b.Position }

// ============================================================
// Program
// ============================================================

// Program is the root of the tree: ordered sequences of top-level
// items, per spec.md §3.
type Program struct {
	Base
	Decls []Decl
}

func (p *Program) declNode() {}

// ============================================================
// Declarations
// ============================================================

// Function is a function prototype or definition. Body is nil for a
// prototype (spec.md §3 invariant 6): a prototype contributes a
// function symbol but no emitted code.
type Function struct {
	Base
	Name       string
	ReturnType string
	Params     []*Param
	Variadic   bool
	IsStatic   bool
	IsExtern   bool
	Body       *CompoundStmt // nil => prototype
}

func (f *Function) declNode() {}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// VarDecl is a variable declaration: a local, global, or struct
// member depending on context. It doubles as both a Decl (at program
// scope) and a Stmt (inside a function body), matching spec.md §3's
// "variable declaration" statement variant.
type VarDecl struct {
	Base
	Name      string
	Type      string
	Init      Expr // nil if uninitialized
	ArraySize Expr // nil if not an array
	IsStatic  bool
	IsConst   bool
	IsExtern  bool
	IsGlobal  bool
}

func (d *VarDecl) declNode() {}
func (d *VarDecl) stmtNode() {}

// TypedefDecl introduces a name into the typedef-name set (spec.md
// §4.2's context-sensitive grammar note, §9's "typedef name" concept).
type TypedefDecl struct {
	Base
	Name       string
	Underlying string
}

func (d *TypedefDecl) declNode() {}
func (d *TypedefDecl) stmtNode() {}
func (d *TypedefDecl) exprNode() {} // also reachable as an expression-position node per spec.md §3

// Enumerator is one name=value pair of an enum declaration.
type Enumerator struct {
	Name  string
	Value int64
}

// EnumDecl declares an enum type and its enumerators' integer values.
type EnumDecl struct {
	Base
	Name        string
	Enumerators []Enumerator
}

func (d *EnumDecl) declNode() {}
func (d *EnumDecl) stmtNode() {}
func (d *EnumDecl) exprNode() {}

// Member is one struct member declaration.
type Member struct {
	Name string
	Type string
}

// StructDecl declares a struct type and its member list.
type StructDecl struct {
	Base
	Name    string
	Members []Member
}

func (d *StructDecl) declNode() {}
func (d *StructDecl) stmtNode() {}
func (d *StructDecl) exprNode() {}

// ============================================================
// Statements
// ============================================================

// CompoundStmt is an ordered list of statements forming a lexical
// block (spec.md §3).
type CompoundStmt struct {
	Base
	Stmts []Stmt
}

func (s *CompoundStmt) stmtNode() {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Base
	X Expr
}

func (s *ExprStmt) stmtNode() {}

// IfStmt is an if/else. Else is nil when there is no else clause.
type IfStmt struct {
	Base
	Cond Expr
	Then Stmt
	Else Stmt
}

func (s *IfStmt) stmtNode() {}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Base
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) stmtNode() {}

// DoWhileStmt is a post-tested loop: the body always executes once
// before Cond is evaluated, which is why dead-code elimination cannot
// remove it even when Cond is the literal 0 (spec.md §4.3, §9 open
// question).
type DoWhileStmt struct {
	Base
	Body Stmt
	Cond Expr
}

func (s *DoWhileStmt) stmtNode() {}

// ForStmt is a C-style for loop; Init, Cond, and Update are each
// independently optional (spec.md §3).
type ForStmt struct {
	Base
	Init   Stmt // VarDecl or ExprStmt, nil if omitted
	Cond   Expr // nil if omitted
	Update Expr // nil if omitted
	Body   Stmt
}

func (s *ForStmt) stmtNode() {}

// CaseStmt is one case arm inside a SwitchStmt. Value is a
// compile-time integer constant expression, enforced at parse time by
// accepting only a primary expression there (spec.md §3 invariant 5).
type CaseStmt struct {
	Base
	Value Expr
	Body  []Stmt
}

func (s *CaseStmt) stmtNode() {}

// DefaultStmt is the optional default arm of a SwitchStmt.
type DefaultStmt struct {
	Base
	Body []Stmt
}

func (s *DefaultStmt) stmtNode() {}

// SwitchStmt evaluates X once and dispatches to the matching CaseStmt,
// falling through between cases with no implicit break (spec.md §4.2).
type SwitchStmt struct {
	Base
	X       Expr
	Cases   []*CaseStmt
	Default *DefaultStmt // nil if absent
}

func (s *SwitchStmt) stmtNode() {}

// BreakStmt exits the nearest enclosing loop or switch.
type BreakStmt struct{ Base }

func (s *BreakStmt) stmtNode() {}

// ContinueStmt jumps to the nearest enclosing loop's update/condition
// test.
type ContinueStmt struct{ Base }

func (s *ContinueStmt) stmtNode() {}

// ReturnStmt returns from the enclosing function. Value is nil for a
// void return.
type ReturnStmt struct {
	Base
	Value Expr
}

func (s *ReturnStmt) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// IntLit is an integer literal.
type IntLit struct {
	Base
	Value int64
}

func (e *IntLit) exprNode() {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Base
	Value float64
}

func (e *FloatLit) exprNode() {}

// CharLit is a character literal.
type CharLit struct {
	Base
	Value byte
}

func (e *CharLit) exprNode() {}

// StringLit is a string literal; Value retains escape sequences
// verbatim as produced by the lexer (spec.md §4.1).
type StringLit struct {
	Base
	Value string
}

func (e *StringLit) exprNode() {}

// Ident is an identifier reference. Every Ident must resolve to a
// symbol in the current scope chain at the point it is encountered,
// or parsing/emission treats it as a fatal error (spec.md §3
// invariant 2).
type Ident struct {
	Base
	Name string
}

func (e *Ident) exprNode() {}

// UnaryExpr is a prefix or postfix unary operation. IsPostfix
// distinguishes postfix ++/-- from their prefix counterparts; it is
// meaningless for other operators.
type UnaryExpr struct {
	Base
	Op        token.Kind
	Operand   Expr
	IsPostfix bool
}

func (e *UnaryExpr) exprNode() {}

// AddrOfExpr is the prefix '&' address-of operator.
type AddrOfExpr struct {
	Base
	Operand Expr
}

func (e *AddrOfExpr) exprNode() {}

// DerefExpr is the prefix '*' dereference operator.
type DerefExpr struct {
	Base
	Operand Expr
}

func (e *DerefExpr) exprNode() {}

// BinaryExpr is a binary operation; Op is the lexical token kind of
// the operator, per spec.md §3's "binary op (operator token kind +
// two operands)".
type BinaryExpr struct {
	Base
	Op    token.Kind
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) exprNode() {}

// AssignExpr is a simple assignment. Compound-assignment forms
// (x += e, etc.) are lowered at parse time into AssignExpr{Name: x,
// Value: BinaryExpr{Op, Ident{x'}, e}} where x' is an independently
// owned clone of the target, per spec.md §3 invariant 4 and §4.2.
type AssignExpr struct {
	Base
	Name  string
	Value Expr
}

func (e *AssignExpr) exprNode() {}

// CallExpr is a function call.
type CallExpr struct {
	Base
	Name string
	Args []Expr
}

func (e *CallExpr) exprNode() {}

// IndexExpr is an array subscript expression.
type IndexExpr struct {
	Base
	Array Expr
	Index Expr
}

func (e *IndexExpr) exprNode() {}

// MemberExpr is a '.' member access expression.
type MemberExpr struct {
	Base
	Object Expr
	Field  string
}

func (e *MemberExpr) exprNode() {}

// SizeofExpr is sizeof(type-name) or sizeof expr — exactly one of
// TypeName/Operand is populated (spec.md §3 invariant 3).
type SizeofExpr struct {
	Base
	TypeName string // populated for the type-name form
	Operand  Expr   // populated for the expression form
}

func (e *SizeofExpr) exprNode() {}

// TernaryExpr is the ?: conditional expression.
type TernaryExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (e *TernaryExpr) exprNode() {}

// CastExpr is an explicit (type) expr cast.
type CastExpr struct {
	Base
	TargetType string
	Operand    Expr
}

func (e *CastExpr) exprNode() {}

// NewBase constructs the embeddable position-carrying Base for a node
// at pos. Exported so the parser can build nodes field-by-field
// without a constructor per variant.
func NewBase(pos token.Position) Base { return Base{Position: pos} }
