package parser

import (
	"testing"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/token"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	d := diag.NewManager(nil)
	prog, _, ok := Parse(src, "test.c", d)
	if !ok {
		t.Fatalf("Parse(%q) failed:\n%s", src, diagString(d))
	}
	return prog
}

func diagString(d *diag.Manager) string {
	s := ""
	for _, dg := range d.Diagnostics() {
		s += dg.Pos.String() + ": " + dg.Message + "\n"
	}
	return s
}

func firstFunc(t *testing.T, prog *ast.Program) *ast.Function {
	t.Helper()
	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.Function); ok {
			return fn
		}
	}
	t.Fatal("no function declaration found in program")
	return nil
}

func firstReturnExpr(t *testing.T, fn *ast.Function) ast.Expr {
	t.Helper()
	for _, s := range fn.Body.Stmts {
		if r, ok := s.(*ast.ReturnStmt); ok {
			return r.Value
		}
	}
	t.Fatal("no return statement found")
	return nil
}

// TestExpressionPrecedence checks that "2+3*4" parses so that '*'
// binds tighter than '+' (spec.md §4.2's precedence table): the root
// binary node must be '+' with a '*' subtree on the right.
func TestExpressionPrecedence(t *testing.T) {
	prog := mustParse(t, "int main() { return 2 + 3 * 4; }")
	fn := firstFunc(t, prog)
	expr := firstReturnExpr(t, fn)

	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Op != token.PLUS {
		t.Fatalf("root expr = %#v, want a '+' BinaryExpr", expr)
	}
	if _, ok := add.Left.(*ast.IntLit); !ok {
		t.Errorf("add.Left = %#v, want IntLit(2)", add.Left)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != token.STAR {
		t.Fatalf("add.Right = %#v, want a '*' BinaryExpr", add.Right)
	}
}

// TestCompoundAssignmentLowering verifies spec.md §3 invariant 4: the
// lowered tree contains two independently owned Ident nodes for the
// target, not one shared pointer.
func TestCompoundAssignmentLowering(t *testing.T) {
	prog := mustParse(t, "int main() { int x = 1; x += 2; return x; }")
	fn := firstFunc(t, prog)

	var assign *ast.AssignExpr
	for _, s := range fn.Body.Stmts {
		if es, ok := s.(*ast.ExprStmt); ok {
			if a, ok := es.X.(*ast.AssignExpr); ok {
				assign = a
			}
		}
	}
	if assign == nil {
		t.Fatal("no lowered compound-assignment AssignExpr found")
	}
	if assign.Name != "x" {
		t.Errorf("assign.Name = %q, want %q", assign.Name, "x")
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != token.PLUS {
		t.Fatalf("assign.Value = %#v, want a '+' BinaryExpr", assign.Value)
	}
	clone, ok := bin.Left.(*ast.Ident)
	if !ok || clone.Name != "x" {
		t.Fatalf("bin.Left = %#v, want Ident(x)", bin.Left)
	}
}

// TestCommaOperatorLeftFolds checks spec.md §4.2's lowest precedence
// level: "a, b, c" parses as a pairwise left-folded binary tree with
// the comma operator, i.e. ((a, b), c).
func TestCommaOperatorLeftFolds(t *testing.T) {
	prog := mustParse(t, "int main() { int a; int b; int c; return a, b, c; }")
	fn := firstFunc(t, prog)
	expr := firstReturnExpr(t, fn)

	outer, ok := expr.(*ast.BinaryExpr)
	if !ok || outer.Op != token.COMMA {
		t.Fatalf("root expr = %#v, want a ',' BinaryExpr", expr)
	}
	if ident, ok := outer.Right.(*ast.Ident); !ok || ident.Name != "c" {
		t.Errorf("outer.Right = %#v, want Ident(c)", outer.Right)
	}
	inner, ok := outer.Left.(*ast.BinaryExpr)
	if !ok || inner.Op != token.COMMA {
		t.Fatalf("outer.Left = %#v, want a ',' BinaryExpr", outer.Left)
	}
	if ident, ok := inner.Left.(*ast.Ident); !ok || ident.Name != "a" {
		t.Errorf("inner.Left = %#v, want Ident(a)", inner.Left)
	}
	if ident, ok := inner.Right.(*ast.Ident); !ok || ident.Name != "b" {
		t.Errorf("inner.Right = %#v, want Ident(b)", inner.Right)
	}
}

// TestCommaOperatorDoesNotConsumeCallArguments checks that call
// arguments (and, implicitly, anything parsed via parseAssignExpr
// directly) are unaffected by the comma operator now sitting above
// parseAssignExpr in the precedence chain.
func TestCommaOperatorDoesNotConsumeCallArguments(t *testing.T) {
	prog := mustParse(t, "int add(int a, int b); int main() { return add(1, 2); }")
	fn := firstFunc(t, prog)
	expr := firstReturnExpr(t, fn)

	call, ok := expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expr = %#v, want CallExpr", expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("len(call.Args) = %d, want 2 (comma must not fold the argument list into one expression)", len(call.Args))
	}
}

func TestFunctionPrototypeHasNilBody(t *testing.T) {
	prog := mustParse(t, "int add(int a, int b);")
	fn := firstFunc(t, prog)
	if fn.Body != nil {
		t.Error("prototype Function.Body != nil, want nil per spec.md §3 invariant 6")
	}
	if len(fn.Params) != 2 {
		t.Errorf("len(Params) = %d, want 2", len(fn.Params))
	}
}

func TestTypedefNameUsableAsType(t *testing.T) {
	prog := mustParse(t, "typedef int myint; myint f() { myint x = 1; return x; }")
	fn := firstFunc(t, prog)
	if fn.ReturnType != "myint" {
		t.Errorf("ReturnType = %q, want %q", fn.ReturnType, "myint")
	}
}

func TestTypedefAnonymousStruct(t *testing.T) {
	prog := mustParse(t, "typedef struct { int x; int y; } Point;")
	var td *ast.TypedefDecl
	for _, d := range prog.Decls {
		if t2, ok := d.(*ast.TypedefDecl); ok {
			td = t2
		}
	}
	if td == nil {
		t.Fatal("no TypedefDecl found")
	}
	if td.Name != "Point" {
		t.Errorf("td.Name = %q, want %q", td.Name, "Point")
	}
	if td.Underlying != "struct __anon_struct_0" {
		t.Errorf("td.Underlying = %q, want struct __anon_struct_0", td.Underlying)
	}
}

func TestSwitchFallthroughParsed(t *testing.T) {
	prog := mustParse(t, `int main() {
		int r = 0;
		switch (1) {
		case 1: r = r + 1;
		case 2: r = r + 2; break;
		default: r = r + 100;
		}
		return r;
	}`)
	fn := firstFunc(t, prog)
	var sw *ast.SwitchStmt
	for _, s := range fn.Body.Stmts {
		if s2, ok := s.(*ast.SwitchStmt); ok {
			sw = s2
		}
	}
	if sw == nil {
		t.Fatal("no SwitchStmt parsed")
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("len(Cases) = %d, want 2", len(sw.Cases))
	}
	if sw.Default == nil {
		t.Error("Default == nil, want a parsed default arm")
	}
}

func TestRedefinitionInSameScopeIsDiagnosed(t *testing.T) {
	d := diag.NewManager(nil)
	_, _, ok := Parse("int main() { int x; int x; return 0; }", "test.c", d)
	if ok {
		t.Error("Parse() succeeded for a same-scope redefinition, want failure")
	}
	if !d.HasErrors() {
		t.Error("expected a diagnosed error for redefinition")
	}
}

func TestShadowingAcrossScopesIsAccepted(t *testing.T) {
	mustParse(t, "int main() { int x = 1; { int x = 2; } return x; }")
}

// TestMissingSemicolonRecovers exercises spec.md §4.2's one recovery:
// a missing ';' followed by a token that plausibly begins a new
// statement is logged but does not abort the parse.
func TestMissingSemicolonRecovers(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := Parse("int main() { int x = 1 return x; }", "test.c", d)
	if !ok || prog == nil {
		t.Fatalf("Parse() failed to recover from a missing ';':\n%s", diagString(d))
	}
	if len(d.Diagnostics()) == 0 {
		t.Error("expected a diagnostic warning about the missing ';'")
	}
}

func TestCastVsParenDisambiguation(t *testing.T) {
	prog := mustParse(t, "int main() { return (int)(1 + 2); }")
	fn := firstFunc(t, prog)
	expr := firstReturnExpr(t, fn)
	cast, ok := expr.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expr = %#v, want CastExpr", expr)
	}
	if cast.TargetType != "int" {
		t.Errorf("TargetType = %q, want %q", cast.TargetType, "int")
	}
	if _, ok := cast.Operand.(*ast.BinaryExpr); !ok {
		t.Errorf("cast.Operand = %#v, want a parenthesized BinaryExpr", cast.Operand)
	}
}

func TestStructMemberOffsetsAligned(t *testing.T) {
	d := diag.NewManager(nil)
	_, global, ok := Parse("struct S { char a; int b; };", "test.c", d)
	if !ok {
		t.Fatalf("Parse() failed:\n%s", diagString(d))
	}
	sym := global.Lookup("S")
	if sym == nil {
		t.Fatal("struct symbol 'S' not recorded")
	}
	if len(sym.Members) != 2 {
		t.Fatalf("len(Members) = %d, want 2", len(sym.Members))
	}
	if sym.Members[0].Offset != 0 {
		t.Errorf("member 'a' offset = %d, want 0", sym.Members[0].Offset)
	}
	if sym.Members[1].Offset != 4 {
		t.Errorf("member 'b' offset = %d, want 4 (aligned past the char)", sym.Members[1].Offset)
	}
}
