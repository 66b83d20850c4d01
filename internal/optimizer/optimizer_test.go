package optimizer

import (
	"testing"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/parser"
)

// optimizeSrc parses src, runs the optimizer at level, and returns the
// single expression the first return statement in main evaluates —
// the shape every scenario in spec.md §8 checks against.
func optimizeSrc(t *testing.T, src string, level Level) ast.Expr {
	t.Helper()
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(src, "test.c", d)
	if !ok {
		t.Fatalf("parser.Parse(%q) failed", src)
	}
	Run(prog, level, d)

	var fn *ast.Function
	for _, decl := range prog.Decls {
		if f, ok := decl.(*ast.Function); ok && f.Name == "main" {
			fn = f
		}
	}
	if fn == nil {
		t.Fatal("no main() found")
	}
	for _, s := range fn.Body.Stmts {
		if r, ok := s.(*ast.ReturnStmt); ok {
			return r.Value
		}
	}
	t.Fatal("no return statement found in main()")
	return nil
}

func wantIntLit(t *testing.T, e ast.Expr, want int64) {
	t.Helper()
	lit, ok := e.(*ast.IntLit)
	if !ok {
		t.Fatalf("expr = %#v, want a folded IntLit(%d)", e, want)
	}
	if lit.Value != want {
		t.Errorf("IntLit.Value = %d, want %d", lit.Value, want)
	}
}

// TestConstantFoldingAssociative mirrors spec.md §8: "(1+2)+3" and
// "1+(2+3)" both fold to 6 at -O1.
func TestConstantFoldingAssociative(t *testing.T) {
	for _, src := range []string{
		"int main() { return (1+2)+3; }",
		"int main() { return 1+(2+3); }",
	} {
		wantIntLit(t, optimizeSrc(t, src, O1), 6)
	}
}

// TestScenario1ConstantExpression is spec.md §8 scenario 1: "2+3*4" folds to 14 at -O1.
func TestScenario1ConstantExpression(t *testing.T) {
	wantIntLit(t, optimizeSrc(t, "int main() { return 2+3*4; }", O1), 14)
}

func TestConstantPropagationSubstitutesKnownValue(t *testing.T) {
	expr := optimizeSrc(t, "int main() { int x = 5; return x + 1; }", O1)
	wantIntLit(t, expr, 6)
}

func TestAlgebraicSimplificationIdentities(t *testing.T) {
	cases := []struct {
		src  string
		want string // "ident" means x survives unfolded; "zero" means it folds to 0
	}{
		{"int main() { int x; return x + 0; }", "ident"},
		{"int main() { int x; return 0 + x; }", "ident"},
		{"int main() { int x; return x * 0; }", "zero"},
		{"int main() { int x; return x * 1; }", "ident"},
	}
	for _, c := range cases {
		expr := optimizeSrc(t, c.src, O1)
		switch c.want {
		case "ident":
			if _, ok := expr.(*ast.Ident); !ok {
				t.Errorf("%q: expr = %#v, want Ident", c.src, expr)
			}
		case "zero":
			wantIntLit(t, expr, 0)
		}
	}
}

func TestLevel0DisablesAllPasses(t *testing.T) {
	expr := optimizeSrc(t, "int main() { return 2+3*4; }", O0)
	if _, ok := expr.(*ast.IntLit); ok {
		t.Error("at -O0 the expression should not be constant-folded")
	}
}

// TestDeadCodeEliminationIfConstantTrue mirrors spec.md §8 scenario 6: at
// -O2, "if (1) { return 100; } else { return 200; }" collapses to just
// the then-branch.
func TestDeadCodeEliminationIfConstantTrue(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(`int main() { if (1) { return 100; } else { return 200; } }`, "test.c", d)
	if !ok {
		t.Fatal("parse failed")
	}
	Run(prog, O2, d)

	fn := prog.Decls[0].(*ast.Function)
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1 (the if collapsed to its then-branch)", len(fn.Body.Stmts))
	}
	block, ok := fn.Body.Stmts[0].(*ast.CompoundStmt)
	if !ok || len(block.Stmts) != 1 {
		t.Fatalf("Stmts[0] = %#v, want a one-statement CompoundStmt (the then-branch block)", fn.Body.Stmts[0])
	}
	ret, ok := block.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("block.Stmts[0] = %#v, want ReturnStmt", block.Stmts[0])
	}
	wantIntLit(t, ret.Value, 100)
}

func TestWhileZeroEliminated(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(`int main() { while (0) { } return 1; }`, "test.c", d)
	if !ok {
		t.Fatal("parse failed")
	}
	Run(prog, O2, d)
	fn := prog.Decls[0].(*ast.Function)
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1 (while(0) removed)", len(fn.Body.Stmts))
	}
}

// TestDoWhileZeroNotEliminated matches spec.md §4.3's explicit carve-out:
// the body of a do-while always executes once, so it is never removed
// even when the condition is the literal 0.
func TestDoWhileZeroNotEliminated(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(`int main() { int x = 0; do { x = 1; } while (0); return x; }`, "test.c", d)
	if !ok {
		t.Fatal("parse failed")
	}
	Run(prog, O2, d)
	fn := prog.Decls[0].(*ast.Function)
	found := false
	for _, s := range fn.Body.Stmts {
		if _, ok := s.(*ast.DoWhileStmt); ok {
			found = true
		}
	}
	if !found {
		t.Error("do-while(0) was eliminated; spec.md §4.3 says it must not be")
	}
}

// TestLoopCarriedCounterNotFoldedAcrossIterations guards against an
// infinite loop in the emitted IR: the for-loop's own cond/update must
// not see the pre-loop init value still live in the constant-
// propagation map, or "i<5" folds to the constant true and "i=i+1"
// pins i to 1 forever.
func TestLoopCarriedCounterNotFoldedAcrossIterations(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(`int main() {
		int total = 0;
		for (int i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		return total;
	}`, "test.c", d)
	if !ok {
		t.Fatal("parse failed")
	}
	Run(prog, O1, d)

	fn := prog.Decls[0].(*ast.Function)
	var forStmt *ast.ForStmt
	for _, s := range fn.Body.Stmts {
		if f, ok := s.(*ast.ForStmt); ok {
			forStmt = f
		}
	}
	if forStmt == nil {
		t.Fatal("no for statement found")
	}
	if _, ok := forStmt.Cond.(*ast.IntLit); ok {
		t.Fatalf("for-loop condition folded to a constant; i's pre-loop value leaked into the loop's own cond: %#v", forStmt.Cond)
	}
	assign, ok := forStmt.Update.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("Update = %#v, want AssignExpr", forStmt.Update)
	}
	if _, ok := assign.Value.(*ast.IntLit); ok {
		t.Fatalf("for-loop update folded to a constant; i's pre-loop value leaked into the loop's own update: %#v", assign.Value)
	}
}

// TestDoWhileLoopCarriedCounterNotFolded is the do-while analog:
// "i=i+1" inside the body must not let "i<10" fold to a constant
// against i's value from before the loop was entered.
func TestDoWhileLoopCarriedCounterNotFolded(t *testing.T) {
	d := diag.NewManager(nil)
	prog, _, ok := parser.Parse(`int main() {
		int i = 0;
		do {
			i = i + 1;
		} while (i < 10);
		return i;
	}`, "test.c", d)
	if !ok {
		t.Fatal("parse failed")
	}
	Run(prog, O1, d)

	fn := prog.Decls[0].(*ast.Function)
	var dw *ast.DoWhileStmt
	for _, s := range fn.Body.Stmts {
		if d2, ok := s.(*ast.DoWhileStmt); ok {
			dw = d2
		}
	}
	if dw == nil {
		t.Fatal("no do-while statement found")
	}
	if _, ok := dw.Cond.(*ast.IntLit); ok {
		t.Fatalf("do-while condition folded to a constant; i's pre-loop value leaked into the loop's own cond: %#v", dw.Cond)
	}
}

func TestDivisionByZeroNotFolded(t *testing.T) {
	expr := optimizeSrc(t, "int main() { return 1/0; }", O1)
	if _, ok := expr.(*ast.IntLit); ok {
		t.Error("division by literal zero was folded; spec.md §4.3 says it must be skipped with a warning")
	}
}
