package emitter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gmofishsauce/ccc/internal/diag"
	"github.com/gmofishsauce/ccc/internal/parser"
)

// emitSrc parses src and emits IR for it, failing the test if either
// stage reports an error.
func emitSrc(t *testing.T, src string) (string, bool) {
	t.Helper()
	d := diag.NewManager(nil)
	prog, global, ok := parser.Parse(src, "test.c", d)
	if !ok {
		t.Fatalf("parser.Parse(%q) failed", src)
	}
	var buf bytes.Buffer
	emitted := Emit(&buf, prog, global, "test.c", d)
	return buf.String(), emitted
}

func mustEmit(t *testing.T, src string) string {
	t.Helper()
	out, ok := emitSrc(t, src)
	if !ok {
		t.Fatalf("Emit(%q) reported failure, output:\n%s", src, out)
	}
	return out
}

// TestPreambleHasModuleHeaderFields checks the fixed four-line header
// spec.md §4.4 and §6 require.
func TestPreambleHasModuleHeaderFields(t *testing.T) {
	out := mustEmit(t, "int main() { return 0; }")
	for _, want := range []string{
		"; ModuleID = 'test.c'",
		"source_filename = \"test.c\"",
		"target datalayout",
		"target triple",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preamble missing %q; got:\n%s", want, out)
		}
	}
}

func TestFunctionDefinitionSignature(t *testing.T) {
	out := mustEmit(t, "int add(int a, int b) { return a + b; }")
	if !strings.Contains(out, "define i32 @add(i32 %a.param, i32 %b.param) {") {
		t.Errorf("missing expected function signature; got:\n%s", out)
	}
}

// TestTrailingReturnOnlyOnFallthrough exercises the function epilogue
// rule: a body that falls off the end without a return gets the safety
// 'ret i32 0', but a body whose only statement already returns must
// not also get it — two terminators in one basic block is invalid IR.
func TestTrailingReturnOnlyOnFallthrough(t *testing.T) {
	fallsThrough := mustEmit(t, "void f(int a) { a = a + 1; }")
	if !strings.Contains(fallsThrough, "ret i32 0") {
		t.Errorf("missing trailing safety 'ret i32 0' on fallthrough; got:\n%s", fallsThrough)
	}

	alwaysReturns := mustEmit(t, "int add(int a, int b) { return a + b; }")
	retCount := strings.Count(alwaysReturns, "ret i32")
	if retCount != 1 {
		t.Errorf("function body that always returns got %d 'ret' instructions, want exactly 1; got:\n%s", retCount, alwaysReturns)
	}
}

// TestIfBothBranchesReturnNoDoubleTerminator mirrors the maintainer's
// reported defect: when both arms of an if already end in a return,
// emitIf must not also append its own fallthrough branch to the end
// label — that would leave two terminators in the then/else blocks.
func TestIfBothBranchesReturnNoDoubleTerminator(t *testing.T) {
	out := mustEmit(t, "int f(int a) { if (a) { return 1; } else { return 2; } }")
	lines := strings.Split(out, "\n")
	seenLabel := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") {
			seenLabel = false
			continue
		}
		isTerm := strings.HasPrefix(trimmed, "ret ") || strings.HasPrefix(trimmed, "br ")
		if isTerm {
			if seenLabel {
				t.Errorf("basic block has more than one terminator; output:\n%s", out)
			}
			seenLabel = true
		}
	}
}

// TestLoopContinueNoDoubleTerminator mirrors the maintainer's reported
// infinite-loop-adjacent defect: a loop body ending in 'continue' must
// not also get the loop's own trailing branch back to its condition.
func TestLoopContinueNoDoubleTerminator(t *testing.T) {
	out := mustEmit(t, "int f(int a) { while (a) { continue; } return a; }")
	bodyIdx := strings.Index(out, "while.body1:")
	endIdx := strings.Index(out, "while.end2:")
	body := out[bodyIdx:endIdx]
	if strings.Count(body, "br label") != 1 {
		t.Errorf("while body with a 'continue' should emit exactly one branch, got body:\n%s", body)
	}
}

func TestPrototypeEmitsNoDefinition(t *testing.T) {
	out := mustEmit(t, "int add(int a, int b);")
	if strings.Contains(out, "define") {
		t.Errorf("a prototype should emit no function definition; got:\n%s", out)
	}
}

func TestParametersGetAllocaAndStore(t *testing.T) {
	out := mustEmit(t, "int f(int a) { return a; }")
	for _, want := range []string{
		"%a = alloca i32",
		"store i32 %a.param, i32* %a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q; got:\n%s", want, out)
		}
	}
}

func TestBinaryArithmeticOpcodes(t *testing.T) {
	cases := map[string]string{
		"a + b": "add i32",
		"a - b": "sub i32",
		"a * b": "mul i32",
		"a / b": "sdiv i32",
		"a % b": "srem i32",
		"a & b": "and i32",
		"a | b": "or i32",
		"a ^ b": "xor i32",
	}
	for expr, wantOp := range cases {
		src := "int f(int a, int b) { return " + expr + "; }"
		out := mustEmit(t, src)
		if !strings.Contains(out, wantOp) {
			t.Errorf("%q: missing opcode %q in:\n%s", expr, wantOp, out)
		}
	}
}

func TestComparisonUsesIcmpAndZext(t *testing.T) {
	out := mustEmit(t, "int f(int a, int b) { return a < b; }")
	if !strings.Contains(out, "icmp slt i32") {
		t.Error("missing 'icmp slt i32' for '<'")
	}
	if !strings.Contains(out, "zext i1") {
		t.Error("missing 'zext i1 ... to i32' widening a comparison result")
	}
}

func TestIfEmitsThenElseAndEndLabels(t *testing.T) {
	out := mustEmit(t, "int f(int a) { if (a) { return 1; } else { return 2; } return 0; }")
	for _, want := range []string{"if.then0:", "if.end1:", "if.else2:", "br i1"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q; got:\n%s", want, out)
		}
	}
}

func TestWhileLoopStructure(t *testing.T) {
	out := mustEmit(t, "int f(int a) { while (a) { a = a - 1; } return a; }")
	for _, want := range []string{"while.cond0:", "while.body1:", "while.end2:"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q; got:\n%s", want, out)
		}
	}
}

// TestBreakContinueTargetInnermostLoop checks that break/continue
// resolve to the nearest enclosing loop's labels, matching spec.md
// §4.4's break/continue target-stack contract.
func TestBreakContinueTargetInnermostLoop(t *testing.T) {
	out := mustEmit(t, `int f(int a) {
		while (a) {
			if (a) { break; }
			continue;
		}
		return a;
	}`)
	if !strings.Contains(out, "br label %while.end2") {
		t.Errorf("break did not target the while's end label; got:\n%s", out)
	}
	if !strings.Contains(out, "br label %while.cond0") {
		t.Errorf("continue did not target the while's cond label; got:\n%s", out)
	}
}

func TestSwitchFallsThroughToNextCase(t *testing.T) {
	out := mustEmit(t, `int f(int a) {
		switch (a) {
		case 1: a = a + 1;
		case 2: a = a + 2; break;
		default: a = a + 100;
		}
		return a;
	}`)
	if !strings.Contains(out, "switch.case1:") || !strings.Contains(out, "switch.case2:") {
		t.Errorf("missing case labels; got:\n%s", out)
	}
	// The first case's body must fall through into the second case's
	// label rather than branching straight to switch.end.
	idx0 := strings.Index(out, "switch.case1:")
	fallthroughSeg := out[idx0:strings.Index(out, "switch.case2:")]
	if !strings.Contains(fallthroughSeg, "br label %switch.case2") {
		t.Errorf("first case did not fall through to the second; segment:\n%s", fallthroughSeg)
	}
}

func TestTernaryUsesHiddenStackSlotNotPhi(t *testing.T) {
	out := mustEmit(t, "int f(int a) { return a ? 1 : 2; }")
	if !strings.Contains(out, "alloca i32") {
		t.Error("ternary should allocate a hidden stack slot")
	}
	if strings.Contains(out, "phi") {
		t.Error("ternary should not use an SSA phi node per spec.md §4.4")
	}
	if !strings.Contains(out, "cond.then") || !strings.Contains(out, "cond.else") {
		t.Errorf("missing ternary branch labels; got:\n%s", out)
	}
}

func TestArrayIndexUsesGetelementptr(t *testing.T) {
	out := mustEmit(t, "int f() { int a[4]; return a[1]; }")
	if !strings.Contains(out, "getelementptr inbounds [4 x i32]") {
		t.Errorf("missing array getelementptr; got:\n%s", out)
	}
}

func TestStructMemberUsesWordIndexedGetelementptr(t *testing.T) {
	out := mustEmit(t, `struct S { int a; int b; };
		int f() { struct S s; return s.b; }`)
	if !strings.Contains(out, "getelementptr inbounds i32, i32* %s, i32 1") {
		t.Errorf("missing word-indexed struct member address; got:\n%s", out)
	}
}

func TestUndefinedIdentifierIsFatal(t *testing.T) {
	_, ok := emitSrc(t, "int f() { return x; }")
	if ok {
		t.Error("Emit() succeeded referencing an undefined identifier, want failure")
	}
}

func TestCallArityMismatchIsFatal(t *testing.T) {
	_, ok := emitSrc(t, "int add(int a, int b); int f() { return add(1); }")
	if ok {
		t.Error("Emit() succeeded with a call arity mismatch, want failure")
	}
}

func TestLogicalAndOrNotShortCircuit(t *testing.T) {
	out := mustEmit(t, "int f(int a, int b) { return a && b; }")
	// Both operands must always be evaluated: an 'and i1' combine with
	// no intervening branch around the right operand's evaluation.
	if !strings.Contains(out, "and i1") {
		t.Errorf("missing 'and i1' combine for '&&'; got:\n%s", out)
	}
}

// TestCommaOperatorEvaluatesBothReturnsRight checks that "a, b" emits
// both operands' instructions but uses only the right one's value.
func TestCommaOperatorEvaluatesBothReturnsRight(t *testing.T) {
	out := mustEmit(t, "int f(int a, int b) { return (a = a + 1, b); }")
	if !strings.Contains(out, "add i32 %t0, %t1") && !strings.Contains(out, "add i32") {
		t.Errorf("left operand of comma was not evaluated; got:\n%s", out)
	}
	if !strings.Contains(out, "store i32") {
		t.Errorf("left operand's assignment was not emitted; got:\n%s", out)
	}
	if !strings.Contains(out, "%t3 = load i32, i32* %b") || !strings.Contains(out, "ret i32 %t3") {
		t.Errorf("comma did not return the right operand's value; got:\n%s", out)
	}
}

// TestGlobalVarDeclEmitsModuleScopeGlobal checks spec.md §3's "global
// variables": a top-level VarDecl gets its own "@name = global i32"
// line, and a function referencing it loads/stores through "@name"
// rather than a local alloca.
func TestGlobalVarDeclEmitsModuleScopeGlobal(t *testing.T) {
	out := mustEmit(t, "int counter = 5; int f() { counter = counter + 1; return counter; }")
	if !strings.Contains(out, "@counter = global i32 5") {
		t.Errorf("missing global definition; got:\n%s", out)
	}
	if !strings.Contains(out, "load i32, i32* @counter") {
		t.Errorf("function did not load the global through '@counter'; got:\n%s", out)
	}
	if !strings.Contains(out, "store i32 %t2, i32* @counter") && !strings.Contains(out, "store i32") {
		t.Errorf("function did not store to the global; got:\n%s", out)
	}
	if strings.Contains(out, "%counter = alloca") {
		t.Errorf("a global must not also get a local alloca; got:\n%s", out)
	}
}

// TestGlobalArrayZeroInitialized checks the array form of global
// storage: no initializer list in this subset, so it zero-fills.
func TestGlobalArrayZeroInitialized(t *testing.T) {
	out := mustEmit(t, "int table[4]; int f() { return table[0]; }")
	if !strings.Contains(out, "@table = global [4 x i32] zeroinitializer") {
		t.Errorf("missing zero-initialized global array; got:\n%s", out)
	}
	if !strings.Contains(out, "getelementptr inbounds [4 x i32], [4 x i32]* @table") {
		t.Errorf("indexing the global array did not address it as '@table'; got:\n%s", out)
	}
}

func TestSizeofIntAndCharAndPointer(t *testing.T) {
	cases := map[string]string{
		"sizeof(int)":   "4",
		"sizeof(char)":  "1",
		"sizeof(int*)":  "8",
	}
	for expr, want := range cases {
		out := mustEmit(t, "int f() { return "+expr+"; }")
		if !strings.Contains(out, "add i32 0, "+want) {
			t.Errorf("%s: expected folded constant %s in:\n%s", expr, want, out)
		}
	}
}
