package emitter

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/ccc/internal/ast"
	"github.com/gmofishsauce/ccc/internal/symtab"
)

// emitStmt emits one statement, matching the control-flow schemes of
// spec.md §4.4.
func (e *Emitter) emitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		outer := e.scope
		e.scope = e.scope.Enter()
		for _, st := range n.Stmts {
			if e.termed {
				// Everything after a return/break/continue in this
				// block is unreachable; emitting it would add
				// instructions after the block's terminator.
				break
			}
			e.emitStmt(st)
		}
		e.scope = outer

	case *ast.VarDecl:
		e.emitVarDecl(n)

	case *ast.ExprStmt:
		if n.X != nil {
			e.emitExpr(n.X)
		}

	case *ast.ReturnStmt:
		if n.Value == nil {
			e.emitf("  ret i32 0\n")
			e.termed = true
			return
		}
		v := e.emitExpr(n.Value)
		e.emitf("  ret i32 %s\n", v)
		e.termed = true

	case *ast.IfStmt:
		e.emitIf(n)

	case *ast.WhileStmt:
		e.emitWhile(n)

	case *ast.DoWhileStmt:
		e.emitDoWhile(n)

	case *ast.ForStmt:
		e.emitFor(n)

	case *ast.SwitchStmt:
		e.emitSwitch(n)

	case *ast.BreakStmt:
		if len(e.loops) == 0 {
			e.fatal(n.Pos(), "'break' outside loop or switch")
			return
		}
		target := e.loops[len(e.loops)-1].breakLabel
		e.emitf("  br label %%%s\n", target)
		e.termed = true

	case *ast.ContinueStmt:
		target := ""
		for i := len(e.loops) - 1; i >= 0; i-- {
			if e.loops[i].continueLabel != "" {
				target = e.loops[i].continueLabel
				break
			}
		}
		if target == "" {
			e.fatal(n.Pos(), "'continue' outside loop")
			return
		}
		e.emitf("  br label %%%s\n", target)
		e.termed = true

	case *ast.TypedefDecl, *ast.EnumDecl, *ast.StructDecl:
		// Declarations only; nothing to emit.

	default:
		e.fatal(s.Pos(), "emitter: unhandled statement variant %T", s)
	}
}

// emitVarDecl allocates a stack slot for a local variable, per
// spec.md §4.4's "Variable declaration → alloca i32 ... optionally
// followed by a store". Arrays get a slot sized to hold ArraySize
// i32 elements; the size must already be a constant by the time the
// emitter sees it (the optimizer folds constant expressions ahead of
// emission at -O1/-O2; at -O0 a non-literal array bound is fatal).
func (e *Emitter) emitVarDecl(n *ast.VarDecl) {
	llvmType, arrayLen := e.storageType(n)
	e.emitf("  %%%s = alloca %s\n", n.Name, llvmType)
	e.scope.Insert(&symtab.Symbol{Name: n.Name, Kind: symtab.Variable, Type: n.Type, IsArray: arrayLen > 0, ArrayLen: arrayLen})

	if n.Init != nil {
		v := e.emitExpr(n.Init)
		e.emitf("  store i32 %s, i32* %%%s\n", v, n.Name)
	}
}

// storageType returns the LLVM alloca type for n and, for an array
// declaration, its element count (0 for a scalar). A struct local gets
// one i32 word per member word index, so emitMember's word-indexed
// getelementptr stays inside the slot.
func (e *Emitter) storageType(n *ast.VarDecl) (string, int) {
	if n.ArraySize == nil {
		sym := e.global.Lookup(strings.TrimPrefix(n.Type, "struct "))
		if sym != nil && sym.Kind == symtab.TypedefSym {
			sym = e.global.Lookup(strings.TrimPrefix(sym.Type, "struct "))
		}
		if sym != nil && sym.Kind == symtab.StructSym && len(sym.Members) > 0 {
			words := sym.Members[len(sym.Members)-1].Offset/4 + 1
			return "i32, i32 " + itoa(words), 0
		}
		return "i32", 0
	}
	lit, ok := n.ArraySize.(*ast.IntLit)
	if !ok {
		e.fatal(n.Pos(), "array size for '%s' is not a compile-time constant", n.Name)
		return "i32", 0
	}
	n2 := int(lit.Value)
	return "[" + itoa(n2) + " x i32]", n2
}

func (e *Emitter) emitIf(n *ast.IfStmt) {
	cond := e.emitExpr(n.Cond)
	test := e.newTemp()
	e.emitf("  %s = icmp ne i32 %s, 0\n", test, cond)

	thenLabel := e.newLabel("if.then")
	endLabel := e.newLabel("if.end")
	elseLabel := endLabel
	if n.Else != nil {
		elseLabel = e.newLabel("if.else")
	}
	e.emitf("  br i1 %s, label %%%s, label %%%s\n", test, thenLabel, elseLabel)
	e.termed = true

	e.label(thenLabel)
	e.emitStmt(n.Then)
	e.branchIfFallthrough(endLabel)

	if n.Else != nil {
		e.label(elseLabel)
		e.emitStmt(n.Else)
		e.branchIfFallthrough(endLabel)
	}

	e.label(endLabel)
}

func (e *Emitter) emitWhile(n *ast.WhileStmt) {
	condLabel := e.newLabel("while.cond")
	bodyLabel := e.newLabel("while.body")
	endLabel := e.newLabel("while.end")

	e.emitf("  br label %%%s\n", condLabel)
	e.termed = true
	e.label(condLabel)
	cond := e.emitExpr(n.Cond)
	test := e.newTemp()
	e.emitf("  %s = icmp ne i32 %s, 0\n", test, cond)
	e.emitf("  br i1 %s, label %%%s, label %%%s\n", test, bodyLabel, endLabel)
	e.termed = true

	e.label(bodyLabel)
	e.loops = append(e.loops, loopLabels{continueLabel: condLabel, breakLabel: endLabel})
	e.emitStmt(n.Body)
	e.loops = e.loops[:len(e.loops)-1]
	e.branchIfFallthrough(condLabel)

	e.label(endLabel)
}

func (e *Emitter) emitDoWhile(n *ast.DoWhileStmt) {
	bodyLabel := e.newLabel("do.body")
	condLabel := e.newLabel("do.cond")
	endLabel := e.newLabel("do.end")

	e.emitf("  br label %%%s\n", bodyLabel)
	e.termed = true
	e.label(bodyLabel)
	e.loops = append(e.loops, loopLabels{continueLabel: condLabel, breakLabel: endLabel})
	e.emitStmt(n.Body)
	e.loops = e.loops[:len(e.loops)-1]
	e.branchIfFallthrough(condLabel)

	e.label(condLabel)
	cond := e.emitExpr(n.Cond)
	test := e.newTemp()
	e.emitf("  %s = icmp ne i32 %s, 0\n", test, cond)
	e.emitf("  br i1 %s, label %%%s, label %%%s\n", test, bodyLabel, endLabel)
	e.termed = true

	e.label(endLabel)
}

func (e *Emitter) emitFor(n *ast.ForStmt) {
	outer := e.scope
	e.scope = e.scope.Enter()
	defer func() { e.scope = outer }()

	if n.Init != nil {
		e.emitStmt(n.Init)
	}

	condLabel := e.newLabel("for.cond")
	bodyLabel := e.newLabel("for.body")
	updateLabel := e.newLabel("for.update")
	endLabel := e.newLabel("for.end")

	e.branchIfFallthrough(condLabel)
	e.label(condLabel)
	if n.Cond != nil {
		cond := e.emitExpr(n.Cond)
		test := e.newTemp()
		e.emitf("  %s = icmp ne i32 %s, 0\n", test, cond)
		e.emitf("  br i1 %s, label %%%s, label %%%s\n", test, bodyLabel, endLabel)
	} else {
		e.emitf("  br label %%%s\n", bodyLabel)
	}
	e.termed = true

	e.label(bodyLabel)
	e.loops = append(e.loops, loopLabels{continueLabel: updateLabel, breakLabel: endLabel})
	e.emitStmt(n.Body)
	e.loops = e.loops[:len(e.loops)-1]
	e.branchIfFallthrough(updateLabel)

	e.label(updateLabel)
	if n.Update != nil {
		e.emitExpr(n.Update)
	}
	e.emitf("  br label %%%s\n", condLabel)
	e.termed = true

	e.label(endLabel)
}

// emitSwitch lowers to a chain of comparisons against the dispatch
// value, preserving fall-through between cases by branching each
// case body straight into the next once it finishes (spec.md §4.2's
// "no implicit break"; SPEC_FULL.md §C's default-less fallthrough
// falls straight past the switch).
func (e *Emitter) emitSwitch(n *ast.SwitchStmt) {
	x := e.emitExpr(n.X)
	endLabel := e.newLabel("switch.end")

	caseLabels := make([]string, len(n.Cases))
	for i := range n.Cases {
		caseLabels[i] = e.newLabel("switch.case")
	}
	defaultLabel := endLabel
	if n.Default != nil {
		defaultLabel = e.newLabel("switch.default")
	}

	if len(n.Cases) == 0 {
		e.emitf("  br label %%%s\n", defaultLabel)
		e.termed = true
	}
	for i := range n.Cases {
		val := e.emitExpr(n.Cases[i].Value)
		test := e.newTemp()
		e.emitf("  %s = icmp eq i32 %s, %s\n", test, x, val)
		next := defaultLabel
		if i+1 < len(n.Cases) {
			next = e.newLabel("switch.check")
		}
		e.emitf("  br i1 %s, label %%%s, label %%%s\n", test, caseLabels[i], next)
		e.termed = true
		if i+1 < len(n.Cases) {
			e.label(next)
		}
	}

	e.loops = append(e.loops, loopLabels{continueLabel: "", breakLabel: endLabel})
	for i, c := range n.Cases {
		e.label(caseLabels[i])
		for _, st := range c.Body {
			if e.termed {
				break
			}
			e.emitStmt(st)
		}
		if i+1 < len(n.Cases) {
			e.branchIfFallthrough(caseLabels[i+1])
		} else if n.Default != nil {
			e.branchIfFallthrough(defaultLabel)
		} else {
			e.branchIfFallthrough(endLabel)
		}
	}
	if n.Default != nil {
		e.label(defaultLabel)
		for _, st := range n.Default.Body {
			if e.termed {
				break
			}
			e.emitStmt(st)
		}
		e.branchIfFallthrough(endLabel)
	}
	e.loops = e.loops[:len(e.loops)-1]

	e.label(endLabel)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
