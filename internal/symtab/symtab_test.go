package symtab

import "testing"

func TestInsertAndLookup(t *testing.T) {
	g := NewGlobalScope()
	if err := g.Insert(&Symbol{Name: "x", Kind: Variable, Type: "int"}); err != nil {
		t.Fatalf("Insert() = %v, want nil", err)
	}
	sym := g.Lookup("x")
	if sym == nil {
		t.Fatal("Lookup(\"x\") = nil, want a symbol")
	}
	if sym.Type != "int" {
		t.Errorf("sym.Type = %q, want %q", sym.Type, "int")
	}
}

func TestInsertDuplicateFailsInSameScope(t *testing.T) {
	g := NewGlobalScope()
	if err := g.Insert(&Symbol{Name: "x", Kind: Variable}); err != nil {
		t.Fatalf("first Insert() = %v, want nil", err)
	}
	if err := g.Insert(&Symbol{Name: "x", Kind: Variable}); err == nil {
		t.Fatal("second Insert() of same name = nil error, want redefinition error")
	}
}

func TestShadowingPermittedInNestedScope(t *testing.T) {
	g := NewGlobalScope()
	g.Insert(&Symbol{Name: "x", Kind: Variable, Type: "int"})

	inner := g.Enter()
	if err := inner.Insert(&Symbol{Name: "x", Kind: Variable, Type: "char"}); err != nil {
		t.Fatalf("shadowing Insert() = %v, want nil", err)
	}
	if got := inner.Lookup("x").Type; got != "char" {
		t.Errorf("inner Lookup(\"x\").Type = %q, want %q (shadowed)", got, "char")
	}
	if got := g.Lookup("x").Type; got != "int" {
		t.Errorf("outer Lookup(\"x\").Type = %q, want %q (unaffected by shadow)", got, "int")
	}
}

func TestLookupWalksUpLookupLocalDoesNot(t *testing.T) {
	g := NewGlobalScope()
	g.Insert(&Symbol{Name: "outer", Kind: Variable})
	inner := g.Enter()

	if inner.Lookup("outer") == nil {
		t.Error("Lookup(\"outer\") from inner scope = nil, want the outer symbol")
	}
	if inner.LookupLocal("outer") != nil {
		t.Error("LookupLocal(\"outer\") from inner scope = non-nil, want nil (should not walk up)")
	}
}

func TestLookupMissingReturnsNil(t *testing.T) {
	g := NewGlobalScope()
	if g.Lookup("nope") != nil {
		t.Error("Lookup of an undeclared name = non-nil, want nil")
	}
}

func TestParentAndSymbolsOrdering(t *testing.T) {
	g := NewGlobalScope()
	if g.Parent() != nil {
		t.Error("global scope Parent() != nil")
	}
	inner := g.Enter()
	if inner.Parent() != g {
		t.Error("Enter()'d scope's Parent() should be the scope it was entered from")
	}

	inner.Insert(&Symbol{Name: "a", Kind: Variable})
	inner.Insert(&Symbol{Name: "b", Kind: Variable})
	syms := inner.Symbols()
	if len(syms) != 2 || syms[0].Name != "a" || syms[1].Name != "b" {
		t.Errorf("Symbols() = %v, want insertion order [a b]", syms)
	}
}
