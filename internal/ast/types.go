package ast

import "strings"

// TypeInfo is the parsed form of a type-name string, per spec.md §3's
// fixed grammar: an optional "const " prefix, a base type, any number
// of trailing '*', and a special function-pointer form
// "<return>(*)(<param-types>)". Modeled on yparse/types.go's Type
// struct, but kept as a string-based representation per spec.md §3
// rather than a pointer-graph Type, since the spec pins type names as
// strings throughout the data model.
type TypeInfo struct {
	IsConst      bool
	Base         string // "int", "char", "float", "double", "void",
	                     // "struct <name>", "enum <name>", or a typedef name
	PointerDepth int
	IsFuncPtr    bool
	FuncReturn   string
	FuncParams   []string
}

// ParseType decomposes a type-name string into its TypeInfo. It does
// not validate that Base names a known type; that is the symbol
// table's job during parsing/emission.
func ParseType(s string) TypeInfo {
	var info TypeInfo
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "const ") {
		info.IsConst = true
		s = strings.TrimSpace(s[len("const "):])
	}

	if i := strings.Index(s, "(*)("); i >= 0 {
		info.IsFuncPtr = true
		info.FuncReturn = strings.TrimSpace(s[:i])
		params := s[i+len("(*)(") :]
		params = strings.TrimSuffix(params, ")")
		if params != "" {
			for _, p := range strings.Split(params, ",") {
				info.FuncParams = append(info.FuncParams, strings.TrimSpace(p))
			}
		}
		return info
	}

	for strings.HasSuffix(s, "*") {
		info.PointerDepth++
		s = strings.TrimSpace(strings.TrimSuffix(s, "*"))
	}
	info.Base = s
	return info
}

// String reconstructs the canonical type-name spelling from a
// TypeInfo.
func (t TypeInfo) String() string {
	if t.IsFuncPtr {
		params := strings.Join(t.FuncParams, ", ")
		return t.FuncReturn + "(*)(" + params + ")"
	}
	var b strings.Builder
	if t.IsConst {
		b.WriteString("const ")
	}
	b.WriteString(t.Base)
	for i := 0; i < t.PointerDepth; i++ {
		b.WriteString("*")
	}
	return b.String()
}

// IsPointer reports whether the type has at least one level of
// pointer indirection.
func (t TypeInfo) IsPointer() bool { return t.PointerDepth > 0 || t.IsFuncPtr }

// baseScalarSize returns the size in bytes of a non-pointer base type
// known without consulting the symbol table, or -1 if unknown (e.g.
// a struct/enum/typedef name, resolved by the caller).
func baseScalarSize(base string) int {
	switch base {
	case "void":
		return 0
	case "char":
		return 1
	case "int":
		return 4
	case "float":
		return 4
	case "double":
		return 8
	}
	return -1
}

// SizeOf computes sizeof(typeName) per spec.md §8's boundary
// properties: sizeof(int) folds to 4, sizeof(char) to 1, sizeof of
// any pointer type to 8 (a pointer on the x86_64-unknown-linux-gnu
// target triple named in spec.md §6). structSizes resolves named
// struct sizes computed by the symbol table.
func SizeOf(typeName string, structSizes map[string]int) int {
	info := ParseType(typeName)
	if info.IsPointer() {
		return 8
	}
	if strings.HasPrefix(info.Base, "struct ") {
		name := strings.TrimPrefix(info.Base, "struct ")
		if sz, ok := structSizes[name]; ok {
			return sz
		}
		return -1
	}
	if strings.HasPrefix(info.Base, "enum ") {
		return 4
	}
	if sz := baseScalarSize(info.Base); sz >= 0 {
		return sz
	}
	return -1
}

// AlignOf computes the natural alignment of typeName, used to compute
// struct member offsets (SPEC_FULL.md §C, grounded on yparse/symtab.go's
// alignUp arithmetic).
func AlignOf(typeName string, structAligns map[string]int) int {
	info := ParseType(typeName)
	if info.IsPointer() {
		return 8
	}
	if strings.HasPrefix(info.Base, "struct ") {
		name := strings.TrimPrefix(info.Base, "struct ")
		if al, ok := structAligns[name]; ok {
			return al
		}
		return 4
	}
	switch info.Base {
	case "char":
		return 1
	case "int", "float", "enum":
		return 4
	case "double":
		return 8
	}
	return 4
}

// AlignUp rounds n up to the next multiple of align.
func AlignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
