// Package mir defines the mid-level intermediate representation: a typed,
// SSA-adjacent control-flow graph with explicit places, rvalues, and
// terminators. Programs in this package are produced by internal/mirlower,
// rewritten in place by internal/contracts, and consumed by internal/codegen.
package mir

import "fmt"

// Type is a MIR-level type. It is deliberately coarser than the surface
// type system: generic parameters have already been resolved or boxed by
// the time a value reaches MIR.
type Type struct {
	Kind   TypeKind
	Name   string // struct/enum name, empty otherwise
	Elem   *Type  // array element type, ref pointee
	Fields []Type // tuple element types, or struct field types in order
}

type TypeKind int

const (
	TUnit TypeKind = iota
	TBool
	TInt
	TFloat
	TString
	TChar
	TTuple
	TArray
	TStruct
	TEnum
	TRef
	TFnPtr
	TClosure
	TNever
)

func (t Type) String() string {
	switch t.Kind {
	case TUnit:
		return "()"
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TFloat:
		return "float"
	case TString:
		return "string"
	case TChar:
		return "char"
	case TTuple:
		return fmt.Sprintf("tuple%d", len(t.Fields))
	case TArray:
		return fmt.Sprintf("[%s]", t.Elem)
	case TStruct:
		return "struct:" + t.Name
	case TEnum:
		return "enum:" + t.Name
	case TRef:
		return "&" + t.Elem.String()
	case TFnPtr:
		return "fn"
	case TClosure:
		return "closure"
	case TNever:
		return "!"
	default:
		return "?"
	}
}

// IsCopy reports whether values of this type may be read with Operand::Copy
// rather than Operand::Move. Primitive scalars, shared references, and
// tuples/structs composed solely of copy types are copy; everything else
// (strings, arrays, enums, owned structs with non-copy fields, closures)
// requires a Move.
func (t Type) IsCopy() bool {
	switch t.Kind {
	case TUnit, TBool, TInt, TFloat, TChar, TRef, TFnPtr:
		return true
	case TTuple:
		for _, f := range t.Fields {
			if !f.IsCopy() {
				return false
			}
		}
		return true
	case TStruct:
		for _, f := range t.Fields {
			if !f.IsCopy() {
				return false
			}
		}
		return true
	default:
		return false
	}
}
