// Package codegen lowers a compiled MIR program into a self-contained
// object module: a per-function straight-line instruction list plus an
// exported-symbol table. It targets no single real ISA — grounded on
// original_source/crates/aria-codegen/src/types.rs's type-mapping table,
// with machine-code emission intentionally replaced by a struct-based
// stand-in (see Module in module.go).
package codegen

import "github.com/ariacc/ariac/internal/mir"

// TargetKind is the physical representation a MIR type lowers to. Unlike
// mir.TypeKind, this collapses every heap-allocated or compound shape into
// a single Pointer kind, matching the original's mir_type_to_clif table
// exactly (pointer width for anything that isn't a primitive scalar).
type TargetKind int

const (
	TKI8 TargetKind = iota
	TKI16
	TKI32
	TKI64
	TKF32
	TKF64
	TKPointer
)

func (k TargetKind) String() string {
	switch k {
	case TKI8:
		return "i8"
	case TKI16:
		return "i16"
	case TKI32:
		return "i32"
	case TKI64:
		return "i64"
	case TKF32:
		return "f32"
	case TKF64:
		return "f64"
	case TKPointer:
		return "ptr"
	default:
		return "?"
	}
}

func (k TargetKind) Size(ptrSize uint32) uint32 {
	switch k {
	case TKI8:
		return 1
	case TKI16:
		return 2
	case TKI32, TKF32:
		return 4
	case TKI64, TKF64:
		return 8
	default:
		return ptrSize
	}
}

// MirTypeToTarget maps a MIR type to its physical representation, mirroring
// mir_type_to_clif: Bool is widened to a 64-bit integer for switch
// compatibility rather than left as a single byte, and every compound or
// heap-allocated shape collapses to Pointer.
func MirTypeToTarget(t mir.Type) TargetKind {
	switch t.Kind {
	case mir.TUnit:
		return TKI8
	case mir.TBool:
		return TKI64
	case mir.TInt:
		return TKI64
	case mir.TFloat:
		return TKF64
	case mir.TChar:
		return TKI32
	case mir.TNever:
		return TKI64
	case mir.TString, mir.TArray, mir.TTuple, mir.TStruct, mir.TEnum,
		mir.TRef, mir.TFnPtr, mir.TClosure:
		return TKPointer
	default:
		return TKPointer
	}
}

// IsValueType reports whether a MIR type fits in a register and can be
// passed by value, mirroring is_value_type.
func IsValueType(t mir.Type) bool {
	switch t.Kind {
	case mir.TUnit, mir.TBool, mir.TInt, mir.TFloat, mir.TChar:
		return true
	default:
		return false
	}
}

// NeedsHeapAllocation reports whether values of this type require a heap
// allocation rather than living entirely on the stack, mirroring
// needs_heap_allocation.
func NeedsHeapAllocation(t mir.Type) bool {
	switch t.Kind {
	case mir.TString, mir.TArray, mir.TTuple, mir.TStruct, mir.TEnum, mir.TClosure:
		return true
	default:
		return false
	}
}

// TypeSize returns the size in bytes of a MIR type, mirroring type_size.
// Bool is 8 bytes to match its I64 switch-compatible representation.
func TypeSize(t mir.Type, ptrSize uint32) uint32 {
	switch t.Kind {
	case mir.TUnit:
		return 0
	case mir.TBool:
		return 8
	case mir.TChar:
		return 4
	case mir.TInt:
		return 8
	case mir.TFloat:
		return 8
	default:
		return ptrSize
	}
}

// TypeAlign returns the alignment in bytes of a MIR type, mirroring
// type_align.
func TypeAlign(t mir.Type, ptrSize uint32) uint32 {
	switch t.Kind {
	case mir.TUnit, mir.TBool:
		return 1
	case mir.TChar:
		return 4
	case mir.TInt, mir.TFloat:
		return 8
	default:
		return ptrSize
	}
}

// IsFloatType reports whether t is a floating-point type.
func IsFloatType(t mir.Type) bool { return t.Kind == mir.TFloat }
