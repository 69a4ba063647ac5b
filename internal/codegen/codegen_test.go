package codegen

import (
	"testing"

	"github.com/ariacc/ariac/internal/mir"
)

func TestMirTypeToTargetMatchesOriginalTable(t *testing.T) {
	cases := []struct {
		ty   mir.Type
		want TargetKind
	}{
		{mir.Type{Kind: mir.TUnit}, TKI8},
		{mir.Type{Kind: mir.TBool}, TKI64},
		{mir.Type{Kind: mir.TInt}, TKI64},
		{mir.Type{Kind: mir.TFloat}, TKF64},
		{mir.Type{Kind: mir.TChar}, TKI32},
		{mir.Type{Kind: mir.TString}, TKPointer},
		{mir.Type{Kind: mir.TArray}, TKPointer},
		{mir.Type{Kind: mir.TStruct, Name: "Point"}, TKPointer},
	}
	for _, c := range cases {
		if got := MirTypeToTarget(c.ty); got != c.want {
			t.Errorf("MirTypeToTarget(%v) = %v, want %v", c.ty, got, c.want)
		}
	}
}

func TestIsValueTypeAndNeedsHeapAllocation(t *testing.T) {
	if !IsValueType(mir.Type{Kind: mir.TInt}) || !IsValueType(mir.Type{Kind: mir.TBool}) {
		t.Errorf("expected scalar types to be value types")
	}
	if IsValueType(mir.Type{Kind: mir.TString}) {
		t.Errorf("expected String to not be a value type")
	}
	if !NeedsHeapAllocation(mir.Type{Kind: mir.TString}) || !NeedsHeapAllocation(mir.Type{Kind: mir.TArray}) {
		t.Errorf("expected String/Array to need heap allocation")
	}
	if NeedsHeapAllocation(mir.Type{Kind: mir.TInt}) {
		t.Errorf("expected Int to not need heap allocation")
	}
}

func TestTypeSizeAndAlign(t *testing.T) {
	if TypeSize(mir.Type{Kind: mir.TBool}, 8) != 8 {
		t.Errorf("expected Bool size 8 for switch-compatible representation")
	}
	if TypeSize(mir.Type{Kind: mir.TChar}, 8) != 4 {
		t.Errorf("expected Char size 4")
	}
	if TypeSize(mir.Type{Kind: mir.TString}, 8) != 8 {
		t.Errorf("expected String size to be pointer width")
	}
	if TypeAlign(mir.Type{Kind: mir.TBool}, 8) != 1 {
		t.Errorf("expected Bool alignment 1")
	}
	if TypeAlign(mir.Type{Kind: mir.TInt}, 8) != 8 {
		t.Errorf("expected Int alignment 8")
	}
}

// buildIdentityWithAssert builds fn(x: int) -> int { requires x > 0; return x }
// already verified (i.e. as internal/contracts would leave it): an Assert
// terminator ahead of a Return.
func buildIdentityWithAssert() *mir.MirFunction {
	fn := mir.NewFunction("identity")
	x := fn.NewLocal(mir.Type{Kind: mir.TInt}, "x")
	fn.NumParams = 1
	fn.ReturnLocal = fn.NewLocal(mir.Type{Kind: mir.TInt}, "$ret")

	cont := fn.NewBlock()
	fn.Block(mir.EntryBlock).Push(mir.Assign(
		mir.PlaceOf(fn.NewLocal(mir.Type{Kind: mir.TBool}, "")),
		mir.Rvalue{Kind: mir.RvBinOp, BinOp: mir.BinGt, Lhs: mir.Copy(mir.PlaceOf(x)), Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: 0})},
	))
	cond := mir.Copy(mir.PlaceOf(mir.Local(len(fn.LocalTypes) - 1)))
	fn.Block(mir.EntryBlock).Terminator = mir.Assert(cond, true, "Precondition violated", cont)

	fn.Block(cont).Push(mir.Assign(mir.PlaceOf(fn.ReturnLocal), mir.Rvalue{Kind: mir.RvUse, Use: mir.Copy(mir.PlaceOf(x))}))
	fn.Block(cont).Terminator = mir.Return()
	return fn
}

func TestLowerFunctionEmitsPanicBlockForAssert(t *testing.T) {
	fn := buildIdentityWithAssert()
	obj := lowerFunction(fn, true)

	if len(obj.Blocks) != 3 {
		t.Fatalf("expected entry + continuation + synthetic panic block, got %d blocks", len(obj.Blocks))
	}

	entry := obj.Blocks[0]
	if entry.Transfer.Op != XBranch {
		t.Fatalf("expected entry block to end in a branch, got %v", entry.Transfer.Op)
	}
	panicBlock := obj.Blocks[entry.Transfer.Targets[1]]
	if panicBlock.Transfer.Op != XCallRuntimePanic {
		t.Fatalf("expected the branch's false target to be a runtime panic call, got %v", panicBlock.Transfer.Op)
	}
	if panicBlock.Transfer.PanicMsg != "Precondition violated" {
		t.Errorf("expected the panic message to carry the assert message, got %q", panicBlock.Transfer.PanicMsg)
	}

	returnBlock := obj.Blocks[entry.Transfer.Targets[0]]
	if returnBlock.Transfer.Op != XReturn {
		t.Fatalf("expected the branch's true target to eventually return, got %v", returnBlock.Transfer.Op)
	}
}

func TestLowerFunctionAssignsRegistersAndStackSlots(t *testing.T) {
	fn := mir.NewFunction("f")
	fn.NewLocal(mir.Type{Kind: mir.TInt}, "a")
	fn.NewLocal(mir.Type{Kind: mir.TString}, "s")
	fn.ReturnLocal = fn.NewLocal(mir.Type{Kind: mir.TInt}, "$ret")
	fn.Block(mir.EntryBlock).Terminator = mir.Return()

	obj := lowerFunction(fn, false)
	if len(obj.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(obj.Slots))
	}
	if !obj.Slots[0].InReg || obj.Slots[0].RegClass != "int" {
		t.Errorf("expected the int local to be register-assigned")
	}
	if obj.Slots[1].InReg {
		t.Errorf("expected the String local to occupy a stack slot, not a register")
	}
}

func TestLowerFunctionCallTerminatorCarriesArgsAndDest(t *testing.T) {
	fn := mir.NewFunction("caller")
	a := fn.NewLocal(mir.Type{Kind: mir.TInt}, "a")
	dest := fn.NewLocal(mir.Type{Kind: mir.TInt}, "r")
	fn.ReturnLocal = dest
	next := fn.NewBlock()
	fn.Block(mir.EntryBlock).Terminator = mir.Call("helper", []mir.Operand{mir.Copy(mir.PlaceOf(a))}, mir.PlaceOf(dest), next)
	fn.Block(next).Terminator = mir.Return()

	obj := lowerFunction(fn, true)
	call := obj.Blocks[0].Transfer
	if call.Op != XCall || call.Callee != "helper" {
		t.Fatalf("expected an XCall to helper, got %+v", call)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call argument, got %d", len(call.Args))
	}
	if call.Dest != int(dest) {
		t.Errorf("expected call dest local %d, got %d", dest, call.Dest)
	}
}

func TestLowerFunctionCallResolvesBuiltinToABISymbol(t *testing.T) {
	fn := mir.NewFunction("caller")
	a := fn.NewLocal(mir.Type{Kind: mir.TString}, "a")
	b := fn.NewLocal(mir.Type{Kind: mir.TString}, "b")
	dest := fn.NewLocal(mir.Type{Kind: mir.TString}, "r")
	fn.ReturnLocal = dest
	next := fn.NewBlock()
	fn.Block(mir.EntryBlock).Terminator = mir.Call("concat_String",
		[]mir.Operand{mir.Copy(mir.PlaceOf(a)), mir.Copy(mir.PlaceOf(b))}, mir.PlaceOf(dest), next)
	fn.Block(next).Terminator = mir.Return()

	obj := lowerFunction(fn, true)
	call := obj.Blocks[0].Transfer
	if call.Op != XCall || call.Callee != "AriaStringConcat" {
		t.Fatalf("expected concat_String to resolve to the ABI linkage symbol, got %+v", call)
	}
}

func TestLowerFunctionCallLeavesOrdinaryCalleesUnresolved(t *testing.T) {
	fn := mir.NewFunction("caller")
	dest := fn.NewLocal(mir.Type{Kind: mir.TInt}, "r")
	fn.ReturnLocal = dest
	next := fn.NewBlock()
	fn.Block(mir.EntryBlock).Terminator = mir.Call("userDefinedHelper", nil, mir.PlaceOf(dest), next)
	fn.Block(next).Terminator = mir.Return()

	obj := lowerFunction(fn, true)
	if call := obj.Blocks[0].Transfer; call.Callee != "userDefinedHelper" {
		t.Errorf("expected a non-builtin callee to pass through unchanged, got %q", call.Callee)
	}
}

func TestLowerProgramMarksExportedFunctionsAndInternsStrings(t *testing.T) {
	prog := mir.NewProgram()
	fn := mir.NewFunction("main")
	fn.Block(mir.EntryBlock).Terminator = mir.Return()
	prog.AddFunction(fn)
	prog.InternString("hello")

	mod := LowerProgram(prog, map[string]bool{"main": true})
	if len(mod.Functions) != 1 || !mod.Functions[0].Exported {
		t.Fatalf("expected main to be exported")
	}
	if len(mod.Strings) != 1 || mod.Strings[0].Value != "hello" {
		t.Fatalf("expected one interned string symbol for %q", "hello")
	}
}
