package contracts

import (
	"testing"

	"github.com/ariacc/ariac/internal/mir"
)

func TestVerificationModeFlags(t *testing.T) {
	if !Debug.IsEnabled() || !Debug.ShouldInsertChecks() || Debug.ShouldProveStatic() {
		t.Fatalf("Debug mode flags wrong")
	}
	if !Release.IsEnabled() || !Release.ShouldInsertChecks() || !Release.ShouldProveStatic() {
		t.Fatalf("Release mode flags wrong")
	}
	if Disabled.IsEnabled() || Disabled.ShouldInsertChecks() {
		t.Fatalf("Disabled mode flags wrong")
	}
}

func TestConstantProverOnlyRecognizesLiteralTrue(t *testing.T) {
	p := ConstantProver{}
	trueClause := mir.ContractClause{Condition: mir.ContractExpr{Kind: mir.CEBool, BoolValue: true}}
	falseClause := mir.ContractClause{Condition: mir.ContractExpr{Kind: mir.CEBool, BoolValue: false}}
	nonConstClause := mir.ContractClause{Condition: mir.ContractExpr{Kind: mir.CELocal, LocalName: "x"}}

	if !p.IsProvablyTrue(trueClause) {
		t.Errorf("expected Constant(true) to be provable")
	}
	if p.IsProvablyTrue(falseClause) {
		t.Errorf("expected Constant(false) to not be provable")
	}
	if p.IsProvablyTrue(nonConstClause) {
		t.Errorf("expected a non-constant clause to not be provable")
	}
}

// buildFunctionWithContract constructs x > 0 (requires) / result >= x
// (ensures) over a one-parameter identity-like function, mirroring the
// shape a real mirlower-produced function would have.
func buildFunctionWithContract(t *testing.T) *mir.MirFunction {
	t.Helper()
	fn := mir.NewFunction("f")
	x := fn.NewLocal(mir.Type{Kind: mir.TInt}, "x")
	fn.NumParams = 1
	fn.ReturnLocal = fn.NewLocal(mir.Type{Kind: mir.TInt}, "$ret")
	fn.Block(mir.EntryBlock).Push(mir.Assign(mir.PlaceOf(fn.ReturnLocal), mir.Rvalue{Kind: mir.RvUse, Use: mir.Copy(mir.PlaceOf(x))}))
	fn.Block(mir.EntryBlock).Terminator = mir.Return()

	fn.Contract = &mir.FunctionContract{
		Requires: []mir.ContractClause{
			{Kind: mir.Requires, Condition: mir.ContractExpr{
				Kind: mir.CEBinary, BinOp: mir.BinGt,
				Operands: []mir.ContractExpr{{Kind: mir.CELocal, LocalName: "x"}, {Kind: mir.CEInt, IntValue: 0}},
			}},
		},
		Ensures: []mir.ContractClause{
			{Kind: mir.Ensures, Condition: mir.ContractExpr{
				Kind: mir.CEBinary, BinOp: mir.BinGe,
				Operands: []mir.ContractExpr{{Kind: mir.CEResult}, {Kind: mir.CEOld, LocalName: "x"}},
			}},
		},
	}
	return fn
}

func TestVerifyFunctionSplitsEntryBlockForPrecondition(t *testing.T) {
	fn := buildFunctionWithContract(t)
	v := NewVerifier(Debug, nil)
	v.verifyFunction(fn)

	if fn.Block(mir.EntryBlock).Terminator.Kind != mir.TermAssert {
		t.Fatalf("expected entry block to end in an Assert terminator, got %v", fn.Block(mir.EntryBlock).Terminator.Kind)
	}
}

func TestVerifyFunctionInsertsPostconditionBeforeReturn(t *testing.T) {
	fn := buildFunctionWithContract(t)
	v := NewVerifier(Debug, nil)
	v.verifyFunction(fn)

	var sawAssertBeforeReturn bool
	for _, b := range fn.Blocks {
		if b.Terminator.Kind == mir.TermReturn {
			continue
		}
		if b.Terminator.Kind == mir.TermAssert {
			sawAssertBeforeReturn = true
		}
	}
	if !sawAssertBeforeReturn {
		t.Fatalf("expected at least one Assert terminator ahead of the function's return")
	}

	foundReturn := false
	for _, b := range fn.Blocks {
		if b.Terminator.Kind == mir.TermReturn {
			foundReturn = true
		}
	}
	if !foundReturn {
		t.Fatalf("expected a Return terminator to survive verification")
	}
}

func TestVerifyFunctionSnapshotsOldValueForEnsures(t *testing.T) {
	fn := buildFunctionWithContract(t)
	v := NewVerifier(Debug, nil)
	v.verifyFunction(fn)

	found := false
	for _, name := range fn.LocalNames {
		if name == "$old$x" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a $old$x snapshot local, got names=%v", fn.LocalNames)
	}
}

func TestReleaseModeSkipsProvablyTrueClause(t *testing.T) {
	fn := mir.NewFunction("g")
	fn.NumParams = 0
	fn.ReturnLocal = fn.NewLocal(mir.Type{Kind: mir.TInt}, "$ret")
	fn.Block(mir.EntryBlock).Terminator = mir.Return()
	fn.Contract = &mir.FunctionContract{
		Requires: []mir.ContractClause{
			{Kind: mir.Requires, Condition: mir.ContractExpr{Kind: mir.CEBool, BoolValue: true}},
		},
	}

	v := NewVerifier(Release, nil)
	v.verifyFunction(fn)

	if fn.Block(mir.EntryBlock).Terminator.Kind != mir.TermReturn {
		t.Fatalf("expected the provably-true requires clause to be discharged without an Assert, got %v", fn.Block(mir.EntryBlock).Terminator.Kind)
	}
}

func TestDisabledModeLeavesProgramUntouched(t *testing.T) {
	fn := buildFunctionWithContract(t)
	prog := mir.NewProgram()
	prog.AddFunction(fn)

	v := NewVerifier(Disabled, nil)
	v.VerifyProgram(prog)

	if fn.Block(mir.EntryBlock).Terminator.Kind != mir.TermReturn {
		t.Fatalf("expected Disabled mode to leave the terminator untouched")
	}
}

func TestMultipleRequiresClausesChainThroughEntryBlock(t *testing.T) {
	fn := mir.NewFunction("h")
	x := fn.NewLocal(mir.Type{Kind: mir.TInt}, "x")
	fn.NumParams = 1
	fn.ReturnLocal = fn.NewLocal(mir.Type{Kind: mir.TInt}, "$ret")
	fn.Block(mir.EntryBlock).Terminator = mir.Return()
	fn.Contract = &mir.FunctionContract{
		Requires: []mir.ContractClause{
			{Kind: mir.Requires, Condition: mir.ContractExpr{
				Kind: mir.CEBinary, BinOp: mir.BinGt,
				Operands: []mir.ContractExpr{{Kind: mir.CELocal, LocalName: "x"}, {Kind: mir.CEInt, IntValue: 0}},
			}},
			{Kind: mir.Requires, Condition: mir.ContractExpr{
				Kind: mir.CEBinary, BinOp: mir.BinLt,
				Operands: []mir.ContractExpr{{Kind: mir.CELocal, LocalName: "x"}, {Kind: mir.CEInt, IntValue: 100}},
			}},
		},
	}

	v := NewVerifier(ForceAll, nil)
	v.verifyFunction(fn)

	assertCount := 0
	for _, b := range fn.Blocks {
		if b.Terminator.Kind == mir.TermAssert {
			assertCount++
		}
	}
	if assertCount != 2 {
		t.Fatalf("expected 2 chained Assert terminators, got %d", assertCount)
	}
}
