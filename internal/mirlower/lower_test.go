package mirlower

import (
	"testing"

	"github.com/ariacc/ariac/internal/core"
	"github.com/stretchr/testify/require"
)

func lit(kind core.LitKind, v interface{}) *core.Lit {
	return &core.Lit{Kind: kind, Value: v}
}

func TestLowerSimpleFunction(t *testing.T) {
	// fn double(x) = x + x
	body := &core.BinOp{Op: "+", Left: &core.Var{Name: "x"}, Right: &core.Var{Name: "x"}}
	lambda := &core.Lambda{Params: []string{"x"}, Body: body}
	prog := &core.Program{Decls: []core.CoreExpr{
		&core.Let{Name: "double", Value: lambda, Body: &core.Var{Name: "double"}},
	}}

	lw := NewLowerer()
	mirProg, err := lw.LowerProgram(prog)
	require.NoError(t, err)

	fn, ok := mirProg.FunctionByName("double")
	require.True(t, ok)
	require.Equal(t, 1, fn.NumParams)
	require.Len(t, fn.Blocks, 1)
	require.NotEmpty(t, fn.Blocks[0].Statements)
}

func TestLowerIfProducesThreeExtraBlocks(t *testing.T) {
	// fn abs(x) = if x < 0 then 0 - x else x
	cond := &core.BinOp{Op: "<", Left: &core.Var{Name: "x"}, Right: lit(core.IntLit, int64(0))}
	thenBranch := &core.BinOp{Op: "-", Left: lit(core.IntLit, int64(0)), Right: &core.Var{Name: "x"}}
	elseBranch := &core.Var{Name: "x"}
	body := &core.If{Cond: cond, Then: thenBranch, Else: elseBranch}
	lambda := &core.Lambda{Params: []string{"x"}, Body: body}
	prog := &core.Program{Decls: []core.CoreExpr{
		&core.Let{Name: "abs", Value: lambda, Body: &core.Var{Name: "abs"}},
	}}

	lw := NewLowerer()
	mirProg, err := lw.LowerProgram(prog)
	require.NoError(t, err)

	fn, ok := mirProg.FunctionByName("abs")
	require.True(t, ok)
	// entry + then + else + merge = 4 blocks
	require.Len(t, fn.Blocks, 4)
	require.NotEmpty(t, fn.ReturnBlocks())
	require.Len(t, fn.Reachable(), 4)
}

func TestLowerAppSplitsBlockAtCallTerminator(t *testing.T) {
	// fn call_id(x) = id(x)
	body := &core.App{Func: &core.Var{Name: "id"}, Args: []core.CoreExpr{&core.Var{Name: "x"}}}
	lambda := &core.Lambda{Params: []string{"x"}, Body: body}
	prog := &core.Program{Decls: []core.CoreExpr{
		&core.Let{Name: "call_id", Value: lambda, Body: &core.Var{Name: "call_id"}},
	}}

	lw := NewLowerer()
	mirProg, err := lw.LowerProgram(prog)
	require.NoError(t, err)

	fn, ok := mirProg.FunctionByName("call_id")
	require.True(t, ok)
	require.Len(t, fn.Blocks, 2)
	require.Equal(t, "id", fn.Blocks[0].Terminator.Callee)
}

func TestLowerLetRecBindsAllGroupMembers(t *testing.T) {
	isEven := &core.Lambda{Params: []string{"n"}, Body: &core.App{
		Func: &core.Var{Name: "isOdd"},
		Args: []core.CoreExpr{&core.Var{Name: "n"}},
	}}
	isOdd := &core.Lambda{Params: []string{"n"}, Body: &core.App{
		Func: &core.Var{Name: "isEven"},
		Args: []core.CoreExpr{&core.Var{Name: "n"}},
	}}
	letRec := &core.LetRec{
		Bindings: []core.RecBinding{{Name: "isEven", Value: isEven}, {Name: "isOdd", Value: isOdd}},
		Body:     lit(core.UnitLit, nil),
	}
	prog := &core.Program{Decls: []core.CoreExpr{letRec}}

	lw := NewLowerer()
	mirProg, err := lw.LowerProgram(prog)
	require.NoError(t, err)

	_, ok := mirProg.FunctionByName("isEven")
	require.True(t, ok)
	_, ok = mirProg.FunctionByName("isOdd")
	require.True(t, ok)
}

func TestLowerMatchSequentialFallbackHandlesLiteralAndWildcard(t *testing.T) {
	// fn classify(n) = match n { 0 -> "zero", _ -> "nonzero" }
	arms := []core.MatchArm{
		{Pattern: &core.LitPattern{Value: int64(0)}, Body: lit(core.StringLit, "zero")},
		{Pattern: &core.WildcardPattern{}, Body: lit(core.StringLit, "nonzero")},
	}
	body := &core.Match{Scrutinee: &core.Var{Name: "n"}, Arms: arms, Exhaustive: true}
	lambda := &core.Lambda{Params: []string{"n"}, Body: body}
	prog := &core.Program{Decls: []core.CoreExpr{
		&core.Let{Name: "classify", Value: lambda, Body: &core.Var{Name: "classify"}},
	}}

	lw := NewLowerer()
	mirProg, err := lw.LowerProgram(prog)
	require.NoError(t, err)

	fn, ok := mirProg.FunctionByName("classify")
	require.True(t, ok)
	require.Greater(t, len(fn.Blocks), 2)
}

func TestLowerUndefinedVariableIsReported(t *testing.T) {
	lambda := &core.Lambda{Params: []string{}, Body: &core.Var{Name: "ghost"}}
	prog := &core.Program{Decls: []core.CoreExpr{
		&core.Let{Name: "broken", Value: lambda, Body: &core.Var{Name: "broken"}},
	}}

	lw := NewLowerer()
	_, err := lw.LowerProgram(prog)
	require.Error(t, err)
}
