package mirlower

import (
	"fmt"
	"sort"

	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/mir"
)

// lowerExpr lowers a Core expression into the current block, returning an
// Operand that reads its result. Complex forms (App, If, Match) may end the
// current block with a terminator and advance lw.cur to a successor block;
// callers must not assume the block they started in is still current after
// a call to lowerExpr.
func (lw *Lowerer) lowerExpr(expr core.CoreExpr) mir.Operand {
	switch e := expr.(type) {
	case *core.Var:
		return lw.lowerVar(e)
	case *core.Lit:
		return lw.lowerLit(e)
	case *core.Let:
		return lw.lowerLet(e)
	case *core.LetRec:
		return lw.lowerLetRec(e)
	case *core.If:
		return lw.lowerIf(e)
	case *core.App:
		return lw.lowerApp(e)
	case *core.BinOp:
		return lw.lowerBinOp(e)
	case *core.UnOp:
		return lw.lowerUnOp(e)
	case *core.Record:
		return lw.lowerRecord(e)
	case *core.RecordAccess:
		return lw.lowerRecordAccess(e)
	case *core.List:
		return lw.lowerList(e)
	case *core.Match:
		return lw.lowerMatch(e)
	case *core.Lambda:
		// A Lambda in expression position (rather than top-level-bound) is a
		// closure: emit it as its own function and reference it by name.
		// Full closure conversion (capturing free variables into an
		// environment struct) is not yet implemented — nested lambdas
		// without free variables lower correctly, captures do not.
		name := fmt.Sprintf("$lambda$%d", e.ID())
		if err := lw.lowerFunction(name, e); err != nil {
			lw.addErr(err)
		}
		return mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: name})
	case *core.DictRef, *core.DictAbs, *core.DictApp:
		// Dictionary-passing nodes from the teacher's type-class desugaring:
		// out of scope for this surface (Aria's contracts/effects system has
		// no type classes), so they never reach here in well-formed input.
		lw.addErr(fmt.Errorf("unsupported dictionary-passing node in mir lowering: %T", e))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	default:
		lw.addErr(fmt.Errorf("mirlower: unsupported core expression %T", expr))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
}

func (lw *Lowerer) lowerVar(v *core.Var) mir.Operand {
	local, ok := lw.lookup(v.Name)
	if !ok {
		lw.addErr(fmt.Errorf("mirlower: undefined variable %q", v.Name))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
	return mir.Copy(mir.PlaceOf(local))
}

func (lw *Lowerer) lowerLit(l *core.Lit) mir.Operand {
	switch l.Kind {
	case core.IntLit:
		var v int64
		switch iv := l.Value.(type) {
		case int64:
			v = iv
		case int:
			v = int64(iv)
		}
		return mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: v})
	case core.FloatLit:
		v, _ := l.Value.(float64)
		return mir.ConstOp(mir.Constant{Kind: mir.ConstFloat, Float: v})
	case core.StringLit:
		v, _ := l.Value.(string)
		return mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: v})
	case core.BoolLit:
		v, _ := l.Value.(bool)
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: v})
	default:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
}

// bindTemp allocates a fresh local, assigns the rvalue into it in the
// current block, and returns a Copy operand reading it back. Every
// non-atomic computation (BinOp, UnOp, Record, RecordAccess, List) goes
// through here so downstream uses always see a Place, never a bare Rvalue.
func (lw *Lowerer) bindTemp(t mir.Type, rv mir.Rvalue) mir.Operand {
	local := lw.fn.NewLocal(t, "")
	lw.block().Push(mir.Assign(mir.PlaceOf(local), rv))
	return mir.Copy(mir.PlaceOf(local))
}

func (lw *Lowerer) lowerLet(e *core.Let) mir.Operand {
	val := lw.lowerExpr(e.Value)
	local := lw.fn.NewLocal(mir.Type{}, e.Name)
	lw.block().Push(mir.Assign(mir.PlaceOf(local), mir.Rvalue{Kind: mir.RvUse, Use: val}))
	lw.pushScope()
	lw.bind(e.Name, local)
	result := lw.lowerExpr(e.Body)
	lw.popScope()
	return result
}

func (lw *Lowerer) lowerLetRec(e *core.LetRec) mir.Operand {
	lw.pushScope()
	defer lw.popScope()

	for _, b := range e.Bindings {
		lambda, ok := b.Value.(*core.Lambda)
		if !ok {
			lw.addErr(fmt.Errorf("mirlower: letrec binding %q is not a function", b.Name))
			continue
		}
		if err := lw.lowerFunction(b.Name, lambda); err != nil {
			lw.addErr(err)
		}
		// Bind the name to a local carrying the function reference so a
		// later App sees it as callable; the callee is resolved by name at
		// lowerApp time regardless (see note there), this local exists so
		// lookups of the bound name don't fail.
		local := lw.fn.NewLocal(mir.Type{Kind: mir.TFnPtr}, b.Name)
		lw.block().Push(mir.Assign(mir.PlaceOf(local), mir.Rvalue{
			Kind: mir.RvUse,
			Use:  mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: b.Name}),
		}))
		lw.bind(b.Name, local)
	}
	return lw.lowerExpr(e.Body)
}

func (lw *Lowerer) lowerIf(e *core.If) mir.Operand {
	cond := lw.lowerExpr(e.Cond)

	thenID := lw.newBlock()
	elseID := lw.newBlock()
	mergeID := lw.newBlock()

	lw.block().Terminator = mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: thenID}}, elseID)

	result := lw.fn.NewLocal(mir.Type{}, "")

	lw.cur = thenID
	thenVal := lw.lowerExpr(e.Then)
	lw.block().Push(mir.Assign(mir.PlaceOf(result), mir.Rvalue{Kind: mir.RvUse, Use: thenVal}))
	lw.block().Terminator = mir.Goto(mergeID)

	lw.cur = elseID
	elseVal := lw.lowerExpr(e.Else)
	lw.block().Push(mir.Assign(mir.PlaceOf(result), mir.Rvalue{Kind: mir.RvUse, Use: elseVal}))
	lw.block().Terminator = mir.Goto(mergeID)

	lw.cur = mergeID
	return mir.Copy(mir.PlaceOf(result))
}

func (lw *Lowerer) lowerApp(e *core.App) mir.Operand {
	callee := calleeName(e.Func)
	args := make([]mir.Operand, len(e.Args))
	for i, a := range e.Args {
		args[i] = lw.lowerExpr(a)
	}

	dest := lw.fn.NewLocal(mir.Type{}, "")
	nextID := lw.newBlock()
	lw.block().Terminator = mir.Call(callee, args, mir.PlaceOf(dest), nextID)
	lw.cur = nextID
	return mir.Copy(mir.PlaceOf(dest))
}

// calleeName extracts a callable name from a Core function-position
// expression. Globals and local closures (bound to a name by lowerLetRec /
// the Lambda case in lowerExpr) are both identified by name; MIR's Call
// terminator is name-addressed rather than operand-addressed, matching
// spec §4.B's "Callee: function name" terminator shape.
func calleeName(fn core.CoreExpr) string {
	if v, ok := fn.(*core.Var); ok {
		return v.Name
	}
	return "<indirect>"
}

func (lw *Lowerer) lowerBinOp(e *core.BinOp) mir.Operand {
	lhs := lw.lowerExpr(e.Left)
	rhs := lw.lowerExpr(e.Right)

	kind, ok := textualBinOp(e.Op)
	if !ok {
		lw.addErr(fmt.Errorf("mirlower: unsupported binary operator %q", e.Op))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
	return lw.bindTemp(binOpResultType(kind), mir.Rvalue{Kind: mir.RvBinOp, BinOp: kind, Lhs: lhs, Rhs: rhs})
}

// binOpResultType reports the coarse MIR result type of a binary operator:
// comparisons and boolean connectives produce bool, everything else is left
// untyped pending full type-directed lowering (see DESIGN.md).
func binOpResultType(k mir.BinOpKind) mir.Type {
	switch k {
	case mir.BinEq, mir.BinNe, mir.BinLt, mir.BinLe, mir.BinGt, mir.BinGe, mir.BinAnd, mir.BinOr:
		return mir.Type{Kind: mir.TBool}
	default:
		return mir.Type{}
	}
}

func textualBinOp(op string) (mir.BinOpKind, bool) {
	switch op {
	case "+":
		return mir.BinAdd, true
	case "-":
		return mir.BinSub, true
	case "*":
		return mir.BinMul, true
	case "/":
		return mir.BinDiv, true
	case "%":
		return mir.BinMod, true
	case "==":
		return mir.BinEq, true
	case "!=":
		return mir.BinNe, true
	case "<":
		return mir.BinLt, true
	case "<=":
		return mir.BinLe, true
	case ">":
		return mir.BinGt, true
	case ">=":
		return mir.BinGe, true
	case "&&":
		return mir.BinAnd, true
	case "||":
		return mir.BinOr, true
	default:
		return 0, false
	}
}

func (lw *Lowerer) lowerUnOp(e *core.UnOp) mir.Operand {
	operand := lw.lowerExpr(e.Operand)
	var kind mir.UnOpKind
	switch e.Op {
	case "-":
		kind = mir.UnNeg
	case "not", "!":
		kind = mir.UnNot
	default:
		lw.addErr(fmt.Errorf("mirlower: unsupported unary operator %q", e.Op))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
	return lw.bindTemp(mir.Type{}, mir.Rvalue{Kind: mir.RvUnOp, UnOp: kind, Operand: operand})
}

func (lw *Lowerer) lowerRecord(e *core.Record) mir.Operand {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	elements := make([]mir.Operand, len(names))
	for i, name := range names {
		elements[i] = lw.lowerExpr(e.Fields[name])
	}
	return lw.bindTemp(mir.Type{Kind: mir.TStruct}, mir.Rvalue{
		Kind:     mir.RvAggregate,
		Aggregate: mir.AggStruct,
		Elements: elements,
	})
}

func (lw *Lowerer) lowerRecordAccess(e *core.RecordAccess) mir.Operand {
	recOp := lw.lowerExpr(e.Record)
	if recOp.Kind == mir.OpConstant {
		lw.addErr(fmt.Errorf("mirlower: field access on a constant operand"))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
	return mir.Copy(recOp.Place.Field(e.Field))
}

func (lw *Lowerer) lowerList(e *core.List) mir.Operand {
	elements := make([]mir.Operand, len(e.Elements))
	for i, el := range e.Elements {
		elements[i] = lw.lowerExpr(el)
	}
	return lw.bindTemp(mir.Type{Kind: mir.TArray}, mir.Rvalue{
		Kind:      mir.RvAggregate,
		Aggregate: mir.AggArray,
		Elements:  elements,
	})
}
