package mirlower

import (
	"fmt"

	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/mir"
)

func errUnsupportedPattern(pat core.CorePattern) error {
	return fmt.Errorf("mirlower: unsupported pattern %T", pat)
}

// DecisionCompiler lowers a match's scrutinee and arm patterns directly into
// MIR terminators, replacing lowerMatch's naive sequential arm-by-arm
// fallback with an optimal decision tree. internal/patterns implements this
// interface; it is injected here rather than imported directly so
// mirlower has no hard dependency on the pattern compiler's internals.
type DecisionCompiler interface {
	LowerMatch(lw *Lowerer, scrutinee mir.Operand, arms []core.MatchArm) mir.Operand
}

// decisionCompiler is optionally wired by the caller (typically cmd/ariac's
// pipeline wiring) once internal/patterns is constructed. Left nil, match
// expressions lower via the sequential fallback below.
func (lw *Lowerer) SetDecisionCompiler(dc DecisionCompiler) {
	lw.decisionCompiler = dc
}

func (lw *Lowerer) lowerMatch(e *core.Match) mir.Operand {
	scrutinee := lw.lowerExpr(e.Scrutinee)

	if lw.decisionCompiler != nil {
		return lw.decisionCompiler.LowerMatch(lw, scrutinee, e.Arms)
	}
	return lw.lowerMatchSequential(scrutinee, e.Arms)
}

// lowerMatchSequential tests each arm's pattern in declaration order,
// branching to the first that matches. It is not exhaustiveness-checked or
// decision-tree-optimized (see DecisionCompiler); arms that all fail end in
// Unreachable, relying on the elaborator's Match.Exhaustive flag to mean
// that point really is unreachable for well-typed input.
func (lw *Lowerer) lowerMatchSequential(scrutinee mir.Operand, arms []core.MatchArm) mir.Operand {
	result := lw.fn.NewLocal(mir.Type{}, "")
	mergeID := lw.newBlock()

	for _, arm := range arms {
		bodyID := lw.newBlock()
		failID := lw.newBlock()

		lw.pushScope()
		cond := lw.lowerPatternTest(scrutinee, arm.Pattern)
		lw.block().Terminator = mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: bodyID}}, failID)

		lw.cur = bodyID
		if arm.Guard != nil {
			guardCond := lw.lowerExpr(arm.Guard)
			guardOK := lw.newBlock()
			lw.block().Terminator = mir.SwitchInt(guardCond, []mir.SwitchCase{{Value: 1, Target: guardOK}}, failID)
			lw.cur = guardOK
		}
		bodyVal := lw.lowerExpr(arm.Body)
		lw.block().Push(mir.Assign(mir.PlaceOf(result), mir.Rvalue{Kind: mir.RvUse, Use: bodyVal}))
		lw.block().Terminator = mir.Goto(mergeID)
		lw.popScope()

		lw.cur = failID
	}
	// Every arm was exhausted without matching.
	lw.block().Terminator = mir.Unreachable()

	lw.cur = mergeID
	return mir.Copy(mir.PlaceOf(result))
}

// lowerPatternTest evaluates whether scrutinee matches pat, binding any
// pattern variables into the current scope as a side effect, and returns a
// bool operand (constant-folded true/false composed via And where multiple
// sub-tests are needed).
func (lw *Lowerer) lowerPatternTest(scrutinee mir.Operand, pat core.CorePattern) mir.Operand {
	switch p := pat.(type) {
	case *core.WildcardPattern:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: true})

	case *core.VarPattern:
		local := lw.fn.NewLocal(mir.Type{}, p.Name)
		lw.block().Push(mir.Assign(mir.PlaceOf(local), mir.Rvalue{Kind: mir.RvUse, Use: scrutinee}))
		lw.bind(p.Name, local)
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: true})

	case *core.LitPattern:
		return lw.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind:  mir.RvBinOp,
			BinOp: mir.BinEq,
			Lhs:   scrutinee,
			Rhs:   literalOperand(p.Value),
		})

	case *core.ConstructorPattern:
		// Constructor equality test against the enum discriminant, followed
		// by a conjunction of field sub-tests. Field extraction assumes
		// scrutinee is a place (true for everything but raw constants,
		// which cannot carry constructor shape anyway).
		if scrutinee.Kind == mir.OpConstant {
			return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
		}
		tagPlace := scrutinee.Place.Field("$tag")
		tagCond := lw.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind:  mir.RvBinOp,
			BinOp: mir.BinEq,
			Lhs:   mir.Copy(tagPlace),
			Rhs:   mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: p.Name}),
		})
		cond := tagCond
		for i, sub := range p.Args {
			fieldOp := mir.Copy(scrutinee.Place.Field(p.Name).TupleIndex(i))
			subCond := lw.lowerPatternTest(fieldOp, sub)
			cond = lw.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
				Kind: mir.RvBinOp, BinOp: mir.BinAnd, Lhs: cond, Rhs: subCond,
			})
		}
		return cond

	case *core.ListPattern:
		cond := mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: true})
		for i, sub := range p.Elements {
			if scrutinee.Kind == mir.OpConstant {
				break
			}
			elemOp := mir.Copy(scrutinee.Place.Index(lw.indexLocal(i)))
			subCond := lw.lowerPatternTest(elemOp, sub)
			cond = lw.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
				Kind: mir.RvBinOp, BinOp: mir.BinAnd, Lhs: cond, Rhs: subCond,
			})
		}
		return cond

	case *core.RecordPattern:
		cond := mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: true})
		for field, sub := range p.Fields {
			if scrutinee.Kind == mir.OpConstant {
				break
			}
			fieldOp := mir.Copy(scrutinee.Place.Field(field))
			subCond := lw.lowerPatternTest(fieldOp, sub)
			cond = lw.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
				Kind: mir.RvBinOp, BinOp: mir.BinAnd, Lhs: cond, Rhs: subCond,
			})
		}
		return cond

	default:
		lw.addErr(errUnsupportedPattern(pat))
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
	}
}

// indexLocal materializes a constant array index into a local, since
// Place.Index projects by Local rather than by literal int.
func (lw *Lowerer) indexLocal(i int) mir.Local {
	local := lw.fn.NewLocal(mir.Type{Kind: mir.TInt}, "")
	lw.block().Push(mir.Assign(mir.PlaceOf(local), mir.Rvalue{
		Kind: mir.RvUse,
		Use:  mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: int64(i)}),
	}))
	return local
}

func literalOperand(v interface{}) mir.Operand {
	switch val := v.(type) {
	case int:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: int64(val)})
	case int64:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: val})
	case float64:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstFloat, Float: val})
	case string:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: val})
	case bool:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: val})
	default:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstUnit})
	}
}
