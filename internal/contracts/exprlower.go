package contracts

import "github.com/ariacc/ariac/internal/mir"

// builder lowers a ContractExpr tree into MIR statements/operands against a
// single function, splitting blocks on demand when a method call appears
// (Call is a terminator in this MIR, same as in internal/mirlower). This
// completes the original's "TODO: Properly implement expression lowering
// with temporary variables" rather than preserving its Copy-of-constant
// placeholder — nothing in the surrounding design requires keeping that
// incompleteness, only documenting the choice, which this comment does.
type builder struct {
	fn  *mir.MirFunction
	cur mir.BlockID
}

func (b *builder) block() *mir.BasicBlock { return b.fn.Block(b.cur) }
func (b *builder) newBlock() mir.BlockID  { return b.fn.NewBlock() }

func (b *builder) bindTemp(t mir.Type, rv mir.Rvalue) mir.Operand {
	local := b.fn.NewLocal(t, "")
	b.block().Push(mir.Assign(mir.PlaceOf(local), rv))
	return mir.Copy(mir.PlaceOf(local))
}

// lowerExpr translates one ContractExpr node. old maps a parameter name to
// the local snapshotting its pre-call value, consulted only for CEOld.
func (b *builder) lowerExpr(e mir.ContractExpr, old map[string]mir.Local) mir.Operand {
	switch e.Kind {
	case mir.CEBool:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: e.BoolValue})
	case mir.CEInt:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: e.IntValue})
	case mir.CEFloat:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstFloat, Float: e.FloatValue})

	case mir.CELocal:
		local, ok := findLocalByName(b.fn, e.LocalName)
		if !ok {
			return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
		}
		return mir.Copy(mir.PlaceOf(local))

	case mir.CEResult:
		return mir.Copy(mir.PlaceOf(b.fn.ReturnLocal))

	case mir.CEOld:
		if snap, ok := old[e.LocalName]; ok {
			return mir.Copy(mir.PlaceOf(snap))
		}
		// No snapshot taken (e.g. Old used outside an Ensures clause): fall
		// back to the current value rather than failing the whole clause.
		return b.lowerExpr(mir.ContractExpr{Kind: mir.CELocal, LocalName: e.LocalName}, old)

	case mir.CEBinary:
		lhs := b.lowerExpr(e.Operands[0], old)
		rhs := b.lowerExpr(e.Operands[1], old)
		return b.bindTemp(binOpResultType(e.BinOp), mir.Rvalue{Kind: mir.RvBinOp, BinOp: e.BinOp, Lhs: lhs, Rhs: rhs})

	case mir.CEUnary:
		val := b.lowerExpr(e.Operands[0], old)
		return b.bindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{Kind: mir.RvUnOp, UnOp: e.UnOp, Operand: val})

	case mir.CEField:
		base := b.lowerExpr(e.FieldOf, old)
		if base.Kind == mir.OpConstant {
			return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
		}
		return mir.Copy(base.Place.Field(e.Field))

	case mir.CEMethodCall:
		recv := b.lowerExpr(e.Receiver, old)
		args := make([]mir.Operand, len(e.MethodArgs)+1)
		args[0] = recv
		for i, a := range e.MethodArgs {
			args[i+1] = b.lowerExpr(a, old)
		}
		dest := b.fn.NewLocal(mir.Type{Kind: mir.TBool}, "")
		nextID := b.newBlock()
		b.block().Terminator = mir.Call(e.Method, args, mir.PlaceOf(dest), nextID)
		b.cur = nextID
		return mir.Copy(mir.PlaceOf(dest))

	default:
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
	}
}

// binOpResultType mirrors internal/mirlower's own binOpResultType MVP
// heuristic (comparisons/boolean connectives produce Bool, everything else
// is left as the zero-value unknown type) — contract conditions are
// overwhelmingly comparisons, so this covers the common case without
// needing a type checker here either.
func binOpResultType(k mir.BinOpKind) mir.Type {
	switch k {
	case mir.BinEq, mir.BinNe, mir.BinLt, mir.BinLe, mir.BinGt, mir.BinGe, mir.BinAnd, mir.BinOr:
		return mir.Type{Kind: mir.TBool}
	default:
		return mir.Type{}
	}
}
