package mirlower

import (
	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/mir"
)

// The methods below re-export Lowerer's block/scope/expression primitives so
// an injected DecisionCompiler (internal/patterns) can emit MIR directly
// against the function currently being built, without mirlower importing
// the pattern compiler's types. Same DI seam as the Parser interface in
// internal/modgraph.

func (lw *Lowerer) NewBlock() mir.BlockID           { return lw.newBlock() }
func (lw *Lowerer) CurrentBlock() mir.BlockID       { return lw.cur }
func (lw *Lowerer) SetCurrentBlock(id mir.BlockID)  { lw.cur = id }
func (lw *Lowerer) Block() *mir.BasicBlock          { return lw.block() }
func (lw *Lowerer) PushScope()                      { lw.pushScope() }
func (lw *Lowerer) PopScope()                       { lw.popScope() }
func (lw *Lowerer) Bind(name string, local mir.Local) { lw.bind(name, local) }
func (lw *Lowerer) Lookup(name string) (mir.Local, bool) { return lw.lookup(name) }
func (lw *Lowerer) NewLocal(t mir.Type, name string) mir.Local { return lw.fn.NewLocal(t, name) }
func (lw *Lowerer) IndexLocal(i int) mir.Local      { return lw.indexLocal(i) }
func (lw *Lowerer) BindTemp(t mir.Type, rv mir.Rvalue) mir.Operand { return lw.bindTemp(t, rv) }

// LowerExpr exposes the general expression lowerer so a decision tree's leaf
// bodies and guards lower the same way every other expression does.
func (lw *Lowerer) LowerExpr(e core.CoreExpr) mir.Operand { return lw.lowerExpr(e) }
