// Package mirlower lowers elaborated Core (ANF) expressions into the MIR
// control-flow-graph form: every let-binding becomes a local assignment,
// every application becomes a Call terminator splitting the current block,
// and every if/match becomes a SwitchInt terminator over its branches.
package mirlower

import (
	"fmt"

	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/mir"
)

// Lowerer carries the running MIR program plus the function currently being
// built. A fresh Lowerer is created per top-level declaration group; the
// Program accumulates across calls to LowerProgram.
type Lowerer struct {
	prog *mir.Program

	fn     *mir.MirFunction
	cur    mir.BlockID
	scope  []map[string]mir.Local // lexical scopes, innermost last
	errors []error

	decisionCompiler DecisionCompiler
}

func NewLowerer() *Lowerer {
	return &Lowerer{prog: mir.NewProgram()}
}

// LowerProgram lowers every top-level declaration (each a Let binding a
// single Lambda, or a LetRec binding a mutually-recursive group of
// Lambdas — the only two shapes internal/elaborate's desugar pass
// produces) into one MirFunction per bound name.
func (lw *Lowerer) LowerProgram(prog *core.Program) (*mir.Program, error) {
	for i, decl := range prog.Decls {
		switch d := decl.(type) {
		case *core.Let:
			if err := lw.lowerTopLevelBinding(d.Name, d.Value); err != nil {
				return nil, fmt.Errorf("declaration %d (%s): %w", i, d.Name, err)
			}
		case *core.LetRec:
			for _, b := range d.Bindings {
				if err := lw.lowerTopLevelBinding(b.Name, b.Value); err != nil {
					return nil, fmt.Errorf("declaration %d (%s): %w", i, b.Name, err)
				}
			}
		default:
			// A bare top-level expression (module-level statement): lower it
			// into a synthetic "$init$N" function so its side effects still
			// appear in the program, matching the teacher's treatment of
			// non-func top-level statements in elaborate/file.go.
			name := fmt.Sprintf("$init$%d", i)
			if err := lw.lowerTopLevelBinding(name, decl); err != nil {
				return nil, fmt.Errorf("declaration %d (init): %w", i, err)
			}
		}
	}
	if len(lw.errors) > 0 {
		return nil, lw.errors[0]
	}
	return lw.prog, nil
}

func (lw *Lowerer) lowerTopLevelBinding(name string, value core.CoreExpr) error {
	lambda, ok := value.(*core.Lambda)
	if !ok {
		// Non-function top-level binding: wrap it in a zero-arg function so
		// it still has somewhere to live in the MIR program.
		lambda = &core.Lambda{Body: value}
	}
	return lw.lowerFunction(name, lambda)
}

func (lw *Lowerer) lowerFunction(name string, lambda *core.Lambda) error {
	fn := mir.NewFunction(name)
	lw.fn = fn
	lw.cur = mir.EntryBlock
	lw.scope = []map[string]mir.Local{{}}

	for _, p := range lambda.Params {
		local := fn.NewLocal(mir.Type{}, p)
		lw.bind(p, local)
	}
	fn.NumParams = len(lambda.Params)
	fn.ReturnLocal = fn.NewLocal(mir.Type{}, "$ret")

	result := lw.lowerExpr(lambda.Body)
	lw.assignReturn(result)
	lw.block().Terminator = mir.Return()

	lw.prog.AddFunction(fn)
	return nil
}

// assignReturn writes an operand into the function's dedicated return
// place, the convention mir.Terminator's argument-less Return() relies on.
func (lw *Lowerer) assignReturn(op mir.Operand) {
	lw.block().Push(mir.Assign(mir.PlaceOf(lw.fn.ReturnLocal), mir.Rvalue{Kind: mir.RvUse, Use: op}))
}

func (lw *Lowerer) block() *mir.BasicBlock {
	return lw.fn.Block(lw.cur)
}

func (lw *Lowerer) newBlock() mir.BlockID {
	return lw.fn.NewBlock()
}

func (lw *Lowerer) pushScope() {
	lw.scope = append(lw.scope, map[string]mir.Local{})
}

func (lw *Lowerer) popScope() {
	lw.scope = lw.scope[:len(lw.scope)-1]
}

func (lw *Lowerer) bind(name string, local mir.Local) {
	lw.scope[len(lw.scope)-1][name] = local
}

func (lw *Lowerer) lookup(name string) (mir.Local, bool) {
	for i := len(lw.scope) - 1; i >= 0; i-- {
		if l, ok := lw.scope[i][name]; ok {
			return l, true
		}
	}
	return 0, false
}

func (lw *Lowerer) addErr(err error) {
	lw.errors = append(lw.errors, err)
}
