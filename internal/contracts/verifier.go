// Package contracts inserts runtime checks for a function's requires/ensures
// clauses directly into its MIR, and optionally discharges some of those
// checks statically instead of emitting a runtime Assert. Grounded on
// original_source/crates/aria-mir/src/contract_verifier.rs.
package contracts

import (
	"fmt"
	"sort"

	"github.com/ariacc/ariac/internal/mir"
)

// VerificationMode controls whether and how contract clauses are checked,
// mirroring the Rust original's VerificationMode enum exactly.
type VerificationMode int

const (
	Disabled VerificationMode = iota
	Debug
	Release
	ForceAll
)

func (m VerificationMode) IsEnabled() bool { return m != Disabled }

func (m VerificationMode) ShouldInsertChecks() bool {
	return m == Debug || m == Release || m == ForceAll
}

func (m VerificationMode) ShouldProveStatic() bool { return m == Release }

// Verifier walks a compiled program's functions and, for each with an
// attached FunctionContract, splits its entry block and return blocks to
// insert Assert terminators for every requires/ensures clause that survives
// shouldCheckClause.
type Verifier struct {
	mode   VerificationMode
	prover RangeProver
}

// NewVerifier constructs a Verifier. prover may be nil, in which case only
// the built-in Constant(true) discharge applies (see RangeProver).
func NewVerifier(mode VerificationMode, prover RangeProver) *Verifier {
	if prover == nil {
		prover = ConstantProver{}
	}
	return &Verifier{mode: mode, prover: prover}
}

// VerifyProgram is the entry point: it mutates every function in prog that
// carries a non-empty contract.
func (v *Verifier) VerifyProgram(prog *mir.Program) {
	if !v.mode.IsEnabled() {
		return
	}
	for _, fn := range prog.Functions {
		v.verifyFunction(fn)
	}
}

func (v *Verifier) verifyFunction(fn *mir.MirFunction) {
	contract := fn.Contract
	if contract.IsEmpty() {
		return
	}

	old := v.snapshotOldValues(fn, contract.Ensures)
	v.insertPreconditionChecks(fn, contract.Requires)
	v.insertPostconditionChecks(fn, contract.Ensures, old)
}

// insertPreconditionChecks threads requires clauses through the entry
// block, chaining each inserted Assert's continuation into the next clause's
// insertion point so multiple requires clauses split the entry block in
// declaration order rather than all targeting block 0 directly.
func (v *Verifier) insertPreconditionChecks(fn *mir.MirFunction, requires []mir.ContractClause) {
	target := mir.EntryBlock
	for _, clause := range requires {
		if !v.shouldCheckClause(clause) {
			continue
		}
		target = v.insertAssertion(fn, target, clause, nil)
	}
}

// insertPostconditionChecks inserts ensures checks ahead of every Return
// terminator. ReturnBlocks is collected once before any insertion — mirrors
// the original's "collect function IDs to avoid borrow checker issues"
// comment, which applies just as much to ranging over a Go slice while
// mutating the function's block list mid-loop.
func (v *Verifier) insertPostconditionChecks(fn *mir.MirFunction, ensures []mir.ContractClause, old map[string]mir.Local) {
	if len(ensures) == 0 {
		return
	}
	for _, blockID := range fn.ReturnBlocks() {
		target := blockID
		for _, clause := range ensures {
			if !v.shouldCheckClause(clause) {
				continue
			}
			target = v.insertAssertion(fn, target, clause, old)
		}
	}
}

func (v *Verifier) shouldCheckClause(clause mir.ContractClause) bool {
	if !v.mode.ShouldInsertChecks() {
		return false
	}
	if v.mode.ShouldProveStatic() && v.prover.IsProvablyTrue(clause) {
		return false
	}
	return true
}

// insertAssertion lowers clause.Condition into the block at blockID (which
// may grow into several blocks if the condition contains a method call),
// then rewrites the final block's terminator into an Assert whose
// continuation block inherits whatever terminator blockID originally had.
// Returns that continuation block, so callers can chain further clauses.
func (v *Verifier) insertAssertion(fn *mir.MirFunction, blockID mir.BlockID, clause mir.ContractClause, old map[string]mir.Local) mir.BlockID {
	oldTerm := fn.Block(blockID).Terminator

	b := &builder{fn: fn, cur: blockID}
	cond := b.lowerExpr(clause.Condition, old)

	continueID := b.newBlock()
	b.block().Terminator = mir.Assert(cond, true, formatMessage(clause), continueID)
	fn.Block(continueID).Terminator = oldTerm
	return continueID
}

func formatMessage(clause mir.ContractClause) string {
	if clause.Message != "" {
		return fmt.Sprintf("%s violated: %s", clause.Kind, clause.Message)
	}
	return fmt.Sprintf("%s violated", clause.Kind)
}

// snapshotOldValues captures, at function entry, the pre-call value of
// every local an Ensures clause references via Old(name) — since without
// this, reading that local after the body runs would observe any mutation
// the body made to it rather than the value the caller passed in.
func (v *Verifier) snapshotOldValues(fn *mir.MirFunction, ensures []mir.ContractClause) map[string]mir.Local {
	names := collectOldNames(ensures)
	if len(names) == 0 {
		return nil
	}

	snap := make(map[string]mir.Local, len(names))
	var prelude []mir.Statement
	for _, name := range names {
		orig, ok := findLocalByName(fn, name)
		if !ok {
			continue
		}
		fresh := fn.NewLocal(fn.LocalTypes[orig], "$old$"+name)
		prelude = append(prelude, mir.Assign(mir.PlaceOf(fresh), mir.Rvalue{Kind: mir.RvUse, Use: mir.Copy(mir.PlaceOf(orig))}))
		snap[name] = fresh
	}
	entry := fn.Block(mir.EntryBlock)
	entry.Statements = append(prelude, entry.Statements...)
	return snap
}

func collectOldNames(clauses []mir.ContractClause) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(e mir.ContractExpr)
	walk = func(e mir.ContractExpr) {
		if e.Kind == mir.CEOld {
			if !seen[e.LocalName] {
				seen[e.LocalName] = true
				order = append(order, e.LocalName)
			}
			return
		}
		for _, o := range e.Operands {
			walk(o)
		}
		if e.Kind == mir.CEField {
			walk(e.FieldOf)
		}
		if e.Kind == mir.CEMethodCall {
			walk(e.Receiver)
			for _, a := range e.MethodArgs {
				walk(a)
			}
		}
	}
	for _, c := range clauses {
		walk(c.Condition)
	}
	sort.Strings(order)
	return order
}

func findLocalByName(fn *mir.MirFunction, name string) (mir.Local, bool) {
	for local, n := range fn.LocalNames {
		if n == name {
			return local, true
		}
	}
	return 0, false
}
