package contracts

import "github.com/ariacc/ariac/internal/mir"

// RangeProver attempts to discharge a contract clause statically, so
// Release mode can skip the runtime Assert entirely when it can. Grounded
// on the Rust original's RangeAnalysis, which is itself a stub
// ("placeholder for more sophisticated static analysis" — analyze and
// prove_condition are both left as TODO in aria-mir/contract_verifier.rs).
//
// This interface exists so a real range/interval analysis can be dropped in
// later without touching Verifier; ConstantProver below is the only
// implementation shipped here, matching the scope of the original it's
// grounded on rather than inventing range reasoning that has no reference
// to be grounded against.
type RangeProver interface {
	IsProvablyTrue(clause mir.ContractClause) bool
}

// ConstantProver recognizes only a literal Constant(true) condition,
// mirroring is_provably_true's own "For now, only handle constant true
// expressions" scope exactly.
type ConstantProver struct{}

func (ConstantProver) IsProvablyTrue(clause mir.ContractClause) bool {
	return clause.Condition.Kind == mir.CEBool && clause.Condition.BoolValue
}
