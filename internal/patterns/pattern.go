// Package patterns implements the pattern-matching compiler: usefulness and
// exhaustiveness checking (Maranget's algorithm), or-pattern expansion, and
// decision-tree lowering with a merge/fold optimization pass. It supersedes
// internal/dtree's simpler single-column compiler for match expressions
// that need exhaustiveness diagnostics, not just dispatch.
package patterns

import "github.com/ariacc/ariac/internal/core"

// PatternKind distinguishes the shapes a Pattern can take. It is a strict
// superset of core.CorePattern's variants: it additionally models or-
// patterns and tuples, neither of which internal/core's CorePattern
// interface carries a dedicated node for.
type PatternKind int

const (
	PatWildcard PatternKind = iota
	PatVar
	PatLiteral
	PatConstructor
	PatTuple
	PatList
	PatRecord
	PatOr
)

// Pattern is the pattern compiler's own flat representation, richer than
// core.CorePattern so it can express or-patterns and fixed-arity tuples
// that the teacher's Core IR has no node for.
type Pattern struct {
	Kind PatternKind

	// PatVar
	Name string

	// PatLiteral
	Literal interface{}

	// PatConstructor
	CtorName string
	Fields   []Pattern // PatConstructor args, PatTuple elements

	// PatList
	Elements []Pattern
	Tail     *Pattern // nil unless the list pattern has a "...rest" tail

	// PatRecord
	RecordFields map[string]Pattern

	// PatOr
	Alternatives []Pattern
}

// FromCore translates a core.CorePattern into the compiler's own Pattern
// representation. Or-patterns have no core.CorePattern node (the teacher's
// Core IR predates that surface feature) so they never arise from this
// path; ExpandSurfaceOr below is the entry point for patterns built
// directly by a future or-pattern-aware elaborator.
func FromCore(p core.CorePattern) Pattern {
	switch pat := p.(type) {
	case *core.WildcardPattern:
		return Pattern{Kind: PatWildcard}
	case *core.VarPattern:
		return Pattern{Kind: PatVar, Name: pat.Name}
	case *core.LitPattern:
		return Pattern{Kind: PatLiteral, Literal: pat.Value}
	case *core.ConstructorPattern:
		fields := make([]Pattern, len(pat.Args))
		for i, a := range pat.Args {
			fields[i] = FromCore(a)
		}
		return Pattern{Kind: PatConstructor, CtorName: pat.Name, Fields: fields}
	case *core.ListPattern:
		elems := make([]Pattern, len(pat.Elements))
		for i, e := range pat.Elements {
			elems[i] = FromCore(e)
		}
		var tail *Pattern
		if pat.Tail != nil {
			t := FromCore(*pat.Tail)
			tail = &t
		}
		return Pattern{Kind: PatList, Elements: elems, Tail: tail}
	case *core.RecordPattern:
		fields := make(map[string]Pattern, len(pat.Fields))
		for name, sub := range pat.Fields {
			fields[name] = FromCore(sub)
		}
		return Pattern{Kind: PatRecord, RecordFields: fields}
	default:
		return Pattern{Kind: PatWildcard}
	}
}

// IsWildcardLike reports whether p matches anything without inspecting the
// scrutinee (the "default row" test used throughout exhaustiveness
// checking and decision-tree leaf detection).
func (p Pattern) IsWildcardLike() bool {
	return p.Kind == PatWildcard || p.Kind == PatVar
}

// BoundNames returns every variable name p binds, for scope construction
// when a pattern's test succeeds.
func (p Pattern) BoundNames() []string {
	switch p.Kind {
	case PatVar:
		return []string{p.Name}
	case PatConstructor, PatTuple:
		var names []string
		for _, f := range p.Fields {
			names = append(names, f.BoundNames()...)
		}
		return names
	case PatList:
		var names []string
		for _, e := range p.Elements {
			names = append(names, e.BoundNames()...)
		}
		if p.Tail != nil {
			names = append(names, p.Tail.BoundNames()...)
		}
		return names
	case PatRecord:
		var names []string
		for _, f := range p.RecordFields {
			names = append(names, f.BoundNames()...)
		}
		return names
	default:
		return nil
	}
}
