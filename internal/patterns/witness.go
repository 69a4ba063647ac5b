package patterns

import "strings"

// Witness is a concrete value shape demonstrating why a match is not
// exhaustive: a constructor plus, recursively, a witness for each of its
// fields. Grounded on the Rust original's Witness{ctor, fields}
// (aria-patterns/src/witness.rs).
type Witness struct {
	Ctor   Constructor
	Fields []Witness
}

// NewWildcardWitness builds the trivial witness "anything" — used as the
// seed witness for the root column of a usefulness query.
func NewWildcardWitness() Witness {
	return Witness{Ctor: Constructor{Kind: CtorWildcard}}
}

// Prepend wraps w as the first field of a new witness headed by ctor,
// consuming the next arity-1 witnesses from rest to fill ctor's remaining
// fields. Mirrors the Rust original's Witness::prepend, used while
// unwinding the usefulness recursion back up through a specialized column.
func (w Witness) Prepend(ctor Constructor, rest []Witness) Witness {
	fields := append([]Witness{w}, rest...)
	return Witness{Ctor: ctor, Fields: fields}
}

// PopField removes and returns the first field witness, along with the
// remaining witness with that field stripped — the inverse operation used
// when descending into a constructor's sub-columns.
func (w Witness) PopField() (Witness, []Witness) {
	if len(w.Fields) == 0 {
		return NewWildcardWitness(), nil
	}
	return w.Fields[0], w.Fields[1:]
}

// String renders a witness as a pattern, e.g. "Some(_)" or "[1, _, ...]".
func (w Witness) String() string {
	return w.ToPatternString()
}

func (w Witness) ToPatternString() string {
	switch w.Ctor.Kind {
	case CtorWildcard:
		return "_"
	case CtorBool, CtorInt, CtorFloat, CtorString:
		return w.Ctor.String()
	case CtorVariant:
		if len(w.Fields) == 0 {
			return w.Ctor.Name
		}
		parts := make([]string, len(w.Fields))
		for i, f := range w.Fields {
			parts[i] = f.ToPatternString()
		}
		return w.Ctor.Name + "(" + strings.Join(parts, ", ") + ")"
	case CtorTuple:
		parts := make([]string, len(w.Fields))
		for i, f := range w.Fields {
			parts[i] = f.ToPatternString()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case CtorList:
		parts := make([]string, len(w.Fields))
		for i, f := range w.Fields {
			parts[i] = f.ToPatternString()
		}
		if w.Ctor.ListHasTail {
			parts = append(parts, "...")
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}
