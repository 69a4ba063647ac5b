package patterns

import "fmt"

// ConstructorKind distinguishes the finite vocabulary of constructors a
// scrutinee's type can present, grounded on the Rust original's
// Constructor enum (aria-patterns/src/constructor.rs): a type either has a
// small closed set of named variants (enums, bools), an open/infinite
// domain tested by literal equality (ints, strings, floats), or a single
// fixed-arity shape (tuples, records).
type ConstructorKind int

const (
	CtorWildcard ConstructorKind = iota // the catch-all "_" constructor
	CtorBool
	CtorInt
	CtorFloat
	CtorString
	CtorVariant // a named enum/struct-like constructor with known arity
	CtorTuple
	CtorList // a list pattern of a specific length, optionally open-tailed
)

// Constructor is one concrete shape a value of some type can take.
type Constructor struct {
	Kind ConstructorKind

	BoolValue bool
	IntValue  int64
	FloatValue float64
	StringValue string

	Name  string // CtorVariant
	Arity int     // CtorVariant, CtorTuple

	ListLen    int  // CtorList
	ListHasTail bool // CtorList: true if this is "at least ListLen" rather than exact
}

func (c Constructor) String() string {
	switch c.Kind {
	case CtorWildcard:
		return "_"
	case CtorBool:
		return fmt.Sprintf("%t", c.BoolValue)
	case CtorInt:
		return fmt.Sprintf("%d", c.IntValue)
	case CtorFloat:
		return fmt.Sprintf("%g", c.FloatValue)
	case CtorString:
		return fmt.Sprintf("%q", c.StringValue)
	case CtorVariant:
		return c.Name
	case CtorTuple:
		return fmt.Sprintf("tuple/%d", c.Arity)
	case CtorList:
		if c.ListHasTail {
			return fmt.Sprintf("list[%d..]", c.ListLen)
		}
		return fmt.Sprintf("list[%d]", c.ListLen)
	default:
		return "?"
	}
}

// Equal reports whether two constructors identify the same concrete shape.
func (c Constructor) Equal(other Constructor) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case CtorBool:
		return c.BoolValue == other.BoolValue
	case CtorInt:
		return c.IntValue == other.IntValue
	case CtorFloat:
		return c.FloatValue == other.FloatValue
	case CtorString:
		return c.StringValue == other.StringValue
	case CtorVariant:
		return c.Name == other.Name
	case CtorTuple:
		return c.Arity == other.Arity
	case CtorList:
		return c.ListLen == other.ListLen && c.ListHasTail == other.ListHasTail
	default:
		return true // CtorWildcard
	}
}

// TypeInfo describes the finite constructor vocabulary of a scrutinee's
// type, supplied by the caller (the elaborator/type checker owns type
// identity; internal/patterns stays decoupled from internal/types the same
// way internal/modgraph stays decoupled from internal/ast).
type TypeInfo struct {
	// IsEnum is true for a closed sum type: Variants lists every
	// constructor name and its field arity, and the constructor set is
	// exhaustive exactly when every named variant is covered.
	IsEnum   bool
	Variants []VariantInfo

	// IsBool marks the two-element {true, false} constructor set.
	IsBool bool

	// Otherwise (int/float/string/open-ended types) the constructor domain
	// is treated as infinite: only a wildcard/variable pattern can make the
	// match exhaustive.
}

type VariantInfo struct {
	Name  string
	Arity int
}

// ConstructorSet computes exhaustiveness facts for a column of observed
// constructors against a scrutinee's TypeInfo, grounded on the Rust
// original's ConstructorSet::for_type/missing/is_exhaustive.
type ConstructorSet struct {
	ty       TypeInfo
	observed map[string]Constructor // keyed by Constructor.String()
}

func NewConstructorSet(ty TypeInfo) *ConstructorSet {
	return &ConstructorSet{ty: ty, observed: map[string]Constructor{}}
}

func (cs *ConstructorSet) Observe(c Constructor) {
	cs.observed[c.String()] = c
}

// AllConstructors returns every constructor the type could present, or nil
// if the domain is open-ended (ints/floats/strings without an enum shape).
func (cs *ConstructorSet) AllConstructors() []Constructor {
	switch {
	case cs.ty.IsBool:
		return []Constructor{{Kind: CtorBool, BoolValue: false}, {Kind: CtorBool, BoolValue: true}}
	case cs.ty.IsEnum:
		out := make([]Constructor, len(cs.ty.Variants))
		for i, v := range cs.ty.Variants {
			out[i] = Constructor{Kind: CtorVariant, Name: v.Name, Arity: v.Arity}
		}
		return out
	default:
		return nil
	}
}

// Missing returns the constructors AllConstructors lists that are absent
// from the observed set — the witnesses a non-exhaustive match is missing.
// Returns (nil, false) when the domain is open-ended: in that case
// exhaustiveness can only be achieved by a wildcard, never enumeration.
func (cs *ConstructorSet) Missing() ([]Constructor, bool) {
	all := cs.AllConstructors()
	if all == nil {
		return nil, false
	}
	var missing []Constructor
	for _, c := range all {
		if _, ok := cs.observed[c.String()]; !ok {
			missing = append(missing, c)
		}
	}
	return missing, true
}

// IsExhaustive reports whether the observed constructors (together with
// whether a wildcard/variable row is present, tracked separately by the
// caller) fully cover the type's constructor domain.
func (cs *ConstructorSet) IsExhaustive(hasWildcardRow bool) bool {
	if hasWildcardRow {
		return true
	}
	missing, closed := cs.Missing()
	return closed && len(missing) == 0
}
