package mir

import (
	"fmt"
	"strings"
)

// Local is a dense integer index naming a stack slot within a function.
// Parameters occupy [0, numParams); everything after is a temporary or a
// named binding introduced during lowering.
type Local int

// ProjectionKind distinguishes the ways a Place can be extended beyond its
// base local.
type ProjectionKind int

const (
	ProjField ProjectionKind = iota
	ProjTupleIndex
	ProjArrayIndex // indexed by another Local holding the index
	ProjDeref
)

// Projection is one step of a Place's projection chain.
type Projection struct {
	Kind        ProjectionKind
	FieldName   string // ProjField
	TupleIndex  int    // ProjTupleIndex
	IndexLocal  Local  // ProjArrayIndex
}

// Place is an lvalue: a base local plus a chain of projections.
type Place struct {
	Base        Local
	Projections []Projection
}

// PlaceOf builds a bare Place referring to a local with no projections.
func PlaceOf(l Local) Place {
	return Place{Base: l}
}

// Field extends a place with a struct field projection.
func (p Place) Field(name string) Place {
	np := p.clone()
	np.Projections = append(np.Projections, Projection{Kind: ProjField, FieldName: name})
	return np
}

// TupleIndex extends a place with a tuple-element projection.
func (p Place) TupleIndex(i int) Place {
	np := p.clone()
	np.Projections = append(np.Projections, Projection{Kind: ProjTupleIndex, TupleIndex: i})
	return np
}

// Index extends a place with an array-index projection driven by another
// local.
func (p Place) Index(idx Local) Place {
	np := p.clone()
	np.Projections = append(np.Projections, Projection{Kind: ProjArrayIndex, IndexLocal: idx})
	return np
}

// Deref extends a place with a dereference projection.
func (p Place) Deref() Place {
	np := p.clone()
	np.Projections = append(np.Projections, Projection{Kind: ProjDeref})
	return np
}

func (p Place) clone() Place {
	np := Place{Base: p.Base, Projections: make([]Projection, len(p.Projections))}
	copy(np.Projections, p.Projections)
	return np
}

func (p Place) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "_%d", p.Base)
	for _, proj := range p.Projections {
		switch proj.Kind {
		case ProjField:
			b.WriteString("." + proj.FieldName)
		case ProjTupleIndex:
			fmt.Fprintf(&b, ".%d", proj.TupleIndex)
		case ProjArrayIndex:
			fmt.Fprintf(&b, "[_%d]", proj.IndexLocal)
		case ProjDeref:
			b.WriteString(".*")
		}
	}
	return b.String()
}

// OperandKind distinguishes the three ways a value can be read.
type OperandKind int

const (
	OpCopy OperandKind = iota
	OpMove
	OpConstant
)

// Constant is a compile-time-known value embedded directly in an Operand.
type Constant struct {
	Kind  ConstKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

type ConstKind int

const (
	ConstUnit ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

func (c Constant) String() string {
	switch c.Kind {
	case ConstUnit:
		return "()"
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "?"
	}
}

// Operand is a value read: Copy(place), Move(place), or Constant(c).
type Operand struct {
	Kind     OperandKind
	Place    Place
	Constant Constant
}

func Copy(p Place) Operand     { return Operand{Kind: OpCopy, Place: p} }
func Move(p Place) Operand     { return Operand{Kind: OpMove, Place: p} }
func ConstOp(c Constant) Operand { return Operand{Kind: OpConstant, Constant: c} }

func (o Operand) String() string {
	switch o.Kind {
	case OpCopy:
		return "copy " + o.Place.String()
	case OpMove:
		return "move " + o.Place.String()
	case OpConstant:
		return o.Constant.String()
	default:
		return "?"
	}
}
