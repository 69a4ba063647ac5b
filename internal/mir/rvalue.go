package mir

import "fmt"

// RvalueKind distinguishes the value-producing computations that carry no
// control flow.
type RvalueKind int

const (
	RvUse RvalueKind = iota
	RvBinOp
	RvUnOp
	RvCast
	RvAggregate
	RvRef
	RvLen
)

type BinOpKind int

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

type UnOpKind int

const (
	UnNeg UnOpKind = iota
	UnNot
)

// AggregateKind distinguishes the shapes Rvalue::Aggregate can build.
type AggregateKind int

const (
	AggTuple AggregateKind = iota
	AggArray
	AggStruct
	AggEnumVariant
)

// Rvalue is a computation producing a value without control flow.
type Rvalue struct {
	Kind RvalueKind

	// RvUse
	Use Operand

	// RvBinOp
	BinOp BinOpKind
	Lhs   Operand
	Rhs   Operand

	// RvUnOp
	UnOp   UnOpKind
	Operand Operand

	// RvCast
	CastTo Type

	// RvAggregate
	Aggregate     AggregateKind
	StructName    string
	VariantName   string
	VariantIndex  int
	Elements      []Operand

	// RvRef
	RefTo Place

	// RvLen
	LenOf Place
}

func (r Rvalue) String() string {
	switch r.Kind {
	case RvUse:
		return r.Use.String()
	case RvBinOp:
		return fmt.Sprintf("%s %v %s", r.Lhs, r.BinOp, r.Rhs)
	case RvUnOp:
		return fmt.Sprintf("%v %s", r.UnOp, r.Operand)
	case RvCast:
		return fmt.Sprintf("cast(%s) as %s", r.Use, r.CastTo)
	case RvAggregate:
		return fmt.Sprintf("aggregate(%v, %d elems)", r.Aggregate, len(r.Elements))
	case RvRef:
		return "ref " + r.RefTo.String()
	case RvLen:
		return "len " + r.LenOf.String()
	default:
		return "?"
	}
}

func (k BinOpKind) String() string {
	switch k {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	default:
		return "?"
	}
}

func (k UnOpKind) String() string {
	switch k {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	default:
		return "?"
	}
}
