package codegen

// Module is a self-contained object module: the struct-based stand-in for
// a relocatable object file this port emits in place of literal machine
// code (see the package doc and DESIGN.md for why — no retrieved example
// repo exposes Cranelift/LLVM bindings or any other native-codegen
// library). It carries everything a real object file would: an exported
// symbol per public function, an auxiliary symbol per interned string
// constant, and enough per-function metadata (stack layout, instruction
// list) that a hypothetical linker stage could still consume it.
type Module struct {
	Functions []*FunctionObject
	Strings   []StringSymbol
}

// StringSymbol is an auxiliary read-only data symbol backing one interned
// string constant, addressed by the index Program.InternString returned.
type StringSymbol struct {
	Symbol string
	Value  string
}

// StackSlot describes one Local's assigned storage: either a register
// class (for value types that fit in one) or a stack offset otherwise.
type StackSlot struct {
	Local    int
	Kind     TargetKind
	InReg    bool
	RegClass string // "int" or "float", set only when InReg
	Offset   uint32 // byte offset from the frame base, set only when !InReg
}

// FunctionObject is one function's lowered form: its exported symbol name,
// its stack frame layout, and a straight-line instruction list per basic
// block standing in for the actual encoded machine instructions.
type FunctionObject struct {
	Symbol    string
	Exported  bool
	FrameSize uint32
	Slots     []StackSlot
	Blocks    []InstrBlock
}

// InstrBlock is one lowered basic block: its straight-line body followed
// by exactly one control transfer, mirroring MIR's own BasicBlock shape
// one level further down the pipeline.
type InstrBlock struct {
	Instrs   []Instr
	Transfer Transfer
}

// InstrOp distinguishes the straight-line instruction forms a statement
// lowers to.
type InstrOp int

const (
	OpMove InstrOp = iota
	OpLoadConst
	OpBinOp
	OpUnOp
	OpCast
	OpLoadField
	OpStoreField
	OpLoadIndex
	OpStoreIndex
	OpMakeAggregate
	OpAddrOf
	OpLen
)

// Instr is one straight-line target instruction operating on stack slots
// (by Local index) and immediate constants.
type Instr struct {
	Op          InstrOp
	Dest        int // Local
	Src         int // Local, -1 if unused
	Src2        int // Local, -1 if unused
	ImmBool     bool
	ImmInt      int64
	ImmFloat    float64
	ImmString   string
	BinOp       string // mnemonic, e.g. "iadd", "fcmp_gt"
	UnOp        string
	FieldName   string
	TupleIndex  int
	IndexLocal  int
	CastTo      TargetKind
	AggregateOf string // struct/variant name, when OpMakeAggregate
	Elements    []int  // element Locals, when OpMakeAggregate
}

// TransferOp distinguishes the control-transfer forms a terminator lowers
// to.
type TransferOp int

const (
	XJump TransferOp = iota
	XBranch
	XSwitch
	XCallRuntimePanic
	XCall
	XReturn
	XUnreachable
)

// Transfer is the single control-transfer instruction ending an
// InstrBlock, mirroring the original's terminator-to-jump/branch/call/trap
// lowering.
type Transfer struct {
	Op       TransferOp
	Cond     int     // Local holding the branch/switch condition, -1 if unused
	Values   []int64 // XSwitch case values, parallel to Targets
	Targets  []int
	Default  int
	Callee   string
	Args     []int
	Dest     int
	PanicMsg string
}
