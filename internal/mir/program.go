package mir

// FunctionID names a function within a MirProgram.
type FunctionID int

// StructShape declares the field names and types of a struct type known to
// the program.
type StructShape struct {
	Name   string
	Fields []string
	Types  []Type
}

// EnumVariantShape declares one variant of an enum.
type EnumVariantShape struct {
	Name   string
	Fields []Type
}

// EnumShape declares the variants of an enum type known to the program.
type EnumShape struct {
	Name     string
	Variants []EnumVariantShape
}

// Program owns every function compiled in a single build, a string
// interning table (string constants referenced by the code generator get a
// stable symbol), and the struct/enum shape registry the pattern compiler
// and code generator both consult when lowering constructors and field
// projections.
type Program struct {
	Functions   []*MirFunction
	FunctionIDs map[string]FunctionID
	Structs     map[string]StructShape
	Enums       map[string]EnumShape
	strings     []string
	stringIDs   map[string]int
}

func NewProgram() *Program {
	return &Program{
		FunctionIDs: make(map[string]FunctionID),
		Structs:     make(map[string]StructShape),
		Enums:       make(map[string]EnumShape),
		stringIDs:   make(map[string]int),
	}
}

// AddFunction registers a function, returning its FunctionID.
func (p *Program) AddFunction(f *MirFunction) FunctionID {
	id := FunctionID(len(p.Functions))
	p.Functions = append(p.Functions, f)
	p.FunctionIDs[f.Name] = id
	return id
}

func (p *Program) Function(id FunctionID) *MirFunction {
	return p.Functions[id]
}

func (p *Program) FunctionByName(name string) (*MirFunction, bool) {
	id, ok := p.FunctionIDs[name]
	if !ok {
		return nil, false
	}
	return p.Functions[id], true
}

// InternString returns a stable, deduplicated handle for a string
// constant. The code generator emits one auxiliary symbol per distinct
// interned string.
func (p *Program) InternString(s string) int {
	if id, ok := p.stringIDs[s]; ok {
		return id
	}
	id := len(p.strings)
	p.strings = append(p.strings, s)
	p.stringIDs[s] = id
	return id
}

func (p *Program) Strings() []string {
	return p.strings
}

func (p *Program) AddStruct(s StructShape) {
	p.Structs[s.Name] = s
}

func (p *Program) AddEnum(e EnumShape) {
	p.Enums[e.Name] = e
}
