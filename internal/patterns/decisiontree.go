package patterns

import (
	"fmt"
	"sort"

	"github.com/ariacc/ariac/internal/core"
	"github.com/ariacc/ariac/internal/mir"
	"github.com/ariacc/ariac/internal/mirlower"
)

// NodeKind distinguishes the three shapes a decision-tree node can take,
// grounded on internal/dtree's DecisionTree/LeafNode/FailNode/SwitchNode
// trio but extended with real field-access paths (pathStep) in place of
// dtree's bare []int column index, and with a FallThrough chain on leaves
// so a failed guard falls through to the next arm instead of re-testing
// the whole matrix from scratch.
type NodeKind int

const (
	NodeFail NodeKind = iota
	NodeLeaf
	NodeSwitch
)

// Binding records a pattern variable captured along the way to a leaf,
// together with the access path (relative to the match's scrutinee) whose
// runtime value it should be bound to.
type Binding struct {
	Name string
	Path accessPath
}

// TreeCase is one constructor arm of a Switch node.
type TreeCase struct {
	Ctor Constructor
	Next *Tree
}

// Tree is the compiled decision tree for a match expression: a shared,
// minimal sequence of constructor tests (as opposed to lowerMatchSequential's
// per-arm re-testing of every prior arm's pattern).
type Tree struct {
	Kind NodeKind

	// NodeSwitch
	Path    accessPath
	Cases   []TreeCase
	Default *Tree

	// NodeLeaf
	ArmIndex    int
	Guard       core.CoreExpr
	Body        core.CoreExpr
	Bindings    []Binding
	FallThrough *Tree // tried if Guard evaluates false
}

func (t *Tree) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case NodeFail:
		return "Fail"
	case NodeLeaf:
		return fmt.Sprintf("Leaf(arm=%d)", t.ArmIndex)
	default:
		return fmt.Sprintf("Switch(path=%v, cases=%d)", t.Path, len(t.Cases))
	}
}

// pathStep is one projection from the match's scrutinee down to the value a
// particular column's pattern tests.
type pathStep struct {
	kind  pathStepKind
	name  string // ctorField, recordField
	index int    // ctorField, tupleField, listElem
}

type pathStepKind int

const (
	stepCtorField pathStepKind = iota
	stepTupleField
	stepListElem
	stepRecordField
)

type accessPath []pathStep

func appendStep(path accessPath, step pathStep) accessPath {
	out := make(accessPath, len(path)+1)
	copy(out, path)
	out[len(path)] = step
	return out
}

// treeRow is one in-progress match arm during tree construction: pats/paths
// are column-parallel and shrink as columns resolve to bindings or expand
// into sub-fields; bindings accumulates across both.
type treeRow struct {
	pats     []Pattern
	paths    []accessPath
	bindings []Binding
	armIndex int
	guard    core.CoreExpr
	body     core.CoreExpr
}

// Build compiles a match's arms into a decision tree, grounded on
// internal/dtree's DecisionTreeCompiler.Compile but using patterns.Pattern
// (via FromCore) so tuple and or-pattern columns expand correctly.
func Build(arms []core.MatchArm) *Tree {
	rows := make([]treeRow, len(arms))
	for i, a := range arms {
		rows[i] = treeRow{
			pats:     []Pattern{FromCore(a.Pattern)},
			paths:    []accessPath{{}},
			armIndex: i,
			guard:    a.Guard,
			body:     a.Body,
		}
	}
	return optimize(compileMatrix(rows))
}

func allWildcardLike(pats []Pattern) bool {
	for _, p := range pats {
		if !p.IsWildcardLike() {
			return false
		}
	}
	return true
}

func firstNonWildcardColumn(pats []Pattern) int {
	for i, p := range pats {
		if !p.IsWildcardLike() {
			return i
		}
	}
	return 0
}

func collectBindings(pats []Pattern, paths []accessPath) []Binding {
	var out []Binding
	for i, p := range pats {
		if p.Kind == PatVar {
			out = append(out, Binding{Name: p.Name, Path: paths[i]})
		}
	}
	return out
}

func bindingFor(p Pattern, path accessPath) []Binding {
	if p.Kind == PatVar {
		return []Binding{{Name: p.Name, Path: path}}
	}
	return nil
}

func compileMatrix(rows []treeRow) *Tree {
	if len(rows) == 0 {
		return &Tree{Kind: NodeFail}
	}
	first := rows[0]
	if allWildcardLike(first.pats) {
		return &Tree{
			Kind:        NodeLeaf,
			ArmIndex:    first.armIndex,
			Guard:       first.guard,
			Body:        first.body,
			Bindings:    append(append([]Binding{}, first.bindings...), collectBindings(first.pats, first.paths)...),
			FallThrough: compileMatrix(rows[1:]),
		}
	}
	col := firstNonWildcardColumn(first.pats)
	return buildSwitch(rows, col)
}

func buildSwitch(rows []treeRow, col int) *Tree {
	var order []string
	ctorByKey := map[string]Constructor{}
	groups := map[string][]treeRow{}
	var defaultRows []treeRow

	addCtorRow := func(ctor Constructor, r treeRow) {
		key := ctor.String()
		if _, seen := ctorByKey[key]; !seen {
			ctorByKey[key] = ctor
			order = append(order, key)
		}
		groups[key] = append(groups[key], expandRow(r, col, ctor))
	}

	for _, r := range rows {
		p := r.pats[col]
		switch {
		case p.IsWildcardLike():
			defaultRows = append(defaultRows, r)
		case p.Kind == PatOr:
			for _, alt := range flattenOr(p) {
				r2 := r
				r2.pats = spliceOne(r.pats, col, alt)
				if alt.IsWildcardLike() {
					defaultRows = append(defaultRows, r2)
					continue
				}
				ctor, ok := patternConstructor(alt)
				if !ok {
					defaultRows = append(defaultRows, r2)
					continue
				}
				addCtorRow(ctor, r2)
			}
		default:
			ctor, ok := patternConstructor(p)
			if !ok {
				defaultRows = append(defaultRows, r)
				continue
			}
			addCtorRow(ctor, r)
		}
	}

	node := &Tree{Kind: NodeSwitch, Path: rows[0].paths[col]}
	for _, key := range order {
		ctor := ctorByKey[key]
		members := append(append([]treeRow{}, groups[key]...), expandDefaultsForCtor(defaultRows, col, ctor)...)
		node.Cases = append(node.Cases, TreeCase{Ctor: ctor, Next: compileMatrix(members)})
	}
	if len(defaultRows) > 0 {
		node.Default = compileMatrix(dropColumn(defaultRows, col))
	} else {
		node.Default = &Tree{Kind: NodeFail}
	}
	return node
}

func spliceOne(pats []Pattern, col int, replacement Pattern) []Pattern {
	out := make([]Pattern, len(pats))
	copy(out, pats)
	out[col] = replacement
	return out
}

func dropColumn(rows []treeRow, col int) []treeRow {
	out := make([]treeRow, len(rows))
	for i, r := range rows {
		b := append(append([]Binding{}, r.bindings...), bindingFor(r.pats[col], r.paths[col])...)
		out[i] = treeRow{
			pats:     append(append([]Pattern{}, r.pats[:col]...), r.pats[col+1:]...),
			paths:    append(append([]accessPath{}, r.paths[:col]...), r.paths[col+1:]...),
			bindings: b,
			armIndex: r.armIndex,
			guard:    r.guard,
			body:     r.body,
		}
	}
	return out
}

func expandRow(r treeRow, col int, ctor Constructor) treeRow {
	fields, fieldPaths := expandColumn(r.pats[col], r.paths[col], ctor)
	newPats := append(append(append([]Pattern{}, r.pats[:col]...), fields...), r.pats[col+1:]...)
	newPaths := append(append(append([]accessPath{}, r.paths[:col]...), fieldPaths...), r.paths[col+1:]...)
	return treeRow{pats: newPats, paths: newPaths, bindings: r.bindings, armIndex: r.armIndex, guard: r.guard, body: r.body}
}

func expandDefaultsForCtor(rows []treeRow, col int, ctor Constructor) []treeRow {
	out := make([]treeRow, len(rows))
	for i, r := range rows {
		add := bindingFor(r.pats[col], r.paths[col])
		fields, fieldPaths := expandColumn(Pattern{Kind: PatWildcard}, r.paths[col], ctor)
		newPats := append(append(append([]Pattern{}, r.pats[:col]...), fields...), r.pats[col+1:]...)
		newPaths := append(append(append([]accessPath{}, r.paths[:col]...), fieldPaths...), r.paths[col+1:]...)
		out[i] = treeRow{
			pats:     newPats,
			paths:    newPaths,
			bindings: append(append([]Binding{}, r.bindings...), add...),
			armIndex: r.armIndex, guard: r.guard, body: r.body,
		}
	}
	return out
}

// expandColumn returns the sub-patterns and sub-paths ctor's first column
// contributes — the tree-construction counterpart of matrix.go's
// fieldPatterns, extended to also thread real field-access paths.
func expandColumn(p Pattern, path accessPath, ctor Constructor) ([]Pattern, []accessPath) {
	switch p.Kind {
	case PatConstructor:
		paths := make([]accessPath, len(p.Fields))
		for i := range p.Fields {
			paths[i] = appendStep(path, pathStep{kind: stepCtorField, name: p.CtorName, index: i})
		}
		return p.Fields, paths
	case PatTuple:
		paths := make([]accessPath, len(p.Fields))
		for i := range p.Fields {
			paths[i] = appendStep(path, pathStep{kind: stepTupleField, index: i})
		}
		return p.Fields, paths
	case PatList:
		n := ctor.ListLen
		fields := make([]Pattern, n)
		copy(fields, p.Elements)
		for i := len(p.Elements); i < n; i++ {
			fields[i] = Pattern{Kind: PatWildcard}
		}
		paths := make([]accessPath, n)
		for i := 0; i < n; i++ {
			paths[i] = appendStep(path, pathStep{kind: stepListElem, index: i})
		}
		return fields, paths
	case PatRecord:
		var names []string
		for k := range p.RecordFields {
			names = append(names, k)
		}
		sort.Strings(names)
		fields := make([]Pattern, len(names))
		paths := make([]accessPath, len(names))
		for i, n := range names {
			fields[i] = p.RecordFields[n]
			paths[i] = appendStep(path, pathStep{kind: stepRecordField, name: n})
		}
		return fields, paths
	default:
		arity := ctorArity(ctor)
		fields := make([]Pattern, arity)
		paths := make([]accessPath, arity)
		for i := 0; i < arity; i++ {
			fields[i] = Pattern{Kind: PatWildcard}
			paths[i] = appendStep(path, genericFieldStep(ctor, i))
		}
		return fields, paths
	}
}

func genericFieldStep(ctor Constructor, i int) pathStep {
	switch ctor.Kind {
	case CtorVariant:
		return pathStep{kind: stepCtorField, name: ctor.Name, index: i}
	case CtorList:
		return pathStep{kind: stepListElem, index: i}
	default:
		return pathStep{kind: stepTupleField, index: i}
	}
}

// optimize merges a Switch whose every case lowers to the same trivial,
// unconditional, unbound leaf as its default into that default directly —
// the constructor test was discriminating between outcomes that turned out
// identical. A conservative pass: it never merges a guarded or
// variable-binding leaf, since those carry behavior the merge would erase.
func optimize(t *Tree) *Tree {
	if t == nil {
		return t
	}
	switch t.Kind {
	case NodeSwitch:
		for i := range t.Cases {
			t.Cases[i].Next = optimize(t.Cases[i].Next)
		}
		t.Default = optimize(t.Default)
		if allCasesMatchDefault(t) {
			return t.Default
		}
		return t
	case NodeLeaf:
		t.FallThrough = optimize(t.FallThrough)
		return t
	default:
		return t
	}
}

func allCasesMatchDefault(t *Tree) bool {
	if t.Default == nil || len(t.Cases) == 0 {
		return false
	}
	for _, c := range t.Cases {
		if !sameTrivialOutcome(c.Next, t.Default) {
			return false
		}
	}
	return true
}

func sameTrivialOutcome(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != NodeLeaf || b.Kind != NodeLeaf {
		return false
	}
	return a.ArmIndex == b.ArmIndex && a.Guard == nil && b.Guard == nil &&
		len(a.Bindings) == 0 && len(b.Bindings) == 0
}

// Compiler implements mirlower.DecisionCompiler, lowering a match directly
// into a shared decision tree's worth of MIR terminators instead of
// mirlower's naive sequential per-arm fallback.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) LowerMatch(lw *mirlower.Lowerer, scrutinee mir.Operand, arms []core.MatchArm) mir.Operand {
	tree := Build(arms)
	result := lw.NewLocal(mir.Type{}, "")
	mergeID := lw.NewBlock()

	lowerNode(lw, tree, scrutinee, mergeID, result)

	lw.SetCurrentBlock(mergeID)
	return mir.Copy(mir.PlaceOf(result))
}

func lowerNode(lw *mirlower.Lowerer, node *Tree, root mir.Operand, mergeID mir.BlockID, result mir.Local) {
	switch node.Kind {
	case NodeFail:
		lw.Block().Terminator = mir.Unreachable()

	case NodeLeaf:
		lw.PushScope()
		for _, b := range node.Bindings {
			val := resolvePath(lw, root, b.Path)
			local := lw.NewLocal(mir.Type{}, b.Name)
			lw.Block().Push(mir.Assign(mir.PlaceOf(local), mir.Rvalue{Kind: mir.RvUse, Use: val}))
			lw.Bind(b.Name, local)
		}
		if node.Guard != nil {
			guardCond := lw.LowerExpr(node.Guard)
			okID := lw.NewBlock()
			failID := lw.NewBlock()
			lw.Block().Terminator = mir.SwitchInt(guardCond, []mir.SwitchCase{{Value: 1, Target: okID}}, failID)

			lw.SetCurrentBlock(okID)
			bodyVal := lw.LowerExpr(node.Body)
			lw.Block().Push(mir.Assign(mir.PlaceOf(result), mir.Rvalue{Kind: mir.RvUse, Use: bodyVal}))
			lw.Block().Terminator = mir.Goto(mergeID)
			lw.PopScope()

			lw.SetCurrentBlock(failID)
			lowerNode(lw, node.FallThrough, root, mergeID, result)
			return
		}
		bodyVal := lw.LowerExpr(node.Body)
		lw.Block().Push(mir.Assign(mir.PlaceOf(result), mir.Rvalue{Kind: mir.RvUse, Use: bodyVal}))
		lw.Block().Terminator = mir.Goto(mergeID)
		lw.PopScope()

	case NodeSwitch:
		// MIR's SwitchInt only branches on a single scalar, so an n-way
		// constructor switch lowers to a cascade of pairwise discriminant
		// tests rather than one jump table — it still shares the scrutinee
		// projection and tests each constructor only once, unlike the
		// sequential fallback which re-tests every earlier arm's pattern on
		// every later arm.
		for _, cs := range node.Cases {
			cond := testConstructor(lw, root, node.Path, cs.Ctor)
			matchID := lw.NewBlock()
			nextID := lw.NewBlock()
			lw.Block().Terminator = mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: matchID}}, nextID)

			lw.SetCurrentBlock(matchID)
			lowerNode(lw, cs.Next, root, mergeID, result)

			lw.SetCurrentBlock(nextID)
		}
		lowerNode(lw, node.Default, root, mergeID, result)
	}
}

// resolvePath projects root down through path's field accesses to the MIR
// place a column's pattern actually tests. Constant operands have no place
// to project into; pattern-typed constants only arise from literal
// scrutinees, which can't carry constructor shape, so the path is simply
// left unresolved in that case (mirrors match.go's lowerPatternTest guard).
func resolvePath(lw *mirlower.Lowerer, root mir.Operand, path accessPath) mir.Operand {
	op := root
	for _, step := range path {
		if op.Kind == mir.OpConstant {
			return op
		}
		switch step.kind {
		case stepCtorField:
			op = mir.Copy(op.Place.Field(step.name).TupleIndex(step.index))
		case stepTupleField:
			op = mir.Copy(op.Place.TupleIndex(step.index))
		case stepListElem:
			op = mir.Copy(op.Place.Index(lw.IndexLocal(step.index)))
		case stepRecordField:
			op = mir.Copy(op.Place.Field(step.name))
		}
	}
	return op
}

// testConstructor builds the bool operand testing whether the value at path
// (relative to root) matches ctor. Tuple patterns always pass (their shape
// is guaranteed by the type checker, not tested at runtime); list-length
// testing is a known simplification left for internal/codegen's runtime
// representation to refine, matching the scope lowerPatternTest's
// ListPattern case already settled for in internal/mirlower.
func testConstructor(lw *mirlower.Lowerer, root mir.Operand, path accessPath, ctor Constructor) mir.Operand {
	val := resolvePath(lw, root, path)
	switch ctor.Kind {
	case CtorBool:
		return lw.BindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind: mir.RvBinOp, BinOp: mir.BinEq, Lhs: val,
			Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: ctor.BoolValue}),
		})
	case CtorInt:
		return lw.BindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind: mir.RvBinOp, BinOp: mir.BinEq, Lhs: val,
			Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstInt, Int: ctor.IntValue}),
		})
	case CtorFloat:
		return lw.BindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind: mir.RvBinOp, BinOp: mir.BinEq, Lhs: val,
			Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstFloat, Float: ctor.FloatValue}),
		})
	case CtorString:
		return lw.BindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind: mir.RvBinOp, BinOp: mir.BinEq, Lhs: val,
			Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: ctor.StringValue}),
		})
	case CtorVariant:
		if val.Kind == mir.OpConstant {
			return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: false})
		}
		return lw.BindTemp(mir.Type{Kind: mir.TBool}, mir.Rvalue{
			Kind: mir.RvBinOp, BinOp: mir.BinEq, Lhs: mir.Copy(val.Place.Field("$tag")),
			Rhs: mir.ConstOp(mir.Constant{Kind: mir.ConstString, Str: ctor.Name}),
		})
	default: // CtorTuple, CtorList: shape guaranteed by the type checker
		return mir.ConstOp(mir.Constant{Kind: mir.ConstBool, Bool: true})
	}
}
