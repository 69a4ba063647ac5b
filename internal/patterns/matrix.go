package patterns

// PatternRow is one row of a pattern matrix: a sequence of column patterns
// (all but the first are introduced by specialization) plus the original
// match-arm index it traces back to, for reporting unreachable arms.
type PatternRow struct {
	Columns []Pattern
	ArmIndex int
}

// PatternMatrix is the working set of rows a usefulness query operates
// over — renamed from the Rust original's bare Vec<PatternRow> to a named
// type since Go usefulness.go's recursion passes it around by value a lot
// and a named type reads better at call sites than [][]Pattern.
type PatternMatrix struct {
	Rows []PatternRow
}

func NewMatrix(rows []PatternRow) PatternMatrix {
	return PatternMatrix{Rows: rows}
}

// firstColumnCtor returns the constructor a row's first column tests, or
// (Constructor{}, false) if that column is a wildcard/variable (contributes
// no constructor information) or the row has no columns left.
func firstColumnCtor(row PatternRow) (Constructor, bool) {
	if len(row.Columns) == 0 {
		return Constructor{}, false
	}
	return patternConstructor(row.Columns[0])
}

func patternConstructor(p Pattern) (Constructor, bool) {
	switch p.Kind {
	case PatLiteral:
		return literalConstructor(p.Literal), true
	case PatConstructor:
		return Constructor{Kind: CtorVariant, Name: p.CtorName, Arity: len(p.Fields)}, true
	case PatTuple:
		return Constructor{Kind: CtorTuple, Arity: len(p.Fields)}, true
	case PatList:
		return Constructor{Kind: CtorList, ListLen: len(p.Elements), ListHasTail: p.Tail != nil}, true
	default:
		return Constructor{}, false
	}
}

func literalConstructor(v interface{}) Constructor {
	switch val := v.(type) {
	case bool:
		return Constructor{Kind: CtorBool, BoolValue: val}
	case int:
		return Constructor{Kind: CtorInt, IntValue: int64(val)}
	case int64:
		return Constructor{Kind: CtorInt, IntValue: val}
	case float64:
		return Constructor{Kind: CtorFloat, FloatValue: val}
	case string:
		return Constructor{Kind: CtorString, StringValue: val}
	default:
		return Constructor{Kind: CtorWildcard}
	}
}

// fieldPatterns returns the sub-patterns ctor's first column contributes to
// specialization: a constructor-pattern row matching ctor expands to its
// field patterns, a wildcard/variable row expands to ctor.Arity wildcards
// (the standard Maranget specialization rule — a variable binds the whole
// scrutinee and is compatible with every constructor).
func fieldPatterns(p Pattern, ctor Constructor) []Pattern {
	switch p.Kind {
	case PatConstructor, PatTuple:
		return p.Fields
	case PatList:
		out := append([]Pattern{}, p.Elements...)
		for len(out) < ctor.ListLen {
			out = append(out, Pattern{Kind: PatWildcard})
		}
		return out
	default:
		arity := ctorArity(ctor)
		out := make([]Pattern, arity)
		for i := range out {
			out[i] = Pattern{Kind: PatWildcard}
		}
		return out
	}
}

func ctorArity(c Constructor) int {
	switch c.Kind {
	case CtorVariant:
		return c.Arity
	case CtorTuple:
		return c.Arity
	case CtorList:
		return c.ListLen
	default:
		return 0
	}
}

// specialize filters rows to those compatible with ctor in column 0
// (an exact constructor match, or a wildcard/variable), replacing that
// column with its field sub-patterns prepended to the row's remaining
// columns. This is the D(c, M) operation from Maranget's paper.
func specialize(rows []PatternRow, ctor Constructor) []PatternRow {
	var out []PatternRow
	for _, row := range rows {
		if len(row.Columns) == 0 {
			continue
		}
		head := row.Columns[0]
		rowCtor, hasCtor := patternConstructor(head)
		if hasCtor && !rowCtor.Equal(ctor) {
			continue
		}
		if head.Kind == PatOr {
			for _, alt := range head.Alternatives {
				altCtor, altHas := patternConstructor(alt)
				if altHas && !altCtor.Equal(ctor) {
					continue
				}
				newCols := append(append([]Pattern{}, fieldPatterns(alt, ctor)...), row.Columns[1:]...)
				out = append(out, PatternRow{Columns: newCols, ArmIndex: row.ArmIndex})
			}
			continue
		}
		newCols := append(append([]Pattern{}, fieldPatterns(head, ctor)...), row.Columns[1:]...)
		out = append(out, PatternRow{Columns: newCols, ArmIndex: row.ArmIndex})
	}
	return out
}

// defaultMatrix is Maranget's D(M) default-matrix operation: rows whose
// first column is a wildcard/variable, with that column dropped — the
// rows that remain relevant once every named constructor has its own
// specialized branch.
func defaultMatrix(rows []PatternRow) []PatternRow {
	var out []PatternRow
	for _, row := range rows {
		if len(row.Columns) == 0 {
			continue
		}
		head := row.Columns[0]
		switch {
		case head.IsWildcardLike():
			out = append(out, PatternRow{Columns: row.Columns[1:], ArmIndex: row.ArmIndex})
		case head.Kind == PatOr:
			for _, alt := range head.Alternatives {
				if alt.IsWildcardLike() {
					out = append(out, PatternRow{Columns: row.Columns[1:], ArmIndex: row.ArmIndex})
				}
			}
		}
	}
	return out
}

// columnConstructors collects every distinct constructor the matrix's
// first column observes (ignoring wildcards), expanding or-patterns.
func columnConstructors(rows []PatternRow) []Constructor {
	seen := map[string]Constructor{}
	var order []string
	for _, row := range rows {
		if len(row.Columns) == 0 {
			continue
		}
		for _, p := range flattenOr(row.Columns[0]) {
			if c, ok := patternConstructor(p); ok {
				key := c.String()
				if _, dup := seen[key]; !dup {
					seen[key] = c
					order = append(order, key)
				}
			}
		}
	}
	out := make([]Constructor, len(order))
	for i, k := range order {
		out[i] = seen[k]
	}
	return out
}

func flattenOr(p Pattern) []Pattern {
	if p.Kind != PatOr {
		return []Pattern{p}
	}
	var out []Pattern
	for _, alt := range p.Alternatives {
		out = append(out, flattenOr(alt)...)
	}
	return out
}
