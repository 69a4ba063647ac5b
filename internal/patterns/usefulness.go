package patterns

// IsUseful implements Maranget's usefulness algorithm U(matrix, row): row is
// useful against matrix if there exists a value the row matches that no
// row already in matrix matches. Grounded on the Rust original's
// is_useful/is_useful_impl (aria-patterns/src/usefulness.rs), adapted to
// thread a per-column TypeInfo lookup since Go's patterns package has no
// type checker of its own.
//
// typeOf supplies the TypeInfo for the scrutinee type of column i of the
// *original* row (columns shrink as the recursion specializes, so typeOf is
// indexed by the recursion depth, i.e. how many columns have been consumed
// so far — callers building a single-column top-level match pass a
// function that ignores its argument and always returns the scrutinee's
// type).
func IsUseful(matrix PatternMatrix, row PatternRow, typeOf func(depth int) TypeInfo) (bool, []Witness) {
	return isUsefulImpl(matrix.Rows, row.Columns, typeOf, 0)
}

func isUsefulImpl(rows []PatternRow, cols []Pattern, typeOf func(int) TypeInfo, depth int) (bool, []Witness) {
	// Base case: no columns left. Useful iff there are no matrix rows left
	// (an empty matrix is vacuously not covering this empty row) — by
	// convention U(∅ rows, ∅ cols) is useful with the empty witness list,
	// while any existing zero-column row means a prior arm already covers
	// this case.
	if len(cols) == 0 {
		if len(rows) == 0 {
			return true, nil
		}
		return false, nil
	}

	head := cols[0]
	if head.Kind == PatOr {
		// An or-pattern is useful if any of its alternatives is: test each
		// alternative against the same matrix and keep the first witness
		// found, widened to report the alternative that succeeded.
		for _, alt := range head.Alternatives {
			altCols := append([]Pattern{alt}, cols[1:]...)
			if useful, witness := isUsefulImpl(rows, altCols, typeOf, depth); useful {
				return true, witness
			}
		}
		return false, nil
	}

	ty := typeOf(depth)

	if ctor, ok := patternConstructor(head); ok {
		// Specific constructor: check usefulness against just the rows
		// compatible with it, one constructor-arity level deeper.
		specRows := specialize(rows, ctor)
		specCols := append(append([]Pattern{}, fieldPatterns(head, ctor)...), cols[1:]...)
		useful, witness := isUsefulImpl(specRows, specCols, specializedTypeOf(typeOf, depth, ctor), depth+1)
		if !useful {
			return false, nil
		}
		return true, rewindWitness(witness, ctor)
	}

	// Wildcard/variable head: useful against every constructor the matrix's
	// column doesn't already fully cover, OR against the default matrix if
	// the covered set is exhaustive for this type.
	observed := columnConstructors(rows)
	cs := NewConstructorSet(ty)
	for _, c := range observed {
		cs.Observe(c)
	}

	if missing, closed := cs.Missing(); closed && len(missing) > 0 {
		// Try each missing constructor; the first that proves useful gives
		// a complete witness headed by that constructor.
		for _, c := range missing {
			specRows := specialize(rows, c)
			wildFields := make([]Pattern, ctorArity(c))
			for i := range wildFields {
				wildFields[i] = Pattern{Kind: PatWildcard}
			}
			specCols := append(wildFields, cols[1:]...)
			if useful, witness := isUsefulImpl(specRows, specCols, specializedTypeOf(typeOf, depth, c), depth+1); useful {
				return true, rewindWitness(witness, c)
			}
		}
		return false, nil
	}

	// Either the type is open-ended (ints/strings/floats: Missing reports
	// not-closed) or every named constructor is already observed — fall
	// through to the default matrix.
	defRows := defaultMatrix(rows)
	useful, witness := isUsefulImpl(defRows, cols[1:], typeOf, depth+1)
	if !useful {
		return false, nil
	}
	return true, append([]Witness{NewWildcardWitness()}, witness...)
}

// specializedTypeOf builds a typeOf function for the recursion one level
// deeper: the teacher corpus has no structural type environment to consult
// for a constructor's field types, so fields are treated as open-ended
// (TypeInfo{}) unless the caller's original typeOf already encodes nested
// shape for that depth. This mirrors the Rust original's
// get_field_types_for_ctor, simplified since Go's patterns package is
// deliberately decoupled from internal/types (see TypeInfo's doc comment).
func specializedTypeOf(typeOf func(int) TypeInfo, depth int, ctor Constructor) func(int) TypeInfo {
	return func(d int) TypeInfo {
		if d <= depth {
			return typeOf(d)
		}
		return TypeInfo{}
	}
}

// rewindWitness re-attaches ctor as the head of a witness chain produced
// one recursion level down, consuming ctor's arity worth of field
// witnesses from the front of the chain and leaving the rest untouched —
// the inverse of specialize, mirroring Witness::prepend in the Rust
// original.
func rewindWitness(witness []Witness, ctor Constructor) []Witness {
	arity := ctorArity(ctor)
	if arity > len(witness) {
		arity = len(witness)
	}
	fields := append([]Witness{}, witness[:arity]...)
	rest := witness[arity:]
	return append([]Witness{{Ctor: ctor, Fields: fields}}, rest...)
}

// CheckExhaustiveness runs IsUseful with a synthetic "match anything" row
// against the full arm matrix: if that row is useful, the match is
// non-exhaustive and the returned witnesses are concrete uncovered values.
func CheckExhaustiveness(arms []Pattern, ty TypeInfo) (exhaustive bool, missing []Witness) {
	rows := make([]PatternRow, len(arms))
	for i, p := range arms {
		rows[i] = PatternRow{Columns: []Pattern{p}, ArmIndex: i}
	}
	matrix := NewMatrix(rows)
	wildcardRow := PatternRow{Columns: []Pattern{{Kind: PatWildcard}}, ArmIndex: -1}

	useful, witness := IsUseful(matrix, wildcardRow, func(int) TypeInfo { return ty })
	return !useful, witness
}

// FindRedundantArms reports, for each arm after the first, whether it is
// reachable (useful against every arm before it). An arm whose pattern is
// never reachable is dead code — grounded on the same matrix-growing
// technique the Rust original uses for its redundancy diagnostic, driven
// off the same IsUseful primitive as exhaustiveness.
func FindRedundantArms(arms []Pattern, ty TypeInfo) []int {
	var redundant []int
	var seen []PatternRow
	for i, p := range arms {
		row := PatternRow{Columns: []Pattern{p}, ArmIndex: i}
		useful, _ := IsUseful(NewMatrix(seen), row, func(int) TypeInfo { return ty })
		if !useful {
			redundant = append(redundant, i)
		}
		seen = append(seen, row)
	}
	return redundant
}
