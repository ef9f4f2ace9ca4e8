package fixplex

// propagateBoundsRow implements the per-row half of spec.md §6's
// propagate_bounds: free-variable propagation (a row with exactly one
// free variable forces that variable's interval from the others) and
// pinned propagation (no variable is free and every coefficient is
// +-1; the entry with the lowest VarID gets its interval derived from
// the others, and the remaining entries are not narrowed). Returns
// LFalse on a detected row conflict, LTrue when no rule applied, and
// LUndef once a derived interval has been intersected into a bound
// (whether or not that narrowed it).
func (s *Solver) propagateBoundsRow(r RowID) Lbool {
	row, ok := s.rows[r]
	if !ok {
		return LTrue
	}
	entries := s.tab.RowEntries(r)

	var freeVar VarID = NullVar
	var freeCoeff Numeral
	numFree := 0
	allPinned := true
	var pinnedVar VarID = NullVar
	var pinnedCoeff Numeral

	for _, e := range entries {
		if s.isFree(e.Var) {
			numFree++
			freeVar, freeCoeff = e.Var, e.Coeff
		}
		if e.Coeff != 1 && e.Coeff != s.ring.Neg(1) {
			allPinned = false
		} else if pinnedVar == NullVar {
			pinnedVar, pinnedCoeff = e.Var, e.Coeff
		}
	}

	if numFree == 1 {
		return s.propagateFreeVar(r, freeVar, freeCoeff)
	}
	if numFree == 0 && allPinned && pinnedVar != NullVar {
		return s.propagatePinnedVar(r, pinnedVar, pinnedCoeff)
	}
	_ = row
	return LTrue
}

// propagateFreeVar derives v's forced interval from the rest of the
// row (every other variable's bound, summed and solved for v), per
// spec.md §6's free-variable propagation rule: with a single free
// column, the row has no other way to stay solved. Only odd
// coefficients are invertible mod 2^W, so an even c leaves v
// unconstrained by this rule (its forced set is a union of residue
// classes, not a single interval).
func (s *Solver) propagateFreeVar(r RowID, v VarID, c Numeral) Lbool {
	if s.ring.IsEven(c) {
		return LTrue
	}
	rng := PointInterval(s.ring, 0)
	var dep DepID = NullDep
	for _, e := range s.tab.RowEntries(r) {
		if e.Var == v {
			continue
		}
		rng = s.ring.IntervalAdd(rng, s.ring.IntervalScalarMul(s.vars[e.Var].Bound, e.Coeff))
		dep = s.deps.Join(dep, s.vars[e.Var].LoDep)
		dep = s.deps.Join(dep, s.vars[e.Var].HiDep)
		if rng.Free {
			return LTrue
		}
	}
	negInvC := s.ring.Neg(s.ring.OddInverse(c))
	forced := s.ring.IntervalScalarMul(rng, negInvC)
	if !s.newBoundRow(r, v, forced, dep) {
		return LFalse
	}
	return LUndef
}

// propagatePinnedVar implements the restricted pinned-propagation rule
// of spec.md §6: valid only when v's own coefficient is +-1, since the
// formula interval(v) := R_without_v * (-1) / c_v divides exactly only
// in that case (the original's unconditional R_without_v*(-1)
// computation is correct only for c_v == -1, so this port follows
// spec.md's stated formula and restriction rather than the literal
// source).
func (s *Solver) propagatePinnedVar(r RowID, v VarID, c Numeral) Lbool {
	rng := PointInterval(s.ring, 0)
	var dep DepID = NullDep
	for _, e := range s.tab.RowEntries(r) {
		if e.Var == v {
			continue
		}
		rng = s.ring.IntervalAdd(rng, s.ring.IntervalScalarMul(s.vars[e.Var].Bound, e.Coeff))
		dep = s.deps.Join(dep, s.vars[e.Var].LoDep)
		dep = s.deps.Join(dep, s.vars[e.Var].HiDep)
		if rng.Free {
			return LTrue
		}
	}
	forced := s.ring.IntervalScalarMul(rng, s.ring.Neg(c))
	if !s.newBoundRow(r, v, forced, dep) {
		return LFalse
	}
	return LUndef
}

// newBoundRow tightens v's interval with forced, justified by dep plus
// v's own row membership, returning false on conflict (empty result).
// Like the inequality-side new_bound this only tightens bounds; it
// does not requeue v for patching, leaving feasibility restoration to
// the next make_feasible call. If the tightening newly pins v to a
// single value, this feeds the fixed-value equality table (spec.md
// §4.11).
func (s *Solver) newBoundRow(r RowID, v VarID, forced Interval, dep DepID) bool {
	if forced.Free {
		return true
	}
	wasFixed := s.isFixed(v)
	s.updateBounds(v, forced.Lo, forced.Hi, dep)
	vi := &s.vars[v]
	if s.ring.IntervalIsEmpty(vi.Bound) {
		s.conflict(vi.LoDep, vi.HiDep)
		return false
	}
	if !wasFixed && s.isFixed(v) {
		s.fixedVarEh(r, v)
	}
	return true
}
