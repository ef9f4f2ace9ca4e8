package fixplex

// propagateBoundsIneq dispatches an active inequality to its strict or
// non-strict rule table (spec.md §6's propagate_bounds(ineq)).
func (s *Solver) propagateBoundsIneq(idx int) bool {
	in := s.ineqs[idx]
	if in.Strict {
		return s.propagateStrictBounds(idx)
	}
	return s.propagateNonStrictBounds(idx)
}

// newBoundIneq tightens x's interval to [lo,hi), justified by the
// inequality's own dependency plus any extra dependency tokens the
// rule that derived this bound cites, and reports the conflict on
// failure (spec.md §6's new_bound(ineq, ...)).
func (s *Solver) newBoundIneq(idx int, x VarID, lo, hi Numeral, extra ...DepID) bool {
	dep := s.ineqs[idx].Dep
	for _, d := range extra {
		dep = s.deps.Join(dep, d)
	}
	s.updateBounds(x, lo, hi, dep)
	vi := &s.vars[x]
	if s.ring.IntervalIsEmpty(vi.Bound) {
		s.conflict(vi.LoDep, vi.HiDep)
		return false
	}
	// Unlike SetBounds, a propagated tightening does not itself requeue
	// x for patching or nudge a non-base value back in range: the host
	// is expected to drive make_feasible again to observe any
	// infeasibility this tightening introduced (mirrors the literal
	// new_bound(ineq, ...) this is grounded on, which only updates
	// bounds and checks for emptiness).
	return true
}

// conflict records the unsat core as the linearization of the join of
// the given dependency tokens (spec.md §6).
func (s *Solver) conflict(deps ...DepID) {
	var d DepID = NullDep
	for _, e := range deps {
		d = s.deps.Join(d, e)
	}
	s.unsatCore = s.deps.Linearize(d)
}

// propagateStrictBounds propagates v < w (spec.md §6's
// propagate_strict_bounds), transliterated rule-for-rule from the
// literal case table this engine's bound propagation is grounded on:
// each rule narrows one side's interval from the two variables'
// current bounds, in the fixed sequence below (later rules observe
// bounds already tightened by earlier ones in the same pass).
func (s *Solver) propagateStrictBounds(idx int) bool {
	in := s.ineqs[idx]
	v, w := in.V, in.W
	vlo, vhi := s.vars[v].LoDep, s.vars[v].HiDep
	wlo, whi := s.vars[w].LoDep, s.vars[w].HiDep
	r := s.ring
	lov := func() Numeral { return s.lo(v) }
	hiv := func() Numeral { return s.hi(v) }
	low := func() Numeral { return s.lo(w) }
	hiw := func() Numeral { return s.hi(w) }
	isFreeV := func() bool { return s.isFree(v) }
	isFreeW := func() bool { return s.isFree(w) }
	isFixedV := func() bool { return s.isFixed(v) }
	isFixedW := func() bool { return s.isFixed(w) }
	nb := func(x VarID, lo, hi Numeral, extra ...DepID) bool { return s.newBoundIneq(idx, x, lo, hi, extra...) }

	if low() == 0 && !nb(w, r.Add(low(), 1), low(), wlo) {
		return false
	}
	if hiw() == 1 && !nb(w, low(), r.Sub(hiw(), 1), whi) {
		return false
	}
	if hiw() <= hiv() && low() <= hiw() && !isFreeW() && !nb(v, lov(), r.Sub(hiv(), 1), vhi, whi, wlo) {
		return false
	}
	if hiv() == 0 && low() <= lov() && !nb(w, r.Add(lov(), 1), hiv(), vhi, vlo, wlo) {
		return false
	}
	if hiv() == 0 && !isFreeV() && !nb(v, lov(), r.Sub(hiv(), 1), vhi) {
		return false
	}
	if low() <= lov() && lov() <= hiv() && !nb(w, r.Add(lov(), 1), lov(), vlo, vhi, wlo) {
		return false
	}
	if r.Add(lov(), 1) == hiw() && lov() <= hiv() && !nb(w, low(), r.Sub(hiw(), 1), vlo, vhi, whi) {
		return false
	}
	if !(lov() <= hiv()) && isFixedW() && low() <= hiv() && !nb(v, r.Add(lov(), 1), r.Sub(hiw(), 1), vlo, vhi, whi, wlo) {
		return false
	}
	if r.Add(lov(), 1) == hiw() && low() <= hiw() && !nb(v, r.Add(lov(), 1), hiv(), vlo, whi, wlo) {
		return false
	}
	if isFixedV() && lov() <= hiw() && hiw() <= lov() && !(hiv() == 1) && !nb(w, r.Add(lov(), 1), r.Sub(hiw(), 1), vlo, vhi, whi) {
		return false
	}
	if !(hiw() == 0) && hiw() <= lov() && lov() <= hiv() && !nb(w, r.Add(lov(), 1), r.Sub(hiw(), 1), vlo, vhi, whi) {
		return false
	}
	if hiw() <= lov() && low() <= hiw() && !isFreeW() && !nb(v, r.Add(lov(), 1), r.Sub(hiw(), 1), vlo, whi, wlo) {
		return false
	}
	if r.Add(lov(), 1) == hiw() && hiw() == 0 && !nb(v, r.Add(lov(), 1), hiv(), vlo, whi) {
		return false
	}
	if r.Add(lov(), 1) == 0 && !nb(v, r.Add(lov(), 1), hiv(), vlo) {
		return false
	}
	if low() < hiw() && hiw() <= lov() && !nb(v, 0, hiv(), vlo, vhi, whi, wlo) {
		return false
	}

	// manual patch
	if isFixedW() && low() == 0 {
		s.conflict(wlo, whi)
		return false
	}
	if isFixedV() && hiv() == 0 {
		s.conflict(vlo, vhi)
		return false
	}
	if !isFreeW() && (low() <= hiw() || hiw() == 0) && (lov() < hiv() || hiv() == 0) && !nb(v, lov(), r.Sub(hiw(), 1), vlo, wlo, whi) {
		return false
	}
	if !isFreeV() && (low() <= hiw() || hiw() == 0) && (lov() < hiv() || hiv() == 0) && !nb(w, r.Add(lov(), 1), hiw(), vlo, vhi, whi) {
		return false
	}
	if low() == 0 && !nb(w, 1, hiw(), wlo) {
		return false
	}
	if r.Add(lov(), 1) == 0 && !nb(v, 0, hiv(), vhi) {
		return false
	}
	if low() < hiw() && (hiw() <= hiv() || hiv() == 0) && !nb(v, lov(), r.Sub(hiw(), 1), vlo, vhi, wlo, whi) {
		return false
	}
	if !isFixedW() && r.Add(lov(), 1) == hiw() && (lov() <= hiv() || hiv() == 0) && !nb(w, low(), r.Sub(hiw(), 1), vlo, wlo, whi) {
		return false
	}
	if low() <= lov() && (lov() < hiv() || lov() == 0) && !nb(w, r.Add(lov(), 1), hiw(), vlo, vhi, wlo, whi) {
		return false
	}
	if hiw() <= lov() && (lov() < hiv() || hiv() == 0) && !nb(w, low(), 0, vlo, vhi, wlo, whi) {
		return false
	}
	if low() < hiw() && hiw() <= lov() && (lov() < hiv() || hiv() == 0) {
		s.conflict(vlo, vhi, wlo, whi)
		return false
	}

	// automatically generated code
	if low() == 0 && !nb(w, r.Add(low(), 1), low(), wlo) {
		return false
	}
	if isFixedV() && hiw() <= hiv() && low() <= hiw() && !isFreeW() {
		s.conflict(wlo, whi, vhi, vlo)
		return false
	}
	if low() <= lov() && lov() <= hiv() && !nb(w, r.Add(lov(), 1), lov(), wlo, vhi, vlo) {
		return false
	}
	if hiw() <= hiv() && low() <= hiw() && !isFreeW() && !nb(v, lov(), r.Sub(hiv(), 1), wlo, whi, vhi) {
		return false
	}
	if hiw() == 1 && !nb(w, low(), r.Sub(hiw(), 1), whi) {
		return false
	}
	if !(lov() == 0) && lov() <= hiw() && hiw() <= lov() && lov() <= hiv() && !nb(w, r.Add(lov(), 1), r.Sub(hiw(), 1), whi, vhi, vlo) {
		return false
	}
	if !(hiw() == 0) && isFixedV() && hiw() <= hiv() && !nb(w, r.Add(lov(), 1), r.Sub(hiv(), 1), whi, vhi, vlo) {
		return false
	}
	if !(lov() <= hiw()) && !(hiw() == 0) && lov() <= hiv() && !nb(w, r.Add(lov(), 1), r.Sub(hiw(), 1), whi, vhi, vlo) {
		return false
	}
	if !(lov() <= low()) && isFixedW() && !nb(v, r.Add(lov(), 1), r.Sub(hiw(), 1), wlo, whi, vlo) {
		return false
	}
	if hiw() <= lov() && low() <= hiw() && !isFreeW() && !nb(v, r.Add(lov(), 1), r.Sub(hiw(), 1), wlo, whi, vlo) {
		return false
	}
	if isFixedW() && hiv() == 0 && low() <= lov() {
		s.conflict(wlo, whi, vhi, vlo)
		return false
	}
	if hiv() == 0 && low() <= lov() && !nb(w, r.Add(lov(), 1), hiv(), wlo, vhi, vlo) {
		return false
	}
	if hiv() == 0 && !isFreeV() && !nb(v, lov(), r.Sub(hiv(), 1), vhi) {
		return false
	}
	if isFixedW() && low() <= lov() && !nb(v, r.Add(lov(), 1), r.Sub(hiw(), 1), wlo, whi, vlo) {
		return false
	}
	return true
}

// propagateNonStrictBounds propagates v <= w (spec.md §6's
// propagate_non_strict_bounds), transliterated the same way as
// propagateStrictBounds.
func (s *Solver) propagateNonStrictBounds(idx int) bool {
	in := s.ineqs[idx]
	v, w := in.V, in.W
	vlo, vhi := s.vars[v].LoDep, s.vars[v].HiDep
	wlo, whi := s.vars[w].LoDep, s.vars[w].HiDep
	r := s.ring
	lov := func() Numeral { return s.lo(v) }
	hiv := func() Numeral { return s.hi(v) }
	low := func() Numeral { return s.lo(w) }
	hiw := func() Numeral { return s.hi(w) }
	isFreeV := func() bool { return s.isFree(v) }
	isFreeW := func() bool { return s.isFree(w) }
	isFixedV := func() bool { return s.isFixed(v) }
	isFixedW := func() bool { return s.isFixed(w) }
	nb := func(x VarID, lo, hi Numeral, extra ...DepID) bool { return s.newBoundIneq(idx, x, lo, hi, extra...) }

	// manual patch
	if low() < lov() && (lov() < hiv() || hiv() == 0) && !nb(w, lov(), hiw(), vlo, vhi, wlo, whi) {
		return false
	}
	if !isFreeW() && (low() <= hiw() || hiw() == 0) && (lov() < hiv() || hiv() == 0) && !nb(v, lov(), hiw(), vlo, vhi, wlo, whi) {
		return false
	}
	if !isFreeV() && (low() <= hiw() || hiw() == 0) && (lov() < hiv() || hiv() == 0) && !nb(w, lov(), hiw(), vlo, vhi, whi) {
		return false
	}
	if hiw() < low() && hiw() <= lov() && lov() < hiv() && !nb(w, low(), 0, vlo, vhi, wlo, whi) {
		return false
	}
	if low() < hiw() && hiw() <= lov() && (lov() < hiv() || hiv() == 0) {
		s.conflict(vlo, vhi, wlo, whi)
		return false
	}

	// automatically generated code
	if !(hiw() <= lov()) && !isFixedV() && isFixedW() && hiw() == 1 && !(hiv() == 0) && !nb(v, 0, hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(hiv() <= low()) && !isFixedV() && isFixedW() && low() <= lov() && lov() <= low() && !nb(v, 0, hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(hiv() <= hiw()) && !(hiw() <= lov()) && low() <= lov() && !nb(v, 0, hiw(), wlo, vhi, vlo, whi) {
		return false
	}
	if !(low() <= lov()) && !(hiv() <= hiw()) && isFixedW() && low() <= hiw() && !nb(v, 0, hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= low()) && hiw() == 1 && lov() <= hiw() && !nb(v, 0, hiw(), wlo, vlo, whi) {
		return false
	}
	if isFixedW() && hiw() <= lov() && low() <= hiw() && !nb(v, 0, hiw(), wlo, vlo, whi) {
		return false
	}
	if !(lov() <= low()) && lov() <= hiw() && hiw() <= lov() && !nb(v, 0, hiw(), wlo, vlo, whi) {
		return false
	}
	if !(lov() <= hiw()) && isFixedV() && low() <= hiw() && !nb(w, lov(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !isFixedW() && !(hiv() <= low()) && isFixedV() && hiv() <= hiw() && hiw() <= hiv() && !nb(w, r.Sub(hiw(), 1), hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= low()) && !(hiw() <= lov()) && hiw() <= hiv() && !nb(w, lov(), hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= low()) && isFixedV() && !nb(w, lov(), 0, vhi, wlo, vlo) {
		return false
	}
	if isFixedV() && hiw() == 1 && hiw() <= lov() && hiv() <= low() && !(hiv() == 0) && !nb(w, low(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !(hiv() == 1) && hiw() == 1 && lov() <= hiw() && hiw() <= lov() && hiv() <= low() && lov() <= hiv() && !nb(w, low(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !(hiw() == 0) && isFixedV() && hiw() <= lov() && hiv() <= low() && lov() <= hiv() && !nb(w, low(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !(hiv() <= hiw()) && !(hiw() == 0) && lov() <= hiw() && hiw() <= lov() && hiv() <= low() && !nb(w, low(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !(lov() <= hiw()) && !(low() <= lov()) && hiw() == 1 && low() <= hiv() && !nb(w, low(), 0, vhi, wlo, vlo, whi) {
		return false
	}
	if !(lov() <= hiw()) && !(low() <= lov()) && !(hiw() == 0) && low() <= hiv() && !nb(w, low(), 0, vhi, wlo, vlo, whi) {
		return false
	}
	if !(low() <= hiw()) && isFixedV() && hiw() == 1 && low() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && !(hiv() <= low()) && hiw() == 1 && low() <= lov() && lov() <= low() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && !(hiw() == 0) && isFixedV() && low() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && !(hiv() <= low()) && !(hiw() == 0) && low() <= lov() && lov() <= low() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && !(hiv() == 1) && hiw() == 1 && lov() <= hiw() && hiw() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && !(hiv() <= hiw()) && !(hiw() == 0) && lov() <= hiw() && hiw() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= hiw()) && hiv() == 0 && low() <= hiv() && !nb(w, lov(), 0, vhi, vlo, wlo, whi) {
		return false
	}
	if !(hiw() == 1) && hiv() == 1 && hiw() <= lov() && low() <= hiv() && hiv() <= low() && low() <= hiw() && !nb(v, 0, low(), vhi, vlo, wlo, whi) {
		return false
	}
	if !(hiw() <= hiv()) && hiw() <= lov() && low() <= hiv() && !nb(v, 0, r.Sub(hiw(), 1), vhi, vlo, wlo, whi) {
		return false
	}
	if !(lov() <= low()) && hiv() == 0 && !nb(w, lov(), 0, vhi, wlo, vlo) {
		return false
	}
	if !(lov() <= low()) && !(hiw() == 0) && hiv() == 0 && low() <= hiv() && !nb(v, lov(), hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= hiv()) && isFixedW() && hiv() == 0 && low() <= hiw() && !nb(v, lov(), hiw(), vhi, vlo, wlo, whi) {
		return false
	}
	if !(lov() <= hiv()) && !(hiw() <= lov()) && hiv() == 0 && low() <= lov() && !nb(v, low(), hiw(), wlo, vhi, vlo, whi) {
		return false
	}
	if !(hiv() <= low()) && hiv() <= hiw() && hiw() <= lov() && !nb(v, 0, hiw(), vlo, wlo, vhi, whi) {
		return false
	}
	if !(low() <= hiw()) && hiw() == 1 && hiv() == 0 && low() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	if !(lov() <= hiw()) && !(hiw() == 0) && hiv() == 0 && lov() <= low() && !nb(w, low(), 0, wlo, vhi, vlo, whi) {
		return false
	}
	if !(low() <= lov()) && !(hiw() == 0) && hiv() == 0 && hiw() <= lov() && !nb(w, low(), 0, vlo, wlo, vhi, whi) {
		return false
	}
	return true
}
