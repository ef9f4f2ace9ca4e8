package fixplex

import "math"

// pivot performs the modular pivot of spec.md §4.4: y (non-base, in
// x's row with coefficient b) becomes base of x's row; x becomes
// non-base with value new_value. Every other row mentioning y is then
// purified of y via eliminateVar.
func (s *Solver) pivot(x, y VarID, b, newValue Numeral) {
	s.bumpStat("num pivots")
	rx := s.base2row(x)
	rowX := s.rows[rx]
	a := rowX.BaseCoeff
	oldValueY := s.value(y)

	rowX.Base = y
	rowX.Value = s.ring.Add(s.ring.Sub(rowX.Value, s.ring.Mul(b, oldValueY)), s.ring.Mul(a, newValue))
	rowX.BaseCoeff = b

	s.vars[y].Base2Row = rx
	s.vars[y].IsBase = true
	s.setBaseValue(y)

	s.vars[x].IsBase = false
	s.vars[x].Value = newValue
	s.touchVar(x)
	s.addPatch(y)

	tzB := s.ring.Tz(b)
	for _, ce := range s.tab.ColEntries(y) {
		if ce.Row == rx {
			continue
		}
		s.eliminateVar(rx, ce.Row, ce.Coeff, tzB, oldValueY)
		s.addPatch(s.row2base(ce.Row))
	}
}

// eliminateVar transforms r_z to remove y (base of r_y, base
// coefficient b), where c is y's coefficient in r_z (spec.md §4.5).
// Returns true iff the transformation is lossless (tz_b <= tz_c).
func (s *Solver) eliminateVar(rY, rZ RowID, c Numeral, tzB uint, oldValueY Numeral) bool {
	b := s.rows[rY].BaseCoeff
	z := s.row2base(rZ)
	rowZ := s.rows[rZ]
	tzC := s.ring.Tz(c)

	var b1, c1 Numeral
	if tzB <= tzC {
		b1 = s.ring.Shr(b, tzB)
		c1 = s.ring.Neg(s.ring.Shr(c, tzC-tzB))
	} else {
		b1 = s.ring.Shr(b, tzB-tzC)
		c1 = s.ring.Neg(s.ring.Shr(c, tzC))
	}

	s.tab.Mul(rZ, b1)
	s.tab.Add(rZ, c1, rY)
	rowZ.Value = s.ring.Add(
		s.ring.Mul(b1, s.ring.Sub(rowZ.Value, s.ring.Mul(c, oldValueY))),
		s.ring.Mul(c1, s.rows[rY].Value),
	)
	rowZ.BaseCoeff = s.ring.Mul(rowZ.BaseCoeff, b1)
	s.setBaseValue(z)
	return tzB <= tzC
}

// hasMinimalTrailingZeros reports whether b (y's coefficient in some
// row) has the minimal trailing-zero count among all of y's
// coefficients across every row that mentions it (spec.md §4.6's
// Olm-Seidl condition).
func (s *Solver) hasMinimalTrailingZeros(y VarID, b Numeral) bool {
	tz1 := s.ring.Tz(b)
	if tz1 == 0 {
		return true
	}
	for _, ce := range s.tab.ColEntries(y) {
		if s.ring.Tz(ce.Coeff) < tz1 {
			return false
		}
	}
	return true
}

// getNumNonFreeDepVars returns the number of non-free base variables
// depending on column(xJ), short-circuiting once the partial result
// exceeds bestSoFar (spec.md §4.6 scoring criterion 3).
func (s *Solver) getNumNonFreeDepVars(xJ VarID, bestSoFar int) int {
	result := 0
	if !s.isFree(xJ) {
		result = 1
	}
	for _, ce := range s.tab.ColEntries(xJ) {
		if !s.isFree(s.row2base(ce.Row)) {
			result++
		}
		if result > bestSoFar {
			return result
		}
	}
	return result
}

// selectPivotCore implements spec.md §4.6: choose a non-base y in x's
// row whose pivot keeps every elimination lossless and scores best by
// the criteria in order (in bounds, distance to nearest bound, number
// of non-free dependents, column size, reservoir-sampled ties).
func (s *Solver) selectPivotCore(x VarID, newValue Numeral) (VarID, Numeral, bool) {
	r := s.base2row(x)
	a := s.rows[r].BaseCoeff
	rowValue := s.ring.Add(s.rows[r].Value, s.ring.Mul(a, newValue))

	found := false
	var result VarID
	var outB Numeral
	n := 0
	bestColSz := math.MaxInt
	bestSoFar := math.MaxInt
	var deltaBest Numeral
	bestInBounds := false

	for _, e := range s.tab.RowEntries(r) {
		y := e.Var
		b := e.Coeff
		if y == x {
			continue
		}
		if !s.hasMinimalTrailingZeros(y, b) {
			continue
		}
		newYValue := s.ring.SolveFor(s.ring.Sub(rowValue, s.ring.Mul(b, s.value(y))), b)
		inBounds := s.ring.IntervalContains(s.vars[y].Bound, newYValue)
		var deltaY Numeral
		if !inBounds {
			lo, hi := s.lo(y), s.hi(y)
			if s.ring.Sub(lo, newYValue) < s.ring.Sub(newYValue, hi) {
				deltaY = s.ring.Sub(newYValue, lo)
			} else {
				deltaY = s.ring.Sub(s.ring.Sub(newYValue, hi), 1)
			}
		}
		num := s.getNumNonFreeDepVars(y, bestSoFar)
		colSz := s.tab.ColumnSize(y)

		improvement := false
		plateau := false
		switch {
		case bestSoFar == math.MaxInt:
			improvement = true
		case !bestInBounds && inBounds:
			improvement = true
		case !bestInBounds && !inBounds && deltaY < deltaBest:
			improvement = true
		case bestInBounds && inBounds && num < bestSoFar:
			improvement = true
		case bestInBounds && inBounds && num == bestSoFar && colSz < bestColSz:
			improvement = true
		case !bestInBounds && !inBounds && deltaY == deltaBest && bestSoFar == num && colSz == bestColSz:
			plateau = true
		case bestInBounds && inBounds && bestSoFar == num && colSz == bestColSz:
			plateau = true
		}

		if improvement {
			found = true
			result = y
			outB = b
			bestSoFar = num
			bestColSz = colSz
			bestInBounds = inBounds
			deltaBest = deltaY
			n = 1
		} else if plateau {
			n++
			if s.rng.Intn(n) == 0 {
				result = y
				outB = b
			}
		}
	}

	if !found {
		return NullVar, 0, false
	}
	if !bestInBounds && deltaBest >= s.value2delta(x, newValue) {
		return NullVar, 0, false
	}
	return result, outB, true
}

// canImprove reports whether setting x's base row's base to new_x_value
// lets y's (coefficient b) derived value move toward or stay within
// its bounds without increasing overall error (spec.md §4.6's Bland
// fallback support routine).
func (s *Solver) canImprove(x VarID, newXValue Numeral, y VarID, b Numeral) bool {
	r := s.base2row(x)
	rowValue := s.ring.Add(s.rows[r].Value, s.ring.Mul(s.rows[r].BaseCoeff, newXValue))
	newYValue := s.ring.SolveFor(s.ring.Sub(rowValue, s.ring.Mul(b, s.value(y))), b)
	if s.ring.IntervalContains(s.vars[y].Bound, newYValue) {
		return true
	}
	return s.value2error(y, newYValue) <= s.value2error(x, s.value(x))
}

// selectPivotBlands implements the anti-cycling fallback of spec.md
// §4.6: the smallest-indexed non-base variable in x's row whose
// movement can improve.
func (s *Solver) selectPivotBlands(x VarID, newValue Numeral) (VarID, Numeral, bool) {
	r := s.base2row(x)
	result := VarID(len(s.vars))
	var outB Numeral
	for _, e := range s.tab.RowEntries(r) {
		y := e.Var
		if y == x || y >= result {
			continue
		}
		if s.canImprove(x, newValue, y, e.Coeff) {
			outB = e.Coeff
			result = y
		}
	}
	if int(result) >= len(s.vars) {
		return NullVar, 0, false
	}
	return result, outB, true
}

func (s *Solver) selectPivot(x VarID, newValue Numeral) (VarID, Numeral, bool) {
	if s.bland {
		return s.selectPivotBlands(x, newValue)
	}
	return s.selectPivotCore(x, newValue)
}

// isInfeasibleRow reports whether the interval-sum of x's base row
// excludes zero, meaning no in-bounds assignment can satisfy the row
// (spec.md §4.8).
func (s *Solver) isInfeasibleRow(x VarID) bool {
	r := s.base2row(x)
	rng := PointInterval(s.ring, 0)
	for _, e := range s.tab.RowEntries(r) {
		rng = s.ring.IntervalAdd(rng, s.ring.IntervalScalarMul(s.vars[e.Var].Bound, e.Coeff))
		if rng.Free {
			return false
		}
	}
	return !s.ring.IntervalContains(rng, 0)
}

// isParityInfeasibleRow reports whether the row cannot sum to zero due
// to the 2-adic valuation of its fixed-variable contribution falling
// below the minimal valuation of its non-fixed coefficients (spec.md
// §4.8).
func (s *Solver) isParityInfeasibleRow(x VarID) bool {
	r := s.base2row(x)
	if s.rows[r].Integral {
		return false
	}
	var fixed Numeral
	parity := s.ring.Width + 1
	for _, e := range s.tab.RowEntries(r) {
		if s.isFixed(e.Var) {
			fixed = s.ring.Add(fixed, s.ring.Mul(s.value(e.Var), e.Coeff))
		} else if tz := s.ring.Tz(e.Coeff); tz < parity {
			parity = tz
		}
	}
	return s.ring.Tz(fixed) < parity
}

func (s *Solver) isFeasible() bool {
	for v := range s.vars {
		if !s.inBounds(VarID(v)) {
			return false
		}
	}
	return true
}

func (s *Solver) setInfeasibleBase(v VarID) {
	s.unsatCore = nil
	r := s.base2row(v)
	var dep DepID = NullDep
	for _, e := range s.tab.RowEntries(r) {
		dep = s.deps.Join(dep, s.vars[e.Var].LoDep)
		dep = s.deps.Join(dep, s.vars[e.Var].HiDep)
	}
	s.unsatCore = s.deps.Linearize(dep)
}

// ---- make_feasible -------------------------------------------------------

func (s *Solver) selectSmallestVar() VarID {
	best := NullVar
	for _, v := range s.patch.Vars() {
		if best == NullVar || v < best {
			best = v
		}
	}
	if best != NullVar {
		s.patch.Erase(best)
	}
	return best
}

func (s *Solver) selectErrorVar(least bool) VarID {
	best := NullVar
	var bestError Numeral
	for _, v := range s.patch.Vars() {
		curr := s.value2error(v, s.value(v))
		if curr == 0 {
			continue
		}
		if best == NullVar || (least && curr < bestError) || (!least && curr > bestError) {
			best = v
			bestError = curr
		}
	}
	if best == NullVar {
		for _, v := range s.patch.Vars() {
			s.patch.Erase(v)
		}
	} else {
		s.patch.Erase(best)
	}
	return best
}

func (s *Solver) selectVarToFix() VarID {
	if s.bland {
		return s.selectSmallestVar()
	}
	switch s.cfg.Strategy {
	case StrategyBland:
		return s.selectSmallestVar()
	case StrategyLeastError:
		return s.selectErrorVar(true)
	default: // StrategyGreatestError
		return s.selectErrorVar(false)
	}
}

func (s *Solver) checkBlandsRule(v VarID, numRepeated *int) {
	if s.bland {
		return
	}
	if !s.leftBasis[v] {
		s.leftBasis[v] = true
	} else {
		*numRepeated++
		if *numRepeated > s.cfg.BlandsRuleThreshold {
			s.bland = true
			s.trace("using bland's rule, %d repeats", *numRepeated)
		}
	}
}

// makeVarFeasible attempts to bring x into bounds, pivoting at most
// once (spec.md §4.7 step 4).
func (s *Solver) makeVarFeasible(x VarID) Lbool {
	if s.inBounds(x) {
		return LTrue
	}
	if s.ring.IntervalIsEmpty(s.vars[x].Bound) {
		return LFalse
	}
	newValue := s.ring.IntervalClosestValue(s.vars[x].Bound, s.value(x))
	y, b, ok := s.selectPivot(x, newValue)
	if !ok {
		if s.isInfeasibleRow(x) {
			return LFalse
		}
		return LUndef
	}
	s.pivot(x, y, b, newValue)
	return LTrue
}

// MakeFeasible is the main decision loop of spec.md §4.7: repeatedly
// pick an out-of-bounds base variable from the patch queue and attempt
// to pivot it into bounds, until the queue drains, a conflict is
// found, or the iteration/cancellation budget is exhausted.
func (s *Solver) MakeFeasible() Lbool {
	s.bumpStat("num checks")
	s.leftBasis = make(map[VarID]bool)
	numIterations := 0
	numRepeated := 0
	s.bland = false

	for {
		v := s.selectVarToFix()
		if v == NullVar {
			break
		}
		if s.cancelled != nil && s.cancelled() {
			s.patch.Insert(v)
			return LUndef
		}
		if numIterations > s.cfg.MaxIterations {
			s.patch.Insert(v)
			return LUndef
		}
		s.checkBlandsRule(v, &numRepeated)
		switch s.makeVarFeasible(v) {
		case LTrue:
			numIterations++
		case LFalse:
			s.patch.Insert(v)
			s.setInfeasibleBase(v)
			s.bumpStat("num infeasible")
			return LFalse
		case LUndef:
			s.patch.Insert(v)
			if s.ineqsAreViolated() {
				return LFalse
			}
			return LUndef
		}
	}

	// Every base variable is now in bounds, but a row whose base is
	// (and always was) free never passes through make_var_feasible's
	// is_infeasible_row/is_parity_infeasible_row checks above, since
	// add_patch never queues a variable that is trivially in bounds.
	// Sweep every row here so a row that can never sum to zero
	// (spec.md Sec 4.8) is still caught.
	if r, infeasible := s.findInfeasibleRow(); infeasible {
		s.patch.Insert(s.row2base(r))
		s.setInfeasibleBase(s.row2base(r))
		s.bumpStat("num infeasible")
		return LFalse
	}

	if s.ineqsAreViolated() {
		return LFalse
	}
	if s.IneqsAreSatisfied() {
		return LTrue
	}
	return LUndef
}

// findInfeasibleRow scans every row for linear or parity infeasibility,
// independent of the patch queue (spec.md Sec 4.8). Needed because a
// row whose base variable is free is always trivially in_bounds and so
// never reaches make_var_feasible's own infeasibility checks.
func (s *Solver) findInfeasibleRow() (RowID, bool) {
	for r, row := range s.rows {
		if s.isInfeasibleRow(row.Base) || s.isParityInfeasibleRow(row.Base) {
			return r, true
		}
	}
	return NullRow, false
}

// PropagateBounds is the optional driver of spec.md §6: runs row-based
// bound propagation over every row, then checks every inequality, then
// runs equality detection (spec.md §4.11) as an advisory last step —
// it never changes the result, only populates VarEqs for the host.
func (s *Solver) PropagateBounds() Lbool {
	for r := range s.rows {
		if s.propagateBoundsRow(r) == LFalse {
			return LFalse
		}
	}
	for idx := range s.ineqs {
		if !s.propagateBoundsIneq(idx) {
			return LFalse
		}
	}
	s.propagateEqs()
	return LTrue
}
