package fixplex

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// propagateEqs runs offset-equality detection over every row (spec.md
// §4.11): any discovered equality is appended to VarEqs for the host
// to act on, never resolved internally.
func (s *Solver) propagateEqs() {
	ids := make([]RowID, 0, len(s.rows))
	for r := range s.rows {
		ids = append(ids, r)
	}
	slices.Sort(ids)
	for _, r := range ids {
		s.getOffsetEqs(r)
	}
}

// getOffsetEqs checks whether r is an offset row (cx*x + cy*y + k == 0
// for constant k) and, if so, looks ahead from both x's and y's
// columns for a matching row implying an equality.
func (s *Solver) getOffsetEqs(r RowID) {
	cx, x, cy, y, ok := s.isOffsetRow(r)
	if !ok {
		return
	}
	s.lookaheadEq(r, cx, x, cy, y)
	s.lookaheadEq(r, cy, y, cx, x)
}

// isOffsetRow reports whether row r, once its fixed (constant)
// variables are folded away, has exactly two non-fixed variables x and y
// with coefficients cx and cy (spec.md §4.11). Only integral rows are
// considered: a lossy row's cached value may not reflect its true sum.
func (s *Solver) isOffsetRow(r RowID) (cx Numeral, x VarID, cy Numeral, y VarID, ok bool) {
	row, exists := s.rows[r]
	if !exists || !row.Integral {
		return 0, NullVar, 0, NullVar, false
	}
	x, y = NullVar, NullVar
	for _, e := range s.tab.RowEntries(r) {
		if s.isFixed(e.Var) {
			continue
		}
		switch {
		case x == NullVar:
			cx, x = e.Coeff, e.Var
		case y == NullVar:
			cy, y = e.Coeff, e.Var
		default:
			return 0, NullVar, 0, NullVar, false
		}
	}
	return cx, x, cy, y, y != NullVar
}

// lookaheadEq scans the rows mentioning x whose RowID is greater than
// r1 for one with the same offset-row shape (cz*x' + cu*u + k' == 0,
// after possibly relabeling so x lines up), and reports y == u (via
// eqEh(u, y, ...)) when their values
// already agree and the coefficients match up to a uniform sign flip
// (spec.md §4.11). Only odd cy admits this reasoning: an even
// coefficient doesn't pin down a unique residue.
func (s *Solver) lookaheadEq(r1 RowID, cx Numeral, x VarID, cy Numeral, y VarID) {
	if s.ring.IsEven(cy) {
		return
	}
	for _, ce := range s.tab.ColEntries(x) {
		r2 := ce.Row
		if r1 >= r2 {
			continue
		}
		cz, z, cu, u, ok := s.isOffsetRow(r2)
		if !ok {
			continue
		}
		if u == x {
			z, u = u, z
			cz, cu = cu, cz
		}
		if z != x {
			continue
		}
		if u == y {
			continue
		}
		if cx == cz && cu == cy && s.value(u) == s.value(y) {
			s.eqEh(u, y, r1, r2)
		} else if s.ring.Add(cx, cz) == 0 && s.ring.Add(cu, cy) == 0 && s.value(u) == s.value(y) {
			s.eqEh(u, y, r1, r2)
		}
	}
}

// fixedVarEh records x as fixed at its current value, or, if another
// still-fixed variable already holds that exact value, reports the
// equality between them (spec.md §4.11's persistent fixed-value
// table).
func (s *Solver) fixedVarEh(r RowID, x VarID) {
	val := s.value(x)
	if e, found := s.value2fixed[val]; found && s.isFixed(e.v) && s.value(e.v) == val && e.v != x {
		s.eqEh(x, e.v, e.row, r)
		return
	}
	s.value2fixed[val] = fixedEntry{v: x, row: r}
}

// eqEh queues a tentative equality for the host.
func (s *Solver) eqEh(x, y VarID, r1, r2 RowID) {
	s.varEqs = append(s.varEqs, VarEq{X: x, Y: y, WitnessRow1: r1, WitnessRow2: r2})
}

// DescribeFixedValues renders fixedVarEh's persistent fixed-value table
// for debugging, one entry per line in ascending value order.
func (s *Solver) DescribeFixedValues() string {
	keys := maps.Keys(s.value2fixed)
	slices.Sort(keys)
	var b strings.Builder
	for _, val := range keys {
		e := s.value2fixed[val]
		fmt.Fprintf(&b, "%d -> v%d (r%d)\n", val, e.v, e.row)
	}
	return b.String()
}
