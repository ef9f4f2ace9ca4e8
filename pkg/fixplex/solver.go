package fixplex

import (
	"fmt"
	"math/rand"
	"strings"
)

// Ineq records one host-supplied inequality v < w (Strict) or v <= w,
// per spec.md §3.
type Ineq struct {
	V, W   VarID
	Dep    DepID
	Strict bool
	Active bool
}

// VarEq is a tentative equality discovered by equality detection
// (spec.md §4.11), queued for the host rather than propagated
// internally.
type VarEq struct {
	X, Y        VarID
	WitnessRow1 RowID
	WitnessRow2 RowID
}

type fixedEntry struct {
	v   VarID
	row RowID
}

// Solver is the fixed-width modular simplex solver: the external
// interface of spec.md §6, backed by the tableau/pivot/propagation
// machinery of spec.md §4. It generalizes the teacher's FDStore
// (pkg/minikanren/fd.go) from a finite-domain arc-consistency engine to
// a modular-arithmetic theory solver: same trail/patch-queue/propagate
// shape, different constraint semantics.
type Solver struct {
	ring *Ring
	cfg  Config

	tab  *Tableau
	vars []Var
	rows map[RowID]*Row

	deps  *DepSet
	patch *PatchQueue
	trail *Trail

	ineqs       []Ineq
	var2ineqs   map[VarID][]int
	ineqsToChk  []int
	varTouched  map[VarID]bool
	value2fixed map[Numeral]fixedEntry

	unsatCore []DepToken
	varEqs    []VarEq

	bland          bool
	leftBasis      map[VarID]bool
	numNonIntegral int
	cancelled      func() bool

	// Trace is an optional callback, nil by default (SPEC_FULL.md §2.2).
	// It is invoked only when make_feasible switches to Bland's rule;
	// pivots, row additions and bound derivation are not traced.
	Trace func(format string, args ...any)

	stats map[string]int64

	// rng drives the reservoir sampling tie-break in select_pivot_core
	// (spec.md §4.6). Seeded deterministically so runs are reproducible;
	// embedders wanting true randomness can reseed via SetSeed.
	rng *rand.Rand
}

// SetSeed reseeds the pivot tie-break random source.
func (s *Solver) SetSeed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// NewSolver constructs a Solver for the given configuration's width.
func NewSolver(cfg Config) *Solver {
	ring := NewRing(cfg.Width)
	return &Solver{
		ring:        ring,
		cfg:         cfg,
		tab:         NewTableau(ring),
		rows:        make(map[RowID]*Row),
		deps:        NewDepSet(),
		patch:       NewPatchQueue(),
		trail:       NewTrail(),
		var2ineqs:   make(map[VarID][]int),
		varTouched:  make(map[VarID]bool),
		value2fixed: make(map[Numeral]fixedEntry),
		leftBasis:   make(map[VarID]bool),
		stats:       make(map[string]int64),
		rng:         rand.New(rand.NewSource(1)),
	}
}

// SetCancelFn installs the cooperative external-cancellation check
// consulted at the top of every make_feasible iteration (spec.md §5).
func (s *Solver) SetCancelFn(fn func() bool) {
	s.cancelled = fn
}

func (s *Solver) trace(format string, args ...any) {
	if s.Trace != nil {
		s.Trace(format, args...)
	}
}

// EnsureVar extends storage to cover variable index v, initializing it
// to the free interval (spec.md §6).
func (s *Solver) EnsureVar(v VarID) {
	for VarID(len(s.vars)) <= v {
		s.vars = append(s.vars, Var{
			Bound:    FreeInterval(),
			LoDep:    NullDep,
			HiDep:    NullDep,
			Base2Row: NullRow,
		})
	}
}

func (s *Solver) var_(v VarID) *Var {
	return &s.vars[v]
}

func (s *Solver) isBase(v VarID) bool   { return s.vars[v].IsBase }
func (s *Solver) isFree(v VarID) bool   { return s.ring.IntervalIsFree(s.vars[v].Bound) }
func (s *Solver) isFixed(v VarID) bool  { return s.ring.IntervalIsFixed(s.vars[v].Bound) }
func (s *Solver) lo(v VarID) Numeral    { return s.vars[v].Bound.Lo }
func (s *Solver) hi(v VarID) Numeral    { return s.vars[v].Bound.Hi }
func (s *Solver) value(v VarID) Numeral { return s.vars[v].Value }
func (s *Solver) inBounds(v VarID) bool {
	return s.ring.IntervalContains(s.vars[v].Bound, s.vars[v].Value)
}
func (s *Solver) base2row(v VarID) RowID { return s.vars[v].Base2Row }
func (s *Solver) row2base(r RowID) VarID { return s.rows[r].Base }

// GetValue returns the current value of v.
func (s *Solver) GetValue(v VarID) Numeral {
	return s.vars[v].Value
}

// GetBounds returns the current modular interval of v.
func (s *Solver) GetBounds(v VarID) Interval {
	return s.vars[v].Bound
}

// UnsatCore returns the dependency tokens of the most recent false
// result.
func (s *Solver) UnsatCore() []DepToken {
	return s.unsatCore
}

// VarEqs returns the tentative equalities accumulated by equality
// detection, for the host to act on (spec.md §4.11).
func (s *Solver) VarEqs() []VarEq {
	return s.varEqs
}

// Stats returns the string-keyed statistics bag of spec.md §6 /
// SPEC_FULL.md §4 (five counters, matching the original's
// collect_statistics).
func (s *Solver) Stats() map[string]int64 {
	out := make(map[string]int64, len(s.stats)+1)
	for k, v := range s.stats {
		out[k] = v
	}
	out["num non-integral"] = int64(s.numNonIntegral)
	return out
}

func (s *Solver) bumpStat(name string) {
	s.stats[name]++
}

// ---- bounds ----------------------------------------------------------

func (s *Solver) stashBound(v VarID) {
	vi := &s.vars[v]
	s.trail.RecordBound(v, vi.Bound, vi.LoDep, vi.HiDep)
}

// updateBounds intersects v's interval with [lo,hi) and, if either
// boundary actually moved, attributes the move to dep (spec.md §4.12's
// update_bounds).
func (s *Solver) updateBounds(v VarID, lo, hi Numeral, dep DepID) {
	s.stashBound(v)
	vi := &s.vars[v]
	lo0, hi0 := vi.Bound.Lo, vi.Bound.Hi
	vi.Bound = s.ring.IntervalIntersect(vi.Bound, Interval{Lo: lo, Hi: hi})
	if vi.Bound.Lo != lo0 {
		vi.LoDep = dep
	}
	if vi.Bound.Hi != hi0 {
		vi.HiDep = dep
	}
}

// SetBounds intersects v's current bounds with [lo,hi), per spec.md
// §6. dep is an opaque host token justifying the tightening.
func (s *Solver) SetBounds(v VarID, lo, hi Numeral, dep DepToken) error {
	s.EnsureVar(v)
	s.updateBounds(v, lo, hi, s.deps.Leaf(dep))
	if s.inBounds(v) {
		return nil
	}
	if s.vars[v].Bound.Lo == s.vars[v].Bound.Hi {
		return ErrDomainEmpty
	}
	if s.isBase(v) {
		s.addPatch(v)
	} else {
		s.updateValue(v, s.value2delta(v, s.value(v)))
	}
	return nil
}

// SetValue is sugar over SetBounds(v, val, val+1, dep) (spec.md §6,
// SPEC_FULL.md §4).
func (s *Solver) SetValue(v VarID, val Numeral, dep DepToken) error {
	return s.SetBounds(v, val, s.ring.Add(val, 1), dep)
}

func (s *Solver) restoreBound(v VarID, bound Interval, loDep, hiDep DepID) {
	vi := &s.vars[v]
	vi.Bound = bound
	vi.LoDep = loDep
	vi.HiDep = hiDep
}

// value2delta computes the offset to add to value so that value+delta
// lands on the nearer of lo(v) or hi(v)-1; v must currently be out of
// bounds (spec.md §4.6/§4.7 precursor, ported from the original's
// value2delta).
func (s *Solver) value2delta(v VarID, val Numeral) Numeral {
	lo, hi := s.lo(v), s.hi(v)
	if s.ring.Sub(lo, val) < s.ring.Sub(val, hi) {
		return s.ring.Sub(lo, val)
	}
	return s.ring.Sub(s.ring.Sub(hi, val), 1)
}

// value2error is value2delta's magnitude: 0 if in bounds.
func (s *Solver) value2error(v VarID, val Numeral) Numeral {
	if s.ring.IntervalContains(s.vars[v].Bound, val) {
		return 0
	}
	lo, hi := s.lo(v), s.hi(v)
	if s.ring.Sub(lo, val) < s.ring.Sub(val, hi) {
		return s.ring.Sub(lo, val)
	}
	return s.ring.Sub(s.ring.Sub(val, hi), 1)
}

// updateValue adds delta to v's value (v must be non-base) and
// recomputes the base value of every row in v's column (spec.md §4.9's
// underlying machinery, the original's update_value).
func (s *Solver) updateValue(v VarID, delta Numeral) {
	if delta == 0 {
		return
	}
	s.vars[v].Value = s.ring.Add(s.vars[v].Value, delta)
	s.touchVar(v)
	for _, ce := range s.tab.ColEntries(v) {
		ri := s.rows[ce.Row]
		ri.Value = s.ring.Add(ri.Value, s.ring.Mul(delta, ce.Coeff))
		s.setBaseValue(ri.Base)
		s.addPatch(ri.Base)
	}
}

func (s *Solver) setBaseValue(x VarID) {
	r := s.base2row(x)
	row := s.rows[r]
	s.vars[x].Value = s.ring.SolveFor(row.Value, row.BaseCoeff)
	s.touchVar(x)
	wasIntegral := row.Integral
	row.Integral = s.rowIsSolved(r)
	if wasIntegral && !row.Integral {
		s.numNonIntegral++
	} else if !wasIntegral && row.Integral {
		s.numNonIntegral--
	}
}

func (s *Solver) rowIsSolved(r RowID) bool {
	row := s.rows[r]
	return s.ring.Add(s.ring.Mul(s.value(row.Base), row.BaseCoeff), row.Value) == 0
}

// ---- patch queue ------------------------------------------------------

func (s *Solver) addPatch(v VarID) {
	if !s.inBounds(v) {
		s.patch.Insert(v)
	}
}

// ---- inequality touch / active bookkeeping ----------------------------

func (s *Solver) touchVar(v VarID) {
	if int(v) >= len(s.vars) {
		return
	}
	if s.varTouched[v] {
		return
	}
	s.varTouched[v] = true
	for _, idx := range s.var2ineqs[v] {
		if !s.ineqs[idx].Active {
			s.ineqs[idx].Active = true
			s.ineqsToChk = append(s.ineqsToChk, idx)
		}
	}
}

func (s *Solver) resetIneqsToCheck() {
	for _, idx := range s.ineqsToChk {
		if idx >= len(s.ineqs) {
			continue
		}
		in := &s.ineqs[idx]
		delete(s.varTouched, in.V)
		delete(s.varTouched, in.W)
		in.Active = false
	}
	s.ineqsToChk = nil
}

// IneqsAreSatisfied reports whether every inequality touched since the
// last check currently holds. The touch set is reset only when they
// all hold; on a violation it is left as it was.
func (s *Solver) IneqsAreSatisfied() bool {
	for _, idx := range s.ineqsToChk {
		if idx >= len(s.ineqs) {
			continue
		}
		in := s.ineqs[idx]
		if in.Strict && s.value(in.V) >= s.value(in.W) {
			return false
		}
		if !in.Strict && s.value(in.V) > s.value(in.W) {
			return false
		}
	}
	s.resetIneqsToCheck()
	return true
}

// ineqsAreViolated runs bound propagation over every touched
// inequality, returning true as soon as one reports infeasible.
func (s *Solver) ineqsAreViolated() bool {
	for i := 0; i < len(s.ineqsToChk); i++ {
		idx := s.ineqsToChk[i]
		if idx >= len(s.ineqs) {
			continue
		}
		if !s.propagateBoundsIneq(idx) {
			return true
		}
	}
	return false
}

// ---- rows --------------------------------------------------------------

// AddRow adds the equation sum(coeffs[i]*vars[i]) == 0 with base as the
// designated base variable (spec.md §6). base must be one of vars and
// currently non-base with a nonzero coefficient. If the new row
// references a variable that is already base of another row, that
// variable is immediately eliminated from the new row (purifying its
// column); a lossy elimination increments the "num approximated row
// additions" statistic rather than failing outright (spec.md §4.5).
func (s *Solver) AddRow(base VarID, vars []VarID, coeffs []Numeral) error {
	for _, v := range vars {
		s.EnsureVar(v)
	}
	s.EnsureVar(base)
	if s.isBase(base) {
		return wrapf(ErrInconsistent, "add_row: v%d is already a row base", base)
	}

	r := s.tab.MkRow()
	for i, v := range vars {
		if coeffs[i] != 0 {
			s.tab.AddVar(r, coeffs[i], v)
		}
	}

	var baseVarsToPivot []VarID
	var baseCoeff Numeral
	var value Numeral
	for _, e := range s.tab.RowEntries(r) {
		if e.Var == base {
			baseCoeff = e.Coeff
			continue
		}
		if s.isBase(e.Var) {
			baseVarsToPivot = append(baseVarsToPivot, e.Var)
		}
		value = s.ring.Add(value, s.ring.Mul(e.Coeff, s.value(e.Var)))
	}
	if baseCoeff == 0 {
		s.tab.Del(r)
		return wrapf(ErrInconsistent, "add_row: base v%d has zero coefficient", base)
	}

	s.rows[r] = &Row{Base: base, BaseCoeff: baseCoeff, Value: value}
	s.vars[base].Base2Row = r
	s.vars[base].IsBase = true
	s.setBaseValue(base)
	s.addPatch(base)

	lossy := false
	for _, v := range baseVarsToPivot {
		if !s.elimBase(v) {
			lossy = true
		}
	}
	if lossy {
		s.bumpStat("num approximated row additions")
	}
	s.trail.RecordRow(base)
	return nil
}

// elimBase eliminates base variable v from every row other than its
// own (the original's pivot_base_vars/elim_base, invoked from AddRow
// when the new row references an existing base variable).
func (s *Solver) elimBase(v VarID) bool {
	r := s.base2row(v)
	b := s.rows[r].BaseCoeff
	tzB := s.ring.Tz(b)
	ok := true
	for _, ce := range s.tab.ColEntries(v) {
		if ce.Row == r {
			continue
		}
		if !s.eliminateVar(r, ce.Row, ce.Coeff, tzB, s.value(v)) {
			ok = false
		}
	}
	return ok
}

// delRow removes row r outright: r's base becomes free and non-base.
func (s *Solver) delRow(r RowID) {
	s.varEqs = nil
	v := s.row2base(r)
	s.vars[v].IsBase = false
	s.vars[v].Bound = FreeInterval()
	s.vars[v].Base2Row = NullRow
	delete(s.rows, r)
	s.tab.Del(r)
}

// delRowForVar implements spec.md §4.12's del_row(var): if var is
// base, delete its row outright; else select the column entry of
// minimal trailing-zero-count to pivot var into base first (a no-op,
// silently, if var has no column entries at all).
func (s *Solver) delRowForVar(v VarID) {
	if s.isBase(v) {
		s.delRow(s.base2row(v))
		return
	}
	var best RowID = NullRow
	var bestTz uint = ^uint(0)
	var bestCoeff Numeral
	for _, ce := range s.tab.ColEntries(v) {
		tz := s.ring.Tz(ce.Coeff)
		if tz < bestTz {
			best, bestTz, bestCoeff = ce.Row, tz, ce.Coeff
			if tz == 0 {
				break
			}
		}
	}
	if best == NullRow {
		return
	}
	oldBase := s.row2base(best)
	var newValue Numeral
	if s.inBounds(oldBase) {
		newValue = s.value(oldBase)
	} else {
		newValue = s.lo(oldBase)
	}
	s.pivot(oldBase, v, bestCoeff, newValue)
	s.delRow(best)
}

// ---- inequalities --------------------------------------------------------

// AddIneq records v < w (strict) or v <= w, justified by dep (spec.md §6).
func (s *Solver) AddIneq(v, w VarID, dep DepToken, strict bool) {
	s.EnsureVar(v)
	s.EnsureVar(w)
	idx := len(s.ineqs)
	s.var2ineqs[v] = append(s.var2ineqs[v], idx)
	s.var2ineqs[w] = append(s.var2ineqs[w], idx)
	s.ineqsToChk = append(s.ineqsToChk, idx)
	s.ineqs = append(s.ineqs, Ineq{V: v, W: w, Dep: s.deps.Leaf(dep), Strict: strict, Active: true})
	s.trail.RecordIneq(idx)
}

func (s *Solver) restoreIneq() {
	last := len(s.ineqs) - 1
	in := s.ineqs[last]
	s.var2ineqs[in.V] = s.var2ineqs[in.V][:len(s.var2ineqs[in.V])-1]
	s.var2ineqs[in.W] = s.var2ineqs[in.W][:len(s.var2ineqs[in.W])-1]
	s.ineqs = s.ineqs[:last]
}

// ---- push/pop ------------------------------------------------------------

// Push records a new backtrack level.
func (s *Solver) Push() {
	s.trail.PushLevel()
	s.deps.PushScope()
}

// Pop undoes n levels: restored bounds, deleted rows (re-basing first
// when necessary), and removed inequalities, in strict LIFO order
// (spec.md §4.12).
func (s *Solver) Pop(n int) {
	s.trail.Pop(n, PopHandlers{
		UndoBound: s.restoreBound,
		UndoRow:   s.delRowForVar,
		UndoIneq:  func(int) { s.restoreIneq() },
	})
	s.deps.PopScope(n)
}

// ---- display -------------------------------------------------------------

// String renders the full solver state for debugging, adapted from the
// original's display()/display_row() (SPEC_FULL.md §4).
func (s *Solver) String() string {
	var b strings.Builder
	for v := range s.vars {
		vi := s.vars[v]
		fmt.Fprintf(&b, "v%d = %d %s", v, vi.Value, s.describeBound(VarID(v)))
		if vi.IsBase {
			fmt.Fprintf(&b, " b:r%d", vi.Base2Row)
		}
		b.WriteByte('\n')
	}
	for _, in := range s.ineqs {
		op := "<="
		if in.Strict {
			op = "<"
		}
		fmt.Fprintf(&b, "v%d %s v%d\n", in.V, op, in.W)
	}
	return b.String()
}

func (s *Solver) describeBound(v VarID) string {
	vi := s.vars[v]
	if vi.Bound.Free {
		return "[free)"
	}
	return fmt.Sprintf("[%d,%d)", vi.Bound.Lo, vi.Bound.Hi)
}

// DescribeRow renders one row's entries for debugging.
func (s *Solver) DescribeRow(r RowID) string {
	row, ok := s.rows[r]
	if !ok {
		return fmt.Sprintf("r%d: <deleted>", r)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "r%d := %d : ", r, row.Value)
	for i, e := range s.tab.RowEntries(r) {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%d*v%d", e.Coeff, e.Var)
	}
	fmt.Fprintf(&b, " (base v%d coeff %d)", row.Base, row.BaseCoeff)
	return b.String()
}

// WellFormed checks the row and basis invariants of spec.md §3,
// panicking with InternalInvariantBroken on violation (spec.md §7).
// Intended for tests; production code does not call it on every
// operation.
func (s *Solver) WellFormed() bool {
	for r, row := range s.rows {
		assertWellFormed(s.isBase(row.Base), "row r%d's recorded base v%d is not marked base", r, row.Base)
		assertWellFormed(s.base2row(row.Base) == r, "row r%d's base v%d points back to a different row", r, row.Base)
		s.wellFormedRow(r)
	}
	for v := range s.vars {
		if !s.isBase(VarID(v)) {
			assertWellFormed(s.inBounds(VarID(v)), "non-base v%d is out of bounds", v)
		}
	}
	return true
}

func (s *Solver) wellFormedRow(r RowID) {
	row := s.rows[r]
	var sum Numeral
	for _, e := range s.tab.RowEntries(r) {
		sum = s.ring.Add(sum, s.ring.Mul(s.value(e.Var), e.Coeff))
		if e.Var == row.Base {
			assertWellFormed(e.Coeff == row.BaseCoeff, "row r%d base coefficient mismatch", r)
		}
	}
	assertWellFormed(sum == s.ring.Add(row.Value, s.ring.Mul(row.BaseCoeff, s.value(row.Base))),
		"row r%d value cache diverges from its entries", r)
}
