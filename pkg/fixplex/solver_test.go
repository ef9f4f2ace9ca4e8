package fixplex

import "testing"

func TestSetBoundsIntersectsAndRejectsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSolver(cfg)
	var x VarID = 0

	if err := s.SetBounds(x, 2, 10, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.GetBounds(x); got != (Interval{Lo: 2, Hi: 10}) {
		t.Fatalf("bounds = %+v, want [2,10)", got)
	}

	if err := s.SetBounds(x, 5, 7, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.GetBounds(x); got != (Interval{Lo: 5, Hi: 7}) {
		t.Fatalf("bounds after intersect = %+v, want [5,7)", got)
	}

	if err := s.SetBounds(x, 20, 21, "disjoint"); err != ErrDomainEmpty {
		t.Fatalf("SetBounds with disjoint range error = %v, want ErrDomainEmpty", err)
	}
}

func TestSetValueIsPointInterval(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSolver(cfg)
	var x VarID = 0

	if err := s.SetValue(x, 42, "pinned"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.isFixed(x) {
		t.Error("expected x to be fixed after SetValue")
	}
	if got := s.GetValue(x); got != 42 {
		t.Errorf("GetValue = %d, want 42", got)
	}
}

func TestPushPopRestoresBounds(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSolver(cfg)
	var x VarID = 0

	_ = s.SetBounds(x, 0, 10, "initial")
	before := s.GetBounds(x)

	s.Push()
	_ = s.SetBounds(x, 0, 5, "tightened")
	if got := s.GetBounds(x); got == before {
		t.Fatal("bounds did not change after tightening inside pushed scope")
	}

	s.Pop(1)
	if got := s.GetBounds(x); got != before {
		t.Errorf("bounds after pop = %+v, want restored %+v", got, before)
	}
}

func TestPushPopRestoresRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y VarID = 0, 1

	_ = s.SetBounds(x, 0, 4, "x-bounds")
	s.Push()
	if err := s.AddRow(x, []VarID{x, y}, []Numeral{3, 5}); err != nil {
		t.Fatalf("add_row error: %v", err)
	}
	if !s.isBase(x) {
		t.Fatal("expected x to be base after AddRow")
	}

	s.Pop(1)
	if s.isBase(x) {
		t.Error("expected x to no longer be base after pop")
	}
	if !s.ring.IntervalIsFree(s.GetBounds(x)) {
		t.Errorf("expected x's bound restored to free, got %+v", s.GetBounds(x))
	}
}

func TestAddRowRejectsAlreadyBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y, z VarID = 0, 1, 2

	if err := s.AddRow(x, []VarID{x, y}, []Numeral{1, 1}); err != nil {
		t.Fatalf("first add_row error: %v", err)
	}
	if err := s.AddRow(x, []VarID{x, z}, []Numeral{1, 1}); err == nil {
		t.Fatal("expected error adding a second row with the same base")
	}
}

func TestAddRowRejectsZeroBaseCoeff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y VarID = 0, 1

	if err := s.AddRow(x, []VarID{x, y}, []Numeral{0, 1}); err == nil {
		t.Fatal("expected error when base's coefficient is zero")
	}
}

func TestPivotRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y VarID = 0, 1

	if err := s.SetBounds(x, 0, 4, "x-bounds"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddRow(x, []VarID{x, y}, []Numeral{3, 5}); err != nil {
		t.Fatalf("add_row error: %v", err)
	}

	result := s.MakeFeasible()
	if result != LTrue {
		t.Fatalf("make_feasible = %s, want true", result)
	}
	if !s.inBounds(x) {
		t.Errorf("x out of bounds after make_feasible: value=%d bounds=%+v", s.GetValue(x), s.GetBounds(x))
	}
	got := s.ring.Add(s.ring.Mul(3, s.GetValue(x)), s.ring.Mul(5, s.GetValue(y)))
	if got != 0 {
		t.Errorf("row invariant violated: 3*%d + 5*%d = %d, want 0", s.GetValue(x), s.GetValue(y), got)
	}
}

func TestEvenCoefficientParityConflict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y VarID = 0, 1

	if err := s.SetBounds(y, 3, 4, "y-fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddRow(x, []VarID{x, y}, []Numeral{2, 1}); err != nil {
		t.Fatalf("add_row error: %v", err)
	}

	result := s.MakeFeasible()
	if result != LFalse {
		t.Fatalf("make_feasible = %s, want false (parity conflict)", result)
	}
	core := s.UnsatCore()
	if len(core) != 1 || core[0] != DepToken("y-fixed") {
		t.Errorf("unsat_core = %v, want [y-fixed]", core)
	}
}

func TestWrapAroundInequalityPropagation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 4
	s := NewSolver(cfg)
	var v, w VarID = 0, 1

	if err := s.SetBounds(v, 14, 2, "v-wrap"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetBounds(w, 0, 3, "w-bounds"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.AddIneq(v, w, "v<w", true)

	result := s.PropagateBounds()
	if result != LTrue {
		t.Fatalf("propagate_bounds = %s, want true", result)
	}
	if got := s.GetBounds(v); got != (Interval{Lo: 0, Hi: 2}) {
		t.Errorf("bounds(v) = %+v, want [0,2)", got)
	}
	if got := s.GetBounds(w); got != (Interval{Lo: 1, Hi: 3}) {
		t.Errorf("bounds(w) = %+v, want [1,3)", got)
	}
}

func TestConflictChainUnsatWithoutBranching(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 32
	s := NewSolver(cfg)
	var x, y, z VarID = 0, 1, 2
	s.EnsureVar(x)
	s.EnsureVar(y)
	s.EnsureVar(z)

	s.AddIneq(x, y, "x<=y", false)
	s.AddIneq(y, z, "y<=z", false)
	s.AddIneq(z, x, "z<x", true)

	result := s.MakeFeasible()
	if result != LFalse {
		t.Fatalf("make_feasible = %s, want false", result)
	}
	core := s.UnsatCore()
	seen := map[DepToken]bool{}
	for _, tok := range core {
		seen[tok] = true
	}
	for _, want := range []DepToken{"x<=y", "y<=z", "z<x"} {
		if !seen[want] {
			t.Errorf("unsat_core %v missing %v", core, want)
		}
	}
}

func TestBlandFallbackTerminates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	cfg.MaxIterations = 50
	cfg.BlandsRuleThreshold = 2
	s := NewSolver(cfg)

	var a, b, c, d VarID = 0, 1, 2, 3
	_ = s.SetBounds(a, 0, 3, "a-bounds")
	_ = s.SetBounds(b, 0, 3, "b-bounds")
	_ = s.SetBounds(c, 0, 3, "c-bounds")
	_ = s.SetBounds(d, 5, 6, "d-fixed")

	if err := s.AddRow(a, []VarID{a, b, c, d}, []Numeral{1, 1, 1, 1}); err != nil {
		t.Fatalf("add_row error: %v", err)
	}

	result := s.MakeFeasible()
	if result != LFalse && result != LTrue && result != LUndef {
		t.Fatalf("make_feasible returned an invalid Lbool: %v", result)
	}
}

func TestWellFormedAfterFeasibleRow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var x, y VarID = 0, 1

	_ = s.SetBounds(x, 0, 10, "x-bounds")
	_ = s.SetBounds(y, 0, 10, "y-bounds")
	if err := s.AddRow(x, []VarID{x, y}, []Numeral{1, 1}); err != nil {
		t.Fatalf("add_row error: %v", err)
	}
	if s.MakeFeasible() != LTrue {
		t.Fatal("expected a trivially feasible row to resolve true")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("WellFormed panicked: %v", r)
		}
	}()
	s.WellFormed()
}

func TestStatsTracksChecks(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSolver(cfg)
	s.EnsureVar(0)
	s.MakeFeasible()
	if got := s.Stats()["num checks"]; got != 1 {
		t.Errorf("num checks = %d, want 1", got)
	}
}
