package fixplex

import "testing"

func TestPropagateStrictBoundsTightensFreeSideAgainstFixed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var v, w VarID = 0, 1

	if err := s.SetValue(w, 5, "w-fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.EnsureVar(v)
	if !s.isFree(v) {
		t.Fatal("expected v to start free")
	}
	s.AddIneq(v, w, "v<w", true)

	idx := 0
	if ok := s.propagateStrictBounds(idx); !ok {
		t.Fatalf("propagate_strict_bounds returned false, want true; core=%v", s.UnsatCore())
	}
	if got := s.GetBounds(v); got != (Interval{Lo: 0, Hi: 5}) {
		t.Errorf("bounds(v) = %+v, want [0,5)", got)
	}
	if got := s.GetBounds(w); got != (Interval{Lo: 5, Hi: 6}) {
		t.Errorf("bounds(w) = %+v, want unchanged [5,6)", got)
	}
}

func TestPropagateStrictBoundsConflictBothFixedEqual(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var v, w VarID = 0, 1

	if err := s.SetValue(v, 5, "v-fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetValue(w, 5, "w-fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.AddIneq(v, w, "v<w", true)

	idx := 0
	if ok := s.propagateStrictBounds(idx); ok {
		t.Fatal("propagate_strict_bounds returned true, want false (v==w contradicts v<w)")
	}
	core := s.UnsatCore()
	seen := map[DepToken]bool{}
	for _, tok := range core {
		seen[tok] = true
	}
	for _, want := range []DepToken{"v<w", "v-fixed", "w-fixed"} {
		if !seen[want] {
			t.Errorf("unsat_core %v missing %v", core, want)
		}
	}
}

func TestPropagateBoundsIneqDispatchesOnStrictness(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 8
	s := NewSolver(cfg)
	var v, w VarID = 0, 1

	if err := s.SetValue(w, 5, "w-fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.EnsureVar(v)
	s.AddIneq(v, w, "v<=w", false)

	if ok := s.propagateBoundsIneq(0); !ok {
		t.Fatalf("propagate_bounds_ineq returned false, want true; core=%v", s.UnsatCore())
	}
	if got := s.GetBounds(v); got.Hi != 6 {
		t.Errorf("bounds(v).Hi = %d, want 6 (v<=w tightens to w's upper bound)", got.Hi)
	}
}
