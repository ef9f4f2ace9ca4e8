// Package main demonstrates the fixplex modular simplex solver against
// the named scenarios it is built to satisfy.
package main

import (
	"fmt"

	"github.com/gitrdm/fixplex/pkg/fixplex"
)

func main() {
	fmt.Println("=== fixplex examples ===")
	fmt.Println()

	conflictChain()
	pivotRoundTrip()
	evenCoefficientLossyPath()
	pushPopRestoration()
	blandAntiCycling()
	wrapAroundInequality()
}

// conflictChain runs spec.md §8's chain x <= y, y <= z, z < x at width
// 32 and prints make_feasible's result and the unsat core. make_feasible
// does not refute this chain: it reports undef.
func conflictChain() {
	fmt.Println("1. Conflict chain:")

	cfg := fixplex.DefaultConfig()
	cfg.Width = 32
	s := fixplex.NewSolver(cfg)

	var x, y, z fixplex.VarID = 0, 1, 2
	s.EnsureVar(x)
	s.EnsureVar(y)
	s.EnsureVar(z)
	s.AddIneq(x, y, "x<=y", false)
	s.AddIneq(y, z, "y<=z", false)
	s.AddIneq(z, x, "z<x", true)

	result := s.MakeFeasible()
	fmt.Printf("   make_feasible => %s\n", result)
	fmt.Printf("   unsat_core    => %v\n", s.UnsatCore())
	fmt.Println()
}

// pivotRoundTrip reproduces spec.md §8: width 8, row 3x + 5y = 0, base
// x, x in [0,4), y in [0,256). After make_feasible the row invariant
// and x's bound both hold.
func pivotRoundTrip() {
	fmt.Println("2. Pivot round-trip:")

	cfg := fixplex.DefaultConfig()
	cfg.Width = 8
	s := fixplex.NewSolver(cfg)

	var x, y fixplex.VarID = 0, 1
	if err := s.SetBounds(x, 0, 4, "x-bounds"); err != nil {
		fmt.Printf("   unexpected error: %v\n", err)
		return
	}
	// y is left at its default free interval.
	if err := s.AddRow(x, []fixplex.VarID{x, y}, []fixplex.Numeral{3, 5}); err != nil {
		fmt.Printf("   add_row error: %v\n", err)
		return
	}

	result := s.MakeFeasible()
	fmt.Printf("   make_feasible => %s\n", result)
	fmt.Printf("   value(x)=%d value(y)=%d\n", s.GetValue(x), s.GetValue(y))
}

// evenCoefficientLossyPath reproduces spec.md §8: width 8, row 2x + y =
// 0, x free, y fixed at 3. 2x == 253 (mod 256) has no solution, so the
// parity check must fail make_feasible with core {dep(y)}.
func evenCoefficientLossyPath() {
	fmt.Println()
	fmt.Println("3. Even-coefficient parity conflict:")

	cfg := fixplex.DefaultConfig()
	cfg.Width = 8
	s := fixplex.NewSolver(cfg)

	var x, y fixplex.VarID = 0, 1
	if err := s.SetBounds(y, 3, 4, "y-fixed"); err != nil {
		fmt.Printf("   unexpected error: %v\n", err)
		return
	}
	if err := s.AddRow(x, []fixplex.VarID{x, y}, []fixplex.Numeral{2, 1}); err != nil {
		fmt.Printf("   add_row error: %v\n", err)
		return
	}

	result := s.MakeFeasible()
	fmt.Printf("   make_feasible => %s\n", result)
	fmt.Printf("   unsat_core    => %v\n", s.UnsatCore())
}

// pushPopRestoration reproduces spec.md §8: set x in [0,10), push, set
// x in [0,5), pop 1, observe x restored to [0,10).
func pushPopRestoration() {
	fmt.Println()
	fmt.Println("4. Push/pop restoration:")

	cfg := fixplex.DefaultConfig()
	s := fixplex.NewSolver(cfg)
	var x fixplex.VarID = 0

	_ = s.SetBounds(x, 0, 10, "initial")
	before := s.GetBounds(x)

	s.Push()
	_ = s.SetBounds(x, 0, 5, "tightened")
	fmt.Printf("   after tighten: %+v\n", s.GetBounds(x))

	s.Pop(1)
	after := s.GetBounds(x)
	fmt.Printf("   after pop:     %+v (matches pre-push: %v)\n", after, after == before)
}

// blandAntiCycling runs make_feasible with a low Bland threshold and
// iteration cap on a single row a+b+c+d == 0. The row does not make the
// selector cycle: with a, b, c in [0,3) and d fixed at 5 its interval
// sum is [5,12), which excludes 0, so make_feasible reports false on
// the first pivot attempt.
func blandAntiCycling() {
	fmt.Println()
	fmt.Println("5. Bland anti-cycling:")

	cfg := fixplex.DefaultConfig()
	cfg.Width = 8
	cfg.MaxIterations = 50
	cfg.BlandsRuleThreshold = 2
	s := fixplex.NewSolver(cfg)

	var a, b, c, d fixplex.VarID = 0, 1, 2, 3
	_ = s.SetBounds(a, 0, 3, "a-bounds")
	_ = s.SetBounds(b, 0, 3, "b-bounds")
	_ = s.SetBounds(c, 0, 3, "c-bounds")
	_ = s.SetBounds(d, 5, 6, "d-fixed")

	if err := s.AddRow(a, []fixplex.VarID{a, b, c, d}, []fixplex.Numeral{1, 1, 1, 1}); err != nil {
		fmt.Printf("   add_row error: %v\n", err)
		return
	}

	result := s.MakeFeasible()
	fmt.Printf("   make_feasible => %s (bland threshold %d, iter cap %d)\n", result, cfg.BlandsRuleThreshold, cfg.MaxIterations)
}

// wrapAroundInequality reproduces spec.md §8: width 4, v in [14,2)
// ({14,15,0,1}), w in [0,3), assert v < w; propagation must tighten v
// to [0,2) and w to [1,3).
func wrapAroundInequality() {
	fmt.Println()
	fmt.Println("6. Wrap-around inequality:")

	cfg := fixplex.DefaultConfig()
	cfg.Width = 4
	s := fixplex.NewSolver(cfg)

	var v, w fixplex.VarID = 0, 1
	_ = s.SetBounds(v, 14, 2, "v-wrap")
	_ = s.SetBounds(w, 0, 3, "w-bounds")
	s.AddIneq(v, w, "v<w", true)

	result := s.PropagateBounds()
	fmt.Printf("   propagate_bounds => %s\n", result)
	fmt.Printf("   bounds(v)=%+v bounds(w)=%+v\n", s.GetBounds(v), s.GetBounds(w))
}
