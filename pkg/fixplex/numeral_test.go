package fixplex

import "testing"

func TestRingAddSubNeg(t *testing.T) {
	r := NewRing(8)

	tests := []struct {
		name string
		a, b Numeral
		want Numeral
	}{
		{"no_wrap", 10, 20, 30},
		{"wraps", 250, 10, 4},
		{"add_zero", 7, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Add(tt.a, tt.b); got != tt.want {
				t.Errorf("Add(%d,%d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if got := r.Neg(1); got != 255 {
		t.Errorf("Neg(1) = %d, want 255", got)
	}
	if got := r.Sub(5, 10); got != r.Add(5, r.Neg(10)) {
		t.Errorf("Sub(5,10) = %d, want %d", got, r.Add(5, r.Neg(10)))
	}
}

func TestRingMask(t *testing.T) {
	r8 := NewRing(8)
	if got := r8.Mask(300); got != 300-256 {
		t.Errorf("Mask(300) width 8 = %d, want %d", got, 300-256)
	}
	r64 := NewRing(64)
	if got := r64.Mask(^uint64(0)); got != ^uint64(0) {
		t.Errorf("Mask(max) width 64 = %d, want max", got)
	}
}

func TestRingTz(t *testing.T) {
	r := NewRing(8)
	tests := []struct {
		x    Numeral
		want uint
	}{
		{0, 8},
		{1, 0},
		{2, 1},
		{4, 2},
		{8, 3},
		{12, 2},
		{128, 7},
	}
	for _, tt := range tests {
		if got := r.Tz(tt.x); got != tt.want {
			t.Errorf("Tz(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestRingIsEven(t *testing.T) {
	r := NewRing(8)
	if !r.IsEven(0) || !r.IsEven(2) || !r.IsEven(254) {
		t.Error("expected 0, 2, 254 to be even")
	}
	if r.IsEven(1) || r.IsEven(255) {
		t.Error("expected 1, 255 to be odd")
	}
}

func TestRingOddInverse(t *testing.T) {
	r := NewRing(8)
	for x := Numeral(1); x < 256; x += 2 {
		inv := r.OddInverse(x)
		if got := r.Mul(x, inv); got != 1 {
			t.Errorf("OddInverse(%d) = %d, x*inv = %d, want 1", x, inv, got)
		}
	}
}

func TestRingOddInversePanicsOnEven(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling OddInverse on an even numeral")
		}
	}()
	NewRing(8).OddInverse(2)
}

func TestRingFromRational(t *testing.T) {
	r := NewRing(8)

	got, err := r.FromRational(1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1/3 mod 256: 3*got == 1 (mod 256)
	if r.Mul(3, got) != 1 {
		t.Errorf("FromRational(1,3) = %d, 3*that = %d, want 1", got, r.Mul(3, got))
	}

	if _, err := r.FromRational(1, 2); err != ErrEvenDenominator {
		t.Errorf("FromRational(1,2) error = %v, want ErrEvenDenominator", err)
	}

	neg, err := r.FromRational(-1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Add(got, neg) != 0 {
		t.Errorf("FromRational(1,3) + FromRational(-1,3) = %d, want 0", r.Add(got, neg))
	}
}

func TestRingSolveFor(t *testing.T) {
	r := NewRing(8)

	t.Run("coeff_one", func(t *testing.T) {
		x := r.SolveFor(7, 1)
		if got := r.Add(r.Mul(1, x), 7); got != 0 {
			t.Errorf("1*x + 7 = %d, want 0 (x=%d)", got, x)
		}
	})

	t.Run("coeff_minus_one", func(t *testing.T) {
		c := r.Neg(1)
		x := r.SolveFor(7, c)
		if got := r.Add(r.Mul(c, x), 7); got != 0 {
			t.Errorf("-1*x + 7 = %d, want 0 (x=%d)", got, x)
		}
	})

	t.Run("odd_coeff_exact", func(t *testing.T) {
		// 3*x + 9 == 0 (mod 256) has the exact solution x such that
		// 3x == -9, i.e. x == -3 == 253.
		x := r.SolveFor(9, 3)
		if got := r.Add(r.Mul(3, x), 9); got != 0 {
			t.Errorf("3*x + 9 = %d, want 0 (x=%d)", got, x)
		}
	})
}
