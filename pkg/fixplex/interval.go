package fixplex

import "golang.org/x/exp/slices"

// Interval is a closed-open modular interval [Lo, Hi) on a Ring, or the
// distinguished Free state (the entire ring, spec.md §4.2). Free is a
// separate flag rather than a sentinel (Lo,Hi) pair so that the
// representation can also express the empty interval via Lo == Hi
// without ambiguity, per spec.md §3's wording.
type Interval struct {
	Lo, Hi Numeral
	Free   bool
}

// FreeInterval returns the distinguished full-ring interval.
func FreeInterval() Interval {
	return Interval{Free: true}
}

// EmptyInterval returns the (unsatisfiable) empty interval.
func EmptyInterval() Interval {
	return Interval{}
}

// PointInterval returns the singleton interval {x}.
func PointInterval(r *Ring, x Numeral) Interval {
	return Interval{Lo: x, Hi: r.Add(x, 1)}
}

// IntervalIsEmpty reports whether iv contains no points.
func (r *Ring) IntervalIsEmpty(iv Interval) bool {
	return !iv.Free && iv.Lo == iv.Hi
}

// IntervalIsFree reports whether iv denotes the entire ring.
func (r *Ring) IntervalIsFree(iv Interval) bool {
	return iv.Free
}

// IntervalIsFixed reports whether iv has exactly one element
// (lo+1 == hi, the GLOSSARY's "fixed variable" condition).
func (r *Ring) IntervalIsFixed(iv Interval) bool {
	return !iv.Free && r.Add(iv.Lo, 1) == iv.Hi
}

// IntervalIsWrap reports whether iv wraps (lo > hi, i.e. [lo, 2^W) u [0, hi)).
func (r *Ring) IntervalIsWrap(iv Interval) bool {
	return !iv.Free && iv.Lo > iv.Hi
}

// IntervalContains reports whether x is a member of iv.
func (r *Ring) IntervalContains(iv Interval, x Numeral) bool {
	if iv.Free {
		return true
	}
	if iv.Lo == iv.Hi {
		return false // empty
	}
	if iv.Lo < iv.Hi {
		return iv.Lo <= x && x < iv.Hi
	}
	return x >= iv.Lo || x < iv.Hi
}

// IntervalLen returns the number of elements of iv. Callers must check
// IntervalIsFree first: a free interval's true length (2^W) may not fit
// in a uint64 when Width == 64, so this function only has a meaningful
// answer for non-free intervals.
func (r *Ring) IntervalLen(iv Interval) uint64 {
	if iv.Free {
		panic("fixplex: IntervalLen called on a free interval")
	}
	if iv.Lo < iv.Hi {
		return uint64(iv.Hi - iv.Lo)
	}
	if iv.Lo > iv.Hi {
		return r.mask() - uint64(iv.Lo) + uint64(iv.Hi) + 1
	}
	return 0
}

// IntervalClosestValue returns x if x is already a member of iv,
// otherwise iv.Lo (spec.md §4.2).
func (r *Ring) IntervalClosestValue(iv Interval, x Numeral) Numeral {
	if r.IntervalContains(iv, x) {
		return x
	}
	return iv.Lo
}

// IntervalNegate returns the interval of -y for y in iv.
func (r *Ring) IntervalNegate(iv Interval) Interval {
	if iv.Free || r.IntervalIsEmpty(iv) {
		return iv
	}
	return Interval{
		Lo: r.Add(r.Neg(iv.Hi), 1),
		Hi: r.Add(r.Neg(iv.Lo), 1),
	}
}

// IntervalScalarMul returns an interval containing c*y for every y in
// iv. For |c| == 1 this is exact (a bijection preserving or reversing
// the arc); for every other c the image of a contiguous arc under
// multiplication is a sparse arithmetic-progression lattice (step c),
// not itself a contiguous interval, so the result is the arc from
// c*lo stepping forward c*(len-1) — a sound over-approximation,
// matching spec.md §4.2's license to widen for even c (here applied
// uniformly since neither parity keeps images contiguous once |c|>1).
// When that span, taken on c's unsigned representative, reaches around
// the whole ring, the result is Free.
func (r *Ring) IntervalScalarMul(iv Interval, c Numeral) Interval {
	if iv.Free {
		return iv
	}
	if r.IntervalIsEmpty(iv) {
		return iv
	}
	if c == 0 {
		return PointInterval(r, 0)
	}
	if c == 1 {
		return iv
	}
	if r.Neg(c) == 1 { // c == -1
		return r.IntervalNegate(iv)
	}
	length := r.IntervalLen(iv)
	if length > 1 && c > (r.mask()-1)/(length-1) {
		return FreeInterval()
	}
	newLo := r.Mul(c, iv.Lo)
	span := r.Mul(c, Numeral(length-1))
	newHi := r.Add(newLo, r.Add(span, 1))
	if newLo == newHi {
		return FreeInterval()
	}
	return Interval{Lo: newLo, Hi: newHi}
}

// IntervalAdd returns the Minkowski sum {a+b : a in ivA, b in ivB},
// widening to free when the sum's span would cover the whole ring
// (spec.md §4.2: "widening to free if the sum would wrap around
// fully").
func (r *Ring) IntervalAdd(ivA, ivB Interval) Interval {
	if ivA.Free || ivB.Free {
		return FreeInterval()
	}
	if r.IntervalIsEmpty(ivA) || r.IntervalIsEmpty(ivB) {
		return EmptyInterval()
	}
	lenA := r.IntervalLen(ivA)
	lenB := r.IntervalLen(ivB)
	ringSize, exact := r.ringSize()
	span := lenA + lenB - 1
	if exact && span >= ringSize {
		return FreeInterval()
	}
	if !exact && (span < lenA || span < lenB) { // width-64 overflow: wrapped past 2^64
		return FreeInterval()
	}
	newLo := r.Add(ivA.Lo, ivB.Lo)
	newHi := r.Add(newLo, Numeral(span))
	if newLo == newHi {
		return FreeInterval()
	}
	return Interval{Lo: newLo, Hi: newHi}
}

// ringSize returns 2^W and true when representable in a uint64 (W<64);
// for W==64 it returns (0, false) since 2^64 overflows uint64.
func (r *Ring) ringSize() (uint64, bool) {
	if r.Width >= 64 {
		return 0, false
	}
	return uint64(1) << r.Width, true
}

// circularSegment is one arc of the partition used by IntervalIntersect.
type circularSegment struct {
	lo, hi   Numeral
	inA, inB bool
}

// IntervalIntersect returns the minimum interval containing exactly the
// points common to both ivA and ivB, per spec.md §4.2. Two arcs on a
// modular ring can intersect in up to two disjoint runs; since Interval
// can only represent a single contiguous arc (or free), a genuinely
// disjoint result is widened to Free — sound, and exactly the
// short-circuit spec.md §4.2 sanctions.
func (r *Ring) IntervalIntersect(ivA, ivB Interval) Interval {
	if ivA.Free {
		return ivB
	}
	if ivB.Free {
		return ivA
	}
	if r.IntervalIsEmpty(ivA) || r.IntervalIsEmpty(ivB) {
		return EmptyInterval()
	}

	pts := []Numeral{ivA.Lo, ivA.Hi, ivB.Lo, ivB.Hi}
	slices.Sort(pts)
	pts = slices.Compact(pts)
	n := len(pts)
	if n == 1 {
		// Both intervals share both boundaries; since neither is empty
		// they must be identical.
		return ivA
	}

	segs := make([]circularSegment, n)
	for i := 0; i < n; i++ {
		lo := pts[i]
		hi := pts[(i+1)%n]
		segs[i] = circularSegment{lo: lo, hi: hi, inA: r.IntervalContains(ivA, lo), inB: r.IntervalContains(ivB, lo)}
	}

	var inBoth []int
	for i, s := range segs {
		if s.inA && s.inB {
			inBoth = append(inBoth, i)
		}
	}
	if len(inBoth) == 0 {
		return EmptyInterval()
	}
	if len(inBoth) == n {
		return FreeInterval()
	}
	if isContiguousCircular(inBoth, n) {
		first, last := inBoth[0], inBoth[len(inBoth)-1]
		return Interval{Lo: segs[first].lo, Hi: segs[last].hi}
	}
	return FreeInterval()
}

// isContiguousCircular reports whether idx (sorted ascending, distinct,
// in [0,n)) forms a single contiguous run allowing one wrap-around.
func isContiguousCircular(idx []int, n int) bool {
	if len(idx) <= 1 {
		return true
	}
	breaks := 0
	for i := range idx {
		cur := idx[i]
		next := idx[(i+1)%len(idx)]
		if (cur+1)%n != next {
			breaks++
		}
	}
	return breaks <= 1
}
