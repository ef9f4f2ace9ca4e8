package fixplex

import (
	"reflect"
	"testing"
)

func TestDepSetLeafLinearize(t *testing.T) {
	d := NewDepSet()
	a := d.Leaf("a")
	b := d.Leaf("b")
	c := d.Leaf("c")

	ab := d.Join(a, b)
	abc := d.Join(ab, c)

	got := d.Linearize(abc)
	want := []DepToken{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Linearize = %v, want %v", got, want)
	}
}

func TestDepSetJoinIdentityAndIdempotent(t *testing.T) {
	d := NewDepSet()
	a := d.Leaf("a")

	if got := d.Join(a, NullDep); got != a {
		t.Errorf("Join(a,null) = %+v, want %+v", got, a)
	}
	if got := d.Join(NullDep, a); got != a {
		t.Errorf("Join(null,a) = %+v, want %+v", got, a)
	}
	if got := d.Join(a, a); got != a {
		t.Errorf("Join(a,a) = %+v, want %+v (idempotent)", got, a)
	}
}

func TestDepSetLinearizeDedupesSharedNode(t *testing.T) {
	d := NewDepSet()
	a := d.Leaf("a")
	b := d.Leaf("b")
	ab := d.Join(a, b)
	// Both branches reference the same ab node; "a" and "b" must each
	// appear only once.
	root := d.Join(ab, ab)

	got := d.Linearize(root)
	want := []DepToken{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Linearize(shared) = %v, want %v", got, want)
	}
}

func TestDepSetNullLinearize(t *testing.T) {
	d := NewDepSet()
	if got := d.Linearize(NullDep); got != nil {
		t.Errorf("Linearize(null) = %v, want nil", got)
	}
}

func TestDepSetPushPopScope(t *testing.T) {
	d := NewDepSet()
	outer := d.Leaf("outer")

	d.PushScope()
	inner := d.Leaf("inner")
	_ = inner
	if d.Depth() != 1 {
		t.Errorf("Depth after PushScope = %d, want 1", d.Depth())
	}

	d.PopScope(1)
	if d.Depth() != 0 {
		t.Errorf("Depth after PopScope = %d, want 0", d.Depth())
	}

	// outer, allocated before the scope, is still valid.
	got := d.Linearize(outer)
	want := []DepToken{"outer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Linearize(outer) after pop = %v, want %v", got, want)
	}
}

func TestDepSetStaleReferenceAfterPopPanics(t *testing.T) {
	d := NewDepSet()
	d.PushScope()
	inner := d.Leaf("inner")
	d.PopScope(1)

	defer func() {
		if recover() == nil {
			t.Error("expected panic linearizing a dep reference from a popped scope")
		}
	}()
	d.Linearize(inner)
}
