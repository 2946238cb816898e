package b2d

import "testing"

func TestBroadPhase_UpdatePairs(t *testing.T) {
	bp := NewBroadPhase()
	ids := map[string]int{}
	for _, name := range []string{"a", "b", "c"} {
		ids[name] = bp.CreateProxy(NewBBForExtents(Vector{}, 1, 1), name)
	}

	type pair struct{ a, b int }
	seen := map[pair]int{}
	bp.UpdatePairs(func(userDataA, userDataB interface{}) {
		a := ids[userDataA.(string)]
		b := ids[userDataB.(string)]
		if a >= b {
			t.Errorf("pair %v,%v not ordered by proxy id", a, b)
		}
		seen[pair{a, b}]++
	})

	if len(seen) != 3 {
		t.Fatal("expected 3 pairs, got", seen)
	}
	for p, n := range seen {
		if n != 1 {
			t.Error("pair reported more than once", p)
		}
	}

	count := 0
	bp.UpdatePairs(func(interface{}, interface{}) { count++ })
	if count != 0 {
		t.Error("no proxy moved, expected no pairs, got", count)
	}
}

func TestBroadPhase_MoveApart(t *testing.T) {
	bp := NewBroadPhase()
	a := bp.CreateProxy(NewBBForExtents(Vector{}, 1, 1), "a")
	b := bp.CreateProxy(NewBBForExtents(Vector{1, 0}, 1, 1), "b")
	bp.UpdatePairs(func(interface{}, interface{}) {})

	if !bp.TestOverlap(a, b) {
		t.Fatal("expected overlap")
	}

	bp.MoveProxy(b, NewBBForExtents(Vector{20, 0}, 1, 1), Vector{19, 0})
	count := 0
	bp.UpdatePairs(func(interface{}, interface{}) { count++ })
	if count != 0 {
		t.Error("expected no pairs after moving apart, got", count)
	}
	if bp.TestOverlap(a, b) {
		t.Error("expected no overlap")
	}

	bp.DestroyProxy(a)
	if bp.ProxyCount() != 1 {
		t.Error("expected 1 proxy, got", bp.ProxyCount())
	}
}
