package b2d

import (
	"math"
	"testing"
)

func TestVector_Normalize(t *testing.T) {
	v := Vector{}
	u := v.Normalize()
	if u.X != 0.0 || u.Y != 0.0 {
		t.Errorf("Expected zero vector, got %v", u)
	}

	u = Vector{3, 4}.Normalize()
	if math.Abs(u.Length()-1) > 1e-12 {
		t.Errorf("Expected unit vector, got %v", u)
	}
}

func TestVector_CrossPerp(t *testing.T) {
	r := Vector{2, 0}
	w := 3.0
	// velocity of a point on a spinning body is w x r
	v := r.Perp().Mult(w)
	if !v.Equal(Vector{0, 6}) {
		t.Errorf("Expected 0,6 got %v", v)
	}
	if r.Cross(Vector{0, 1}) != 2 {
		t.Error("Expected cross product of 2")
	}
}

func TestVector_IsValid(t *testing.T) {
	if !(Vector{1, 2}).IsValid() {
		t.Error("Expected valid vector")
	}
	if (Vector{math.NaN(), 0}).IsValid() {
		t.Error("NaN must be invalid")
	}
	if (Vector{0, math.Inf(1)}).IsValid() {
		t.Error("Inf must be invalid")
	}
}
