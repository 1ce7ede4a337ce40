package components

import (
	"math"
	"testing"
)

func TestPoint3Arithmetic(t *testing.T) {
	p := Point3{1, 2, 3}
	q := Point3{0.5, -2, 1}

	if got := p.Add(q); got != (Point3{1.5, 0, 4}) {
		t.Errorf("Add = %v", got)
	}
	if got := p.Scale(2); got != (Point3{2, 4, 6}) {
		t.Errorf("Scale = %v", got)
	}
	if got := (Point3{3, 4, 0}).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
}

func TestPoint3IsFinite(t *testing.T) {
	if !(Point3{1, 2, 3}).IsFinite() {
		t.Error("expected finite point")
	}
	if (Point3{math.NaN(), 0, 0}).IsFinite() {
		t.Error("NaN should not be finite")
	}
	if (Point3{0, math.Inf(1), 0}).IsFinite() {
		t.Error("Inf should not be finite")
	}
}
