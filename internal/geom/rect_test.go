package geom

import "testing"

func TestFromPointsOrderIndependent(t *testing.T) {
	corners := [][4]int{
		{10, 10, 50, 40},
		{50, 40, 10, 10},
		{50, 10, 10, 40},
		{10, 40, 50, 10},
	}
	want := Rect{X: 10, Y: 10, Width: 40, Height: 30}
	for _, c := range corners {
		if got := FromPoints(c[0], c[1], c[2], c[3]); got != want {
			t.Fatalf("FromPoints(%v) = %+v, want %+v", c, got, want)
		}
	}

	for _, p := range [][4]int{{0, 0, 0, 0}, {-5, 3, 7, -9}, {100, 200, 100, 250}} {
		a := FromPoints(p[0], p[1], p[2], p[3])
		b := FromPoints(p[2], p[3], p[0], p[1])
		if a != b {
			t.Fatalf("FromPoints not symmetric for %v: %+v vs %+v", p, a, b)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		r    Rect
		want bool
	}{
		{Rect{0, 0, 1, 1}, true},
		{Rect{0, 0, 0, 10}, false},
		{Rect{0, 0, 10, 0}, false},
		{Rect{0, 0, -1, 5}, false},
	}
	for _, tt := range tests {
		if got := tt.r.IsValid(); got != tt.want {
			t.Fatalf("%+v.IsValid() = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestIntersectsSymmetricAndEdgeExclusive(t *testing.T) {
	base := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name string
		o    Rect
		want bool
	}{
		{"overlap", Rect{50, 50, 100, 100}, true},
		{"inside", Rect{10, 10, 5, 5}, true},
		{"right edge", Rect{100, 0, 50, 50}, false},
		{"bottom edge", Rect{0, 100, 50, 50}, false},
		{"left edge", Rect{-50, 0, 50, 50}, false},
		{"corner", Rect{100, 100, 10, 10}, false},
		{"disjoint", Rect{300, 300, 10, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.o); got != tt.want {
				t.Fatalf("base.Intersects(%+v) = %v, want %v", tt.o, got, tt.want)
			}
			if got := tt.o.Intersects(base); got != tt.want {
				t.Fatalf("%+v.Intersects(base) = %v, want %v", tt.o, got, tt.want)
			}
		})
	}
}

func TestContainsHalfOpen(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 200, Height: 150}
	if !r.Contains(100, 100) {
		t.Fatal("origin should be contained")
	}
	if !r.Contains(299, 249) {
		t.Fatal("last pixel should be contained")
	}
	if r.Contains(300, 120) || r.Contains(120, 250) {
		t.Fatal("right and bottom edges are exclusive")
	}
}

func TestTranslateAndIntersect(t *testing.T) {
	r := Rect{X: 1920, Y: 100, Width: 200, Height: 50}
	if got := r.Translate(-1920, 0); got != (Rect{0, 100, 200, 50}) {
		t.Fatalf("Translate = %+v", got)
	}

	a := Rect{0, 0, 100, 100}
	if got := a.Intersect(Rect{50, 60, 100, 100}); got != (Rect{50, 60, 50, 40}) {
		t.Fatalf("Intersect = %+v", got)
	}
	if got := a.Intersect(Rect{100, 0, 10, 10}); got != (Rect{}) {
		t.Fatalf("edge Intersect = %+v, want zero", got)
	}
}
