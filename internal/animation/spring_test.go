package animation

import (
	"math"
	"testing"

	"github.com/1broseidon/gulp/internal/geom"
)

func TestSpringAtRestStaysPut(t *testing.T) {
	r := geom.Rect{X: 100, Y: 200, Width: 300, Height: 150}
	s := New(r)
	if !s.IsSettled() {
		t.Fatal("new spring on its own target should be settled")
	}
	for _, dt := range []float64{0, 0.001, 0.016, 0.5, 10} {
		s.Update(dt)
		if got := s.Current(); got != r {
			t.Fatalf("Update(%v) moved resting spring to %+v", dt, got)
		}
		if !s.IsSettled() {
			t.Fatalf("Update(%v) unsettled resting spring", dt)
		}
	}
}

func TestSpringConvergesWithoutOvershoot(t *testing.T) {
	start := geom.Rect{X: 0, Y: 0, Width: 1, Height: 1}
	target := geom.Rect{X: 400, Y: 300, Width: 200, Height: 100}

	s := New(start)
	s.SetTarget(target)
	if s.IsSettled() {
		t.Fatal("displaced spring should not be settled")
	}

	prev := math.Inf(1)
	for i := 0; i < 600; i++ {
		s.Update(0.008)
		for axis := 0; axis < numAxes; axis++ {
			if s.target[axis] > 0 && s.pos[axis] > s.target[axis]+1e-9 {
				t.Fatalf("axis %d overshot at tick %d: pos=%v target=%v", axis, i, s.pos[axis], s.target[axis])
			}
		}
		d := distance(s)
		if d > prev+1e-9 {
			t.Fatalf("distance to target grew at tick %d: %v -> %v", i, prev, d)
		}
		prev = d
	}

	if got := s.Current(); got != target {
		t.Fatalf("Current() = %+v, want %+v", got, target)
	}
	if !s.IsSettled() {
		t.Fatal("expected spring to settle")
	}
}

func TestSpringClampsLargeSteps(t *testing.T) {
	a := New(geom.Rect{})
	a.SetTarget(geom.Rect{X: 100})
	b := New(geom.Rect{})
	b.SetTarget(geom.Rect{X: 100})

	a.Update(MaxStep)
	b.Update(5)

	if a.pos != b.pos || a.vel != b.vel {
		t.Fatalf("large dt not clamped: %v/%v vs %v/%v", a.pos, a.vel, b.pos, b.vel)
	}
}

func TestSetTargetKeepsVelocity(t *testing.T) {
	s := New(geom.Rect{})
	s.SetTarget(geom.Rect{X: 500, Y: 500, Width: 10, Height: 10})
	for i := 0; i < 5; i++ {
		s.Update(0.016)
	}
	vel := s.vel
	pos := s.pos

	s.SetTarget(geom.Rect{X: -500})
	if s.vel != vel || s.pos != pos {
		t.Fatal("SetTarget must not reset position or velocity")
	}
	if s.Target() != (geom.Rect{X: -500}) {
		t.Fatalf("Target() = %+v", s.Target())
	}
}

func TestCurrentSnapsSubPixel(t *testing.T) {
	s := New(geom.Rect{X: 10, Y: 10, Width: 10, Height: 10})
	s.pos[axisX] = 10.4
	s.pos[axisY] = 10.6
	got := s.Current()
	if got.X != 10 {
		t.Fatalf("X within snap threshold should report target, got %d", got.X)
	}
	if got.Y != 11 {
		t.Fatalf("Y outside snap threshold should round, got %d", got.Y)
	}
}

func distance(s *Spring) float64 {
	var sum float64
	for i := 0; i < numAxes; i++ {
		d := s.pos[i] - s.target[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
