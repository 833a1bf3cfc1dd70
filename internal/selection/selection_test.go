package selection

import (
	"testing"

	"github.com/1broseidon/gulp/internal/geom"
)

func TestDragYieldsNormalizedRect(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
	}{
		{"forward", 10, 10, 50, 40},
		{"reversed", 50, 40, 10, 10},
	}
	want := geom.Rect{X: 10, Y: 10, Width: 40, Height: 30}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{})
			s.StartSelection(tt.x0, tt.y0)
			s.UpdateDrag(tt.x0, tt.y0, tt.x1, tt.y1)
			got, ok := s.Selection()
			if !ok {
				t.Fatal("expected a valid selection")
			}
			if got != want {
				t.Fatalf("Selection() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSelectionHiddenUntilNonZeroArea(t *testing.T) {
	s := New(Options{})
	if _, ok := s.Selection(); ok {
		t.Fatal("fresh selection should be empty")
	}

	s.StartSelection(100, 100)
	if s.Mode() != ModeSelecting {
		t.Fatalf("mode = %v, want selecting", s.Mode())
	}
	if _, ok := s.Selection(); ok {
		t.Fatal("zero-area seed must not be surfaced")
	}
	if r, ok := s.Rect(); !ok || r != (geom.Rect{X: 100, Y: 100}) {
		t.Fatalf("Rect() = %+v, %v", r, ok)
	}

	s.UpdateDrag(100, 100, 150, 100)
	if _, ok := s.Selection(); ok {
		t.Fatal("zero-height rect must not be surfaced")
	}
	s.UpdateDrag(100, 100, 100, 150)
	if _, ok := s.Selection(); ok {
		t.Fatal("zero-width rect must not be surfaced")
	}
	s.UpdateDrag(100, 100, 101, 101)
	if _, ok := s.Selection(); !ok {
		t.Fatal("1x1 rect should be valid")
	}
}

func TestUpdateDragIgnoredOutsideSelecting(t *testing.T) {
	s := New(Options{})
	s.UpdateDrag(0, 0, 100, 100)
	if _, ok := s.Rect(); ok {
		t.Fatal("drag in hover mode must be ignored")
	}

	s.StartSelection(0, 0)
	s.UpdateDrag(0, 0, 10, 10)
	s.Complete()
	s.UpdateDrag(0, 0, 500, 500)
	if r, _ := s.Selection(); r.Width != 10 {
		t.Fatalf("drag after completion changed rect: %+v", r)
	}
}

func TestPointModeCompletesOnPress(t *testing.T) {
	s := New(Options{PointMode: true})
	s.StartSelection(100, 200)
	if s.Mode() != ModeComplete {
		t.Fatalf("mode = %v, want complete", s.Mode())
	}
	got, ok := s.Selection()
	if !ok || got != (geom.Rect{X: 100, Y: 200, Width: 1, Height: 1}) {
		t.Fatalf("Selection() = %+v, %v", got, ok)
	}
}

func TestAspectRatioConstrainsDrag(t *testing.T) {
	s := New(Options{AspectRatio: 2})
	s.StartSelection(0, 0)

	s.UpdateDrag(0, 0, 400, 90)
	if r, _ := s.Rect(); r.Width != 180 || r.Height != 90 {
		t.Fatalf("wide drag = %+v, want 180x90", r)
	}

	s.UpdateDrag(0, 0, 160, 400)
	if r, _ := s.Rect(); r.Width != 160 || r.Height != 80 {
		t.Fatalf("tall drag = %+v, want 160x80", r)
	}
}

func TestCurrentSnapTargetPrefersAnimated(t *testing.T) {
	s := New(Options{})
	if _, ok := s.CurrentSnapTarget(); ok {
		t.Fatal("no snap target expected")
	}

	static := geom.Rect{X: 1, Y: 2, Width: 3, Height: 4}
	s.SetSnapTarget(&static)
	if got, _ := s.CurrentSnapTarget(); got != static {
		t.Fatalf("CurrentSnapTarget() = %+v, want static", got)
	}

	anim := geom.Rect{X: 5, Y: 6, Width: 7, Height: 8}
	s.SetAnimatedSnapTarget(&anim)
	anim.X = 999
	if got, _ := s.CurrentSnapTarget(); got.X != 5 {
		t.Fatalf("CurrentSnapTarget() = %+v, want animated copy", got)
	}

	s.SetAnimatedSnapTarget(nil)
	if got, _ := s.CurrentSnapTarget(); got != static {
		t.Fatalf("clearing animated should fall back to static, got %+v", got)
	}
}

func TestFromRect(t *testing.T) {
	r := geom.Rect{X: -10, Y: 5, Width: 20, Height: 20}
	s := FromRect(r)
	if got, ok := s.Selection(); !ok || got != r {
		t.Fatalf("FromRect selection = %+v, %v", got, ok)
	}
	if _, ok := s.CurrentSnapTarget(); ok {
		t.Fatal("FromRect should not carry snap targets")
	}
}
