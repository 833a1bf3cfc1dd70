// Package animation drives the snap-target rectangle towards its destination
// with a damped spring.
package animation

import (
	"math"

	"github.com/1broseidon/gulp/internal/geom"
)

const (
	// Stiffness is the spring constant shared by all four axes.
	Stiffness = 400.0

	// MaxStep caps a single integration step in seconds.
	MaxStep = 0.016

	snapThreshold     = 0.5
	positionThreshold = 5.0
	velocityThreshold = 50.0
)

// Damping is slightly above critical so the rectangle never overshoots.
var Damping = 2 * math.Sqrt(Stiffness) * 1.1

const (
	axisX = iota
	axisY
	axisW
	axisH
	numAxes
)

// Spring animates x, y, width and height independently towards a shared
// target rectangle.
type Spring struct {
	pos    [numAxes]float64
	vel    [numAxes]float64
	target [numAxes]float64
}

// New returns a spring at rest on initial.
func New(initial geom.Rect) *Spring {
	s := &Spring{}
	s.pos = toAxes(initial)
	s.target = s.pos
	return s
}

// SetTarget changes the destination. Position and velocity are kept so the
// motion bends smoothly towards the new target.
func (s *Spring) SetTarget(target geom.Rect) {
	s.target = toAxes(target)
}

// Target returns the current destination.
func (s *Spring) Target() geom.Rect {
	return geom.Rect{
		X:      int(s.target[axisX]),
		Y:      int(s.target[axisY]),
		Width:  int(s.target[axisW]),
		Height: int(s.target[axisH]),
	}
}

// Update advances the simulation by dt seconds using semi-implicit Euler.
func (s *Spring) Update(dt float64) {
	if dt > MaxStep {
		dt = MaxStep
	}
	if dt <= 0 {
		return
	}
	for i := 0; i < numAxes; i++ {
		force := -Stiffness*(s.pos[i]-s.target[i]) - Damping*s.vel[i]
		s.vel[i] += force * dt
		s.pos[i] += s.vel[i] * dt
	}
}

// Current returns the animated rectangle rounded to whole pixels. Axes within
// half a pixel of the target report the target exactly.
func (s *Spring) Current() geom.Rect {
	var out [numAxes]int
	for i := 0; i < numAxes; i++ {
		v := s.pos[i]
		if math.Abs(v-s.target[i]) < snapThreshold {
			v = s.target[i]
		}
		out[i] = int(math.Round(v))
	}
	return geom.Rect{X: out[axisX], Y: out[axisY], Width: out[axisW], Height: out[axisH]}
}

// IsSettled reports whether the spring is close enough to rest that the
// caller can poll at a lower rate.
func (s *Spring) IsSettled() bool {
	for i := 0; i < numAxes; i++ {
		if math.Abs(s.pos[i]-s.target[i]) >= positionThreshold {
			return false
		}
		if math.Abs(s.vel[i]) >= velocityThreshold {
			return false
		}
	}
	return true
}

func toAxes(r geom.Rect) [numAxes]float64 {
	return [numAxes]float64{float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height)}
}
