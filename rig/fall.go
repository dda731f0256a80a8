package rig

import "github.com/golang/geo/r3"

// Thresholds of the fall detector, in meters and meters per second.
const (
	FallHeight        = 1.1
	FallSpeedHeight   = 1.5
	FallDownwardSpeed = 0.5
)

// FallDetector watches the head for a fall.
type FallDetector struct {
	dt      float64
	prev    r3.Vector
	hasPrev bool
}

// NewFallDetector returns a detector differentiating over a fixed step in seconds.
func NewFallDetector(dt float64) *FallDetector {
	return &FallDetector{dt: dt}
}

// Update reports whether the user is falling: the head is very low, or it is dropping fast
// while already low.
func (fd *FallDetector) Update(head r3.Vector) bool {
	var down float64
	if fd.hasPrev {
		down = -head.Sub(fd.prev).Mul(1 / fd.dt).Y
	}
	fd.prev = head
	fd.hasPrev = true
	return head.Y < FallHeight || (down > FallDownwardSpeed && head.Y < FallSpeedHeight)
}
