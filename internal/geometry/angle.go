// Package geometry provides the pointer-to-angle math used by rotation gestures.
package geometry

import "math"

// FullTurn is the number of degrees in one revolution.
const FullTurn = 360.0

// Point is a position in adapter coordinates (y grows downward).
type Point struct {
	X float64
	Y float64
}

// Rect is a bounds snapshot of a visual item.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: r.Left + r.Width/2,
		Y: r.Top + r.Height/2,
	}
}

// Contains reports whether p lies inside the rectangle.
// The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// StepSize returns the width of one snap position in degrees.
// steps must be at least 1.
func StepSize(steps int) float64 {
	return FullTurn / float64(steps)
}

// Normalize maps any angle into [0, 360) using a true modulo,
// so negative input wraps around instead of keeping its sign.
func Normalize(degrees float64) float64 {
	d := math.Mod(degrees, FullTurn)
	if d < 0 {
		d += FullTurn
	}
	// math.Mod(-360, 360) is -0 and tiny negatives can round up to 360.
	if d == 0 || d >= FullTurn {
		return 0
	}
	return d
}

// Finite reports whether degrees is neither NaN nor infinite.
func Finite(degrees float64) bool {
	return !math.IsNaN(degrees) && !math.IsInf(degrees, 0)
}

// Finite reports whether both coordinates are finite.
func (p Point) Finite() bool {
	return Finite(p.X) && Finite(p.Y)
}

// Snap rounds an angle to the nearest multiple of 360/steps.
// Ties round away from zero, so 45 on a 90 degree grid becomes 90.
// Non-finite input snaps to 0.
func Snap(degrees float64, steps int) float64 {
	if !Finite(degrees) {
		return 0
	}
	k := int(math.Round(Normalize(degrees)/StepSize(steps)))
	k = (k%steps + steps) % steps
	return float64(k) * FullTurn / float64(steps)
}

// RawAngle returns the clockwise angle from "up" of the vector pivot->pointer,
// in [0, 360). A pointer exactly on the pivot yields 0.
func RawAngle(pivot, pointer Point) float64 {
	dx := pointer.X - pivot.X
	dy := pointer.Y - pivot.Y

	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	if deg < 0 {
		deg += FullTurn
	}
	return Normalize(deg)
}

// SnappedAngle converts a pointer position around pivot into an angle
// snapped to a grid of steps positions.
func SnappedAngle(pivot, pointer Point, steps int) float64 {
	return Snap(RawAngle(pivot, pointer), steps)
}

// AngularDistance returns the shortest distance between two angles, in [0, 180].
func AngularDistance(a, b float64) float64 {
	d := Normalize(a - b)
	if d > FullTurn/2 {
		d = FullTurn - d
	}
	return d
}
