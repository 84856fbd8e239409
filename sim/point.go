// Defines the Point value type used for all spatial arithmetic in the
// simulation: driver positions, pickup and dropoff locations.

package sim

import (
	"fmt"
	"math"
)

// Point is an immutable 2D coordinate. All operations return new values;
// nothing in the simulation mutates a Point in place.
type Point struct {
	X float64
	Y float64
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the component-wise sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point multiplied by a scalar.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Valid reports whether both coordinates are finite.
// Entities holding Points reject non-finite coordinates at construction.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}
