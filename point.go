package splinefit

import (
	"fmt"
	"math"
)

// === Point Data Type =======================================================

// Point is a point in R² or R³. The fitting pipeline carries mixed 2D
// and 3D boundary data, so points are slice-backed rather than fixed
// structs; all operations return new points and never mutate their
// receiver.
type Point []float64

// Pt is a quick notation for constructing a point from floats.
func Pt(coords ...float64) Point {
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			tracer().Errorf("created point with non-finite coordinate")
		}
	}
	p := make(Point, len(coords))
	copy(p, coords)
	return p
}

// Dim is the dimensionality of a point (2 or 3 for valid data).
func (p Point) Dim() int {
	return len(p)
}

// X is the x-part of a point.
func (p Point) X() float64 {
	return p[0]
}

// Y is the y-part of a point.
func (p Point) Y() float64 {
	return p[1]
}

// Z is the z-part of a point, or 0 for a 2D point.
func (p Point) Z() float64 {
	if len(p) < 3 {
		return 0
	}
	return p[2]
}

// Clone returns an independent copy of a point.
func (p Point) Clone() Point {
	q := make(Point, len(p))
	copy(q, p)
	return q
}

// Pretty Stringer for points.
func (p Point) String() string {
	if len(p) == 3 {
		return fmt.Sprintf("(%g,%g,%g)", p[0], p[1], p[2])
	}
	if len(p) == 2 {
		return fmt.Sprintf("(%g,%g)", p[0], p[1])
	}
	return fmt.Sprintf("%v", []float64(p))
}

// Add returns a new point p + q.
func (p Point) Add(q Point) Point {
	r := p.Clone()
	for i := range r {
		r[i] += q[i]
	}
	return r
}

// Sub returns a new point p - q.
func (p Point) Sub(q Point) Point {
	r := p.Clone()
	for i := range r {
		r[i] -= q[i]
	}
	return r
}

// Scaled returns a new point scaled by factor a.
func (p Point) Scaled(a float64) Point {
	r := p.Clone()
	for i := range r {
		r[i] *= a
	}
	return r
}

// Dot is the dot product of two points (as vectors).
func (p Point) Dot(q Point) float64 {
	var d float64
	for i := range p {
		d += p[i] * q[i]
	}
	return d
}

// DistSq is the squared Euclidean distance between two points.
// The projection search minimizes this to avoid a square root per probe.
func (p Point) DistSq(q Point) float64 {
	var d float64
	for i := range p {
		diff := p[i] - q[i]
		d += diff * diff
	}
	return d
}

// Dist is the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	return math.Sqrt(p.DistSq(q))
}

// Lerp interpolates linearly between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	r := p.Clone()
	for i := range r {
		r[i] += t * (q[i] - p[i])
	}
	return r
}

// Equal compares two points to ε.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !Is0(p[i] - q[i]) {
			return false
		}
	}
	return true
}

// Zap rounds every coordinate to ε.
func (p Point) Zap() Point {
	r := p.Clone()
	for i := range r {
		r[i] = Zap(r[i])
	}
	return r
}

// Linspace returns n points evenly spaced from a to b, endpoints
// included. Used to seed straight-line curves between boundary
// anchors. n must be at least 2.
func Linspace(a, b Point, n int) []Point {
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = a.Lerp(b, t)
	}
	pts[0] = a.Clone()
	pts[n-1] = b.Clone()
	return pts
}
