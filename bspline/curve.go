// Package bspline implements clamped polynomial B-spline curves in R²
// and R³: knot vector generation, basis function evaluation and curve
// evaluation. Curves are immutable once constructed; the fitting
// machinery in package fit produces new curves rather than mutating
// existing ones.
package bspline

import (
	"fmt"

	"github.com/spotter/splinefit"
)

// Curve is a clamped polynomial B-spline curve of fixed degree.
// Construct one with New, which validates the clamped B-spline shape
// relation; the zero Curve is not usable.
type Curve struct {
	degree  int
	knots   KnotVector
	ctrlpts []splinefit.Point
}

// New builds a curve and validates it: the knot vector must have
// length len(ctrlpts)+degree+1, be non-decreasing and clamped, there
// must be at least degree+1 control points, and all control points
// must share a dimensionality of 2 or 3. Violations return
// ErrShapeMismatch.
func New(degree int, knots KnotVector, ctrlpts []splinefit.Point) (*Curve, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: degree %d must be at least 1", ErrShapeMismatch, degree)
	}
	if len(ctrlpts) < degree+1 {
		return nil, fmt.Errorf("%w: degree %d needs at least %d control points, got %d",
			ErrShapeMismatch, degree, degree+1, len(ctrlpts))
	}
	if len(knots) != len(ctrlpts)+degree+1 {
		return nil, fmt.Errorf("%w: knot vector length %d, expected %d",
			ErrShapeMismatch, len(knots), len(ctrlpts)+degree+1)
	}
	if !knots.IsNonDecreasing() {
		return nil, fmt.Errorf("%w: knot vector is not non-decreasing", ErrShapeMismatch)
	}
	if !knots.IsClamped(degree) {
		return nil, fmt.Errorf("%w: knot vector is not clamped for degree %d",
			ErrShapeMismatch, degree)
	}
	dim := ctrlpts[0].Dim()
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: control points must be in R2 or R3, got R%d",
			ErrShapeMismatch, dim)
	}
	for i, p := range ctrlpts {
		if p.Dim() != dim {
			return nil, fmt.Errorf("%w: control point %d has dimension %d, expected %d",
				ErrShapeMismatch, i, p.Dim(), dim)
		}
	}
	c := &Curve{
		degree:  degree,
		knots:   knots.Clone(),
		ctrlpts: make([]splinefit.Point, len(ctrlpts)),
	}
	for i, p := range ctrlpts {
		c.ctrlpts[i] = p.Clone()
	}
	return c, nil
}

// Line builds the degree+1 control point straight-line curve from a
// to b over a uniform clamped knot vector. It is the canonical
// initial curve for fitting boundary data between two anchors.
func Line(degree int, a, b splinefit.Point) (*Curve, error) {
	if a.Dim() != b.Dim() {
		return nil, fmt.Errorf("%w: endpoints have dimensions %d and %d",
			ErrShapeMismatch, a.Dim(), b.Dim())
	}
	kv, err := Uniform(degree, degree+1)
	if err != nil {
		return nil, err
	}
	c, err := New(degree, kv, splinefit.Linspace(a, b, degree+1))
	if err != nil {
		return nil, err
	}
	tracer().Debugf("initial line curve %s from %s to %s", c, a, b)
	return c, nil
}

// Degree of the curve.
func (c *Curve) Degree() int {
	return c.degree
}

// Knots returns a copy of the curve's knot vector.
func (c *Curve) Knots() KnotVector {
	return c.knots.Clone()
}

// ControlPoints returns a copy of the curve's control points.
func (c *Curve) ControlPoints() []splinefit.Point {
	pts := make([]splinefit.Point, len(c.ctrlpts))
	for i, p := range c.ctrlpts {
		pts[i] = p.Clone()
	}
	return pts
}

// NumCtrlpts is the number of control points.
func (c *Curve) NumCtrlpts() int {
	return len(c.ctrlpts)
}

// Dim is the dimensionality of the curve's control points (2 or 3).
func (c *Curve) Dim() int {
	return c.ctrlpts[0].Dim()
}

// Domain returns the curve's evaluation domain.
func (c *Curve) Domain() (float64, float64) {
	return c.knots.Domain(c.degree)
}

// clamp u into the closed evaluation domain. The curve is never
// extrapolated.
func (c *Curve) clamp(u float64) float64 {
	lo, hi := c.Domain()
	if u < lo {
		return lo
	}
	if u > hi {
		return hi
	}
	return u
}

// BasisFunctions evaluates the degree+1 nonzero basis weights at
// parameter u (clamped to the domain) and returns them together with
// the knot span index; weight i belongs to control point
// span-degree+i. The weights sum to 1 everywhere in the domain.
func (c *Curve) BasisFunctions(u float64) (int, []float64) {
	return c.knots.BasisFunctions(c.degree, c.clamp(u))
}

// Evaluate computes the curve point at parameter u, clamped to the
// domain. At the domain boundaries the first respectively last
// control point is reproduced exactly, as the clamped knot vector
// interpolates its endpoints.
func (c *Curve) Evaluate(u float64) splinefit.Point {
	u = c.clamp(u)
	lo, hi := c.Domain()
	if u == lo {
		return c.ctrlpts[0].Clone()
	}
	if u == hi {
		return c.ctrlpts[len(c.ctrlpts)-1].Clone()
	}
	span, weights := c.knots.BasisFunctions(c.degree, u)
	pt := make(splinefit.Point, c.Dim())
	for i, w := range weights {
		cp := c.ctrlpts[span-c.degree+i]
		for d := range pt {
			pt[d] += w * cp[d]
		}
	}
	return pt
}

// Derivative returns the hodograph of the curve: the degree-1 curve
// tracing the first derivative. The receiver must have degree 2 or
// higher, since curves of degree 0 are not representable here.
func (c *Curve) Derivative() (*Curve, error) {
	if c.degree < 2 {
		return nil, fmt.Errorf("%w: cannot derive curve of degree %d", ErrInvalidDegree, c.degree)
	}
	p := c.degree
	n := len(c.ctrlpts)
	dctrl := make([]splinefit.Point, n-1)
	for i := 0; i < n-1; i++ {
		span := c.knots[i+p+1] - c.knots[i+1]
		if splinefit.Is0(span) {
			// an interior knot of multiplicity degree+1 collapses the span
			return nil, fmt.Errorf("%w: zero knot span %d, cannot derive", ErrShapeMismatch, i)
		}
		dctrl[i] = c.ctrlpts[i+1].Sub(c.ctrlpts[i]).Scaled(float64(p) / span)
	}
	dknots := c.knots[1 : len(c.knots)-1].Clone()
	return New(p-1, dknots, dctrl)
}

// Debug Stringer for a curve.
func (c *Curve) String() string {
	return fmt.Sprintf("curve[degree %d, %d ctrlpts in R%d]", c.degree, len(c.ctrlpts), c.Dim())
}
