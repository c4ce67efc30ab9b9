/*
Package splinefit fits parametric B-spline curves to clouds of
measured 2D/3D sample points, recovering a compact control-point
representation for reverse-engineering and CAD-reconstruction
workflows.

The root package holds the numeric substrate: epsilon arithmetic and
the Point type shared by all solver packages. The actual machinery
lives in the subpackages:

  - bspline:  clamped B-spline curves and knot-vector generation
  - fit:      point-to-curve parameterization and the least-squares
    control-point solve
  - boundary: a container orchestrating "fit then parameterize" over
    raw boundary data

# BSD License

# Copyright (c) Sam Potter

All rights reserved.

Please refer to the license file for more information.
*/
package splinefit

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'splinefit'
func tracer() tracing.Trace {
	return tracing.Select("splinefit")
}

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// Round to ε.
func Round(n float64) float64 {
	return math.Round(n/Epsilon) * Epsilon
}
