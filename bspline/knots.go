package bspline

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'splinefit'
func tracer() tracing.Trace {
	return tracing.Select("splinefit")
}

var (
	// ErrInvalidDegree indicates a degree for which no clamped knot vector
	// exists with the requested number of control points.
	ErrInvalidDegree = errors.New("invalid degree for control point count")
	// ErrShapeMismatch indicates inconsistent degree, knot vector and
	// control point lengths during curve construction.
	ErrShapeMismatch = errors.New("curve shape mismatch")
)

// KnotVector is a non-decreasing sequence of parameter values. For a
// clamped B-spline of degree p with n control points it has length
// n+p+1, with the first and last knot each repeated p+1 times.
type KnotVector []float64

// Uniform generates a clamped uniform knot vector on [0,1] for the
// given degree and control point count: degree+1 leading zeros,
// numCtrlpts-degree-1 interior knots evenly spaced in (0,1), and
// degree+1 trailing ones.
//
// Deterministic: identical arguments always produce identical
// sequences. Returns ErrInvalidDegree if degree < 1 or if
// numCtrlpts <= degree, since no clamped knot vector exists then.
func Uniform(degree, numCtrlpts int) (KnotVector, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: degree %d must be at least 1", ErrInvalidDegree, degree)
	}
	if numCtrlpts <= degree {
		return nil, fmt.Errorf("%w: %d control points for degree %d", ErrInvalidDegree,
			numCtrlpts, degree)
	}
	interior := numCtrlpts - degree - 1
	kv := make(KnotVector, 0, numCtrlpts+degree+1)
	for i := 0; i <= degree; i++ {
		kv = append(kv, 0)
	}
	for i := 1; i <= interior; i++ {
		kv = append(kv, float64(i)/float64(interior+1))
	}
	for i := 0; i <= degree; i++ {
		kv = append(kv, 1)
	}
	return kv, nil
}

// Clone returns an independent copy of the knot vector.
func (kv KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), kv...)
}

// Domain returns the evaluation domain [kv[degree], kv[len-degree-1]]
// of a curve of the given degree over this knot vector.
func (kv KnotVector) Domain(degree int) (float64, float64) {
	return kv[degree], kv[len(kv)-degree-1]
}

// Span finds the index of the knot span containing parameter u, by
// binary search (corresponds to algorithm 2.1 from The NURBS book,
// Piegl & Tiller 2nd edition). u outside the domain is treated as
// lying in the first or last non-empty span.
func (kv KnotVector) Span(degree int, u float64) int {
	n := len(kv) - degree - 2

	if u >= kv[n+1] {
		return n
	}
	if u < kv[degree] {
		return degree
	}

	low, high := degree, n+1
	mid := (low + high) / 2

	for u < kv[mid] || u >= kv[mid+1] {
		if u < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}

	return mid
}

// BasisFunctions evaluates the degree+1 B-spline basis functions that
// are nonzero at parameter u (corresponds to algorithm 2.2 from The
// NURBS book). It returns the knot span index and the weights for
// control points span-degree .. span. Over a clamped knot vector the
// weights sum to 1 everywhere in the domain.
func (kv KnotVector) BasisFunctions(degree int, u float64) (int, []float64) {
	span := kv.Span(degree, u)
	N := make([]float64, degree+1)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	N[0] = 1.0
	for j := 1; j <= degree; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := N[r] / (right[r+1] + left[j-r])
			N[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		N[j] = saved
	}
	return span, N
}

// IsNonDecreasing is a predicate: are the knots sorted?
func (kv KnotVector) IsNonDecreasing() bool {
	rep := kv[0]
	for _, knot := range kv[1:] {
		if knot < rep {
			return false
		}
		rep = knot
	}
	return true
}

// IsClamped is a predicate: does the knot vector repeat its first and
// last value degree+1 times each?
func (kv KnotVector) IsClamped(degree int) bool {
	if len(kv) < 2*(degree+1) {
		return false
	}
	for _, knot := range kv[:degree+1] {
		if knot != kv[0] {
			return false
		}
	}
	for _, knot := range kv[len(kv)-degree-1:] {
		if knot != kv[len(kv)-1] {
			return false
		}
	}
	return true
}
