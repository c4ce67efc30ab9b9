package fit

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/spotter/splinefit"
	"github.com/spotter/splinefit/bspline"
)

// CurveFixedCtrlpts fits a curve with numCtrlpts control points to
// the data, starting from the given initial curve. Per iteration the
// data is re-parameterized against the current curve, the interior
// control points are re-solved by linear least squares, and the fit
// is considered converged when the maximum control-point displacement
// between iterations drops below cfg.FitTol.
//
// The first and last control points are never unknowns: they stay
// fixed to the initial curve's endpoint control points (which the
// boundary container in turn pins to its start/end anchors), in every
// iteration and in the returned curve.
//
// Reaching cfg.MaxIterations is a soft termination returning the last
// computed curve. A rank-deficient system returns ErrSingularSystem
// wrapped with the offending iteration index.
func CurveFixedCtrlpts(initial *bspline.Curve, data []splinefit.Point, numCtrlpts int, cfg Config) (*bspline.Curve, error) {
	degree := initial.Degree()
	if numCtrlpts <= degree {
		return nil, fmt.Errorf("%w: %d control points for degree %d",
			bspline.ErrInvalidDegree, numCtrlpts, degree)
	}
	if numCtrlpts < 3 {
		return nil, fmt.Errorf("%w: need at least 3 control points to fit interior, got %d",
			bspline.ErrInvalidDegree, numCtrlpts)
	}
	knots, err := bspline.Uniform(degree, numCtrlpts)
	if err != nil {
		return nil, err
	}
	endpts := initial.ControlPoints()
	first := endpts[0]
	last := endpts[len(endpts)-1]

	current := initial
	var prev []splinefit.Point
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		params, report := Parameterize(current, data, cfg)
		ctrlpts, residual, err := solveInterior(knots, degree, numCtrlpts, params, first, last)
		if err != nil {
			return nil, fmt.Errorf("fit iteration %d: %w", iter, err)
		}
		next, err := bspline.New(degree, knots, ctrlpts)
		if err != nil {
			return nil, fmt.Errorf("fit iteration %d: %w", iter, err)
		}
		displacement := maxDisplacement(prev, ctrlpts)
		tracer().Infof("fit iteration %d: residual %.6g, max displacement %.6g, %d projections not converged",
			iter, residual, displacement, report.NonConverged)
		current = next
		if prev != nil && displacement < cfg.FitTol {
			tracer().Infof("fit converged after %d iterations", iter)
			return current, nil
		}
		prev = ctrlpts
	}
	tracer().Infof("fit iteration cap %d reached, returning best-effort curve", cfg.MaxIterations)
	return current, nil
}

// solveInterior assembles and solves the least-squares system B·P = D
// for the interior control points. Each row of B holds the basis
// weights of one data point at its parameter; the fixed endpoint
// contributions are moved onto the right-hand side D.
func solveInterior(knots bspline.KnotVector, degree, numCtrlpts int,
	params []ParameterizedPoint, first, last splinefit.Point) ([]splinefit.Point, float64, error) {

	interior := numCtrlpts - 2
	dim := first.Dim()

	// Rank precheck: with fewer distinct parameter values than interior
	// unknowns the normal equations cannot have full column rank.
	distinct := treemap.NewWith(utils.Float64Comparator)
	for _, pp := range params {
		distinct.Put(splinefit.Round(pp.U), true)
	}
	if distinct.Size() < interior {
		return nil, 0, fmt.Errorf("%w: %d distinct parameter values for %d interior control points",
			ErrSingularSystem, distinct.Size(), interior)
	}

	B := mat.NewDense(len(params), interior, nil)
	D := mat.NewDense(len(params), dim, nil)
	for k, pp := range params {
		span, weights := knots.BasisFunctions(degree, pp.U)
		rhs := pp.Point.Clone()
		for i, w := range weights {
			idx := span - degree + i
			switch {
			case idx == 0:
				rhs = rhs.Sub(first.Scaled(w))
			case idx == numCtrlpts-1:
				rhs = rhs.Sub(last.Scaled(w))
			default:
				B.Set(k, idx-1, w)
			}
		}
		for d := 0; d < dim; d++ {
			D.Set(k, d, rhs[d])
		}
	}

	var qr mat.QR
	qr.Factorize(B)
	P := mat.NewDense(interior, dim, nil)
	if err := qr.SolveTo(P, false, D); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	var R mat.Dense
	R.Mul(B, P)
	R.Sub(&R, D)
	residual := mat.Norm(&R, 2)

	ctrlpts := make([]splinefit.Point, numCtrlpts)
	ctrlpts[0] = first.Clone()
	ctrlpts[numCtrlpts-1] = last.Clone()
	for i := 0; i < interior; i++ {
		ctrlpts[i+1] = splinefit.Pt(mat.Row(nil, i, P)...)
	}
	return ctrlpts, residual, nil
}

// maxDisplacement is the largest distance between corresponding
// control points of two solutions, or +Inf if there is no previous
// solution (or the counts differ, as after the first iteration on an
// initial curve of different size).
func maxDisplacement(prev, next []splinefit.Point) float64 {
	if prev == nil || len(prev) != len(next) {
		return math.Inf(1)
	}
	var disp float64
	for i := range next {
		if d := prev[i].Dist(next[i]); d > disp {
			disp = d
		}
	}
	return disp
}
