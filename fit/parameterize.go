package fit

import (
	"math"

	"github.com/spotter/splinefit"
	"github.com/spotter/splinefit/bspline"
)

// ParameterizedPoint is a boundary sample point augmented with the
// curve parameter u of its closest-point projection.
type ParameterizedPoint struct {
	Point splinefit.Point
	U     float64
}

// Report is the audit side channel of a parameterization pass. It
// never influences numerical results.
type Report struct {
	// NonConverged counts points whose refinement hit the step cap
	// before the bracket shrank below the projection tolerance.
	NonConverged int
	// MaxResidual is the largest point-to-curve distance at the final
	// parameter assignments.
	MaxResidual float64
}

const invphi = 0.6180339887498949 // (sqrt(5) - 1) / 2

// Parameterize assigns each point in pts the curve parameter
// minimizing the Euclidean distance to curve, by coarse bracketing
// over cfg.BracketSamples evenly spaced samples followed by a
// golden-section refinement down to cfg.ProjectionTol. Parameters are
// always clamped to the closed curve domain; the curve is never
// extrapolated.
//
// Output order mirrors input order, and the search is fully
// deterministic: the same (curve, pts) pair always yields the same
// assignments.
//
// The bracketing resolution bounds how well non-convex curves are
// handled: a minimum hidden between two coarse samples can be missed,
// in which case the refinement converges to a local minimum. This is
// a documented limitation, not a failure mode the function detects.
func Parameterize(curve *bspline.Curve, pts []splinefit.Point, cfg Config) ([]ParameterizedPoint, Report) {
	lo, hi := curve.Domain()
	samples := cfg.BracketSamples
	if samples < 2 {
		samples = 2
	}
	us := make([]float64, samples+1)
	cps := make([]splinefit.Point, samples+1)
	for i := 0; i <= samples; i++ {
		us[i] = lo + (hi-lo)*float64(i)/float64(samples)
		cps[i] = curve.Evaluate(us[i])
	}
	us[samples] = hi

	var report Report
	out := make([]ParameterizedPoint, 0, len(pts))
	for i, pt := range pts {
		best := 0
		bestDist := pt.DistSq(cps[0])
		for j := 1; j <= samples; j++ {
			if d := pt.DistSq(cps[j]); d < bestDist {
				best, bestDist = j, d
			}
		}
		a, b := us[max(best-1, 0)], us[min(best+1, samples)]
		u, converged := refineProjection(curve, pt, a, b, cfg)
		if !converged {
			report.NonConverged++
			tracer().Debugf("projection of point %d (%s) not converged, keeping u=%.8g", i, pt, u)
		}
		if r := pt.Dist(curve.Evaluate(u)); r > report.MaxResidual {
			report.MaxResidual = r
		}
		out = append(out, ParameterizedPoint{Point: pt.Clone(), U: u})
	}
	tracer().Debugf("parameterized %d points, max residual %.6g, %d not converged",
		len(pts), report.MaxResidual, report.NonConverged)
	return out, report
}

// Golden-section search for the parameter minimizing the squared
// distance between pt and the curve, within bracket [a,b]. Reports
// whether the bracket shrank below the tolerance within the step cap.
func refineProjection(curve *bspline.Curve, pt splinefit.Point, a, b float64, cfg Config) (float64, bool) {
	x1 := b - invphi*(b-a)
	x2 := a + invphi*(b-a)
	f1 := pt.DistSq(curve.Evaluate(x1))
	f2 := pt.DistSq(curve.Evaluate(x2))
	for i := 0; i < cfg.MaxRefinements; i++ {
		if math.Abs(b-a) < cfg.ProjectionTol {
			return (a + b) / 2, true
		}
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invphi*(b-a)
			f1 = pt.DistSq(curve.Evaluate(x1))
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invphi*(b-a)
			f2 = pt.DistSq(curve.Evaluate(x2))
		}
	}
	return (a + b) / 2, math.Abs(b-a) < cfg.ProjectionTol
}
