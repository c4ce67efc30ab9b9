// Package fit assigns curve parameters to boundary sample points by
// closest-point projection, and solves the least-squares system that
// fits a fixed number of B-spline control points to the data. The two
// operations feed each other: the fitter re-parameterizes the data
// against each intermediate curve until the control points settle.
package fit

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'splinefit'
func tracer() tracing.Trace {
	return tracing.Select("splinefit")
}

// ErrSingularSystem indicates a rank-deficient or unsolvable
// least-squares system, e.g. too few distinct parameter values for
// the requested number of control points. It is wrapped with the
// iteration index at which assembly failed.
var ErrSingularSystem = errors.New("singular least-squares system")

// Config collects the numeric tuning knobs of the fitting pipeline.
// All tolerances are explicit here rather than hard-coded in the
// algorithms, so tests can run tight and integration callers loose.
//
// The defaults are conservative assumptions, not measured ground
// truth; callers with known data characteristics should tune them.
type Config struct {
	// ProjectionTol is the parameter-space width below which the
	// closest-point refinement is considered converged.
	ProjectionTol float64
	// BracketSamples is the number of evenly spaced curve samples used
	// to bracket the closest-point minimum before refinement.
	BracketSamples int
	// MaxRefinements caps the golden-section steps per projected point.
	// Exhaustion is non-fatal: the best bracketed estimate is kept and
	// counted in the Report.
	MaxRefinements int
	// FitTol is the maximum control-point displacement between fit
	// iterations below which the fit is considered converged.
	FitTol float64
	// MaxIterations caps the re-parameterize/re-solve loop. Reaching
	// the cap is a soft termination, not an error.
	MaxIterations int
}

// DefaultConfig returns the conservative default tuning.
func DefaultConfig() Config {
	return Config{
		ProjectionTol:  1e-6,
		BracketSamples: 100,
		MaxRefinements: 200,
		FitTol:         1e-4,
		MaxIterations:  20,
	}
}
