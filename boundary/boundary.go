// Package boundary holds raw boundary sample data together with its
// fitted curve representation. A Boundary owns the point cloud, the
// start/end anchor points and the fit configuration, and orchestrates
// the pipeline: synthesize an initial straight-line curve between the
// anchors, fit a curve with the requested number of control points,
// and parameterize the data against the most recent curve.
package boundary

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/spotter/splinefit"
	"github.com/spotter/splinefit/bspline"
	"github.com/spotter/splinefit/fit"
)

// tracer writes to trace with key 'splinefit'
func tracer() tracing.Trace {
	return tracing.Select("splinefit")
}

var (
	// ErrBadData indicates boundary data that is not a uniform set of
	// 2D or 3D points.
	ErrBadData = errors.New("boundary data must be points in R2 or R3")
	// ErrBadAnchor indicates an anchor point inconsistent with the data.
	ErrBadAnchor = errors.New("anchor point must match boundary data dimension")
	// ErrBadDegree indicates an unusable curve degree.
	ErrBadDegree = errors.New("curve degree must be at least 1")
	// ErrBadCtrlptCount indicates an unusable target control point count.
	ErrBadCtrlptCount = errors.New("control point count must exceed curve degree")
	// ErrNotConfigured indicates a fitting call before data, anchors,
	// degree and control point count have all been set.
	ErrNotConfigured = errors.New("boundary is not fully configured")
	// ErrDataFrozen indicates an attempt to modify boundary data after
	// a curve has been synthesized.
	ErrDataFrozen = errors.New("boundary data is immutable once fitting begins")
)

// State tags which curve a Boundary currently carries. Parameterization
// dispatches on this tag: data is always parameterized against the
// most recent curve.
type State int

const (
	// StateEmpty : no curve has been synthesized yet.
	StateEmpty State = iota
	// StateInitial : the straight-line curve between the anchors.
	StateInitial
	// StateFitted : a curve produced by the fitter.
	StateFitted
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateFitted:
		return "fitted"
	}
	return "empty"
}

// Boundary is a container for boundary point data and its curve fit.
// Data and anchors are set once before fitting; the fitting pipeline
// itself holds no state outside the container, so independent
// Boundary instances may be fit concurrently.
type Boundary struct {
	data       []splinefit.Point
	start, end splinefit.Point
	degree     int
	numCtrlpts int
	cfg        fit.Config

	state      State
	curve      *bspline.Curve
	paramData  []fit.ParameterizedPoint
	lastReport fit.Report
}

// New creates an empty boundary with the default fit configuration.
func New() *Boundary {
	return &Boundary{cfg: fit.DefaultConfig()}
}

// SetData validates and stores the boundary sample points: at least
// two points, all of the same dimensionality, which must be 2 or 3.
// The points are copied in; the boundary's data is immutable once
// fitting begins.
func (b *Boundary) SetData(pts []splinefit.Point) error {
	if len(pts) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrBadData, len(pts))
	}
	dim := pts[0].Dim()
	if dim != 2 && dim != 3 {
		return fmt.Errorf("%w: got dimension %d", ErrBadData, dim)
	}
	if b.start != nil && b.start.Dim() != dim {
		return fmt.Errorf("%w: data in R%d, anchors in R%d", ErrBadData, dim, b.start.Dim())
	}
	data := make([]splinefit.Point, len(pts))
	for i, p := range pts {
		if p.Dim() != dim {
			return fmt.Errorf("%w: point %d has dimension %d, expected %d",
				ErrBadData, i, p.Dim(), dim)
		}
		data[i] = p.Clone()
	}
	b.data = data
	return nil
}

// SetAnchors validates and stores the start and end anchor points.
// Anchors exclusively own the first and last control point positions
// of any curve the boundary fits.
func (b *Boundary) SetAnchors(start, end splinefit.Point) error {
	for _, p := range []splinefit.Point{start, end} {
		if p.Dim() != 2 && p.Dim() != 3 {
			return fmt.Errorf("%w: got dimension %d", ErrBadAnchor, p.Dim())
		}
		if b.data != nil && p.Dim() != b.data[0].Dim() {
			return fmt.Errorf("%w: got dimension %d, data is in R%d",
				ErrBadAnchor, p.Dim(), b.data[0].Dim())
		}
	}
	if start.Dim() != end.Dim() {
		return fmt.Errorf("%w: start in R%d, end in R%d", ErrBadAnchor, start.Dim(), end.Dim())
	}
	b.start = start.Clone()
	b.end = end.Clone()
	return nil
}

// SetDegree sets the degree of the curve to fit.
func (b *Boundary) SetDegree(degree int) error {
	if degree < 1 {
		return fmt.Errorf("%w: got %d", ErrBadDegree, degree)
	}
	b.degree = degree
	return nil
}

// SetCtrlptCount sets the number of control points of the final
// fitted curve. The count must exceed the degree; since the degree
// may be set afterwards, the relation is checked again at fit time.
func (b *Boundary) SetCtrlptCount(num int) error {
	if num < 3 {
		return fmt.Errorf("%w: got %d, need at least 3", ErrBadCtrlptCount, num)
	}
	if b.degree > 0 && num <= b.degree {
		return fmt.Errorf("%w: got %d for degree %d", ErrBadCtrlptCount, num, b.degree)
	}
	b.numCtrlpts = num
	return nil
}

// TransformData applies an affine transform to the boundary data and
// anchors, moving scanner-frame measurements into the fitting frame.
// Only possible while no curve exists yet: data and anchors are
// immutable once fitting begins.
func (b *Boundary) TransformData(m splinefit.AT) error {
	if b.state != StateEmpty {
		return ErrDataFrozen
	}
	for i, p := range b.data {
		b.data[i] = m.Transform(p)
	}
	if b.start != nil {
		b.start = m.Transform(b.start)
	}
	if b.end != nil {
		b.end = m.Transform(b.end)
	}
	return nil
}

// SetConfig replaces the fit configuration.
func (b *Boundary) SetConfig(cfg fit.Config) {
	b.cfg = cfg
}

// Data returns a copy of the boundary sample points.
func (b *Boundary) Data() []splinefit.Point {
	pts := make([]splinefit.Point, len(b.data))
	for i, p := range b.data {
		pts[i] = p.Clone()
	}
	return pts
}

// Start returns the start anchor.
func (b *Boundary) Start() splinefit.Point {
	return b.start.Clone()
}

// End returns the end anchor.
func (b *Boundary) End() splinefit.Point {
	return b.end.Clone()
}

// State returns the current curve state tag.
func (b *Boundary) State() State {
	return b.state
}

// Curve returns the boundary's current curve: the fitted curve after
// a successful Fit, the initial line curve after InitCurve, or nil
// while StateEmpty.
func (b *Boundary) Curve() *bspline.Curve {
	return b.curve
}

// ParameterizedData returns the most recent parameterization of the
// boundary data, in input order.
func (b *Boundary) ParameterizedData() []fit.ParameterizedPoint {
	return b.paramData
}

// Report returns the audit report of the most recent
// parameterization pass.
func (b *Boundary) Report() fit.Report {
	return b.lastReport
}

// InitCurve synthesizes the initial straight-line curve between the
// anchors, with degree+1 control points evenly spaced from start to
// end, and moves the boundary to StateInitial. Requires anchors and
// degree to be set.
func (b *Boundary) InitCurve() error {
	if b.start == nil || b.end == nil {
		return fmt.Errorf("%w: anchors not set", ErrNotConfigured)
	}
	if b.degree < 1 {
		return fmt.Errorf("%w: degree not set", ErrNotConfigured)
	}
	curve, err := bspline.Line(b.degree, b.start, b.end)
	if err != nil {
		return err
	}
	b.curve = curve
	b.state = StateInitial
	return nil
}

// Parameterize projects the boundary data onto the current curve and
// stores the parameterized dataset. While StateEmpty, the initial
// curve is synthesized first; afterwards the most recent curve is
// always the projection target.
func (b *Boundary) Parameterize() error {
	if b.data == nil {
		return fmt.Errorf("%w: data not set", ErrNotConfigured)
	}
	if b.state == StateEmpty {
		if err := b.InitCurve(); err != nil {
			return err
		}
	}
	b.paramData, b.lastReport = fit.Parameterize(b.curve, b.data, b.cfg)
	return nil
}

// Fit fits a curve with the configured degree and control point
// count to the boundary data, then parameterizes the data against
// the fitted curve. The fitted curve's first and last control points
// equal the start/end anchors exactly.
func (b *Boundary) Fit() error {
	if b.data == nil || b.start == nil || b.end == nil {
		return fmt.Errorf("%w: data or anchors not set", ErrNotConfigured)
	}
	if b.degree < 1 || b.numCtrlpts == 0 {
		return fmt.Errorf("%w: degree or control point count not set", ErrNotConfigured)
	}
	if b.numCtrlpts <= b.degree {
		return fmt.Errorf("%w: %d for degree %d", ErrBadCtrlptCount, b.numCtrlpts, b.degree)
	}
	if b.state == StateEmpty {
		if err := b.InitCurve(); err != nil {
			return err
		}
	}
	tracer().Infof("fitting boundary of %d points with %d control points, degree %d",
		len(b.data), b.numCtrlpts, b.degree)
	fitted, err := fit.CurveFixedCtrlpts(b.curve, b.data, b.numCtrlpts, b.cfg)
	if err != nil {
		return err
	}
	b.curve = fitted
	b.state = StateFitted
	return b.Parameterize()
}
