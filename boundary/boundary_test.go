package boundary

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/spotter/splinefit"
	"github.com/spotter/splinefit/fit"
)

func lineData() []splinefit.Point {
	pts := make([]splinefit.Point, 30)
	for i := range pts {
		x := 10 * float64(i) / 29
		pts[i] = splinefit.Pt(x, 0.02*math.Sin(x), 0)
	}
	return pts
}

func configured(t *testing.T) *Boundary {
	t.Helper()
	b := New()
	if err := b.SetData(lineData()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if err := b.SetAnchors(splinefit.Pt(0, 0, 0), splinefit.Pt(10, 0.02*math.Sin(10), 0)); err != nil {
		t.Fatalf("SetAnchors failed: %v", err)
	}
	if err := b.SetDegree(3); err != nil {
		t.Fatalf("SetDegree failed: %v", err)
	}
	if err := b.SetCtrlptCount(5); err != nil {
		t.Fatalf("SetCtrlptCount failed: %v", err)
	}
	return b
}

func TestBoundaryValidation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := New()
	if err := b.SetData([]splinefit.Point{splinefit.Pt(1, 2, 3)}); !errors.Is(err, ErrBadData) {
		t.Errorf("Expected ErrBadData for a single point, got %v", err)
	}
	if err := b.SetData([]splinefit.Point{splinefit.Pt(1), splinefit.Pt(2)}); !errors.Is(err, ErrBadData) {
		t.Errorf("Expected ErrBadData for 1D points, got %v", err)
	}
	mixed := []splinefit.Point{splinefit.Pt(1, 2), splinefit.Pt(1, 2, 3)}
	if err := b.SetData(mixed); !errors.Is(err, ErrBadData) {
		t.Errorf("Expected ErrBadData for mixed dimensions, got %v", err)
	}
	if err := b.SetData(lineData()); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if err := b.SetAnchors(splinefit.Pt(0, 0), splinefit.Pt(10, 0)); !errors.Is(err, ErrBadAnchor) {
		t.Errorf("Expected ErrBadAnchor for 2D anchors on 3D data, got %v", err)
	}
	if err := b.SetDegree(0); !errors.Is(err, ErrBadDegree) {
		t.Errorf("Expected ErrBadDegree for degree 0, got %v", err)
	}
	if err := b.SetCtrlptCount(2); !errors.Is(err, ErrBadCtrlptCount) {
		t.Errorf("Expected ErrBadCtrlptCount for 2 control points, got %v", err)
	}
	if err := b.SetDegree(3); err != nil {
		t.Fatalf("SetDegree failed: %v", err)
	}
	if err := b.SetCtrlptCount(3); !errors.Is(err, ErrBadCtrlptCount) {
		t.Errorf("Expected ErrBadCtrlptCount for count <= degree, got %v", err)
	}
}

func TestBoundaryNotConfigured(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := New()
	if err := b.Fit(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured fitting an empty boundary, got %v", err)
	}
	if err := b.Parameterize(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured parameterizing an empty boundary, got %v", err)
	}
	if err := b.InitCurve(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured without anchors, got %v", err)
	}
}

func TestBoundaryStateMachine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := configured(t)
	if b.State() != StateEmpty {
		t.Fatalf("Expected a fresh boundary in StateEmpty, got %v", b.State())
	}
	if b.Curve() != nil {
		t.Errorf("Expected no curve while empty")
	}
	// parameterizing an empty boundary synthesizes the initial curve
	if err := b.Parameterize(); err != nil {
		t.Fatalf("Parameterize failed: %v", err)
	}
	if b.State() != StateInitial {
		t.Errorf("Expected StateInitial after Parameterize, got %v", b.State())
	}
	if b.Curve() == nil || b.Curve().NumCtrlpts() != 4 {
		t.Errorf("Expected the initial degree+1 point line curve, got %v", b.Curve())
	}
	if err := b.Fit(); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if b.State() != StateFitted {
		t.Errorf("Expected StateFitted after Fit, got %v", b.State())
	}
	if b.Curve().NumCtrlpts() != 5 {
		t.Errorf("Expected the fitted 5 control point curve, got %v", b.Curve())
	}
}

func TestBoundaryFitPinsAnchors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := configured(t)
	if err := b.Fit(); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	ctrlpts := b.Curve().ControlPoints()
	start, end := b.Start(), b.End()
	for d := 0; d < 3; d++ {
		if ctrlpts[0][d] != start[d] {
			t.Errorf("Expected first control point %v to equal start anchor %v", ctrlpts[0], start)
		}
		if ctrlpts[len(ctrlpts)-1][d] != end[d] {
			t.Errorf("Expected last control point %v to equal end anchor %v",
				ctrlpts[len(ctrlpts)-1], end)
		}
	}
}

func TestBoundaryParameterizedData(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := configured(t)
	if err := b.Fit(); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	data := b.Data()
	params := b.ParameterizedData()
	if len(params) != len(data) {
		t.Fatalf("Expected %d parameterized rows, got %d", len(data), len(params))
	}
	for i, pp := range params {
		if !pp.Point.Equal(data[i]) {
			t.Errorf("Row %d: parameterized data out of order", i)
		}
		if pp.U < 0 || pp.U > 1 {
			t.Errorf("Row %d: parameter %g outside the curve domain", i, pp.U)
		}
	}
	// gently wavy line data: the fit should track it closely
	if b.Report().MaxResidual > 0.1 {
		t.Errorf("Expected a close fit, max residual %g", b.Report().MaxResidual)
	}
}

func TestBoundaryTransformData(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := New()
	pts := make([]splinefit.Point, 20)
	for i := range pts {
		pts[i] = splinefit.Pt(10*float64(i)/19, 0)
	}
	if err := b.SetData(pts); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if err := b.SetAnchors(splinefit.Pt(0, 0), splinefit.Pt(10, 0)); err != nil {
		t.Fatalf("SetAnchors failed: %v", err)
	}
	if err := b.SetDegree(3); err != nil {
		t.Fatalf("SetDegree failed: %v", err)
	}
	if err := b.SetCtrlptCount(5); err != nil {
		t.Fatalf("SetCtrlptCount failed: %v", err)
	}
	// move the scanner frame: rotate 90 degrees, then shift
	frame := splinefit.Rotation(math.Pi / 2).Combine(splinefit.Translation(splinefit.Pt(1, 2)))
	if err := b.TransformData(frame); err != nil {
		t.Fatalf("TransformData failed: %v", err)
	}
	if !b.Start().Equal(splinefit.Pt(1, 2)) {
		t.Errorf("Expected transformed start anchor (1,2), got %v", b.Start())
	}
	if !b.End().Equal(splinefit.Pt(1, 12)) {
		t.Errorf("Expected transformed end anchor (1,12), got %v", b.End())
	}
	if err := b.Fit(); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	ctrlpts := b.Curve().ControlPoints()
	if !ctrlpts[0].Equal(b.Start()) || !ctrlpts[len(ctrlpts)-1].Equal(b.End()) {
		t.Errorf("Expected fitted endpoints on the transformed anchors, got %v and %v",
			ctrlpts[0], ctrlpts[len(ctrlpts)-1])
	}
	// transformed data stays on the rotated axis, so the fit must too
	for i, cp := range ctrlpts {
		if !splinefit.Is0(cp.X() - 1) {
			t.Errorf("Control point %d strays off the shifted y-axis: %v", i, cp)
		}
	}
	// once a curve exists the data is frozen
	if err := b.TransformData(splinefit.Identity()); !errors.Is(err, ErrDataFrozen) {
		t.Errorf("Expected ErrDataFrozen transforming a fitted boundary, got %v", err)
	}
}

func TestBoundaryConfigOverride(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := configured(t)
	cfg := fit.DefaultConfig()
	cfg.MaxIterations = 1
	cfg.FitTol = 0
	b.SetConfig(cfg)
	if err := b.Fit(); err != nil {
		t.Fatalf("Fit with capped iterations failed: %v", err)
	}
	if b.State() != StateFitted {
		t.Errorf("Expected StateFitted even at the iteration cap, got %v", b.State())
	}
}
