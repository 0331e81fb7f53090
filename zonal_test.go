package dsst

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

// secularNodeRate is the first order J2 regression of the node.
func secularNodeRate(o Orbit) float64 {
	p := o.A() * (1 - o.E()*o.E())
	return -1.5 * o.MeanMotion() * o.Origin.J2 * math.Pow(o.Origin.Radius/p, 2) * math.Cos(o.I())
}

func TestZonalNodeRate(t *testing.T) {
	z, err := NewZonalHarmonics(Earth, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, inc := range []float64{28.5, 51.6, 98.2} {
		o, err := NewOrbitFromOE(7000e3, 0.001, inc, 45, 30, 10, testEpoch, Earth, EME2000)
		if err != nil {
			t.Fatal(err)
		}
		o.Type = Mean
		rates, err := z.MeanElementRate(NewSpacecraftState(o, NewInertialAttitude(), DefaultMass))
		if err != nil {
			t.Fatal(err)
		}
		el := o.Elements()
		hx, hy := el[3], el[4]
		nodeRate := (hx*rates[4] - hy*rates[3]) / (hx*hx + hy*hy)
		if exp := secularNodeRate(o); !floats.EqualWithinRel(nodeRate, exp, 1e-3) {
			t.Fatalf("i=%f: node rate %g rad/s expected %g rad/s", inc, nodeRate, exp)
		}
		// Conservative force: no secular drift of the semi major axis.
		if math.Abs(rates[0]) > 1e-4 {
			t.Fatalf("i=%f: da/dt=%g m/s", inc, rates[0])
		}
	}
}

func TestZonalErrors(t *testing.T) {
	if _, err := NewZonalHarmonics(Earth, 4); err == nil {
		t.Fatal("degree 4 is not supported")
	}
	z, _ := NewZonalHarmonics(Earth, 3)
	if _, err := z.ShortPeriodicTerms(testEpoch, [6]float64{}); !errors.Is(err, ErrForceModel) {
		t.Fatalf("terms before initialization should fail, got %v", err)
	}
	z.SetQuadraturePoints(2)
	if z.points != 8 {
		t.Fatalf("quadrature points not clamped: %d", z.points)
	}
	acc, err := z.ReferenceForce()
	if err != nil {
		t.Fatal(err)
	}
	// On the pole, J2 and J3 only act along the axis.
	pert, _ := acc(testEpoch, []float64{0, 0, 7000e3}, []float64{7e3, 0, 0}, DefaultMass)
	if pert[0] != 0 || pert[1] != 0 || pert[2] == 0 {
		t.Fatalf("polar perturbation %+v", pert)
	}
}

// The short-periodic series integrates the deviation of the rates from their average: its derivative
// along the mean longitude, times the mean motion, must give back the rate deviations.
func checkSeriesDerivative(t *testing.T, g *gaussContribution, s SpacecraftState, elements []int, tol float64) {
	if err := g.initialize(s); err != nil {
		t.Fatal(err)
	}
	terms, err := g.terms()
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, func(mean [6]float64) [6]float64 { return terms[0].Value(s.DT(), mean) }, g, s, elements, tol)
}

// checkSeries compares n·dη/dλ of the series with the deviation of the Gauss rates from their average,
// both at the mean state s.
func checkSeries(t *testing.T, series func(mean [6]float64) [6]float64, g *gaussContribution, s SpacecraftState, elements []int, tol float64) {
	λs, rates, err := g.sample(s)
	if err != nil {
		t.Fatal(err)
	}
	avg := average(rates)
	n := s.Orbit.MeanMotion()
	const h = 1e-5
	for _, i := range elements {
		var worstDiff, worstDev float64
		for k, λ := range λs {
			mean := s.Orbit.Elements()
			mean[5] = λ + h
			plus := series(mean)
			mean[5] = λ - h
			minus := series(mean)
			fd := n * (plus[i] - minus[i]) / (2 * h)
			dev := rates[k][i] - avg[i]
			worstDiff = math.Max(worstDiff, math.Abs(fd-dev))
			worstDev = math.Max(worstDev, math.Abs(dev))
		}
		if worstDev == 0 {
			t.Fatalf("element %d has no short periodic variation", i)
		}
		if worstDiff/worstDev > tol {
			t.Fatalf("element %d: series derivative off by %.3f%%", i, 100*worstDiff/worstDev)
		}
	}
}

func TestZonalShortPeriodicTerms(t *testing.T) {
	z, _ := NewZonalHarmonics(Earth, 3)
	s := NewSpacecraftState(leoOrbit(t, Mean), NewInertialAttitude(), DefaultMass)
	checkSeriesDerivative(t, &z.gaussContribution, s, []int{0, 1, 2, 3, 4}, 1e-3)
	terms, _ := z.ShortPeriodicTerms(testEpoch, s.Orbit.Elements())
	η := terms[0].Value(testEpoch, s.Orbit.Elements())
	// J2 moves a LEO semi major axis by kilometers.
	if math.Abs(η[0]) > 20e3 {
		t.Fatalf("unrealistic short periodic a: %f m", η[0])
	}
}
