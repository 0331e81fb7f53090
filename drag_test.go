package dsst

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestExponentialAtmosphere(t *testing.T) {
	atm := NewExponentialAtmosphere(Earth)
	for _, tc := range []struct{ alt, ρ float64 }{{0, 1.225}, {700e3, 3.614e-14}, {400e3, 3.725e-12}} {
		R := []float64{0, Earth.Radius + tc.alt, 0}
		if ρ := atm.Density(testEpoch, R); !floats.EqualWithinRel(ρ, tc.ρ, 1e-9) {
			t.Fatalf("ρ(%f km)=%g", tc.alt/1e3, ρ)
		}
	}
	// Density decreases with altitude, even across layers.
	prev := math.Inf(1)
	for alt := 0.; alt < 1200e3; alt += 10e3 {
		ρ := atm.Density(testEpoch, []float64{Earth.Radius + alt, 0, 0})
		if ρ >= prev {
			t.Fatalf("density increases at %f km", alt/1e3)
		}
		prev = ρ
	}
	simple := NewSimpleExponentialAtmosphere(Earth, 1e-12, 500e3, 60e3)
	if ρ := simple.Density(testEpoch, []float64{Earth.Radius + 560e3, 0, 0}); !floats.EqualWithinRel(ρ, 1e-12/math.E, 1e-9) {
		t.Fatalf("simple ρ=%g", ρ)
	}
}

func TestDragAcceleration(t *testing.T) {
	if _, err := NewAtmosphericDrag(NewExponentialAtmosphere(Earth), 0, 1); err == nil {
		t.Fatal("Cd=0 should fail")
	}
	drag, err := NewAtmosphericDrag(NewExponentialAtmosphere(Earth), 2.2, 10)
	if err != nil {
		t.Fatal(err)
	}
	o := leoOrbit(t, Osculating)
	R, V := o.RV()
	acc, err := drag.Acceleration(testEpoch, R, V, 500)
	if err != nil {
		t.Fatal(err)
	}
	if dot(acc, V) >= 0 {
		t.Fatal("drag must oppose the motion")
	}
	ρ := drag.Atmosphere.Density(testEpoch, R)
	vAtm := BodyRotationVelocity(EarthRotationRate, R)
	vRel := norm([]float64{V[0] - vAtm[0], V[1] - vAtm[1], V[2] - vAtm[2]})
	if exp := 0.5 * ρ * 2.2 * 10 / 500 * vRel * vRel; !floats.EqualWithinRel(norm(acc), exp, 1e-9) {
		t.Fatalf("|acc|=%g expected about %g", norm(acc), exp)
	}
	if _, err := drag.Acceleration(testEpoch, R, V, 0); !errors.Is(err, ErrMassNonPositive) {
		t.Fatalf("null mass should fail, got %v", err)
	}
}

func TestDragMeanRates(t *testing.T) {
	drag, _ := NewAtmosphericDrag(NewExponentialAtmosphere(Earth), 2, 25)
	o, _ := NewOrbitFromOE(Earth.Radius+420e3, 0.001, 51.6, 45, 30, 10, testEpoch, Earth, EME2000)
	o.Type = Mean
	s := NewSpacecraftState(o, NewInertialAttitude(), 1000)
	rates, err := drag.MeanElementRate(s)
	if err != nil {
		t.Fatal(err)
	}
	ρ := drag.Atmosphere.Density(testEpoch, []float64{o.A(), 0, 0})
	// King-Hele: da/dt = -ρ Cd A/m sqrt(μ a) for a circular orbit, reduced by the co-rotation of the atmosphere.
	corot := 1 - EarthRotationRate*o.A()*math.Cos(o.I())/math.Sqrt(Earth.GM()/o.A())
	exp := -ρ * 2 * 25 / 1000 * math.Sqrt(Earth.GM()*o.A()) * corot * corot
	if rates[0] >= 0 || !floats.EqualWithinRel(rates[0], exp, 0.03) {
		t.Fatalf("da/dt=%g m/s expected about %g m/s", rates[0], exp)
	}
	checkSeriesDerivative(t, &drag.gaussContribution, s, []int{0, 1, 2}, 1e-3)
}
