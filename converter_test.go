package dsst

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func TestConverterZonal(t *testing.T) {
	osc := NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), DefaultMass)
	z, _ := NewZonalHarmonics(Earth, 2)
	forces := ForceModels{z}
	c := NewConverter(kitlog.NewNopLogger())
	mean, err := c.Convert(osc, DefaultRevolutions, forces)
	if err != nil {
		t.Fatal(err)
	}
	if mean.Type != Mean || !mean.DT.Equal(osc.DT()) {
		t.Fatalf("invalid mean orbit %s", mean)
	}
	if err := mean.Equals(osc.Orbit, 1e-6); err == nil {
		t.Fatal("J2 mean elements cannot be the osculating ones")
	}
	// The models are left initialized on the mean orbit, and rebuild the osculating state.
	el := mean.Elements()
	η, err := forces.ShortPeriodicSum(mean.DT, el)
	if err != nil {
		t.Fatal(err)
	}
	for i := range el {
		el[i] += η[i]
	}
	rebuilt, err := mean.WithElements(el, Osculating)
	if err != nil {
		t.Fatal(err)
	}
	if err := rebuilt.Equals(osc.Orbit, 1e-9); err != nil {
		t.Fatalf("osculating state not recovered: %s", err)
	}
}

func TestConverterNoForces(t *testing.T) {
	osc := NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), DefaultMass)
	mean, err := NewConverter(nil).Convert(osc, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if mean.Type != Mean || mean.Elements() != osc.Orbit.Elements() {
		t.Fatalf("without forces mean and osculating elements are identical: %s", mean)
	}
}

func TestConverterDivergence(t *testing.T) {
	osc := NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), DefaultMass)
	z, _ := NewZonalHarmonics(Earth, 2)
	c := NewConverter(nil)
	c.MaxIterations = 1
	c.Threshold = 1e-20
	if _, err := c.Convert(osc, 1, ForceModels{z}); errKind(err) != KindConfiguration {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestConverterSamples(t *testing.T) {
	osc := NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), DefaultMass)
	z, _ := NewZonalHarmonics(Earth, 2)
	c := NewConverter(nil)
	for _, samples := range []int{-1, 0, 1} {
		c.SamplesPerRev = samples
		if _, err := c.Convert(osc, 1, ForceModels{z}); errKind(err) != KindConfiguration {
			t.Fatalf("%d samples per revolution: expected a configuration error, got %v", samples, err)
		}
	}
}
