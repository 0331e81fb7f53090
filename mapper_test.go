package dsst

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gonum/floats"
)

func TestMapperRoundTrip(t *testing.T) {
	o := leoOrbit(t, Mean)
	el := o.Elements()
	mapper := NewStateMapper(Earth, EME2000, NewInertialAttitude(), nil, DefaultRevolutions, NewConverter(nil))
	vectors := [][]float64{
		append(el[:], 750),
		{7000e3, 0, 0, 0, 0, 0, 1},                  // circular equatorial
		{6800e3, 1e-12, -1e-12, 1e-12, 0, -1, 1e-3}, // near singular
		{42164e3, 0.9, 0.05, -0.3, 2, 12.5, 3000},
	}
	rng := rand.New(rand.NewSource(42))
	for k := 0; k < 20; k++ {
		e, ϖ := 0.95*rng.Float64(), 2*math.Pi*rng.Float64()
		vectors = append(vectors, []float64{6600e3 + 4e7*rng.Float64(), e * math.Cos(ϖ), e * math.Sin(ϖ),
			4*rng.Float64() - 2, 4*rng.Float64() - 2, 20*rng.Float64() - 10, 1 + 1000*rng.Float64()})
	}
	for k, y := range vectors {
		dt := o.DT.Add(time.Duration(rng.Int63n(int64(365 * 24 * time.Hour))))
		if k == 0 {
			dt = o.DT
		}
		s, err := mapper.MapArrayToState(y, dt)
		if err != nil {
			t.Fatalf("#%d: %s", k, err)
		}
		if s.Orbit.Type != Mean || s.Mass != y[6] || !s.DT().Equal(dt) {
			t.Fatalf("#%d: invalid state %s", k, s)
		}
		y1, err := mapper.MapStateToArray(s)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.Equal(y, y1) {
			t.Fatalf("#%d: round trip failed:\n%+v\n%+v", k, y, y1)
		}
	}
	// Without forces an osculating state is its own mean state.
	osc := NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), 750)
	y2, err := mapper.MapStateToArray(osc)
	if err != nil || !floats.Equal(vectors[0], y2) {
		t.Fatalf("osculating state without forces: %+v (%v)", y2, err)
	}
}

func TestMapperMass(t *testing.T) {
	el := leoOrbit(t, Mean).Elements()
	mapper := NewStateMapper(Earth, EME2000, NewInertialAttitude(), nil, DefaultRevolutions, NewConverter(nil))
	for _, mass := range []float64{0, -1} {
		_, err := mapper.MapArrayToState(append(el[:], mass), testEpoch)
		var perr *PropagationError
		if !errors.As(err, &perr) || perr.Kind != KindMassNonPositive || perr.Element != 6 || !errors.Is(err, ErrMassNonPositive) {
			t.Fatalf("mass=%f: expected a mass error, got %v", mass, err)
		}
	}
	// The derivative path never checks the mass.
	if _, err := mapper.meanState(append(el[:], -1), testEpoch); err != nil {
		t.Fatal(err)
	}
}

func TestMapperShortPeriodicTerms(t *testing.T) {
	o := leoOrbit(t, Mean)
	model := &countingModel{inits: 42}
	mapper := NewStateMapper(Earth, EME2000, LVLHAttitude{}, ForceModels{model}, DefaultRevolutions, NewConverter(nil))
	el := o.Elements()
	s, err := mapper.MapArrayToState(append(el[:], 100), o.DT)
	if err != nil {
		t.Fatal(err)
	}
	if s.Orbit.Type != Osculating || s.Orbit.A() != o.A()+42 {
		t.Fatalf("the terms were not applied: %s", s)
	}
	if s.Attitude.Spin[2] == 0 {
		t.Fatal("the attitude provider was not used")
	}
	// A state tagged mean is never converted.
	y, err := mapper.MapStateToArray(NewSpacecraftState(o, NewInertialAttitude(), 100))
	if err != nil || y[0] != o.A() {
		t.Fatalf("mean state was converted: %+v (%v)", y, err)
	}
	// An osculating one is, and this model has no reference force.
	_, err = mapper.MapStateToArray(NewSpacecraftState(leoOrbit(t, Osculating), NewInertialAttitude(), 100))
	if !errors.Is(err, ErrUnsupportedForce) || errKind(err) != KindConfiguration {
		t.Fatalf("expected an unsupported force, got %v", err)
	}
}
