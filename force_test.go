package dsst

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

// countingModel has constant rates and a short periodic term on a equal to the number of initializations.
type countingModel struct {
	inits int
	rate  [6]float64
}

func (m *countingModel) Initialize(SpacecraftState) error {
	m.inits++
	return nil
}

func (m *countingModel) MeanElementRate(SpacecraftState) ([6]float64, error) {
	return m.rate, nil
}

func (m *countingModel) ShortPeriodicTerms(time.Time, [6]float64) ([]ShortPeriodTerm, error) {
	return []ShortPeriodTerm{constantTerm{float64(m.inits)}}, nil
}

func (m *countingModel) ReferenceForce() (Acceleration, error) {
	return nil, ErrUnsupportedForce
}

type constantTerm struct {
	da float64
}

func (c constantTerm) Value(time.Time, [6]float64) [6]float64 {
	return [6]float64{c.da}
}

// drainModel only consumes mass.
type drainModel struct {
	countingModel
	flow float64
}

func (m *drainModel) ShortPeriodicTerms(time.Time, [6]float64) ([]ShortPeriodTerm, error) {
	return nil, nil
}

func (m *drainModel) MassRate(SpacecraftState) float64 {
	return m.flow
}

// failingModel fails to initialize.
type failingModel struct {
	countingModel
}

func (m *failingModel) Initialize(SpacecraftState) error {
	return errors.New("no data")
}

func TestForceModels(t *testing.T) {
	var forces ForceModels
	m1 := &countingModel{}
	m2 := &countingModel{}
	forces.Add(m1, m2)
	snap := forces.Snapshot()
	forces.Add(&countingModel{})
	if len(snap) != 2 || len(forces) != 3 {
		t.Fatal("the snapshot must not see later additions")
	}
	s := NewSpacecraftState(leoOrbit(t, Mean), NewInertialAttitude(), DefaultMass)
	if err := snap.InitializeAll(s); err != nil {
		t.Fatal(err)
	}
	if m1.inits != 1 || m2.inits != 1 {
		t.Fatal("all models must be initialized")
	}
	η, err := snap.ShortPeriodicSum(s.DT(), s.Orbit.Elements())
	if err != nil || η[0] != 2 {
		t.Fatalf("sum of the terms %+v (%v)", η, err)
	}
	if _, err := snap.ReferenceForces(); !errors.Is(err, ErrUnsupportedForce) {
		t.Fatalf("expected an unsupported force, got %v", err)
	}
	failing := ForceModels{m1, &failingModel{}}
	err = failing.InitializeAll(s)
	if errKind(err) != KindForceModel {
		t.Fatalf("expected a force model error, got %v", err)
	}
	forces.Clear()
	if len(forces) != 0 {
		t.Fatal("Clear did not clear")
	}
}

func TestMeanEquations(t *testing.T) {
	o := leoOrbit(t, Mean)
	s := NewSpacecraftState(o, NewInertialAttitude(), DefaultMass)
	m1 := &countingModel{rate: [6]float64{1, 2, 3, 4, 5, 6}}
	m2 := &countingModel{rate: [6]float64{-1, 0.5, 0, 0, 0, 1}}
	drain := &drainModel{flow: -0.25}
	yDot, err := NewMeanEquations(ForceModels{m1, m2, drain}).ComputeDerivatives(s)
	if err != nil {
		t.Fatal(err)
	}
	exp := []float64{0, 2.5, 3, 4, 5, 7 + o.MeanMotion(), -0.25}
	if !floats.EqualApprox(yDot, exp, 1e-15) {
		t.Fatalf("derivatives %+v expected %+v", yDot, exp)
	}
	// Keplerian motion only.
	yDot, _ = NewMeanEquations(nil).ComputeDerivatives(s)
	if !floats.Equal(yDot, []float64{0, 0, 0, 0, 0, o.MeanMotion(), 0}) {
		t.Fatalf("keplerian derivatives %+v", yDot)
	}
	// Without mass left only the propellant keeps flowing.
	empty := s
	empty.Mass = -1
	yDot, err = NewMeanEquations(ForceModels{m1, m2, drain}).ComputeDerivatives(empty)
	if err != nil || !floats.Equal(yDot, []float64{0, 0, 0, 0, 0, o.MeanMotion(), -0.25}) {
		t.Fatalf("derivatives without mass %+v (%v)", yDot, err)
	}
	nan := &countingModel{rate: [6]float64{0, 0, math.NaN()}}
	_, err = NewMeanEquations(ForceModels{m1, nan}).ComputeDerivatives(s)
	var perr *PropagationError
	if !errors.As(err, &perr) || perr.Kind != KindForceModel || perr.Element != 2 || !errors.Is(err, ErrForceModel) {
		t.Fatalf("expected a force model error on element 2, got %v", err)
	}
}
