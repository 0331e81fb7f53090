package dsst

import (
	"fmt"
	"math"
	"time"
)

const referencePositionError = 1.0 // meters

// NumericalPropagator integrates the Cartesian position, velocity and mass of a spacecraft under
// central body gravity and instantaneous perturbing accelerations.
type NumericalPropagator struct {
	initial  SpacecraftState
	accs     []Acceleration
	massRate func(SpacecraftState) float64
	integ    *Dopri
}

// NewNumericalPropagator returns a Cartesian propagator seeded with the provided osculating state.
func NewNumericalPropagator(initial SpacecraftState, accs []Acceleration, massRate func(SpacecraftState) float64) (*NumericalPropagator, error) {
	abs, rel := CartesianTolerances(referencePositionError, initial.Orbit)
	integ, err := NewDopri(initial.Orbit.Period()/50, append(abs[:], 1e-6), rel[0])
	if err != nil {
		return nil, err
	}
	return &NumericalPropagator{initial, accs, massRate, integ}, nil
}

// Func returns the derivative of the Cartesian state at t seconds from the initial date.
func (p *NumericalPropagator) Func(t float64, y []float64) ([]float64, error) {
	dt := p.initial.DT().Add(time.Duration(t * 1e9))
	R := y[0:3]
	V := y[3:6]
	fDot := make([]float64, 7)
	bodyAcc := -p.initial.Orbit.Origin.μ / math.Pow(norm(R), 3)
	for i := 0; i < 3; i++ {
		fDot[i] = V[i]
		fDot[i+3] = bodyAcc * R[i]
	}
	for k, acc := range p.accs {
		pert, err := acc(dt, R, V, y[6])
		if err != nil {
			return nil, newPropagationError(KindForceModel, dt, -1, fmt.Errorf("reference force #%d: %w", k, err))
		}
		for i := 0; i < 3; i++ {
			fDot[i+3] += pert[i]
		}
	}
	if p.massRate != nil {
		o, err := NewOrbitFromRV(R, V, dt, p.initial.Orbit.Origin, p.initial.Orbit.Frame)
		if err != nil {
			return nil, newPropagationError(KindForceModel, dt, -1, err)
		}
		fDot[6] = p.massRate(p.initial.WithOrbit(o).WithMass(y[6]))
	}
	for i, v := range fDot {
		if math.IsNaN(v) {
			return nil, newPropagationError(KindForceModel, dt, i, fmt.Errorf("%w: fDot[%d]=NaN", ErrForceModel, i))
		}
	}
	return fDot, nil
}

// Sample returns the osculating states at each of the provided dates, which must be after the initial date.
func (p *NumericalPropagator) Sample(dts []time.Time) ([]SpacecraftState, error) {
	R, V := p.initial.Orbit.RV()
	y0 := []float64{R[0], R[1], R[2], V[0], V[1], V[2], p.initial.Mass}
	ts := make([]float64, len(dts))
	for k, dt := range dts {
		ts[k] = dt.Sub(p.initial.DT()).Seconds()
	}
	ys, err := p.integ.integrateAt(p.Func, 0, ts, y0)
	if err != nil {
		return nil, err
	}
	states := make([]SpacecraftState, len(ys))
	for k, y := range ys {
		o, err := NewOrbitFromRV(y[0:3], y[3:6], dts[k], p.initial.Orbit.Origin, p.initial.Orbit.Frame)
		if err != nil {
			return nil, newPropagationError(KindForceModel, dts[k], -1, err)
		}
		states[k] = p.initial.WithOrbit(o).WithMass(y[6])
	}
	return states, nil
}
