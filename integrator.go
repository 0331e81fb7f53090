package dsst

import (
	"fmt"
	"math"
	"time"

	"github.com/ChristopherRabotin/ode"
	"github.com/ready-steady/ode/dopri"
)

// Derivatives returns dy/dt at t.
type Derivatives func(t float64, y []float64) ([]float64, error)

// Integrator advances a state from t0 to t1 (seconds, either direction).
type Integrator interface {
	Integrate(f Derivatives, t0, t1 float64, y0 []float64) ([]float64, error)
}

// RK4 is a fixed step fourth order Runge Kutta integrator.
type RK4 struct {
	Step time.Duration // maximum step, shortened so that an integer number of steps spans the interval
}

// NewRK4 returns a fixed step integrator.
func NewRK4(step time.Duration) *RK4 {
	return &RK4{step}
}

// Integrate implements the Integrator interface.
func (i *RK4) Integrate(f Derivatives, t0, t1 float64, y0 []float64) ([]float64, error) {
	span := t1 - t0
	if span == 0 {
		return append([]float64(nil), y0...), nil
	}
	steps := int(math.Ceil(math.Abs(span)/i.Step.Seconds() - 1e-9))
	if steps < 1 {
		steps = 1
	}
	in := &integrable{f: f, t0: t0, dir: math.Copysign(1, span), steps: steps}
	in.state = append([]float64(nil), y0...)
	ode.NewRK4(0, math.Abs(span)/float64(steps), in).Solve() // Blocking.
	if in.err != nil {
		return nil, in.err
	}
	return in.state, nil
}

// integrable is the ode.Integrable of a single integration segment.
// Time is integrated as s = |t - t0| so that the solver always moves forward.
type integrable struct {
	f           Derivatives
	t0, dir     float64
	state       []float64
	steps, done int
	err         error
}

// GetState implements the ode.Integrable interface.
func (in *integrable) GetState() []float64 {
	return in.state
}

// SetState implements the ode.Integrable interface.
func (in *integrable) SetState(s float64, y []float64) {
	in.state = y
	in.done++
}

// Stop implements the ode.Integrable interface.
func (in *integrable) Stop(s float64) bool {
	return in.err != nil || in.done >= in.steps
}

// Func implements the ode.Integrable interface.
func (in *integrable) Func(s float64, y []float64) []float64 {
	if in.err != nil {
		return make([]float64, len(y))
	}
	fDot, err := in.f(in.t0+in.dir*s, y)
	if err != nil {
		in.err = err
		return make([]float64, len(y))
	}
	if in.dir < 0 {
		for k := range fDot {
			fDot[k] = -fDot[k]
		}
	}
	return fDot
}

// Dopri is an adaptive Dormand Prince 5(4) integrator with per component tolerances.
type Dopri struct {
	MaxStep float64   // seconds
	AbsTol  []float64 // per component; components beyond the slice use the last value
	RelTol  float64
}

// NewDopri returns an adaptive integrator; absTol and relTol typically come from Tolerances.
func NewDopri(maxStep time.Duration, absTol []float64, relTol float64) (*Dopri, error) {
	if len(absTol) == 0 {
		return nil, fmt.Errorf("dopri needs at least one absolute tolerance")
	}
	for _, tol := range absTol {
		if tol <= 0 {
			return nil, fmt.Errorf("invalid absolute tolerance %g", tol)
		}
	}
	return &Dopri{maxStep.Seconds(), absTol, relTol}, nil
}

// NewDopriFromTolerances returns an adaptive integrator for the flat DSST state from the element tolerances.
func NewDopriFromTolerances(maxStep time.Duration, absTol, relTol [6]float64) (*Dopri, error) {
	abs := append(absTol[:], 1e-6) // mass, kg
	rel := relTol[0]
	for _, r := range relTol {
		rel = math.Min(rel, r)
	}
	return NewDopri(maxStep, abs, rel)
}

func (d *Dopri) scale(k int) float64 {
	if k < len(d.AbsTol) {
		return d.AbsTol[k]
	}
	return d.AbsTol[len(d.AbsTol)-1]
}

// Integrate implements the Integrator interface.
func (d *Dopri) Integrate(f Derivatives, t0, t1 float64, y0 []float64) ([]float64, error) {
	ys, err := d.integrateAt(f, t0, []float64{t1}, y0)
	if err != nil {
		return nil, err
	}
	return ys[0], nil
}

// integrateAt returns the states at each of the provided times, which must be monotonic away from t0.
// The state is scaled by the absolute tolerances so that a scalar tolerance of one applies to all components.
func (d *Dopri) integrateAt(f Derivatives, t0 float64, ts []float64, y0 []float64) ([][]float64, error) {
	n := len(y0)
	out := make([][]float64, len(ts))
	if len(ts) == 0 {
		return out, nil
	}
	dir := math.Copysign(1, ts[len(ts)-1]-t0)
	if ts[len(ts)-1] == t0 {
		for k := range out {
			out[k] = append([]float64(nil), y0...)
		}
		return out, nil
	}
	z0 := make([]float64, n)
	for k := range y0 {
		z0[k] = y0[k] / d.scale(k)
	}
	var ferr error
	y := make([]float64, n)
	derivative := func(s float64, z, dz []float64) {
		if ferr != nil {
			for k := range dz {
				dz[k] = 0
			}
			return
		}
		for k := range z {
			y[k] = z[k] * d.scale(k)
		}
		fDot, err := f(t0+dir*s, y)
		if err != nil {
			ferr = err
			for k := range dz {
				dz[k] = 0
			}
			return
		}
		for k := range dz {
			dz[k] = dir * fDot[k] / d.scale(k)
		}
	}
	xs := make([]float64, len(ts)+1)
	for k, t := range ts {
		xs[k+1] = math.Abs(t - t0)
	}
	conf := dopri.DefaultConfig()
	conf.AbsoluteTolerance = 1
	conf.RelativeTolerance = d.RelTol
	if d.MaxStep > 0 {
		conf.MaxStep = d.MaxStep
	}
	integrator, err := dopri.New(conf)
	if err != nil {
		return nil, fmt.Errorf("could not create integrator: %w", err)
	}
	values, _, err := integrator.Compute(derivative, z0, xs)
	if ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return nil, fmt.Errorf("integration failed: %w", err)
	}
	// The first block of the output is the initial state.
	offset := len(values)/n - len(ts)
	for k := range ts {
		out[k] = make([]float64, n)
		for c := 0; c < n; c++ {
			out[k][c] = values[(k+offset)*n+c] * d.scale(c)
		}
	}
	return out, nil
}
