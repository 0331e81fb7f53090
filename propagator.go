package dsst

import (
	"errors"
	"fmt"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Propagator is a semianalytical propagator: the mean equinoctial elements are integrated numerically
// and the short-periodic terms of the force models are added back when the trajectory is sampled.
// A Propagator and its force models must not be used by several goroutines at once.
type Propagator struct {
	integrator  Integrator
	initial     Orbit
	mass        float64
	interval    time.Duration
	revolutions int
	attitude    AttitudeProvider
	forces      ForceModels
	converter   *Converter
	logger      kitlog.Logger
	stateChan   chan<- SpacecraftState
}

// NewPropagator returns a propagator of the provided orbit. The orbit type tells whether the initial
// elements are mean or osculating. The force models recompute their short-periodic terms every interval.
func NewPropagator(integrator Integrator, initial Orbit, interval time.Duration) (*Propagator, error) {
	if integrator == nil {
		return nil, errors.New("no integrator provided")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("reinitialization interval must be positive (got %s)", interval)
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "propagator", "dsst")
	return &Propagator{integrator, initial, DefaultMass, interval, DefaultRevolutions, NewInertialAttitude(), nil, NewConverter(klog), klog, nil}, nil
}

// SetLogger sets the logger of the propagator and of its converter.
func (p *Propagator) SetLogger(logger kitlog.Logger) {
	p.logger = logger
	p.converter.logger = logger
}

// SetAttitudeProvider sets the attitude law of the spacecraft.
func (p *Propagator) SetAttitudeProvider(provider AttitudeProvider) {
	p.attitude = provider
}

// SetMass sets the initial mass of the spacecraft in kg.
func (p *Propagator) SetMass(mass float64) error {
	if mass <= 0 {
		return newPropagationError(KindConfiguration, p.initial.DT, 6, ErrMassNonPositive)
	}
	p.mass = mass
	return nil
}

// SetSatelliteRevolution sets the number of orbits over which an osculating initial state is averaged.
func (p *Propagator) SetSatelliteRevolution(revolutions int) {
	if revolutions < 1 {
		revolutions = 1
	}
	p.revolutions = revolutions
}

// AddForceModel appends a force model; the order of addition is the order of summation.
func (p *Propagator) AddForceModel(model ForceModel) {
	p.forces.Add(model)
}

// RemoveForceModels removes all the force models.
func (p *Propagator) RemoveForceModels() {
	p.forces.Clear()
}

// ForceModels returns a copy of the configured force models.
func (p *Propagator) ForceModels() ForceModels {
	return p.forces.Snapshot()
}

// ResetInitialState replaces the initial orbit and mass.
func (p *Propagator) ResetInitialState(o Orbit, mass float64) error {
	if mass <= 0 {
		return newPropagationError(KindConfiguration, o.DT, 6, ErrMassNonPositive)
	}
	p.initial = o
	p.mass = mass
	return nil
}

// RegisterStateChan registers a channel which receives every sampled state of the next run.
// The channel is closed at the end of that run.
func (p *Propagator) RegisterStateChan(c chan<- SpacecraftState) {
	p.stateChan = c
}

// InitialMeanState returns the mean state from which the integration starts.
func (p *Propagator) InitialMeanState() (SpacecraftState, error) {
	r, err := p.newRun()
	if err != nil {
		return SpacecraftState{}, err
	}
	return r.mapper.meanState(r.y, r.current)
}

// Propagate propagates to the provided date and returns the osculating state there.
func (p *Propagator) Propagate(target time.Time) (SpacecraftState, error) {
	return p.PropagateEvery(target, 0, nil)
}

// PropagateEvery propagates to the provided date, sampling the osculating state every step (from the
// initial date, and at the target date) and calling the handler, if any, with each sample.
// A zero step only samples the target date.
func (p *Propagator) PropagateEvery(target time.Time, step time.Duration, handler func(SpacecraftState) error) (final SpacecraftState, err error) {
	start := time.Now()
	stateChan := p.stateChan
	if stateChan != nil {
		p.stateChan = nil
		defer close(stateChan)
	}
	r, err := p.newRun()
	if err != nil {
		p.logger.Log("level", "error", "subsys", "dsst", "status", "setup failed", "err", err)
		return
	}
	p.logger.Log("level", "info", "subsys", "dsst", "status", "starting", "from", r.epoch, "to", target, "models", len(r.forces))
	dir := time.Duration(1)
	if target.Before(r.epoch) {
		dir = -1
	}
	if step < 0 {
		step = -step
	}
	sample := func(dt time.Time) error {
		if err := r.advance(dt); err != nil {
			return err
		}
		s, err := r.mapper.MapArrayToState(r.y, dt)
		if err != nil {
			return err
		}
		final = s
		if handler != nil {
			if err := handler(s); err != nil {
				return err
			}
		}
		if stateChan != nil {
			stateChan <- s
		}
		return nil
	}
	if step > 0 {
		for dt := r.epoch; dir*dt.Sub(target) < 0; dt = dt.Add(dir * step) {
			if err = sample(dt); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = sample(target)
	}
	if err != nil {
		p.logger.Log("level", "error", "subsys", "dsst", "status", "failed", "dt", r.current, "err", err)
		return SpacecraftState{}, err
	}
	p.logger.Log("level", "info", "subsys", "dsst", "status", "finished", "dt", target, "mass(kg)", final.Mass, "elapsed", time.Since(start))
	return final, nil
}

// run holds everything which one propagation owns: the clock, the models and the current mean state.
type run struct {
	integrator Integrator
	forces     ForceModels
	clock      *ReinitClock
	mapper     *StateMapper
	equations  *MeanEquations
	epoch      time.Time
	current    time.Time
	y          []float64
}

func (p *Propagator) newRun() (*run, error) {
	forces := p.forces.Snapshot()
	epoch := p.initial.DT
	mapper := NewStateMapper(p.initial.Origin, p.initial.Frame, p.attitude, forces, p.revolutions, p.converter)
	y, err := mapper.MapStateToArray(NewSpacecraftState(p.initial, p.attitude, p.mass))
	if err != nil {
		return nil, err
	}
	mean, err := mapper.meanState(y, epoch)
	if err != nil {
		return nil, err
	}
	if err = forces.InitializeAll(mean); err != nil {
		return nil, err
	}
	return &run{
		integrator: p.integrator,
		forces:     forces,
		clock:      NewReinitClock(epoch, p.interval, p.logger),
		mapper:     mapper,
		equations:  NewMeanEquations(forces),
		epoch:      epoch,
		current:    epoch,
		y:          y,
	}, nil
}

// derivatives is the function integrated by the integrator, t being in seconds from the epoch.
func (r *run) derivatives(t float64, y []float64) ([]float64, error) {
	mean, err := r.mapper.meanState(y, r.date(t))
	if err != nil {
		return nil, err
	}
	return r.equations.ComputeDerivatives(mean)
}

func (r *run) date(t float64) time.Time {
	return r.epoch.Add(time.Duration(t * 1e9))
}

func (r *run) checkReset() error {
	if r.y[6] <= 0 {
		return nil
	}
	mean, err := r.mapper.meanState(r.y, r.current)
	if err != nil {
		return err
	}
	_, err = r.clock.CheckAndReset(r.current, mean, r.forces)
	return err
}

// advance integrates the mean state up to dt. Forward integrations stop at every window boundary so
// that no step uses the terms of a previous window.
func (r *run) advance(dt time.Time) error {
	if !dt.Before(r.current) {
		for {
			if err := r.checkReset(); err != nil {
				return err
			}
			if !r.current.Before(dt) {
				return nil
			}
			end := dt
			if next := r.clock.NextReset(); next.After(r.current) && next.Before(end) {
				end = next
			}
			if err := r.integrate(end); err != nil {
				return err
			}
		}
	}
	return r.integrate(dt)
}

func (r *run) integrate(end time.Time) error {
	t0 := r.current.Sub(r.epoch).Seconds()
	t1 := end.Sub(r.epoch).Seconds()
	y, err := r.integrator.Integrate(r.derivatives, t0, t1, r.y)
	if err != nil {
		return err
	}
	r.y = y
	r.current = end
	return nil
}
