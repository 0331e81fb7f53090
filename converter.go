package dsst

import (
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/stat"
)

const (
	// DefaultRevolutions is the number of orbits over which osculating elements are averaged.
	DefaultRevolutions = 2
	// DefaultSamplesPerRev is the number of osculating samples per orbit used in the averaging.
	DefaultSamplesPerRev = 36
)

// Converter computes the mean elements of an osculating state.
type Converter struct {
	SamplesPerRev int
	MaxIterations int
	Threshold     float64 // convergence on the correction, relative to a for the semi major axis
	logger        kitlog.Logger
}

// NewConverter returns a converter with the default settings.
func NewConverter(logger kitlog.Logger) *Converter {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Converter{DefaultSamplesPerRev, 25, 1e-11, logger}
}

// Convert returns the mean orbit whose short-periodic reconstruction matches the osculating state.
// A reference numerical propagator averages the osculating elements over the provided number of
// revolutions, and the estimate is then refined with the short-periodic terms of the models.
// The models are left initialized on the returned mean orbit.
func (c *Converter) Convert(osc SpacecraftState, revolutions int, forces ForceModels) (Orbit, error) {
	meanOrbit := osc.Orbit
	meanOrbit.Type = Mean
	if len(forces) == 0 {
		return meanOrbit, nil
	}
	if c.SamplesPerRev < 2 {
		return Orbit{}, newPropagationError(KindConfiguration, osc.DT(), -1, fmt.Errorf("at least two samples per revolution are needed (got %d)", c.SamplesPerRev))
	}
	start := time.Now()
	defer func() {
		conversionDuration.Observe(time.Since(start).Seconds())
	}()
	accs, err := forces.ReferenceForces()
	if err != nil {
		return Orbit{}, newPropagationError(KindConfiguration, osc.DT(), -1, err)
	}
	if revolutions < 1 {
		revolutions = 1
	}
	avg, err := c.average(osc, revolutions, accs, forces)
	if err != nil {
		return Orbit{}, err
	}
	if meanOrbit, err = osc.Orbit.WithElements(avg, Mean); err != nil {
		return Orbit{}, newPropagationError(KindForceModel, osc.DT(), -1, err)
	}
	return c.refine(osc, meanOrbit, forces)
}

// average fits each osculating element sampled by the reference propagator with a line over time
// and returns the values of those lines at the initial date.
func (c *Converter) average(osc SpacecraftState, revolutions int, accs []Acceleration, forces ForceModels) ([6]float64, error) {
	var avg [6]float64
	ref, err := NewNumericalPropagator(osc, accs, forces.massRate)
	if err != nil {
		return avg, newPropagationError(KindConfiguration, osc.DT(), -1, err)
	}
	period := osc.Orbit.Period()
	count := revolutions * c.SamplesPerRev
	dts := make([]time.Time, count-1)
	for k := 1; k < count; k++ {
		dts[k-1] = osc.DT().Add(time.Duration(int64(k) * int64(period) / int64(c.SamplesPerRev)))
	}
	states, err := ref.Sample(dts)
	if err != nil {
		return avg, err
	}
	states = append([]SpacecraftState{osc}, states...)
	ts := make([]float64, count)
	series := make([][]float64, 6)
	for i := range series {
		series[i] = make([]float64, count)
	}
	for k, s := range states {
		ts[k] = s.DT().Sub(osc.DT()).Seconds()
		el := s.Orbit.Elements()
		for i := 0; i < 6; i++ {
			series[i][k] = el[i]
		}
		if k > 0 {
			series[5][k] = series[5][k-1] + angleDiff(el[5], series[5][k-1])
		}
	}
	for i := 0; i < 6; i++ {
		avg[i], _ = stat.LinearRegression(ts, series[i], nil, false)
	}
	return avg, nil
}

func (c *Converter) refine(osc SpacecraftState, mean Orbit, forces ForceModels) (Orbit, error) {
	target := osc.Orbit.Elements()
	el := mean.Elements()
	for iter := 0; iter < c.MaxIterations; iter++ {
		guess, err := osc.Orbit.WithElements(el, Mean)
		if err != nil {
			return Orbit{}, newPropagationError(KindForceModel, osc.DT(), -1, err)
		}
		if err = forces.InitializeAll(osc.WithOrbit(guess)); err != nil {
			return Orbit{}, err
		}
		η, err := forces.ShortPeriodicSum(osc.DT(), el)
		if err != nil {
			return Orbit{}, err
		}
		var δ [6]float64
		for i := 0; i < 5; i++ {
			δ[i] = target[i] - (el[i] + η[i])
		}
		δ[5] = angleDiff(target[5], el[5]+η[5])
		worst := math.Abs(δ[0]) / el[0]
		for i := 1; i < 6; i++ {
			worst = math.Max(worst, math.Abs(δ[i]))
		}
		for i := range el {
			el[i] += δ[i]
		}
		if worst < c.Threshold {
			c.logger.Log("level", "debug", "subsys", "osc2mean", "iterations", iter+1, "residual", worst)
			mean, err = osc.Orbit.WithElements(el, Mean)
			if err != nil {
				return Orbit{}, newPropagationError(KindForceModel, osc.DT(), -1, err)
			}
			if err = forces.InitializeAll(osc.WithOrbit(mean)); err != nil {
				return Orbit{}, err
			}
			return mean, nil
		}
	}
	return Orbit{}, newPropagationError(KindConfiguration, osc.DT(), -1, fmt.Errorf("osculating to mean conversion did not converge in %d iterations", c.MaxIterations))
}
