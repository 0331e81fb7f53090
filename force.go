package dsst

import (
	"fmt"
	"time"
)

// Acceleration returns the instantaneous perturbing acceleration (m/s²) at a date for an inertial
// position (m), velocity (m/s) and mass (kg).
type Acceleration func(dt time.Time, R, V []float64, mass float64) ([]float64, error)

// ShortPeriodTerm is a short-periodic correction built at a reinitialization and valid until the next one.
type ShortPeriodTerm interface {
	// Value returns the correction to add to the mean elements [a, ex, ey, hx, hy, λM].
	Value(dt time.Time, mean [6]float64) [6]float64
}

// ForceModel is a semianalytical force model.
type ForceModel interface {
	// Initialize recomputes whatever the model caches for the provided mean state.
	Initialize(mean SpacecraftState) error
	// MeanElementRate returns the averaged rates of the six equinoctial elements.
	MeanElementRate(mean SpacecraftState) ([6]float64, error)
	// ShortPeriodicTerms returns the short-periodic corrections for the current window.
	ShortPeriodicTerms(dt time.Time, mean [6]float64) ([]ShortPeriodTerm, error)
	// ReferenceForce returns the equivalent instantaneous force, or ErrUnsupportedForce.
	ReferenceForce() (Acceleration, error)
}

// MassFlow is implemented by force models which consume propellant.
type MassFlow interface {
	// MassRate returns the mass rate in kg/s (negative when mass is consumed).
	MassRate(s SpacecraftState) float64
}

// ForceModels is an ordered collection of force models.
type ForceModels []ForceModel

// Add appends the provided models, keeping the order.
func (f *ForceModels) Add(models ...ForceModel) {
	*f = append(*f, models...)
}

// Clear removes all the models.
func (f *ForceModels) Clear() {
	*f = nil
}

// Snapshot returns a copy of the list so later additions do not affect a running propagation.
func (f ForceModels) Snapshot() ForceModels {
	if len(f) == 0 {
		return nil
	}
	s := make(ForceModels, len(f))
	copy(s, f)
	return s
}

// InitializeAll initializes every model in order, stopping at the first error.
func (f ForceModels) InitializeAll(mean SpacecraftState) error {
	for i, model := range f {
		if err := model.Initialize(mean); err != nil {
			return newPropagationError(KindForceModel, mean.DT(), -1, fmt.Errorf("initializing model #%d: %w", i, err))
		}
	}
	return nil
}

// ShortPeriodicSum returns the sum of all short-periodic terms of all the models.
func (f ForceModels) ShortPeriodicSum(dt time.Time, mean [6]float64) ([6]float64, error) {
	var sum [6]float64
	for i, model := range f {
		terms, err := model.ShortPeriodicTerms(dt, mean)
		if err != nil {
			return sum, newPropagationError(KindForceModel, dt, -1, fmt.Errorf("short periodic terms of model #%d: %w", i, err))
		}
		for _, term := range terms {
			η := term.Value(dt, mean)
			for j := 0; j < 6; j++ {
				sum[j] += η[j]
			}
		}
	}
	return sum, nil
}

// ReferenceForces returns the instantaneous equivalents of all the models.
func (f ForceModels) ReferenceForces() ([]Acceleration, error) {
	accs := make([]Acceleration, len(f))
	for i, model := range f {
		acc, err := model.ReferenceForce()
		if err != nil {
			return nil, fmt.Errorf("model #%d (%T): %w", i, model, err)
		}
		accs[i] = acc
	}
	return accs, nil
}

// massRate returns the total mass rate of the models which consume propellant.
func (f ForceModels) massRate(s SpacecraftState) float64 {
	var rate float64
	for _, model := range f {
		if flow, ok := model.(MassFlow); ok {
			rate += flow.MassRate(s)
		}
	}
	return rate
}
