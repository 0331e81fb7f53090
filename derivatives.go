package dsst

import (
	"errors"
	"fmt"
	"math"
)

// MeanEquations computes the time derivative of the flat mean state.
type MeanEquations struct {
	forces ForceModels
}

// NewMeanEquations returns the mean element equations for the provided models.
func NewMeanEquations(forces ForceModels) *MeanEquations {
	return &MeanEquations{forces}
}

// ComputeDerivatives returns [da, dex, dey, dhx, dhy, dλM, dm]/dt for the provided mean state.
// The rates of the models are summed in list order before the Keplerian mean motion is added to λM.
// Once the mass is exhausted only the mass keeps flowing: the error is reported by the next sample.
func (e *MeanEquations) ComputeDerivatives(mean SpacecraftState) ([]float64, error) {
	derivativeEvals.Inc()
	yDot := make([]float64, StateSize)
	for m, model := range e.forces {
		if mean.Mass <= 0 {
			break
		}
		rates, err := model.MeanElementRate(mean)
		if err != nil {
			kind := KindForceModel
			if errors.Is(err, ErrMassNonPositive) {
				kind = KindMassNonPositive
			}
			return nil, newPropagationError(kind, mean.DT(), -1, fmt.Errorf("mean rates of model #%d: %w", m, err))
		}
		for i := 0; i < 6; i++ {
			yDot[i] += rates[i]
		}
	}
	yDot[5] += KeplerMeanMotion(mean.Orbit.Origin.μ, mean.Orbit.a)
	yDot[6] = e.forces.massRate(mean)
	for i, v := range yDot {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newPropagationError(KindForceModel, mean.DT(), i, fmt.Errorf("%w: derivative is %f", ErrForceModel, v))
		}
	}
	return yDot, nil
}
