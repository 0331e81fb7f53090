package dsst

import (
	"time"
)

// StateMapper converts between the flat integrated state and spacecraft states.
type StateMapper struct {
	origin      CelestialObject
	frame       Frame
	attitude    AttitudeProvider
	forces      ForceModels
	revolutions int
	converter   *Converter
}

// NewStateMapper returns a mapper which applies the short-periodic terms of the provided models.
func NewStateMapper(origin CelestialObject, frame Frame, attitude AttitudeProvider, forces ForceModels, revolutions int, converter *Converter) *StateMapper {
	return &StateMapper{origin, frame, attitude, forces, revolutions, converter}
}

// meanOrbit builds the mean orbit of a flat state.
func (m *StateMapper) meanOrbit(y []float64, dt time.Time) (Orbit, error) {
	var el [6]float64
	copy(el[:], y[:6])
	o, err := NewOrbitFromElements(el, dt, m.origin, m.frame, Mean)
	if err != nil {
		return Orbit{}, newPropagationError(KindForceModel, dt, -1, err)
	}
	return o, nil
}

// meanState returns the mean spacecraft state of a flat state, without any check on the mass.
func (m *StateMapper) meanState(y []float64, dt time.Time) (SpacecraftState, error) {
	o, err := m.meanOrbit(y, dt)
	if err != nil {
		return SpacecraftState{}, err
	}
	return SpacecraftState{o, m.attitude.Attitude(o, dt, m.frame), y[6]}, nil
}

// MapArrayToState returns the osculating spacecraft state of the flat mean state at the provided date.
// The short-periodic terms which are currently valid are added to the mean elements.
func (m *StateMapper) MapArrayToState(y []float64, dt time.Time) (SpacecraftState, error) {
	if y[6] <= 0 {
		err := newPropagationError(KindMassNonPositive, dt, 6, ErrMassNonPositive)
		countFailure(err)
		return SpacecraftState{}, err
	}
	var el [6]float64
	copy(el[:], y[:6])
	eType := Mean
	if len(m.forces) > 0 {
		η, err := m.forces.ShortPeriodicSum(dt, el)
		if err != nil {
			countFailure(err)
			return SpacecraftState{}, err
		}
		for i := range el {
			el[i] += η[i]
		}
		eType = Osculating
	}
	o, err := NewOrbitFromElements(el, dt, m.origin, m.frame, eType)
	if err != nil {
		perr := newPropagationError(KindForceModel, dt, -1, err)
		countFailure(perr)
		return SpacecraftState{}, perr
	}
	return SpacecraftState{o, m.attitude.Attitude(o, dt, m.frame), y[6]}, nil
}

// MapStateToArray returns the flat mean state of a spacecraft state.
// Osculating states are converted to mean elements when force models are configured.
func (m *StateMapper) MapStateToArray(s SpacecraftState) ([]float64, error) {
	o := s.Orbit
	if len(m.forces) > 0 && s.Orbit.Type == Osculating {
		var err error
		if o, err = m.converter.Convert(s, m.revolutions, m.forces); err != nil {
			countFailure(err)
			return nil, err
		}
	}
	el := o.Elements()
	y := make([]float64, StateSize)
	copy(y, el[:])
	y[6] = s.Mass
	return y, nil
}
