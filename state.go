package dsst

import (
	"fmt"
	"time"
)

const (
	// StateSize is the size of the flat state: six equinoctial elements and the mass.
	StateSize = 7
	// DefaultMass is the mass used when none is provided (kg).
	DefaultMass = 1000.0
)

// SpacecraftState is an immutable snapshot of the spacecraft.
type SpacecraftState struct {
	Orbit    Orbit
	Attitude Attitude
	Mass     float64
}

// NewSpacecraftState returns a new state with the attitude computed from the provider.
func NewSpacecraftState(o Orbit, provider AttitudeProvider, mass float64) SpacecraftState {
	return SpacecraftState{o, provider.Attitude(fixedPV{o}, o.DT, o.Frame), mass}
}

// DT returns the date of this state.
func (s SpacecraftState) DT() time.Time {
	return s.Orbit.DT
}

// WithOrbit returns a copy of this state with a new orbit.
func (s SpacecraftState) WithOrbit(o Orbit) SpacecraftState {
	s.Orbit = o
	return s
}

// WithMass returns a copy of this state with a new mass.
func (s SpacecraftState) WithMass(m float64) SpacecraftState {
	s.Mass = m
	return s
}

// WithAttitude returns a copy of this state with a new attitude.
func (s SpacecraftState) WithAttitude(att Attitude) SpacecraftState {
	s.Attitude = att
	return s
}

func (s SpacecraftState) String() string {
	return fmt.Sprintf("%s %s mass=%.3f kg", s.DT().UTC().Format(time.RFC3339), s.Orbit, s.Mass)
}
