package dsst

import (
	"fmt"
	"time"
)

// SolarRadiationPressure is a cannonball radiation pressure model with a cylindrical shadow of the central body.
type SolarRadiationPressure struct {
	averagedForce
	Cr        float64 // reflectivity coefficient
	Area      float64 // m²
	Occulting CelestialObject
	Ephemeris Ephemeris
}

// NewSolarRadiationPressure returns a new radiation pressure model.
func NewSolarRadiationPressure(cr, area float64, occulting CelestialObject, eph Ephemeris) (*SolarRadiationPressure, error) {
	if cr < 0 || area <= 0 {
		return nil, fmt.Errorf("invalid radiation pressure parameters Cr=%f area=%f", cr, area)
	}
	srp := &SolarRadiationPressure{Cr: cr, Area: area, Occulting: occulting, Ephemeris: eph}
	srp.averagedForce = averagedForce{newGaussContribution(srp.Acceleration)}
	return srp, nil
}

// Acceleration returns the radiation pressure acceleration, zero in the shadow.
func (srp *SolarRadiationPressure) Acceleration(dt time.Time, R, _ []float64, mass float64) ([]float64, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: radiation pressure with mass %f", ErrMassNonPositive, mass)
	}
	S, err := srp.Ephemeris.Position(Sun, dt)
	if err != nil {
		return nil, err
	}
	if srp.inShadow(R, S) {
		return []float64{0, 0, 0}, nil
	}
	D := []float64{R[0] - S[0], R[1] - S[1], R[2] - S[2]}
	d := norm(D)
	f := SolarPressure * srp.Cr * srp.Area / mass * (AU / d) * (AU / d) / d
	return []float64{f * D[0], f * D[1], f * D[2]}, nil
}

func (srp *SolarRadiationPressure) inShadow(R, S []float64) bool {
	sHat := unit(S)
	proj := dot(R, sHat)
	if proj >= 0 {
		return false
	}
	perp := []float64{R[0] - proj*sHat[0], R[1] - proj*sHat[1], R[2] - proj*sHat[2]}
	return norm(perp) < srp.Occulting.Radius
}
