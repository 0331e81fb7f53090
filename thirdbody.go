package dsst

import (
	"fmt"
	"math"
	"time"
)

// ThirdBody is the point mass attraction of the Sun or the Moon on a geocentric orbit.
type ThirdBody struct {
	averagedForce
	Body      CelestialObject
	Ephemeris Ephemeris
}

// NewThirdBody returns the third body perturbation of the provided body.
func NewThirdBody(body CelestialObject, eph Ephemeris) (*ThirdBody, error) {
	if body.μ <= 0 {
		return nil, fmt.Errorf("third body %s has no gravitational parameter", body.Name)
	}
	tb := &ThirdBody{Body: body, Ephemeris: eph}
	tb.averagedForce = averagedForce{newGaussContribution(tb.Acceleration)}
	return tb, nil
}

// Acceleration returns the differential attraction of the third body.
func (tb *ThirdBody) Acceleration(dt time.Time, R, _ []float64, _ float64) ([]float64, error) {
	S, err := tb.Ephemeris.Position(tb.Body, dt)
	if err != nil {
		return nil, err
	}
	D := []float64{S[0] - R[0], S[1] - R[1], S[2] - R[2]}
	d3 := math.Pow(norm(D), 3)
	s3 := math.Pow(norm(S), 3)
	pert := make([]float64, 3)
	for i := 0; i < 3; i++ {
		pert[i] = tb.Body.μ * (D[i]/d3 - S[i]/s3)
	}
	return pert, nil
}
