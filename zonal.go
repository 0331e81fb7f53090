package dsst

import (
	"fmt"
	"math"
	"time"
)

// ZonalHarmonics is the perturbation of the J2 and J3 zonal terms of the central body.
type ZonalHarmonics struct {
	averagedForce
	Body   CelestialObject
	Degree uint8 // 2 or 3
}

// NewZonalHarmonics returns the zonal perturbation of the provided body up to the provided degree.
func NewZonalHarmonics(body CelestialObject, degree uint8) (*ZonalHarmonics, error) {
	if degree < 2 || degree > 3 {
		return nil, fmt.Errorf("zonal harmonics degree %d not supported (only 2 and 3)", degree)
	}
	z := &ZonalHarmonics{Body: body, Degree: degree}
	z.averagedForce = averagedForce{newGaussContribution(z.Acceleration)}
	return z, nil
}

// Acceleration returns the zonal acceleration at the provided position, assuming the body pole is the inertial Z axis.
func (z *ZonalHarmonics) Acceleration(_ time.Time, R, _ []float64, _ float64) ([]float64, error) {
	pert := make([]float64, 3)
	x := R[0]
	y := R[1]
	zz := R[2]
	z2 := zz * zz
	z3 := z2 * zz
	r2 := x*x + y*y + z2
	r252 := math.Pow(r2, 5/2.)
	r272 := math.Pow(r2, 7/2.)
	// J2 (computed via SageMath: https://cloud.sagemath.com/projects/1fb6b227-1832-4f82-a05c-7e45614c00a2/files/j2perts.sagews)
	accJ2 := (3 / 2.) * z.Body.J(2) * math.Pow(z.Body.Radius, 2) * z.Body.μ
	pert[0] += accJ2 * (5*x*z2/r272 - x/r252)
	pert[1] += accJ2 * (5*y*z2/r272 - y/r252)
	pert[2] += accJ2 * (5*z3/r272 - 3*zz/r252)
	if z.Degree >= 3 {
		// J3 (computed via SageMath: https://cloud.sagemath.com/#projects/1fb6b227-1832-4f82-a05c-7e45614c00a2/files/j3perts.sagews)
		r292 := math.Pow(r2, 9/2.)
		z4 := z2 * z2
		accJ3 := z.Body.J(3) * math.Pow(z.Body.Radius, 3) * z.Body.μ
		pert[0] += (5 / 2.) * accJ3 * (7*x*z3/r292 - 3*x*zz/r272)
		pert[1] += (5 / 2.) * accJ3 * (7*y*z3/r292 - 3*y*zz/r272)
		pert[2] += 0.5 * accJ3 * (35*z4/r292 - 30*z2/r272 + 3/r252)
	}
	return pert, nil
}
