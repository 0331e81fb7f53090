package dsst

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/gokalman"
	"github.com/gonum/matrix/mat64"
)

const jacobianStep = 1e-7

// Tolerances returns the absolute and relative integration tolerances of the equinoctial elements
// which correspond to a position error of dP meters.
func Tolerances(dP float64, o Orbit) (absTol, relTol [6]float64, err error) {
	R, V := o.RV()
	r := norm(R)
	dV := velocityError(dP, o.Origin.μ, r, norm(V))
	J, err := equinoctialJacobian(o)
	if err != nil {
		return absTol, relTol, newPropagationError(KindConfiguration, o.DT, -1, err)
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			δ := dP
			if j >= 3 {
				δ = dV
			}
			absTol[i] += math.Abs(J.At(i, j)) * δ
		}
		relTol[i] = dP / r
	}
	return
}

// CartesianTolerances returns the tolerances of the position and velocity components for a position error of dP meters.
func CartesianTolerances(dP float64, o Orbit) (absTol, relTol [6]float64) {
	R, V := o.RV()
	r := norm(R)
	dV := velocityError(dP, o.Origin.μ, r, norm(V))
	for i := 0; i < 6; i++ {
		absTol[i] = dP
		if i >= 3 {
			absTol[i] = dV
		}
		relTol[i] = dP / r
	}
	return
}

func velocityError(dP, μ, r, v float64) float64 {
	return μ * dP / (v * r * r)
}

// equinoctialJacobian returns ∂(a, ex, ey, hx, hy, λM)/∂(x, y, z, vx, vy, vz) by inverting the
// central difference Jacobian of the element to Cartesian map.
func equinoctialJacobian(o Orbit) (*mat64.Dense, error) {
	el := o.Elements()
	K := mat64.NewDense(6, 6, nil)
	for j := 0; j < 6; j++ {
		h := jacobianStep
		if j == 0 {
			h *= el[0]
		}
		plus, minus := o, o
		plus.setElement(j, el[j]+h)
		minus.setElement(j, el[j]-h)
		Rp, Vp := plus.RV()
		Rm, Vm := minus.RV()
		for i := 0; i < 3; i++ {
			K.Set(i, j, (Rp[i]-Rm[i])/(2*h))
			K.Set(i+3, j, (Vp[i]-Vm[i])/(2*h))
		}
	}
	var J mat64.Dense
	if err := J.Inverse(K); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrJacobian, err)
	}
	var check mat64.Dense
	check.Mul(&J, K)
	if !mat64.EqualApprox(&check, gokalman.DenseIdentity(6), 1e-6) {
		return nil, fmt.Errorf("%w: inverse does not converge to identity", ErrJacobian)
	}
	return &J, nil
}

func (o *Orbit) setElement(i int, v float64) {
	switch i {
	case 0:
		o.a = v
	case 1:
		o.ex = v
	case 2:
		o.ey = v
	case 3:
		o.hx = v
	case 4:
		o.hy = v
	case 5:
		o.λ = v
	}
}
