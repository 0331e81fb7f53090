package dsst

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat64.Matrix, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// Ecliptic2Equatorial rotates an ecliptic vector into the equatorial frame for the obliquity ε.
func Ecliptic2Equatorial(v []float64, ε float64) []float64 {
	return MxV33(R1(-ε), v)
}

// BodyRotationVelocity returns ω×r for a body spinning about its third axis at rate ω.
func BodyRotationVelocity(ω float64, R []float64) []float64 {
	return []float64{-ω * R[1], ω * R[0], 0}
}

// LVLH returns the rows of the local vertical local horizontal frame (radial, along-track, orbit normal) expressed in inertial coordinates.
func LVLH(R, V []float64) *mat64.Dense {
	r := unit(R)
	n := unit(cross(R, V))
	t := cross(n, r)
	return mat64.NewDense(3, 3, []float64{r[0], r[1], r[2], t[0], t[1], t[2], n[0], n[1], n[2]})
}
