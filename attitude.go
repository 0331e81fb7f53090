package dsst

import (
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// Quaternion is a unit rotation quaternion, scalar first.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion does not rotate anything.
var IdentityQuaternion = Quaternion{W: 1}

// QuaternionFromDCM returns the quaternion of a direction cosine matrix (Shepperd's method).
func QuaternionFromDCM(m mat64.Matrix) Quaternion {
	tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	var q Quaternion
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(1+tr)
		q = Quaternion{0.25 * s, (m.At(1, 2) - m.At(2, 1)) / s, (m.At(2, 0) - m.At(0, 2)) / s, (m.At(0, 1) - m.At(1, 0)) / s}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(0, 0)-m.At(1, 1)-m.At(2, 2))
		q = Quaternion{(m.At(1, 2) - m.At(2, 1)) / s, 0.25 * s, (m.At(0, 1) + m.At(1, 0)) / s, (m.At(2, 0) + m.At(0, 2)) / s}
	case m.At(1, 1) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(1, 1)-m.At(0, 0)-m.At(2, 2))
		q = Quaternion{(m.At(2, 0) - m.At(0, 2)) / s, (m.At(0, 1) + m.At(1, 0)) / s, 0.25 * s, (m.At(1, 2) + m.At(2, 1)) / s}
	default:
		s := 2 * math.Sqrt(1+m.At(2, 2)-m.At(0, 0)-m.At(1, 1))
		q = Quaternion{(m.At(0, 1) - m.At(1, 0)) / s, (m.At(2, 0) + m.At(0, 2)) / s, (m.At(1, 2) + m.At(2, 1)) / s, 0.25 * s}
	}
	if q.W < 0 {
		q = Quaternion{-q.W, -q.X, -q.Y, -q.Z}
	}
	return q
}

// Attitude is the orientation of the spacecraft body with respect to a reference frame.
type Attitude struct {
	DT          time.Time
	Frame       Frame
	Orientation Quaternion
	Spin        [3]float64 // rad/s, body frame
	SpinRate    [3]float64 // rad/s², body frame
}

// PVProvider provides a position and velocity at a date.
type PVProvider interface {
	PV(dt time.Time) ([]float64, []float64)
}

// AttitudeProvider computes the attitude of a spacecraft following the provided trajectory.
type AttitudeProvider interface {
	Attitude(pv PVProvider, dt time.Time, frame Frame) Attitude
}

// fixedPV always returns the position and velocity of the orbit it was built with, whatever the date.
// It is used to compute the attitude of a state before any propagation happened.
type fixedPV struct {
	orbit Orbit
}

func (f fixedPV) PV(time.Time) ([]float64, []float64) {
	return f.orbit.RV()
}

// InertialAttitude keeps a constant orientation with respect to the inertial frame.
type InertialAttitude struct {
	Orientation Quaternion
}

// NewInertialAttitude returns an attitude provider aligned with the inertial axes.
func NewInertialAttitude() InertialAttitude {
	return InertialAttitude{IdentityQuaternion}
}

// Attitude implements the AttitudeProvider interface.
func (a InertialAttitude) Attitude(_ PVProvider, dt time.Time, frame Frame) Attitude {
	return Attitude{DT: dt, Frame: frame, Orientation: a.Orientation}
}

// LVLHAttitude aligns the body axes with the local vertical local horizontal frame.
type LVLHAttitude struct{}

// Attitude implements the AttitudeProvider interface.
func (LVLHAttitude) Attitude(pv PVProvider, dt time.Time, frame Frame) Attitude {
	R, V := pv.PV(dt)
	h := cross(R, V)
	r2 := dot(R, R)
	rate := norm(h) / r2
	// d(h/r²)/dt with dr/dt = R·V/r
	accel := -2 * rate * dot(R, V) / r2
	return Attitude{DT: dt, Frame: frame, Orientation: QuaternionFromDCM(LVLH(R, V)), Spin: [3]float64{0, 0, rate}, SpinRate: [3]float64{0, 0, accel}}
}
