package dsst

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

const eps = 1e-9

// vectorsEqual returns whether two vectors are equal within a relative tolerance of eps.
func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinAbsOrRel(a[i], b[i], eps, eps) {
			return false
		}
	}
	return true
}

//anglesEqual returns whether two angles in Radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(angleDiff(a, b))
	if diff < eps {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

var testEpoch = time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)

// leoOrbit is a near circular ISS like orbit.
func leoOrbit(t *testing.T, eType ElementType) Orbit {
	o, err := NewOrbitFromOE(7000e3, 0.001, 51.6, 45, 30, 10, testEpoch, Earth, EME2000)
	if err != nil {
		t.Fatalf("could not create orbit: %s", err)
	}
	o.Type = eType
	return o
}

// fixedEphemeris always returns the same position for every body.
type fixedEphemeris struct {
	pos []float64
}

func (e fixedEphemeris) Position(CelestialObject, time.Time) ([]float64, error) {
	return []float64{e.pos[0], e.pos[1], e.pos[2]}, nil
}
