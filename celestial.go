package dsst

import (
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in meters.
	AU = 1.49597870700e11
	// EarthRotationRate is the average Earth rotation rate in radians per second.
	EarthRotationRate = 7.2921158553e-5
	// SolarPressure is the solar radiation pressure at one AU in N/m^2.
	SolarPressure = 4.56e-6
)

// CelestialObject defines a celestial object in SI units.
type CelestialObject struct {
	Name   string
	Radius float64 // equatorial radius (m)
	μ      float64 // gravitational parameter (m^3/s^2)
	J2     float64
	J3     float64
	ω      float64 // rotation rate about the pole (rad/s)
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// RotationRate returns the spin rate of the body about its pole.
func (c CelestialObject) RotationRate() float64 {
	return c.ω
}

// J returns the perturbing J_n factor for the provided n.
// Currently only J2 and J3 are supported.
func (c CelestialObject) J(n uint8) float64 {
	switch n {
	case 2:
		return c.J2
	case 3:
		return c.J3
	default:
		return 0.0
	}
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ && c.J2 == b.J2
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "sun":
		return Sun, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined celestial object '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 6.957e8, 1.32712440017987e20, 0, 0, 0}

// Earth is home (EIGEN-like constants).
var Earth = CelestialObject{"Earth", 6378136.3, 3.986004415e14, 1.08262668355e-3, -2.53265648533e-6, EarthRotationRate}

// Moon is the only natural satellite supported as a third body.
var Moon = CelestialObject{"Moon", 1.7374e6, 4.902800066e12, 2.0321568e-4, 0, 2.6616995e-6}
