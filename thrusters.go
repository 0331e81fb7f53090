package dsst

import (
	"fmt"
	"time"
)

const (
	// StandardGravity is used to convert the specific impulse into an exhaust velocity (m/s²).
	StandardGravity = 9.80665
)

// EPThruster defines a EPThruster interface.
type EPThruster interface {
	// Returns the minimum power and voltage requirements for this EPThruster.
	Min() (voltage, power uint)
	// Returns the max power and voltage requirements for this EPThruster.
	Max() (voltage, power uint)
	// Returns the thrust in Newtons and isp consumed in seconds.
	Thrust(voltage, power uint) (thrust, isp float64, err error)
}

/* Available EPThrusters */

// PPS1350 is the Snecma EPThruster used on SMART-1.
type PPS1350 struct{}

// Min implements the EPThruster interface.
func (t *PPS1350) Min() (voltage, power uint) {
	return t.Max()
}

// Max implements the EPThruster interface.
func (t *PPS1350) Max() (voltage, power uint) {
	return 350, 2500
}

// Thrust implements the EPThruster interface.
func (t *PPS1350) Thrust(voltage, power uint) (thrust, isp float64, err error) {
	if voltage == 350 && power == 2500 {
		return 89e-3, 1650, nil
	}
	return 0, 0, fmt.Errorf("PPS1350: unsupported voltage (%d V) or power (%d W)", voltage, power)
}

// HERMeS is based on the NASA & Rocketdyne 12.5kW demo
type HERMeS struct{}

// Min implements the EPThruster interface.
func (t *HERMeS) Min() (voltage, power uint) {
	return t.Max()
}

// Max implements the EPThruster interface.
func (t *HERMeS) Max() (voltage, power uint) {
	return 800, 12500
}

// Thrust implements the EPThruster interface.
func (t *HERMeS) Thrust(voltage, power uint) (thrust, isp float64, err error) {
	if voltage == 800 && power == 12500 {
		return 0.680, 2960, nil
	}
	return 0, 0, fmt.Errorf("HERMeS: unsupported voltage (%d V) or power (%d W)", voltage, power)
}

// GenericEP is a generic EP EPThruster.
type GenericEP struct {
	thrust float64
	isp    float64
}

// Min implements the EPThruster interface.
func (t *GenericEP) Min() (voltage, power uint) {
	return 0, 0
}

// Max implements the EPThruster interface.
func (t *GenericEP) Max() (voltage, power uint) {
	return 0, 0
}

// Thrust implements the EPThruster interface.
func (t *GenericEP) Thrust(voltage, power uint) (thrust, isp float64, err error) {
	return t.thrust, t.isp, nil
}

// NewGenericEP returns a generic electric prop EPThruster.
func NewGenericEP(thrust, isp float64) *GenericEP {
	return &GenericEP{thrust, isp}
}

// ThrustControl returns the inertial unit direction of the thrust, or a zero vector when coasting.
type ThrustControl interface {
	Direction(R, V []float64) []float64
}

// Tangential thrusts along the velocity.
type Tangential struct{}

// Direction implements the ThrustControl interface.
func (Tangential) Direction(_, V []float64) []float64 { return unit(V) }

// AntiTangential thrusts against the velocity.
type AntiTangential struct{}

// Direction implements the ThrustControl interface.
func (AntiTangential) Direction(_, V []float64) []float64 {
	u := unit(V)
	return []float64{-u[0], -u[1], -u[2]}
}

// Coast does not thrust.
type Coast struct{}

// Direction implements the ThrustControl interface.
func (Coast) Direction(_, _ []float64) []float64 { return []float64{0, 0, 0} }

// LowThrust is a continuous electric propulsion force which consumes propellant.
type LowThrust struct {
	averagedForce
	Thrusters      []EPThruster
	Control        ThrustControl
	Voltage, Power uint
	thrust, flow   float64 // N, kg/s
}

// NewLowThrust returns a low thrust force model; all thrusters fire at the provided voltage and power.
func NewLowThrust(control ThrustControl, voltage, power uint, thrusters ...EPThruster) (*LowThrust, error) {
	lt := &LowThrust{Thrusters: thrusters, Control: control, Voltage: voltage, Power: power}
	for _, thruster := range thrusters {
		thrust, isp, err := thruster.Thrust(voltage, power)
		if err != nil {
			return nil, err
		}
		if thrust > 0 && isp <= 0 {
			return nil, fmt.Errorf("invalid specific impulse %f s", isp)
		}
		lt.thrust += thrust
		if thrust > 0 {
			lt.flow += thrust / (isp * StandardGravity)
		}
	}
	lt.averagedForce = averagedForce{newGaussContribution(lt.Acceleration)}
	return lt, nil
}

// Acceleration returns the thrust acceleration.
func (lt *LowThrust) Acceleration(_ time.Time, R, V []float64, mass float64) ([]float64, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: thrusting with mass %f", ErrMassNonPositive, mass)
	}
	dir := lt.Control.Direction(R, V)
	f := lt.thrust / mass
	return []float64{f * dir[0], f * dir[1], f * dir[2]}, nil
}

// MassRate implements the MassFlow interface.
func (lt *LowThrust) MassRate(s SpacecraftState) float64 {
	R, V := s.Orbit.RV()
	if lt.flow == 0 || norm(lt.Control.Direction(R, V)) == 0 {
		return 0
	}
	return -lt.flow
}
