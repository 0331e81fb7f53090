package dsst

import (
	"fmt"
	"math"
	"time"

	"github.com/gonum/floats"
)

const (
	keplerMaxIter = 50
	keplerTol     = 1e-14
)

// Frame is the name of the inertial frame in which an orbit is expressed.
type Frame string

// EME2000 is the default inertial frame.
const EME2000 Frame = "EME2000"

// ElementType tags whether the elements are mean or osculating.
type ElementType uint8

const (
	// Osculating elements are the instantaneous Keplerian elements of the state.
	Osculating ElementType = iota
	// Mean elements are averaged over the fast angle.
	Mean
)

func (t ElementType) String() string {
	if t == Mean {
		return "mean"
	}
	return "osculating"
}

// LongitudeType describes which longitude is provided to the orbit constructor.
type LongitudeType uint8

const (
	// MeanLongitude is the mean longitude argument.
	MeanLongitude LongitudeType = iota
	// EccentricLongitude is the eccentric longitude argument.
	EccentricLongitude
	// TrueLongitude is the true longitude argument.
	TrueLongitude
)

// Orbit defines an orbit via its equinoctial elements.
// The longitude is always stored as the mean longitude.
type Orbit struct {
	a, ex, ey, hx, hy, λ float64
	DT                   time.Time
	Origin               CelestialObject
	Frame                Frame
	Type                 ElementType
}

// NewOrbit returns a new orbit from its equinoctial elements.
func NewOrbit(a, ex, ey, hx, hy, l float64, lType LongitudeType, dt time.Time, origin CelestialObject, frame Frame, eType ElementType) (Orbit, error) {
	o := Orbit{a: a, ex: ex, ey: ey, hx: hx, hy: hy, DT: dt, Origin: origin, Frame: frame, Type: eType}
	if err := o.validate(l); err != nil {
		return Orbit{}, err
	}
	switch lType {
	case TrueLongitude:
		o.λ = eccentricToMean(trueToEccentric(l, ex, ey), ex, ey)
	case EccentricLongitude:
		o.λ = eccentricToMean(l, ex, ey)
	default:
		o.λ = l
	}
	return o, nil
}

// NewOrbitFromElements returns an orbit from a [a, ex, ey, hx, hy, λM] array.
func NewOrbitFromElements(el [6]float64, dt time.Time, origin CelestialObject, frame Frame, eType ElementType) (Orbit, error) {
	return NewOrbit(el[0], el[1], el[2], el[3], el[4], el[5], MeanLongitude, dt, origin, frame, eType)
}

// NewOrbitFromOE returns an orbit from the classical Keplerian elements (angles in degrees, ν is the true anomaly).
func NewOrbitFromOE(a, e, i, Ω, ω, ν float64, dt time.Time, origin CelestialObject, frame Frame) (Orbit, error) {
	i *= deg2rad
	Ω *= deg2rad
	ω *= deg2rad
	ν *= deg2rad
	tanHalfI := math.Tan(i / 2)
	sΩ, cΩ := math.Sincos(Ω)
	sϖ, cϖ := math.Sincos(ω + Ω)
	return NewOrbit(a, e*cϖ, e*sϖ, tanHalfI*cΩ, tanHalfI*sΩ, ω+Ω+ν, TrueLongitude, dt, origin, frame, Osculating)
}

// NewOrbitFromRV returns an osculating orbit from the position and velocity vectors (m and m/s).
func NewOrbitFromRV(R, V []float64, dt time.Time, origin CelestialObject, frame Frame) (Orbit, error) {
	μ := origin.μ
	r := norm(R)
	v2 := dot(V, V)
	rV2OnMu := r * v2 / μ
	if !finite(R) || !finite(V) || r == 0 {
		return Orbit{}, fmt.Errorf("%w: non finite position or velocity", ErrInvalidOrbit)
	}
	if rV2OnMu >= 2 {
		return Orbit{}, fmt.Errorf("%w: open trajectory (r·v²/μ=%f)", ErrInvalidOrbit, rV2OnMu)
	}
	a := r / (2 - rV2OnMu)

	w := unit(cross(R, V))
	d := 1 / (1 + w[2])
	hx := -d * w[1]
	hy := d * w[0]

	cLv := (R[0] - d*R[2]*w[0]) / r
	sLv := (R[1] - d*R[2]*w[1]) / r
	lv := math.Atan2(sLv, cLv)

	eSE := dot(R, V) / math.Sqrt(μ*a)
	eCE := rV2OnMu - 1
	e2 := eCE*eCE + eSE*eSE
	f := eCE - e2
	g := math.Sqrt(1-e2) * eSE
	ex := a * (f*cLv + g*sLv) / r
	ey := a * (f*sLv - g*cLv) / r
	return NewOrbit(a, ex, ey, hx, hy, lv, TrueLongitude, dt, origin, frame, Osculating)
}

func (o Orbit) validate(l float64) error {
	if !finite([]float64{o.a, o.ex, o.ey, o.hx, o.hy, l}) {
		return fmt.Errorf("%w: non finite element", ErrInvalidOrbit)
	}
	if o.a <= 0 {
		return fmt.Errorf("%w: semi major axis %f", ErrInvalidOrbit, o.a)
	}
	if o.ex*o.ex+o.ey*o.ey >= 1 {
		return fmt.Errorf("%w: eccentricity %f", ErrInvalidOrbit, math.Hypot(o.ex, o.ey))
	}
	return nil
}

// Elements returns the equinoctial elements [a, ex, ey, hx, hy, λM].
func (o Orbit) Elements() [6]float64 {
	return [6]float64{o.a, o.ex, o.ey, o.hx, o.hy, o.λ}
}

// A returns the semi major axis.
func (o Orbit) A() float64 { return o.a }

// LM returns the mean longitude argument.
func (o Orbit) LM() float64 { return o.λ }

// LE returns the eccentric longitude argument.
func (o Orbit) LE() float64 {
	return meanToEccentric(o.λ, o.ex, o.ey)
}

// LV returns the true longitude argument.
func (o Orbit) LV() float64 {
	return eccentricToTrue(o.LE(), o.ex, o.ey)
}

// E returns the eccentricity.
func (o Orbit) E() float64 {
	return math.Hypot(o.ex, o.ey)
}

// I returns the inclination.
func (o Orbit) I() float64 {
	return 2 * math.Atan(math.Hypot(o.hx, o.hy))
}

// RAAN returns the right ascension of the ascending node.
func (o Orbit) RAAN() float64 {
	return math.Atan2(o.hy, o.hx)
}

// ArgPeri returns the argument of periapsis.
func (o Orbit) ArgPeri() float64 {
	return math.Atan2(o.ey, o.ex) - o.RAAN()
}

// MeanMotion returns the Keplerian mean motion in rad/s.
func (o Orbit) MeanMotion() float64 {
	return KeplerMeanMotion(o.Origin.μ, o.a)
}

// KeplerMeanMotion returns sqrt(μ/a³).
func KeplerMeanMotion(μ, a float64) float64 {
	return math.Sqrt(μ / (a * a * a))
}

// Period returns the period of this orbit.
func (o Orbit) Period() time.Duration {
	return time.Duration(twoPi / o.MeanMotion() * 1e9)
}

// RV returns the position and velocity vectors in meters and meters per second.
func (o Orbit) RV() ([]float64, []float64) {
	lE := o.LE()

	hx2 := o.hx * o.hx
	hy2 := o.hy * o.hy
	factH := 1 / (1 + hx2 + hy2)
	ux := (1 + hx2 - hy2) * factH
	uy := 2 * o.hx * o.hy * factH
	uz := -2 * o.hy * factH
	vx := uy
	vy := (1 - hx2 + hy2) * factH
	vz := 2 * o.hx * factH

	exey := o.ex * o.ey
	ex2 := o.ex * o.ex
	ey2 := o.ey * o.ey
	β := 1 / (1 + math.Sqrt(1-ex2-ey2))

	sLe, cLe := math.Sincos(lE)
	exCeyS := o.ex*cLe + o.ey*sLe

	x := o.a * ((1-β*ey2)*cLe + β*exey*sLe - o.ex)
	y := o.a * ((1-β*ex2)*sLe + β*exey*cLe - o.ey)
	factor := math.Sqrt(o.Origin.μ/o.a) / (1 - exCeyS)
	xDot := factor * (-sLe + β*o.ey*exCeyS)
	yDot := factor * (cLe - β*o.ex*exCeyS)

	R := []float64{x*ux + y*vx, x*uy + y*vy, x*uz + y*vz}
	V := []float64{xDot*ux + yDot*vx, xDot*uy + yDot*vy, xDot*uz + yDot*vz}
	return R, V
}

// R returns the radius vector.
func (o Orbit) R() []float64 {
	R, _ := o.RV()
	return R
}

// V returns the velocity vector.
func (o Orbit) V() []float64 {
	_, V := o.RV()
	return V
}

// PV implements the PVProvider interface with a Keplerian shift of this orbit.
func (o Orbit) PV(dt time.Time) ([]float64, []float64) {
	return o.Shifted(dt).RV()
}

// Shifted returns this orbit shifted to the provided date with pure Keplerian motion.
func (o Orbit) Shifted(dt time.Time) Orbit {
	shifted := o
	shifted.λ = o.λ + o.MeanMotion()*dt.Sub(o.DT).Seconds()
	shifted.DT = dt
	return shifted
}

// WithElements returns a copy of this orbit with the provided equinoctial elements.
func (o Orbit) WithElements(el [6]float64, eType ElementType) (Orbit, error) {
	return NewOrbitFromElements(el, o.DT, o.Origin, o.Frame, eType)
}

// Equals returns whether two orbits are identical within the provided relative tolerance on a and absolute tolerance on the other elements.
func (o Orbit) Equals(o1 Orbit, tol float64) error {
	if !o.Origin.Equals(o1.Origin) {
		return fmt.Errorf("different origin (%s != %s)", o.Origin.Name, o1.Origin.Name)
	}
	if !floats.EqualWithinRel(o.a, o1.a, tol) {
		return fmt.Errorf("semi major axis invalid (%f != %f)", o.a, o1.a)
	}
	mine, theirs := o.Elements(), o1.Elements()
	for i := 1; i < 5; i++ {
		if !floats.EqualWithinAbs(mine[i], theirs[i], tol) {
			return fmt.Errorf("element %d invalid (%g != %g)", i, mine[i], theirs[i])
		}
	}
	if !floats.EqualWithinAbs(angleDiff(o.λ, o1.λ), 0, tol) {
		return fmt.Errorf("mean longitude invalid (%f != %f)", o.λ, o1.λ)
	}
	return nil
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	return fmt.Sprintf("%s a=%.3f ex=%.6f ey=%.6f hx=%.6f hy=%.6f λM=%.4f (e=%.6f i=%.3f)", o.Type, o.a, o.ex, o.ey, o.hx, o.hy, Rad2deg(o.λ), o.E(), Rad2deg(o.I()))
}

// meanToEccentric solves the generalized Kepler equation λM = F - ex sinF + ey cosF.
func meanToEccentric(lM, ex, ey float64) float64 {
	F := lM
	for i := 0; i < keplerMaxIter; i++ {
		sF, cF := math.Sincos(F)
		f := F - ex*sF + ey*cF - lM
		fd := 1 - ex*cF - ey*sF
		δ := f / fd
		F -= δ
		if math.Abs(δ) < keplerTol {
			break
		}
	}
	return F
}

func eccentricToMean(lE, ex, ey float64) float64 {
	sE, cE := math.Sincos(lE)
	return lE - ex*sE + ey*cE
}

func eccentricToTrue(lE, ex, ey float64) float64 {
	ε := math.Sqrt(1 - ex*ex - ey*ey)
	sE, cE := math.Sincos(lE)
	num := ex*sE - ey*cE
	den := ε + 1 - ex*cE - ey*sE
	return lE + 2*math.Atan(num/den)
}

func trueToEccentric(lv, ex, ey float64) float64 {
	ε := math.Sqrt(1 - ex*ex - ey*ey)
	sV, cV := math.Sincos(lv)
	num := ey*cV - ex*sV
	den := ε + 1 + ex*cV + ey*sV
	return lv + 2*math.Atan(num/den)
}
