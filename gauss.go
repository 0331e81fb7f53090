package dsst

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultQuadraturePoints is the number of mean longitudes used to average a force over one orbit.
	DefaultQuadraturePoints = 48
	gaussVelocityStep       = 1e-6
)

var errNotInitialized = errors.New("short periodic terms requested before initialization")

// gaussRates returns the perturbing part of the equinoctial element rates caused by the acceleration acc
// applied at (R, V). The Gauss equations are obtained as the directional derivative of the element map along acc.
func gaussRates(R, V, acc []float64, origin CelestialObject) (rates [6]float64, err error) {
	accNorm := norm(acc)
	if accNorm == 0 {
		return
	}
	h := gaussVelocityStep * norm(V) / accNorm
	Vp := make([]float64, 3)
	Vm := make([]float64, 3)
	for i := 0; i < 3; i++ {
		Vp[i] = V[i] + h*acc[i]
		Vm[i] = V[i] - h*acc[i]
	}
	op, err := NewOrbitFromRV(R, Vp, time.Time{}, origin, EME2000)
	if err != nil {
		return
	}
	om, err := NewOrbitFromRV(R, Vm, time.Time{}, origin, EME2000)
	if err != nil {
		return
	}
	elp, elm := op.Elements(), om.Elements()
	for i := 0; i < 5; i++ {
		rates[i] = (elp[i] - elm[i]) / (2 * h)
	}
	rates[5] = angleDiff(elp[5], elm[5]) / (2 * h)
	return
}

// gaussContribution averages an instantaneous acceleration over the mean longitude and builds
// the first order short-periodic corrections from the Fourier series of the rate deviations.
type gaussContribution struct {
	acc    Acceleration
	points int
	term   *fourierTerm
}

func newGaussContribution(acc Acceleration) gaussContribution {
	return gaussContribution{acc: acc, points: DefaultQuadraturePoints}
}

// sample returns the uniformly spaced mean longitudes and the element rates at each of them.
// Date dependent inputs are frozen at the date of the state.
func (g *gaussContribution) sample(s SpacecraftState) ([]float64, [][6]float64, error) {
	λs := make([]float64, g.points)
	rates := make([][6]float64, g.points)
	o := s.Orbit
	for k := 0; k < g.points; k++ {
		λs[k] = twoPi * float64(k) / float64(g.points)
		o.λ = λs[k]
		R, V := o.RV()
		acc, err := g.acc(s.DT(), R, V, s.Mass)
		if err != nil {
			return nil, nil, err
		}
		if !finite(acc) {
			return nil, nil, fmt.Errorf("%w: non finite acceleration at λ=%f", ErrForceModel, λs[k])
		}
		if rates[k], err = gaussRates(R, V, acc, o.Origin); err != nil {
			return nil, nil, err
		}
	}
	return λs, rates, nil
}

func average(rates [][6]float64) (avg [6]float64) {
	for _, r := range rates {
		for i := range avg {
			avg[i] += r[i]
		}
	}
	for i := range avg {
		avg[i] /= float64(len(rates))
	}
	return
}

// meanRates implements the averaging of the rates over one revolution.
func (g *gaussContribution) meanRates(s SpacecraftState) ([6]float64, error) {
	_, rates, err := g.sample(s)
	if err != nil {
		return [6]float64{}, err
	}
	return average(rates), nil
}

// initialize computes the short-periodic series anchored on the provided mean state.
func (g *gaussContribution) initialize(s SpacecraftState) error {
	λs, rates, err := g.sample(s)
	if err != nil {
		return err
	}
	avg := average(rates)
	a := s.Orbit.a
	n := s.Orbit.MeanMotion()
	harmonics := g.points/2 - 1
	term := &fourierTerm{}
	for i := range term.cos {
		term.cos[i] = make([]float64, harmonics)
		term.sin[i] = make([]float64, harmonics)
	}
	scale := 2 / float64(g.points)
	for j := 1; j <= harmonics; j++ {
		var C, S [6]float64
		for k, λ := range λs {
			sj, cj := math.Sincos(float64(j) * λ)
			for i := 0; i < 6; i++ {
				δ := rates[k][i] - avg[i]
				C[i] += scale * δ * cj
				S[i] += scale * δ * sj
			}
		}
		fj := float64(j)
		for i := 0; i < 6; i++ {
			term.cos[i][j-1] = -S[i] / (n * fj)
			term.sin[i][j-1] = C[i] / (n * fj)
		}
		// Coupling of the semi major axis oscillation into the mean longitude through the mean motion.
		term.cos[5][j-1] += 3 * C[0] / (2 * a * n * fj * fj)
		term.sin[5][j-1] += 3 * S[0] / (2 * a * n * fj * fj)
	}
	term.anchor = s.DT()
	g.term = term
	return nil
}

func (g *gaussContribution) terms() ([]ShortPeriodTerm, error) {
	if g.term == nil {
		return nil, fmt.Errorf("%w: %s", ErrForceModel, errNotInitialized)
	}
	return []ShortPeriodTerm{g.term}, nil
}

// fourierTerm is a trigonometric series in the mean longitude.
type fourierTerm struct {
	anchor   time.Time
	cos, sin [6][]float64 // index j-1 holds harmonic j
}

// Value implements the ShortPeriodTerm interface.
func (f *fourierTerm) Value(_ time.Time, mean [6]float64) (η [6]float64) {
	λ := mean[5]
	for j := 1; j <= len(f.cos[0]); j++ {
		sj, cj := math.Sincos(float64(j) * λ)
		for i := range η {
			η[i] += f.cos[i][j-1]*cj + f.sin[i][j-1]*sj
		}
	}
	return
}

// averagedForce implements the ForceModel interface on top of an instantaneous acceleration.
type averagedForce struct {
	gaussContribution
}

// SetQuadraturePoints sets the number of mean longitudes used in the averaging (at least 8).
func (f *averagedForce) SetQuadraturePoints(n int) {
	if n < 8 {
		n = 8
	}
	f.points = n
}

// Initialize implements the ForceModel interface.
func (f *averagedForce) Initialize(mean SpacecraftState) error {
	return f.initialize(mean)
}

// MeanElementRate implements the ForceModel interface.
func (f *averagedForce) MeanElementRate(mean SpacecraftState) ([6]float64, error) {
	return f.meanRates(mean)
}

// ShortPeriodicTerms implements the ForceModel interface.
func (f *averagedForce) ShortPeriodicTerms(time.Time, [6]float64) ([]ShortPeriodTerm, error) {
	return f.terms()
}

// ReferenceForce implements the ForceModel interface.
func (f *averagedForce) ReferenceForce() (Acceleration, error) {
	return f.acc, nil
}
