package dsst

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mshafiee/jpleph"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
)

// Ephemeris returns the geocentric inertial position (m) of a third body.
type Ephemeris interface {
	Position(body CelestialObject, dt time.Time) ([]float64, error)
}

// MeeusEphemeris uses the low precision solar and lunar theories of Meeus' Astronomical Algorithms.
type MeeusEphemeris struct{}

// Position implements the Ephemeris interface.
func (MeeusEphemeris) Position(body CelestialObject, dt time.Time) ([]float64, error) {
	jde := julian.TimeToJD(dt.UTC())
	switch body.Name {
	case Sun.Name:
		α, δ := solar.TrueEquatorial(jde)
		r := solar.Radius(base.J2000Century(jde)) * AU
		sα, cα := math.Sincos(α.Rad())
		sδ, cδ := math.Sincos(δ.Rad())
		return []float64{r * cδ * cα, r * cδ * sα, r * sδ}, nil
	case Moon.Name:
		λ, β, Δ := moonposition.Position(jde)
		Δ *= 1e3
		sλ, cλ := math.Sincos(λ.Rad())
		sβ, cβ := math.Sincos(β.Rad())
		ecl := []float64{Δ * cβ * cλ, Δ * cβ * sλ, Δ * sβ}
		return Ecliptic2Equatorial(ecl, nutation.MeanObliquity(jde).Rad()), nil
	default:
		return nil, fmt.Errorf("no meeus ephemeris for %s", body.Name)
	}
}

// JPLEphemeris reads the positions from a JPL DE binary file.
type JPLEphemeris struct {
	sync.Mutex // the underlying reader keeps a shared cache
	eph        *jpleph.Ephemeris
	auM        float64
}

// NewJPLEphemeris opens the provided DE file; Close must be called when done.
func NewJPLEphemeris(path string) (*JPLEphemeris, error) {
	eph, err := jpleph.NewEphemeris(path, false)
	if err != nil {
		return nil, fmt.Errorf("could not open JPL ephemeris %s: %w", path, err)
	}
	auKm := eph.GetEphemerisDouble(jpleph.AUinKM)
	if auKm <= 0 {
		auKm = AU / 1e3
	}
	return &JPLEphemeris{eph: eph, auM: auKm * 1e3}, nil
}

// Position implements the Ephemeris interface.
func (e *JPLEphemeris) Position(body CelestialObject, dt time.Time) ([]float64, error) {
	var target jpleph.Planet
	switch body.Name {
	case Sun.Name:
		target = jpleph.Sun
	case Moon.Name:
		target = jpleph.Moon
	default:
		return nil, fmt.Errorf("no JPL target for %s", body.Name)
	}
	e.Lock()
	pos, _, err := e.eph.CalculatePV(julian.TimeToJD(dt.UTC()), target, jpleph.CenterEarth, false)
	e.Unlock()
	if err != nil {
		return nil, fmt.Errorf("JPL ephemeris of %s @ %s: %w", body.Name, dt, err)
	}
	return []float64{pos.X * e.auM, pos.Y * e.auM, pos.Z * e.auM}, nil
}

// Close releases the ephemeris file.
func (e *JPLEphemeris) Close() error {
	return e.eph.Close()
}

// DefaultEphemeris returns the JPL ephemeris if one is configured, and the Meeus one otherwise.
func DefaultEphemeris() (Ephemeris, error) {
	conf := dsstConfig()
	if conf.JPLFile == "" {
		return MeeusEphemeris{}, nil
	}
	return NewJPLEphemeris(conf.JPLFile)
}
