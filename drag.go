package dsst

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Atmosphere returns the density of the atmosphere in kg/m³.
type Atmosphere interface {
	Density(dt time.Time, R []float64) float64
	// Body is the body which carries this atmosphere (used for its co-rotation).
	Body() CelestialObject
}

// ExponentialAtmosphere is a piecewise exponential model of a spherical atmosphere.
type ExponentialAtmosphere struct {
	body   CelestialObject
	layers []atmosphereLayer // sorted by base altitude
}

type atmosphereLayer struct {
	base, ρ0, scale float64 // m, kg/m³, m
}

// valladoLayers is Table 8-4 of Vallado (4th edition), in km, kg/m³, km.
var valladoLayers = [][3]float64{
	{0, 1.225, 7.249}, {25, 3.899e-2, 6.349}, {30, 1.774e-2, 6.682}, {40, 3.972e-3, 7.554},
	{50, 1.057e-3, 8.382}, {60, 3.206e-4, 7.714}, {70, 8.770e-5, 6.549}, {80, 1.905e-5, 5.799},
	{90, 3.396e-6, 5.382}, {100, 5.297e-7, 5.877}, {110, 9.661e-8, 7.263}, {120, 2.438e-8, 9.473},
	{130, 8.484e-9, 12.636}, {140, 3.845e-9, 16.149}, {150, 2.070e-9, 22.523}, {180, 5.464e-10, 29.740},
	{200, 2.789e-10, 37.105}, {250, 7.248e-11, 45.546}, {300, 2.418e-11, 53.628}, {350, 9.518e-12, 53.298},
	{400, 3.725e-12, 58.515}, {450, 1.585e-12, 60.828}, {500, 6.967e-13, 63.822}, {600, 1.454e-13, 71.835},
	{700, 3.614e-14, 88.667}, {800, 1.170e-14, 124.64}, {900, 5.245e-15, 181.05}, {1000, 3.019e-15, 268.00},
}

// NewExponentialAtmosphere returns the Vallado exponential atmosphere of the provided body.
func NewExponentialAtmosphere(body CelestialObject) *ExponentialAtmosphere {
	layers := make([]atmosphereLayer, len(valladoLayers))
	for i, l := range valladoLayers {
		layers[i] = atmosphereLayer{l[0] * 1e3, l[1], l[2] * 1e3}
	}
	return &ExponentialAtmosphere{body, layers}
}

// NewSimpleExponentialAtmosphere returns a single layer model ρ = ρ0 exp(-(h-h0)/H).
func NewSimpleExponentialAtmosphere(body CelestialObject, ρ0, h0, H float64) *ExponentialAtmosphere {
	return &ExponentialAtmosphere{body, []atmosphereLayer{{h0, ρ0, H}}}
}

// Density implements the Atmosphere interface.
func (a *ExponentialAtmosphere) Density(_ time.Time, R []float64) float64 {
	h := norm(R) - a.body.Radius
	idx := sort.Search(len(a.layers), func(i int) bool { return a.layers[i].base > h }) - 1
	if idx < 0 {
		idx = 0
	}
	l := a.layers[idx]
	return l.ρ0 * math.Exp(-(h-l.base)/l.scale)
}

// Body implements the Atmosphere interface.
func (a *ExponentialAtmosphere) Body() CelestialObject {
	return a.body
}

// AtmosphericDrag is the drag of a spherical spacecraft in a co-rotating atmosphere.
type AtmosphericDrag struct {
	averagedForce
	Atmosphere Atmosphere
	Cd         float64 // drag coefficient
	Area       float64 // cross section (m²)
}

// NewAtmosphericDrag returns a new drag force model.
func NewAtmosphericDrag(atm Atmosphere, cd, area float64) (*AtmosphericDrag, error) {
	if cd <= 0 || area <= 0 {
		return nil, fmt.Errorf("invalid drag parameters Cd=%f area=%f", cd, area)
	}
	d := &AtmosphericDrag{Atmosphere: atm, Cd: cd, Area: area}
	d.averagedForce = averagedForce{newGaussContribution(d.Acceleration)}
	return d, nil
}

// Acceleration returns the drag acceleration.
func (d *AtmosphericDrag) Acceleration(dt time.Time, R, V []float64, mass float64) ([]float64, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: drag with mass %f", ErrMassNonPositive, mass)
	}
	ρ := d.Atmosphere.Density(dt, R)
	vAtm := BodyRotationVelocity(d.Atmosphere.Body().RotationRate(), R)
	vRel := []float64{V[0] - vAtm[0], V[1] - vAtm[1], V[2] - vAtm[2]}
	f := -0.5 * ρ * d.Cd * d.Area / mass * norm(vRel)
	return []float64{f * vRel[0], f * vRel[1], f * vRel[2]}, nil
}
