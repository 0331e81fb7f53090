package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ChristopherRabotin/dsst"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

type scenarioConf struct {
	orbit          dsst.Orbit
	end            time.Time
	step, interval time.Duration
	revolutions    int
	mass           float64
	lvlh           bool
	integratorName string
	rk4Step        time.Duration
	positionError  float64
	forces         dsst.ForceModels
	export         dsst.ExportConfig
}

func readJDEorTime(jde float64, dt time.Time) time.Time {
	if jde == 0 {
		return dt
	}
	return julian.JDToTime(jde)
}

func readScenario(v *viper.Viper) (sc scenarioConf, err error) {
	v.SetDefault("mission.interval", "24h")
	v.SetDefault("mission.step", "60s")
	v.SetDefault("mission.revolutions", dsst.DefaultRevolutions)
	v.SetDefault("mission.integrator", "rk4")
	v.SetDefault("mission.rk4_step", "60s")
	v.SetDefault("mission.position_error", 10.0)
	v.SetDefault("spacecraft.mass", dsst.DefaultMass)
	v.SetDefault("orbit.body", "earth")
	v.SetDefault("orbit.type", "osculating")

	start := confReadTime(v, "mission.start")
	sc.end = confReadTime(v, "mission.end")
	if start.IsZero() || sc.end.IsZero() {
		return sc, errors.New("mission.start and mission.end are required")
	}
	sc.step = v.GetDuration("mission.step")
	sc.interval = v.GetDuration("mission.interval")
	sc.revolutions = v.GetInt("mission.revolutions")
	sc.integratorName = strings.ToLower(v.GetString("mission.integrator"))
	sc.rk4Step = v.GetDuration("mission.rk4_step")
	sc.positionError = v.GetFloat64("mission.position_error")
	sc.mass = v.GetFloat64("spacecraft.mass")
	sc.lvlh = strings.ToLower(v.GetString("spacecraft.attitude")) == "lvlh"

	if sc.orbit, err = readOrbit(v, start); err != nil {
		return
	}
	if sc.forces, err = readForces(v, sc.orbit.Origin); err != nil {
		return
	}
	sc.export = dsst.ExportConfig{
		Filename:  v.GetString("output.filename"),
		Dir:       v.GetString("output.dir"),
		AsCSV:     v.GetBool("output.csv"),
		Timestamp: v.GetBool("output.timestamp"),
	}
	if sc.export.AsCSV && sc.export.Filename == "" {
		sc.export.Filename = "propagation"
	}
	return
}

func readOrbit(v *viper.Viper, start time.Time) (dsst.Orbit, error) {
	body, err := dsst.CelestialObjectFromString(v.GetString("orbit.body"))
	if err != nil {
		return dsst.Orbit{}, err
	}
	eType := dsst.Osculating
	if strings.ToLower(v.GetString("orbit.type")) == "mean" {
		eType = dsst.Mean
	}
	switch {
	case v.IsSet("orbit.tle1"):
		return orbitFromTLE(v.GetString("orbit.tle1"), v.GetString("orbit.tle2"), start, body)
	case v.IsSet("orbit.ex"):
		lType := dsst.MeanLongitude
		switch strings.ToLower(v.GetString("orbit.longitude")) {
		case "true":
			lType = dsst.TrueLongitude
		case "eccentric":
			lType = dsst.EccentricLongitude
		}
		return dsst.NewOrbit(v.GetFloat64("orbit.a"), v.GetFloat64("orbit.ex"), v.GetFloat64("orbit.ey"),
			v.GetFloat64("orbit.hx"), v.GetFloat64("orbit.hy"), v.GetFloat64("orbit.lambda"), lType, start, body, dsst.EME2000, eType)
	default:
		o, err := dsst.NewOrbitFromOE(v.GetFloat64("orbit.sma"), v.GetFloat64("orbit.ecc"), v.GetFloat64("orbit.inc"),
			v.GetFloat64("orbit.RAAN"), v.GetFloat64("orbit.argPeri"), v.GetFloat64("orbit.tAnomaly"), start, body, dsst.EME2000)
		o.Type = eType
		return o, err
	}
}

func readForces(v *viper.Viper, body dsst.CelestialObject) (forces dsst.ForceModels, err error) {
	var eph dsst.Ephemeris
	ephemeris := func() (dsst.Ephemeris, error) {
		if eph == nil {
			eph, err = dsst.DefaultEphemeris()
		}
		return eph, err
	}
	if v.IsSet("forces.zonal") {
		v.SetDefault("forces.zonal.degree", 2)
		z, err := dsst.NewZonalHarmonics(body, uint8(v.GetInt("forces.zonal.degree")))
		if err != nil {
			return nil, err
		}
		forces.Add(z)
	}
	if v.IsSet("forces.drag") {
		d, err := dsst.NewAtmosphericDrag(dsst.NewExponentialAtmosphere(body), v.GetFloat64("forces.drag.cd"), v.GetFloat64("forces.drag.area"))
		if err != nil {
			return nil, err
		}
		forces.Add(d)
	}
	for _, name := range v.GetStringSlice("forces.thirdbody.bodies") {
		third, err := dsst.CelestialObjectFromString(name)
		if err != nil {
			return nil, err
		}
		e, err := ephemeris()
		if err != nil {
			return nil, err
		}
		tb, err := dsst.NewThirdBody(third, e)
		if err != nil {
			return nil, err
		}
		forces.Add(tb)
	}
	if v.IsSet("forces.srp") {
		e, err := ephemeris()
		if err != nil {
			return nil, err
		}
		srp, err := dsst.NewSolarRadiationPressure(v.GetFloat64("forces.srp.cr"), v.GetFloat64("forces.srp.area"), body, e)
		if err != nil {
			return nil, err
		}
		forces.Add(srp)
	}
	if v.IsSet("forces.thrust") {
		lt, err := readThrust(v)
		if err != nil {
			return nil, err
		}
		forces.Add(lt)
	}
	return forces, nil
}

func readThrust(v *viper.Viper) (*dsst.LowThrust, error) {
	v.SetDefault("forces.thrust.count", 1)
	var control dsst.ThrustControl
	switch strings.ToLower(v.GetString("forces.thrust.control")) {
	case "", "tangential":
		control = dsst.Tangential{}
	case "antitangential":
		control = dsst.AntiTangential{}
	case "coast":
		control = dsst.Coast{}
	default:
		return nil, fmt.Errorf("unknown thrust control `%s`", v.GetString("forces.thrust.control"))
	}
	var thruster dsst.EPThruster
	switch strings.ToLower(v.GetString("forces.thrust.thruster")) {
	case "pps1350":
		thruster = new(dsst.PPS1350)
	case "hermes":
		thruster = new(dsst.HERMeS)
	case "generic":
		thruster = dsst.NewGenericEP(v.GetFloat64("forces.thrust.thrust"), v.GetFloat64("forces.thrust.isp"))
	default:
		return nil, fmt.Errorf("unknown thruster `%s`", v.GetString("forces.thrust.thruster"))
	}
	thrusters := make([]dsst.EPThruster, v.GetInt("forces.thrust.count"))
	for i := range thrusters {
		thrusters[i] = thruster
	}
	voltage, power := thruster.Max()
	return dsst.NewLowThrust(control, voltage, power, thrusters...)
}

func (sc scenarioConf) integrator() (dsst.Integrator, error) {
	switch sc.integratorName {
	case "rk4":
		return dsst.NewRK4(sc.rk4Step), nil
	case "dopri":
		abs, rel, err := dsst.Tolerances(sc.positionError, sc.orbit)
		if err != nil {
			return nil, err
		}
		return dsst.NewDopriFromTolerances(sc.orbit.Period()/4, abs, rel)
	default:
		return nil, fmt.Errorf("unknown integrator `%s`", sc.integratorName)
	}
}
