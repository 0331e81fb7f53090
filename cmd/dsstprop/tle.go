package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ChristopherRabotin/dsst"
	"github.com/joshuaferrara/go-satellite"
)

// orbitFromTLE seeds an osculating orbit with the SGP4 state of a TLE at the start date.
// TEME is used as if it were the inertial frame of the propagator.
func orbitFromTLE(line1, line2 string, start time.Time, body dsst.CelestialObject) (dsst.Orbit, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	// go-satellite calls log.Fatal on malformed lines.
	if len(line1) != 69 || len(line2) != 69 || line1[0] != '1' || line2[0] != '2' {
		return dsst.Orbit{}, fmt.Errorf("malformed TLE lines")
	}
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return dsst.Orbit{}, fmt.Errorf("sgp4 init failed: code=%d %s", sat.Error, sat.ErrorStr)
	}
	dt := start.UTC()
	pos, vel := satellite.Propagate(sat, dt.Year(), int(dt.Month()), dt.Day(), dt.Hour(), dt.Minute(), dt.Second())
	R := []float64{pos.X * 1e3, pos.Y * 1e3, pos.Z * 1e3}
	V := []float64{vel.X * 1e3, vel.Y * 1e3, vel.Z * 1e3}
	for _, c := range append(R, V...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return dsst.Orbit{}, fmt.Errorf("sgp4 propagation failed at %s", dt)
		}
	}
	return dsst.NewOrbitFromRV(R, V, dt, body, dsst.EME2000)
}
