package dsst

import (
	"math"
	"os"
	"testing"
	"time"
)

func TestMeeusEphemeris(t *testing.T) {
	eph := MeeusEphemeris{}
	// March equinox: the Sun is on the x axis.
	sun, err := eph.Position(Sun, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if r := norm(sun); math.Abs(r/AU-1) > 0.02 {
		t.Fatalf("Sun distance %f AU", r/AU)
	}
	if u := unit(sun); u[0] < 0.999 {
		t.Fatalf("Sun direction at the equinox: %+v", u)
	}
	// June solstice: the Sun declination is the obliquity.
	sun, _ = eph.Position(Sun, time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC))
	if dec := math.Asin(unit(sun)[2]) / deg2rad; math.Abs(dec-23.44) > 0.05 {
		t.Fatalf("Sun declination at the solstice %f deg", dec)
	}
	moon, err := eph.Position(Moon, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if r := norm(moon); r < 356000e3 || r > 407000e3 {
		t.Fatalf("Moon distance %f km", r/1e3)
	}
	if dec := math.Asin(unit(moon)[2]) / deg2rad; math.Abs(dec) > 29 {
		t.Fatalf("Moon declination %f deg", dec)
	}
	if _, err := eph.Position(Earth, testEpoch); err == nil {
		t.Fatal("no ephemeris for the Earth")
	}
}

func TestJPLEphemeris(t *testing.T) {
	path := os.Getenv("DSST_JPL_FILE")
	if path == "" {
		t.Skip("DSST_JPL_FILE not set")
	}
	eph, err := NewJPLEphemeris(path)
	if err != nil {
		t.Fatal(err)
	}
	defer eph.Close()
	for _, body := range []CelestialObject{Sun, Moon} {
		jpl, err := eph.Position(body, testEpoch)
		if err != nil {
			t.Fatal(err)
		}
		meeus, _ := MeeusEphemeris{}.Position(body, testEpoch)
		if dot(unit(jpl), unit(meeus)) < math.Cos(0.5*deg2rad) {
			t.Fatalf("%s: JPL and Meeus directions differ by more than half a degree", body.Name)
		}
	}
	if _, err := NewJPLEphemeris(path + ".missing"); err == nil {
		t.Fatal("a missing file should fail")
	}
}
