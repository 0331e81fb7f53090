package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ChristopherRabotin/dsst"
	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

// This code reads a scenario file and propagates the spacecraft with the semianalytical propagator.

const (
	defaultScenario = "~~unset~~"
)

var (
	scenario    string
	metricsAddr string
	verbose     bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "propagation scenario TOML file")
	flag.StringVar(&metricsAddr, "metrics", "", "serve the prometheus metrics on this address (e.g. :9090)")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	if metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Printf("metrics server stopped: %s", err)
			}
		}()
	}

	sc, err := readScenario(viper.GetViper())
	if err != nil {
		log.Fatalf("invalid scenario: %s", err)
	}
	if verbose {
		log.Printf("[conf] %s -> %s every %s, %d force models", sc.orbit, sc.end, sc.step, len(sc.forces))
	}

	integrator, err := sc.integrator()
	if err != nil {
		log.Fatalf("could not build the integrator: %s", err)
	}
	prop, err := dsst.NewPropagator(integrator, sc.orbit, sc.interval)
	if err != nil {
		log.Fatal(err)
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	if !verbose {
		logger = kitlog.With(logger, "scenario", scenario)
	}
	prop.SetLogger(logger)
	if err = prop.SetMass(sc.mass); err != nil {
		log.Fatal(err)
	}
	prop.SetSatelliteRevolution(sc.revolutions)
	if sc.lvlh {
		prop.SetAttitudeProvider(dsst.LVLHAttitude{})
	}
	for _, model := range sc.forces {
		prop.AddForceModel(model)
	}

	var wg sync.WaitGroup
	if !sc.export.IsUseless() {
		states := make(chan dsst.SpacecraftState, 1000) // a 1k entry buffer
		prop.RegisterStateChan(states)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := dsst.StreamStates(sc.export, states); err != nil {
				log.Printf("export failed: %s", err)
			}
		}()
	}
	final, err := prop.PropagateEvery(sc.end, sc.step, nil)
	wg.Wait() // Don't return until we're done writing all the files.
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}
	log.Printf("final state: %s", final)
}

func confReadTime(v *viper.Viper, key string) time.Time {
	return readJDEorTime(v.GetFloat64(key), v.GetTime(key))
}
