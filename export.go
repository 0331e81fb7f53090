package dsst

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the exporting of the sampled states.
type ExportConfig struct {
	Filename     string
	Dir          string // defaults to the configured output path
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(st SpacecraftState) []string // Custom export columns
	CSVAppendHdr func() []string                   // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

func (c ExportConfig) path() string {
	dir := c.Dir
	if dir == "" {
		dir = dsstConfig().outputDir
	}
	name := c.Filename
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	return filepath.Join(dir, "dsst-"+name+".csv")
}

var csvHeader = []string{"time", "jd", "a", "ex", "ey", "hx", "hy", "lM", "e", "i", "mass", "x", "y", "z", "vx", "vy", "vz"}

// createAsCSVFile returns a file which requires a defer close statement!
// On error, no file is returned.
func createAsCSVFile(conf ExportConfig, stateDT time.Time) (*os.File, error) {
	f, err := os.Create(conf.path())
	if err != nil {
		return nil, err
	}
	if err = writeCSVPreamble(f, stateDT); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeCSVPreamble(w io.Writer, stateDT time.Time) error {
	_, err := fmt.Fprintf(w, `# Creation date (UTC): %s
# Elements are equinoctial, lM is the mean longitude. Angles in degrees, distances in meters, mass in kg.
#   Simulation time start (UTC): %s
`, time.Now().UTC(), stateDT.UTC())
	return err
}

func formatState(state SpacecraftState) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 15, 64) }
	el := state.Orbit.Elements()
	R, V := state.Orbit.RV()
	return []string{state.DT().UTC().Format(time.RFC3339Nano), ff(julian.TimeToJD(state.DT())),
		ff(el[0]), ff(el[1]), ff(el[2]), ff(el[3]), ff(el[4]), ff(Rad2deg(el[5])),
		ff(state.Orbit.E()), ff(Rad2deg(state.Orbit.I())), ff(state.Mass),
		ff(R[0]), ff(R[1]), ff(R[2]), ff(V[0]), ff(V[1]), ff(V[2])}
}

// StreamStates streams the output of the channel to the configured file until the channel is closed.
// The channel is always drained, even after a write error.
func StreamStates(conf ExportConfig, stateChan <-chan SpacecraftState) (err error) {
	var f *os.File
	var w *csv.Writer
	var last time.Time
	for state := range stateChan {
		if err != nil || !conf.AsCSV {
			continue
		}
		if f == nil {
			if f, err = createAsCSVFile(conf, state.DT()); err != nil {
				continue
			}
			w = csv.NewWriter(f)
			hdr := csvHeader
			if conf.CSVAppendHdr != nil {
				hdr = append(append([]string{}, hdr...), conf.CSVAppendHdr()...)
			}
			err = w.Write(hdr)
		}
		record := formatState(state)
		if conf.CSVAppend != nil {
			record = append(record, conf.CSVAppend(state)...)
		}
		if err == nil {
			err = w.Write(record)
		}
		last = state.DT()
	}
	if f == nil || w == nil {
		return err
	}
	w.Flush()
	if err == nil {
		err = w.Error()
	}
	if err == nil {
		_, err = f.WriteString(fmt.Sprintf("# Simulation time end (UTC): %s\n", last.UTC()))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
