package dsst

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfgOnce sync.Once
	config  _dsstconfig
	cfgErr  error
)

// _dsstconfig is a "hidden" struct, just use `dsstConfig`
type _dsstconfig struct {
	outputDir string
	JPLFile   string
}

// dsstConfig returns the library configuration, read once from $DSST_CONFIG/conf.toml.
// Without DSST_CONFIG, files are written to the working directory and the Meeus ephemeris is used.
func dsstConfig() _dsstconfig {
	cfgOnce.Do(func() {
		config, cfgErr = loadConfig(os.Getenv("DSST_CONFIG"))
	})
	if cfgErr != nil {
		panic(cfgErr)
	}
	return config
}

func loadConfig(confPath string) (_dsstconfig, error) {
	if confPath == "" {
		return _dsstconfig{outputDir: "."}, nil
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(confPath)
	v.SetDefault("general.output_path", ".")
	if err := v.ReadInConfig(); err != nil {
		return _dsstconfig{}, fmt.Errorf("%s/conf.toml not readable: %w", confPath, err)
	}
	conf := _dsstconfig{outputDir: v.GetString("general.output_path"), JPLFile: v.GetString("ephemeris.jpl")}
	if conf.JPLFile != "" {
		if _, err := os.Stat(conf.JPLFile); err != nil {
			return _dsstconfig{}, fmt.Errorf("JPL ephemeris file: %w", err)
		}
	}
	return conf, nil
}
