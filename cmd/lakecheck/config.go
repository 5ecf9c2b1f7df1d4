// Config loading for the lakecheck CLI.
// Implements: prd003-lakecheck-cli R2 (config file, defaults, flag
// precedence).
package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

const (
	configFileName = "lakecheck"
	configFileType = "yaml"

	// Config keys (prd003-lakecheck-cli R2.2).
	cfgKeyBucket      = "bucket"
	cfgKeySchemaName  = "schema_name"
	cfgKeyDataDir     = "data_dir"
	cfgKeyTimeout     = "scenario_timeout"
	cfgKeyParallelism = "parallelism"

	// defaultBucket names the simulated bucket when none is configured.
	defaultBucket = "lakecheck-test"
)

// loadConfig reads the config file with Viper. A missing file is not an
// error; defaults apply. An explicit --config path must exist.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBucket, defaultBucket)
	v.SetDefault(cfgKeyTimeout, types.DefaultScenarioTimeout)
	v.SetDefault(cfgKeyParallelism, types.DefaultParallelism)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// harnessConfig assembles the harness Config from the loaded file and
// flag overrides.
func harnessConfig(v *viper.Viper) types.Config {
	cfg := types.Config{
		Bucket:          v.GetString(cfgKeyBucket),
		SchemaName:      v.GetString(cfgKeySchemaName),
		DataDir:         v.GetString(cfgKeyDataDir),
		ScenarioTimeout: v.GetDuration(cfgKeyTimeout),
		Parallelism:     v.GetInt(cfgKeyParallelism),
	}
	if flagBucket != "" {
		cfg.Bucket = flagBucket
	}
	if flagTimeout != 0 {
		cfg.ScenarioTimeout = flagTimeout
	}
	if flagParallel != 0 {
		cfg.Parallelism = flagParallel
	}
	return cfg
}

// Run command flag values, declared here with the config they override.
var (
	flagBucket    string
	flagTimeout   time.Duration
	flagParallel  int
	flagLifecycle string
)
