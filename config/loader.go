package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration.
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// path, falling back to config.yml and ./golang/config.yml when path is
// empty.
func LoadAppConfig(path string) error {
	paths := []string{"config.yml", "./golang/config.yml"}
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}

	applyDefaults(&cfg)
	Config = cfg
	return nil
}

// applyDefaults fills in defaults for unset fields: lateTripLimitSec
// defaults to 3600 (a configured 0 is also replaced by 3600), and
// latencyLimit defaults to -1 (disabled) only when absent, since its 0
// value ("drop anything already in the past") is meaningful. The server
// port, cycle interval and fetch retry settings also get defaults.
func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Match.LateTripLimitSec == 0 {
		cfg.Match.LateTripLimitSec = 3600
	}
	if cfg.Match.LatencyLimit == nil {
		disabled := -1
		cfg.Match.LatencyLimit = &disabled
	}
	if cfg.CycleIntervalMS == 0 {
		cfg.CycleIntervalMS = 60000
	}
	if cfg.FetchRetries == 0 {
		cfg.FetchRetries = 3
	}
	if cfg.FetchRetryDelayMS == 0 {
		cfg.FetchRetryDelayMS = 1000
	}
}
