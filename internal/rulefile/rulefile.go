// Package rulefile loads extra range rules from a YAML file:
//
//	rules:
//	  - name: Respiration
//	    min: 12
//	    max: 20
//	    message: Respiration rate abnormal!
package rulefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vitals-monitor/internal/vitals"
)

type file struct {
	Rules []vitals.Def `yaml:"rules"`
}

// Load decodes and validates the rule definitions in path.
func Load(path string) ([]vitals.Def, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file %s: %w", path, err)
	}
	defer f.Close()

	var out file
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rules file %s: %w", path, err)
	}
	if _, err := vitals.Build(out.Rules); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return out.Rules, nil
}
