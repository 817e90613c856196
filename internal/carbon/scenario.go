package carbon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a named set of estimator inputs read from a YAML file.
type Scenario struct {
	Name   string
	Inputs Inputs
}

// scenarioFile is the on-disk form. States are kept as nodes so that ratios
// missing from the file fall back to their defaults instead of zero.
type scenarioFile struct {
	Name           string    `yaml:"name"`
	Mode           string    `yaml:"mode"`
	Region         string    `yaml:"region"`
	BiomassDensity *float64  `yaml:"biomass_density"`
	Baseline       yaml.Node `yaml:"baseline"`
	Project        yaml.Node `yaml:"project"`
}

// ParseScenario decodes a scenario document.
//
// Omitted ratios take DefaultStateInputs values. When mode is omitted, a
// document with a project section is a delta scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var doc scenarioFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}

	in := Inputs{
		Region:         doc.Region,
		BiomassDensity: doc.BiomassDensity,
		Baseline:       DefaultStateInputs(),
	}
	if doc.Baseline.Kind == 0 {
		return Scenario{}, errors.New("scenario has no baseline section")
	}
	if err := doc.Baseline.Decode(&in.Baseline); err != nil {
		return Scenario{}, fmt.Errorf("parsing baseline: %w", err)
	}
	if doc.Project.Kind != 0 {
		project := DefaultStateInputs()
		if err := doc.Project.Decode(&project); err != nil {
			return Scenario{}, fmt.Errorf("parsing project: %w", err)
		}
		in.Project = &project
	}

	switch {
	case doc.Mode != "":
		mode, err := ParseMode(doc.Mode)
		if err != nil {
			return Scenario{}, err
		}
		in.Mode = mode
	case in.Project != nil:
		in.Mode = ModeDelta
	default:
		in.Mode = ModeSingle
	}

	if in.Region == "" && in.BiomassDensity == nil {
		return Scenario{}, errors.New("scenario needs a region or a biomass_density")
	}
	return Scenario{Name: doc.Name, Inputs: in}, nil
}

// LoadScenario reads a scenario file. The name defaults to the file name
// without its extension.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		base := filepath.Base(path)
		sc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return sc, nil
}
