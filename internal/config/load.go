package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadPlan reads and parses a fittings plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ConfigurationError.Wrap(err, "failed to read fittings plan %s", path)
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, err
	}

	// terraform settings default to the directory of the fittings file
	if plan.Terraform != nil && plan.Terraform.Path == "" {
		plan.Terraform.Path = filepath.Dir(path)
	}

	return plan, nil
}

// ParsePlan decodes a fittings plan and checks its structure.
// Unknown keys are rejected so that a typo never silently skips a setting.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil && !errors.Is(err, io.EOF) {
		return nil, ConfigurationError.Wrap(err, "failed to unmarshal fittings plan")
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan structure. Per-node values are not checked here;
// ValidateSettings handles them softly at polish time.
func (p *Plan) Validate() error {
	if len(p.Facilities) == 0 {
		return ConfigurationError.New("fittings plan declares no facilities")
	}

	for i, f := range p.Facilities {
		if f.Name == "" {
			return ConfigurationError.New("facility #%d has no name", i+1)
		}
		seen := make(map[string]bool, len(f.Nodes))
		for j, n := range f.Nodes {
			if n.Name == "" {
				return ConfigurationError.New("facility %s: node #%d has no name", f.Name, j+1)
			}
			if seen[n.Name] {
				return ConfigurationError.New("facility %s: node %s is declared twice", f.Name, n.Name)
			}
			seen[n.Name] = true
		}
	}

	return nil
}

// String renders a facility for log lines.
func (f Facility) String() string {
	if f.Location == "" {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Location)
}
