package policy

import (
	"time"

	"github.com/getlumos/lumos-action/internal/drift"
)

// DefaultPath is where the policy file is looked up when --policy is not given
const DefaultPath = ".lumos/drift-policy.yaml"

// Policy is the repository's drift policy file
type Policy struct {
	// FailOnDrift blocks drift on every branch
	FailOnDrift bool `yaml:"fail_on_drift"`
	// StrictBranches are doublestar patterns; drift targeting a matching
	// branch always blocks, whatever FailOnDrift says
	StrictBranches []string       `yaml:"strict_branches,omitempty"`
	Override       OverridePolicy `yaml:"override"`

	Schemas    []string                  `yaml:"schemas,omitempty"`
	OutputDirs map[drift.Language]string `yaml:"output_dirs,omitempty"`
	Generator  GeneratorPolicy           `yaml:"generator"`
	Workers    int                       `yaml:"workers,omitempty"`
}

// OverridePolicy lists the pull request labels that accept drift
type OverridePolicy struct {
	Labels []string `yaml:"labels,omitempty"`
}

// GeneratorPolicy configures the external generator
type GeneratorPolicy struct {
	Binary  string        `yaml:"binary,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
