package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
)

// LoadPolicy reads a Policy from a YAML file. Keys missing from the file keep
// their DefaultPolicy values.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPolicyInvalidError(path, err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, errors.NewPolicyInvalidError(path, err)
	}

	if err := policy.Validate(); err != nil {
		return nil, errors.NewPolicyInvalidError(path, err)
	}

	return policy, nil
}

// LoadPolicyOrDefault loads path, falling back to DefaultPolicy when the
// file does not exist and required is false.
func LoadPolicyOrDefault(path string, required bool) (*Policy, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !required {
		return DefaultPolicy(), nil
	}
	return LoadPolicy(path)
}

// DefaultPolicy blocks drift everywhere and accepts no overrides
func DefaultPolicy() *Policy {
	return &Policy{
		FailOnDrift:    true,
		StrictBranches: []string{},
		Override: OverridePolicy{
			Labels: []string{},
		},
	}
}

// SavePolicy writes a Policy to a YAML file
func SavePolicy(policy *Policy, path string) error {
	data, err := yaml.Marshal(policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}

// Validate checks field values the YAML decoder cannot
func (p *Policy) Validate() error {
	if p.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", p.Workers)
	}
	if p.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative, got %s", p.Generator.Timeout)
	}
	for lang := range p.OutputDirs {
		if !knownLanguage(lang) {
			return fmt.Errorf("output_dirs: unknown language %q (supported: rust, typescript)", lang)
		}
	}
	return nil
}

func knownLanguage(lang drift.Language) bool {
	for _, l := range drift.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
