// Package tui holds the interactive prompts used outside CI.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/getlumos/lumos-action/internal/policy"
)

// PolicyAnswers are the raw values collected by the policy wizard
type PolicyAnswers struct {
	FailEverywhere bool
	StrictBranches string
	OverrideLabels string
	Schemas        string
}

// AnswersFromPolicy seeds the wizard with an existing policy
func AnswersFromPolicy(p *policy.Policy) *PolicyAnswers {
	return &PolicyAnswers{
		FailEverywhere: p.FailOnDrift,
		StrictBranches: strings.Join(p.StrictBranches, ", "),
		OverrideLabels: strings.Join(p.Override.Labels, ", "),
		Schemas:        strings.Join(p.Schemas, ", "),
	}
}

// Apply copies the answers onto p
func (a *PolicyAnswers) Apply(p *policy.Policy) {
	p.FailOnDrift = a.FailEverywhere
	p.StrictBranches = splitList(a.StrictBranches)
	p.Override.Labels = splitList(a.OverrideLabels)
	p.Schemas = splitList(a.Schemas)
}

// NewPolicyForm builds the wizard form bound to a
func NewPolicyForm(a *PolicyAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Fail on drift on every branch?").
				Description("Choose No to block drift only on the strict branches below.").
				Value(&a.FailEverywhere),
			huh.NewInput().
				Title("Strict branches").
				Description("Comma separated patterns where drift always fails, e.g. main, release/**").
				Value(&a.StrictBranches),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Override labels").
				Description("Pull request labels that accept drift for one run.").
				Placeholder("drift-approved").
				Value(&a.OverrideLabels),
			huh.NewInput().
				Title("Schema patterns").
				Description("Comma separated globs. Leave empty to check every .lumos file.").
				Placeholder("schemas/**/*.lumos").
				Value(&a.Schemas),
		),
	)
}

// RunPolicyWizard asks for policy settings and applies them to p
func RunPolicyWizard(p *policy.Policy) error {
	answers := AnswersFromPolicy(p)
	if err := NewPolicyForm(answers).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	answers.Apply(p)
	return nil
}

func splitList(s string) []string {
	items := []string{}
	for _, field := range strings.Split(s, ",") {
		if v := strings.TrimSpace(field); v != "" {
			items = append(items, v)
		}
	}
	return items
}

// IsInteractive returns true if stdin is a terminal
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt reports whether prompts may be shown: never in CI, and only
// when stdin is a terminal.
func ShouldPrompt() bool {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}
