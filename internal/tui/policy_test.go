package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlumos/lumos-action/internal/policy"
)

func TestPolicyAnswersRoundTrip(t *testing.T) {
	p := policy.DefaultPolicy()
	p.StrictBranches = []string{"main", "release/**"}
	p.Override.Labels = []string{"drift-approved"}

	answers := AnswersFromPolicy(p)
	assert.True(t, answers.FailEverywhere)
	assert.Equal(t, "main, release/**", answers.StrictBranches)
	assert.Equal(t, "drift-approved", answers.OverrideLabels)
	assert.Empty(t, answers.Schemas)

	answers.FailEverywhere = false
	answers.Schemas = " programs/**/*.lumos ,, schemas/*.lumos "
	answers.OverrideLabels = ""

	out := policy.DefaultPolicy()
	answers.Apply(out)
	assert.False(t, out.FailOnDrift)
	assert.Equal(t, []string{"main", "release/**"}, out.StrictBranches)
	assert.Equal(t, []string{}, out.Override.Labels)
	assert.Equal(t, []string{"programs/**/*.lumos", "schemas/*.lumos"}, out.Schemas)
	require.NoError(t, out.Validate())
}

func TestNewPolicyForm(t *testing.T) {
	form := NewPolicyForm(AnswersFromPolicy(policy.DefaultPolicy()))
	require.NotNil(t, form)
}

func TestShouldPromptInCI(t *testing.T) {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		t.Run(envVar, func(t *testing.T) {
			t.Setenv(envVar, "true")
			assert.False(t, ShouldPrompt())
		})
	}
}
