package policy

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
)

// Event is the CI context a run was triggered in
type Event struct {
	Name   string   `json:"name" yaml:"name"`
	Branch string   `json:"branch" yaml:"branch"`
	Base   string   `json:"base,omitempty" yaml:"base,omitempty"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// IsPullRequest reports whether the event is a pull_request or pull_request_target
func (e Event) IsPullRequest() bool {
	return strings.HasPrefix(e.Name, "pull_request")
}

// TargetBranch is the branch drift would land on: the PR base for pull
// requests, the pushed branch otherwise.
func (e Event) TargetBranch() string {
	if e.IsPullRequest() && e.Base != "" {
		return e.Base
	}
	return e.Branch
}

type eventPayload struct {
	PullRequest *struct {
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

// EventFromEnv builds an Event from GitHub Actions environment variables.
// Outside Actions every field is empty, which resolves like a push to an
// unnamed branch.
func EventFromEnv(getenv func(string) string) (Event, error) {
	ev := Event{
		Name:   getenv("GITHUB_EVENT_NAME"),
		Branch: getenv("GITHUB_REF_NAME"),
		Base:   getenv("GITHUB_BASE_REF"),
	}

	path := getenv("GITHUB_EVENT_PATH")
	if path == "" || !ev.IsPullRequest() {
		return ev, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ev, errors.Wrap(errors.ErrCodeEventInvalid, "cannot read event payload", errors.NewFileReadError(path, err))
	}

	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ev, errors.Wrap(errors.ErrCodeEventInvalid, "cannot parse event payload", err)
	}
	if payload.PullRequest != nil {
		for _, l := range payload.PullRequest.Labels {
			ev.Labels = append(ev.Labels, l.Name)
		}
		if ev.Base == "" {
			ev.Base = payload.PullRequest.Base.Ref
		}
	}

	return ev, nil
}

// Resolve turns the policy and event into the evaluator's input
func (p *Policy) Resolve(ev Event) drift.PolicyConfig {
	return drift.PolicyConfig{
		FailOnDrift:     p.FailOnDrift || p.IsStrictBranch(ev.TargetBranch()),
		IsPullRequest:   ev.IsPullRequest(),
		OverrideGranted: ev.IsPullRequest() && p.HasOverrideLabel(ev.Labels),
	}
}

// IsStrictBranch reports whether branch matches a strict_branches pattern
func (p *Policy) IsStrictBranch(branch string) bool {
	if branch == "" {
		return false
	}
	for _, pattern := range p.StrictBranches {
		if ok, err := doublestar.Match(pattern, branch); err == nil && ok {
			return true
		}
	}
	return false
}

// HasOverrideLabel reports whether any label grants an override
func (p *Policy) HasOverrideLabel(labels []string) bool {
	for _, want := range p.Override.Labels {
		for _, got := range labels {
			if strings.EqualFold(want, got) {
				return true
			}
		}
	}
	return false
}
