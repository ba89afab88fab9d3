package drift

// Outcome is the final verdict of a run
type Outcome string

const (
	OutcomePass     Outcome = "pass"
	OutcomeFail     Outcome = "fail"
	OutcomeWarnPass Outcome = "warn-pass"
)

// Passed reports whether the invoking process should exit zero
func (o Outcome) Passed() bool {
	return o == OutcomePass || o == OutcomeWarnPass
}

// Decision reasons
const (
	ReasonGenerationFailed = "schema generation failed"
	ReasonNoDrift          = "no drift detected"
	ReasonOverride         = "drift present, override accepted"
	ReasonBlocked          = "drift detected, override not granted"
	ReasonNonBlocking      = "drift detected, non-blocking configuration"
)

// Decision is the policy verdict plus a human-readable reason
type Decision struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Reason  string  `json:"reason" yaml:"reason"`
}

// PolicyConfig is the resolved policy input for one run. How FailOnDrift and
// OverrideGranted were derived (branch rules, labels, approvals) is the
// caller's concern.
type PolicyConfig struct {
	FailOnDrift     bool `json:"fail_on_drift" yaml:"fail_on_drift"`
	IsPullRequest   bool `json:"is_pull_request" yaml:"is_pull_request"`
	OverrideGranted bool `json:"override_granted" yaml:"override_granted"`
}

// Evaluate decides the run outcome. Rules apply in order:
//
//  1. any generation error fails the run, whatever the configuration
//  2. no drift passes
//  3. an override downgrades drift to warn-pass
//  4. fail-on-drift fails
//  5. otherwise drift is a warning
func Evaluate(records []Record, cfg PolicyConfig) Decision {
	drifted := false
	for _, r := range records {
		if r.Status == StatusGenerationError {
			return Decision{Outcome: OutcomeFail, Reason: ReasonGenerationFailed}
		}
		if r.Status.IsDrift() {
			drifted = true
		}
	}

	switch {
	case !drifted:
		return Decision{Outcome: OutcomePass, Reason: ReasonNoDrift}
	case cfg.OverrideGranted:
		return Decision{Outcome: OutcomeWarnPass, Reason: ReasonOverride}
	case cfg.FailOnDrift:
		return Decision{Outcome: OutcomeFail, Reason: ReasonBlocked}
	default:
		return Decision{Outcome: OutcomeWarnPass, Reason: ReasonNonBlocking}
	}
}
