package drift

import (
	"testing"

	"github.com/getlumos/lumos-action/internal/schema"
)

func rec(path string, lang Language, status Status) Record {
	return Record{Schema: schema.NewRef(path), Language: lang, Status: status}
}

var allConfigs = func() []PolicyConfig {
	var cfgs []PolicyConfig
	for _, fail := range []bool{false, true} {
		for _, pr := range []bool{false, true} {
			for _, override := range []bool{false, true} {
				cfgs = append(cfgs, PolicyConfig{FailOnDrift: fail, IsPullRequest: pr, OverrideGranted: override})
			}
		}
	}
	return cfgs
}()

func TestEvaluateCleanRecordsAlwaysPass(t *testing.T) {
	recordSets := map[string][]Record{
		"empty": nil,
		"unchanged": {
			rec("a.lumos", LanguageRust, StatusUnchanged),
			rec("a.lumos", LanguageTypeScript, StatusUnchanged),
		},
	}

	for name, records := range recordSets {
		for _, cfg := range allConfigs {
			got := Evaluate(records, cfg)
			if got.Outcome != OutcomePass || got.Reason != ReasonNoDrift {
				t.Errorf("%s %+v: got %+v, want pass", name, cfg, got)
			}
		}
	}
}

func TestEvaluateGenerationErrorAlwaysFails(t *testing.T) {
	recordSets := map[string][]Record{
		"only error": {
			rec("a.lumos", LanguageRust, StatusGenerationError),
			rec("a.lumos", LanguageTypeScript, StatusGenerationError),
		},
		"error after drift": {
			rec("a.lumos", LanguageRust, StatusModified),
			rec("a.lumos", LanguageTypeScript, StatusMissingCommitted),
			rec("b.lumos", LanguageRust, StatusGenerationError),
			rec("b.lumos", LanguageTypeScript, StatusGenerationError),
		},
	}

	for name, records := range recordSets {
		for _, cfg := range allConfigs {
			got := Evaluate(records, cfg)
			if got.Outcome != OutcomeFail || got.Reason != ReasonGenerationFailed {
				t.Errorf("%s %+v: got %+v, want fail/%q", name, cfg, got, ReasonGenerationFailed)
			}
		}
	}
}

func TestEvaluateDriftPolicy(t *testing.T) {
	driftSets := map[string][]Record{
		"modified": {
			rec("a.lumos", LanguageRust, StatusModified),
			rec("a.lumos", LanguageTypeScript, StatusUnchanged),
		},
		"missing": {
			rec("a.lumos", LanguageRust, StatusUnchanged),
			rec("a.lumos", LanguageTypeScript, StatusMissingCommitted),
		},
		"both": {
			rec("a.lumos", LanguageRust, StatusModified),
			rec("a.lumos", LanguageTypeScript, StatusMissingCommitted),
		},
	}

	tests := []struct {
		name    string
		cfg     PolicyConfig
		want    Outcome
		wantWhy string
	}{
		{"blocking without override", PolicyConfig{FailOnDrift: true}, OutcomeFail, ReasonBlocked},
		{"blocking pull request without override", PolicyConfig{FailOnDrift: true, IsPullRequest: true}, OutcomeFail, ReasonBlocked},
		{"blocking with override", PolicyConfig{FailOnDrift: true, OverrideGranted: true}, OutcomeWarnPass, ReasonOverride},
		{"non-blocking", PolicyConfig{}, OutcomeWarnPass, ReasonNonBlocking},
		{"non-blocking with override", PolicyConfig{OverrideGranted: true}, OutcomeWarnPass, ReasonOverride},
	}

	for setName, records := range driftSets {
		for _, tt := range tests {
			t.Run(setName+"/"+tt.name, func(t *testing.T) {
				got := Evaluate(records, tt.cfg)
				if got.Outcome != tt.want || got.Reason != tt.wantWhy {
					t.Errorf("Evaluate() = %+v, want %s/%q", got, tt.want, tt.wantWhy)
				}
			})
		}
	}
}

func TestEvaluateIsPure(t *testing.T) {
	records := []Record{
		rec("a.lumos", LanguageRust, StatusModified),
		rec("a.lumos", LanguageTypeScript, StatusUnchanged),
	}
	cfg := PolicyConfig{FailOnDrift: true}

	first := Evaluate(records, cfg)
	second := Evaluate(records, cfg)
	if first != second {
		t.Errorf("Evaluate not deterministic: %+v vs %+v", first, second)
	}
}

func TestOutcomePassed(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomePass, true},
		{OutcomeWarnPass, true},
		{OutcomeFail, false},
		{Outcome(""), false},
	}
	for _, tt := range tests {
		if got := tt.outcome.Passed(); got != tt.want {
			t.Errorf("%q.Passed() = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}
