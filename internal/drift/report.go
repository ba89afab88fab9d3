package drift

import (
	"fmt"
	"strings"
)

// Counts tallies records by status
type Counts struct {
	Unchanged        int `json:"unchanged" yaml:"unchanged"`
	Modified         int `json:"modified" yaml:"modified"`
	MissingCommitted int `json:"missing_committed" yaml:"missing_committed"`
	GenerationError  int `json:"generation_error" yaml:"generation_error"`
}

// Total returns the number of records counted
func (c Counts) Total() int {
	return c.Unchanged + c.Modified + c.MissingCommitted + c.GenerationError
}

// Drifted returns the number of modified and missing-committed records
func (c Counts) Drifted() int {
	return c.Modified + c.MissingCommitted
}

// Report is the externally observable result of one run
type Report struct {
	RunID            string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	SchemasValidated int      `json:"schemas_validated" yaml:"schemas_validated"`
	SchemasGenerated int      `json:"schemas_generated" yaml:"schemas_generated"`
	DriftDetected    bool     `json:"drift_detected" yaml:"drift_detected"`
	DiffSummary      string   `json:"diff_summary" yaml:"diff_summary"`
	Counts           Counts   `json:"counts" yaml:"counts"`
	Records          []Record `json:"records" yaml:"records"`
	Decision         Decision `json:"decision" yaml:"decision"`
}

// Aggregate folds records and a decision into a Report. It has no side
// effects; identical inputs give identical reports.
func Aggregate(records []Record, decision Decision) *Report {
	report := &Report{
		Records:  append([]Record(nil), records...),
		Decision: decision,
	}

	schemas := make(map[string]bool)
	generated := make(map[string]bool)
	var summary strings.Builder

	for _, r := range records {
		schemas[r.Schema.Path] = true

		switch r.Status {
		case StatusUnchanged:
			report.Counts.Unchanged++
		case StatusModified:
			report.Counts.Modified++
		case StatusMissingCommitted:
			report.Counts.MissingCommitted++
		case StatusGenerationError:
			report.Counts.GenerationError++
		}

		if r.Status != StatusGenerationError {
			generated[r.Schema.Path] = true
		}
		if r.Status.IsDrift() {
			report.DriftDetected = true
		}
		if r.Status == StatusModified {
			if summary.Len() > 0 {
				summary.WriteString("\n")
			}
			fmt.Fprintf(&summary, "### %s (%s)\n", r.Schema.Name, r.Language)
			summary.WriteString(r.Diff)
		}
	}

	report.SchemasValidated = len(schemas)
	report.SchemasGenerated = len(generated)
	report.DiffSummary = summary.String()
	return report
}

// Failed reports whether the run should exit non-zero
func (r *Report) Failed() bool {
	return !r.Decision.Outcome.Passed()
}

// ByStatus returns the records with the given status, in report order
func (r *Report) ByStatus(status Status) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// FailedSchemas returns the distinct paths of schemas that failed to generate
func (r *Report) FailedSchemas() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, rec := range r.ByStatus(StatusGenerationError) {
		if !seen[rec.Schema.Path] {
			seen[rec.Schema.Path] = true
			paths = append(paths, rec.Schema.Path)
		}
	}
	return paths
}
