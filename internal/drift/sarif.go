package drift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getlumos/lumos-action/internal/errors"
)

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIF rule IDs, one per non-clean status
const (
	RuleModified         = "LUMOS001"
	RuleMissingCommitted = "LUMOS002"
	RuleGenerationError  = "LUMOS003"
)

// SARIF represents a SARIF 2.1.0 report structure
type SARIF struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single run in a SARIF report
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the tool that generated the report
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata
type SARIFDriver struct {
	Name            string      `json:"name"`
	InformationURI  string      `json:"informationUri,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes one rule a result can reference
type SARIFRule struct {
	ID               string       `json:"id"`
	ShortDescription SARIFMessage `json:"shortDescription"`
}

// SARIFResult represents a single finding
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"` // "error", "warning", "note"
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations,omitempty"`
}

// SARIFMessage contains the finding message
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where the finding occurred
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation provides file-level location
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
}

// SARIFArtifactLocation identifies the artifact
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// ToSARIF converts the report to SARIF. Unchanged records produce no result.
// Drift results are errors when the run failed and warnings otherwise;
// generation errors are always errors. Artifact URIs are made relative to
// root, the directory schema patterns were resolved against.
func (r *Report) ToSARIF(version, root string) *SARIF {
	driftLevel := "warning"
	if r.Failed() {
		driftLevel = "error"
	}

	results := []SARIFResult{}
	for _, rec := range r.Records {
		var result SARIFResult
		switch rec.Status {
		case StatusModified:
			result = SARIFResult{
				RuleID: RuleModified,
				Level:  driftLevel,
				Message: SARIFMessage{Text: fmt.Sprintf("Generated %s for %s differs from the committed file (+%d -%d)",
					rec.Language, rec.Schema.Name, rec.Insertions, rec.Deletions)},
			}
		case StatusMissingCommitted:
			result = SARIFResult{
				RuleID:  RuleMissingCommitted,
				Level:   driftLevel,
				Message: SARIFMessage{Text: fmt.Sprintf("No committed %s output for %s", rec.Language, rec.Schema.Name)},
			}
		case StatusGenerationError:
			result = SARIFResult{
				RuleID:  RuleGenerationError,
				Level:   "error",
				Message: SARIFMessage{Text: rec.Error},
			}
		default:
			continue
		}

		result.Locations = []SARIFLocation{{
			PhysicalLocation: SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: artifactURI(root, rec.Schema.Path)},
			},
		}}
		results = append(results, result)
	}

	return &SARIF{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []SARIFRun{{
			Tool: SARIFTool{
				Driver: SARIFDriver{
					Name:            "lumos-action",
					InformationURI:  "https://github.com/getlumos/lumos-action",
					SemanticVersion: version,
					Rules: []SARIFRule{
						{ID: RuleModified, ShortDescription: SARIFMessage{Text: "Generated code differs from committed code"}},
						{ID: RuleMissingCommitted, ShortDescription: SARIFMessage{Text: "Generated code is not committed"}},
						{ID: RuleGenerationError, ShortDescription: SARIFMessage{Text: "Schema failed to generate"}},
					},
				},
			},
			Results: results,
		}},
	}
}

// artifactURI returns path relative to root with forward slashes. Paths
// outside root are kept as they are.
func artifactURI(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// SaveSARIF writes a SARIF report to disk
func SaveSARIF(sarif *SARIF, path string) error {
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal SARIF: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}
