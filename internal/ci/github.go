// Package ci publishes run results to the CI system the binary runs under.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
)

// Output names written to $GITHUB_OUTPUT
const (
	OutputSchemasValidated = "schemas-validated"
	OutputSchemasGenerated = "schemas-generated"
	OutputDriftDetected    = "drift-detected"
	OutputDiffSummary      = "diff-summary"
)

// Output is one step output
type Output struct {
	Name  string
	Value string
}

// ReportOutputs returns the step outputs for a report, in a fixed order
func ReportOutputs(r *drift.Report) []Output {
	return []Output{
		{Name: OutputSchemasValidated, Value: strconv.Itoa(r.SchemasValidated)},
		{Name: OutputSchemasGenerated, Value: strconv.Itoa(r.SchemasGenerated)},
		{Name: OutputDriftDetected, Value: strconv.FormatBool(r.DriftDetected)},
		{Name: OutputDiffSummary, Value: r.DiffSummary},
	}
}

// FormatOutputs renders outputs in the GitHub Actions file-command syntax.
// Multi-line values use the name<<DELIMITER form with a random delimiter so
// no diff line can terminate the value early.
func FormatOutputs(outputs []Output) string {
	var b strings.Builder
	for _, o := range outputs {
		if !strings.ContainsAny(o.Value, "\r\n") {
			fmt.Fprintf(&b, "%s=%s\n", o.Name, o.Value)
			continue
		}
		delim := "LUMOS_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", o.Name, delim, strings.TrimSuffix(o.Value, "\n"), delim)
	}
	return b.String()
}

// WriteOutputs appends outputs to the file at path, normally $GITHUB_OUTPUT
func WriteOutputs(path string, outputs []Output) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewFileWriteError(path, err)
	}

	if _, err := f.WriteString(FormatOutputs(outputs)); err != nil {
		f.Close()
		return errors.NewFileWriteError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}
