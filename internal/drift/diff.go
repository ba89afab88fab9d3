package drift

import (
	"encoding/hex"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/zeebo/blake3"
)

// diffContext is the number of unchanged lines shown around each hunk
const diffContext = 3

// UnifiedDiff renders a line-based unified diff from the committed to the
// generated content. label names the artifact in the ---/+++ headers.
func UnifiedDiff(label string, committed, generated []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(committed),
		B:        splitLines(generated),
		FromFile: "committed/" + label,
		ToFile:   "generated/" + label,
		Context:  diffContext,
	})
}

// LineStats counts inserted and deleted lines between committed and generated content.
func LineStats(committed, generated []byte) (insertions, deletions int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(committed), string(generated))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			insertions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countLines(d.Text)
		}
	}
	return insertions, deletions
}

// Digest returns the hex blake3 digest of content
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// splitLines keeps line terminators. A final line without one is marked the
// way git marks it, so it still differs from the terminated form.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n\\ No newline at end of file\n"
	return lines
}

// countLines counts lines; a trailing fragment without "\n" counts as one.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	count := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		count++
	}
	return count
}
