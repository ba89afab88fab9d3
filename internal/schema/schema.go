// Package schema resolves schema glob patterns into an ordered set of schema references.
package schema

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/getlumos/lumos-action/internal/errors"
)

// Ref identifies one schema unit. Refs are immutable once resolved.
type Ref struct {
	Path string `json:"path" yaml:"path"`
	Dir  string `json:"dir" yaml:"dir"`
	Name string `json:"name" yaml:"name"`
}

// NewRef builds a Ref from a schema file path. Name is the file name without its extension.
func NewRef(path string) Ref {
	clean := filepath.Clean(path)
	base := filepath.Base(clean)
	return Ref{
		Path: clean,
		Dir:  filepath.Dir(clean),
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// String returns the schema path
func (r Ref) String() string {
	return r.Path
}

// Resolver expands glob patterns relative to Root.
type Resolver struct {
	Root string
}

// NewResolver creates a resolver rooted at root ("" means the working directory).
func NewResolver(root string) *Resolver {
	return &Resolver{Root: root}
}

// Expand resolves patterns into schema refs. Patterns are processed in order;
// matches within one pattern are sorted lexically; a path matched by more than
// one pattern keeps its first position. Directories are skipped.
//
// An empty result is a NoSchemasMatched configuration error.
func (r *Resolver) Expand(patterns []string) ([]Ref, error) {
	var refs []Ref
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		full := pattern
		if r.Root != "" && !filepath.IsAbs(pattern) {
			full = filepath.Join(r.Root, pattern)
		}

		matches, err := doublestar.Glob(full)
		if err != nil {
			return nil, errors.NewSchemaPatternError(pattern, err)
		}
		sort.Strings(matches)

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			ref := NewRef(match)
			if seen[ref.Path] {
				continue
			}
			seen[ref.Path] = true
			refs = append(refs, ref)
		}
	}

	if len(refs) == 0 {
		return nil, errors.NewNoSchemasMatchedError(patterns)
	}

	return refs, nil
}

// SplitPatterns splits a newline- or comma-separated pattern list, the form
// CI inputs arrive in.
func SplitPatterns(values []string) []string {
	var patterns []string
	for _, v := range values {
		for _, field := range strings.FieldsFunc(v, func(r rune) bool { return r == '\n' || r == ',' }) {
			if p := strings.TrimSpace(field); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}
