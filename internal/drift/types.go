package drift

import (
	"context"
	"fmt"

	"github.com/getlumos/lumos-action/internal/schema"
)

// Language is a code generation target
type Language string

const (
	LanguageRust       Language = "rust"
	LanguageTypeScript Language = "typescript"
)

// Languages is the fixed, ordered set of targets every schema is compared in.
var Languages = []Language{LanguageRust, LanguageTypeScript}

// Extension returns the file extension of generated sources for the language
func (l Language) Extension() string {
	switch l {
	case LanguageRust:
		return "rs"
	case LanguageTypeScript:
		return "ts"
	default:
		return string(l)
	}
}

// Status classifies one generated artifact against its committed counterpart
type Status string

const (
	StatusUnchanged        Status = "unchanged"
	StatusModified         Status = "modified"
	StatusMissingCommitted Status = "missing-committed"
	StatusGenerationError  Status = "generation-error"
)

// IsDrift reports whether the status counts as drift. Generation errors are not drift.
func (s Status) IsDrift() bool {
	return s == StatusModified || s == StatusMissingCommitted
}

// Artifact is one freshly generated source file
type Artifact struct {
	Language Language
	Content  []byte
	Schema   schema.Ref
}

// Record is the comparison result for one schema in one language.
// Records are recomputed on every run and never persisted.
type Record struct {
	Schema   schema.Ref `json:"schema" yaml:"schema"`
	Language Language   `json:"language" yaml:"language"`
	Status   Status     `json:"status" yaml:"status"`
	Diff     string     `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`

	Insertions      int    `json:"insertions,omitempty" yaml:"insertions,omitempty"`
	Deletions       int    `json:"deletions,omitempty" yaml:"deletions,omitempty"`
	GeneratedDigest string `json:"generated_digest,omitempty" yaml:"generated_digest,omitempty"`
	CommittedDigest string `json:"committed_digest,omitempty" yaml:"committed_digest,omitempty"`
}

// Label names the record's artifact, e.g. "user.rs"
func (r Record) Label() string {
	return r.Schema.Name + "." + r.Language.Extension()
}

// GenerationError is a per-schema generation failure: invalid schema syntax
// or the generator rejecting the input. It never aborts the run; the
// schema's records carry StatusGenerationError instead.
type GenerationError struct {
	Schema  schema.Ref
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generate %s: %s: %v", e.Schema.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("generate %s: %s", e.Schema.Path, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator produces the generated sources for one schema, keyed by language.
//
// A *GenerationError return marks the schema as failed; any other error is
// treated as the generator being unavailable and aborts the run.
type Generator interface {
	Generate(ctx context.Context, ref schema.Ref) (map[Language][]byte, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, ref schema.Ref) (map[Language][]byte, error)

func (f GeneratorFunc) Generate(ctx context.Context, ref schema.Ref) (map[Language][]byte, error) {
	return f(ctx, ref)
}

// CommittedReader returns the committed artifact for a schema and language.
// ok is false when nothing is committed; err is reserved for I/O failures.
type CommittedReader interface {
	Read(ref schema.Ref, lang Language) (content []byte, ok bool, err error)
}

// ReaderFunc adapts a function to CommittedReader
type ReaderFunc func(ref schema.Ref, lang Language) ([]byte, bool, error)

func (f ReaderFunc) Read(ref schema.Ref, lang Language) ([]byte, bool, error) {
	return f(ref, lang)
}
