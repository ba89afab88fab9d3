package drift

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/schema"
)

// Comparator compares freshly generated artifacts against committed ones
type Comparator struct {
	gen       Generator
	committed CommittedReader
	workers   int
	logger    *log.Logger
}

// ComparatorOption configures a Comparator
type ComparatorOption func(*Comparator)

// WithWorkers bounds how many schemas are generated and compared at once.
// Values below 1 select runtime.NumCPU().
func WithWorkers(n int) ComparatorOption {
	return func(c *Comparator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the comparator's logger
func WithLogger(l *log.Logger) ComparatorOption {
	return func(c *Comparator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComparator creates a comparator over the given collaborators
func NewComparator(gen Generator, committed CommittedReader, opts ...ComparatorOption) *Comparator {
	c := &Comparator{
		gen:       gen,
		committed: committed,
		workers:   runtime.NumCPU(),
		logger:    log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare produces one Record per schema per language, in input order.
//
// Schemas are processed concurrently. A schema whose generation fails yields
// generation-error records and does not stop the others. A collaborator
// failure (generator or reader unavailable, context cancelled) aborts the
// comparison and no records are returned.
func (c *Comparator) Compare(ctx context.Context, refs []schema.Ref) ([]Record, error) {
	results := make([][]Record, len(refs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			records, err := c.compareSchema(gCtx, ref)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(refs)*len(Languages))
	for _, rs := range results {
		records = append(records, rs...)
	}
	return records, nil
}

func (c *Comparator) compareSchema(ctx context.Context, ref schema.Ref) ([]Record, error) {
	logger := c.logger.With("schema", ref.Path)

	generated, err := c.gen.Generate(ctx, ref)
	if err != nil {
		var genErr *GenerationError
		if stderrors.As(err, &genErr) {
			logger.WarnContext(ctx, "schema generation failed", "error", err.Error())
			return errorRecords(ref, err.Error()), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.CodeOf(err) == errors.ErrCodeCollaboratorUnavailable {
			return nil, err
		}
		return nil, errors.NewCollaboratorUnavailableError("code generator", err)
	}

	records := make([]Record, 0, len(Languages))
	for _, lang := range Languages {
		content, ok := generated[lang]
		if !ok {
			records = append(records, Record{
				Schema:   ref,
				Language: lang,
				Status:   StatusGenerationError,
				Error:    fmt.Sprintf("generator produced no %s artifact for %s", lang, ref.Path),
			})
			continue
		}

		record, err := c.compareArtifact(Artifact{Language: lang, Content: content, Schema: ref})
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "artifact compared", "language", string(lang), "status", string(record.Status))
		records = append(records, record)
	}
	return records, nil
}

func (c *Comparator) compareArtifact(a Artifact) (Record, error) {
	record := Record{
		Schema:          a.Schema,
		Language:        a.Language,
		GeneratedDigest: Digest(a.Content),
	}

	committed, ok, err := c.committed.Read(a.Schema, a.Language)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeCollaboratorUnavailable {
			return Record{}, err
		}
		return Record{}, errors.NewCollaboratorUnavailableError("committed artifact reader", err)
	}
	if !ok {
		record.Status = StatusMissingCommitted
		return record, nil
	}

	record.CommittedDigest = Digest(committed)
	if bytes.Equal(a.Content, committed) {
		record.Status = StatusUnchanged
		return record, nil
	}

	diff, err := UnifiedDiff(record.Label(), committed, a.Content)
	if err != nil {
		return Record{}, fmt.Errorf("diff %s: %w", record.Label(), err)
	}
	record.Status = StatusModified
	record.Diff = diff
	record.Insertions, record.Deletions = LineStats(committed, a.Content)
	return record, nil
}

func errorRecords(ref schema.Ref, message string) []Record {
	records := make([]Record, len(Languages))
	for i, lang := range Languages {
		records[i] = Record{
			Schema:   ref,
			Language: lang,
			Status:   StatusGenerationError,
			Error:    message,
		}
	}
	return records
}
