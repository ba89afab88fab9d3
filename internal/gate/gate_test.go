package gate

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/schema"
)

// workspace lays out schema files on disk and serves generated and committed
// content from memory.
type workspace struct {
	t         *testing.T
	root      string
	mu        sync.Mutex
	generated map[string]map[drift.Language][]byte
	committed map[string]map[drift.Language][]byte
	genErr    map[string]error
	generates int
}

func newWorkspace(t *testing.T) *workspace {
	return &workspace{
		t:         t,
		root:      t.TempDir(),
		generated: make(map[string]map[drift.Language][]byte),
		committed: make(map[string]map[drift.Language][]byte),
		genErr:    make(map[string]error),
	}
}

// schema writes a schema file whose committed artifacts match generation
func (w *workspace) schema(rel string) string {
	w.t.Helper()
	path := filepath.Join(w.root, rel)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, os.WriteFile(path, []byte("struct X {}\n"), 0644))

	ref := schema.NewRef(path)
	w.generated[ref.Path] = map[drift.Language][]byte{
		drift.LanguageRust:       []byte("pub struct " + ref.Name + " {}\n"),
		drift.LanguageTypeScript: []byte("export interface " + ref.Name + " {}\n"),
	}
	w.committed[ref.Path] = map[drift.Language][]byte{
		drift.LanguageRust:       []byte("pub struct " + ref.Name + " {}\n"),
		drift.LanguageTypeScript: []byte("export interface " + ref.Name + " {}\n"),
	}
	return ref.Path
}

func (w *workspace) Generate(_ context.Context, ref schema.Ref) (map[drift.Language][]byte, error) {
	w.mu.Lock()
	w.generates++
	w.mu.Unlock()
	if err := w.genErr[ref.Path]; err != nil {
		return nil, err
	}
	return w.generated[ref.Path], nil
}

func (w *workspace) Read(ref schema.Ref, lang drift.Language) ([]byte, bool, error) {
	content, ok := w.committed[ref.Path][lang]
	return content, ok, nil
}

func (w *workspace) deps() (Deps, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := log.DefaultConfig()
	cfg.Output = buf
	cfg.Level = log.LevelDebug
	return Deps{
		Resolver:  schema.NewResolver(w.root),
		Generator: w,
		Reader:    w,
		Logger:    log.New(cfg),
	}, buf
}

func TestRunAllUnchanged(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("schemas/a.lumos")
	ws.schema("schemas/b.lumos")
	ws.schema("schemas/c.lumos")
	deps, logs := ws.deps()

	report, err := Run(context.Background(), Options{
		SchemaGlobs: []string{"schemas/*.lumos"},
		FailOnDrift: true,
	}, deps)
	require.NoError(t, err)

	assert.Equal(t, 3, report.SchemasValidated)
	assert.Equal(t, 3, report.SchemasGenerated)
	assert.False(t, report.DriftDetected)
	assert.Equal(t, drift.OutcomePass, report.Decision.Outcome)
	assert.Equal(t, drift.ReasonNoDrift, report.Decision.Reason)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id should be a uuid")
	assert.Contains(t, logs.String(), report.RunID)
	assert.Contains(t, logs.String(), "drift check finished")
	assert.Contains(t, logs.String(), "artifact compared", "per-artifact results are logged at debug level")
}

func TestRunOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		mutate      func(ws *workspace, a, b string)
		wantOutcome drift.Outcome
		wantReason  string
		wantDrift   bool
		wantSummary string
	}{
		{
			name: "modified rust artifact blocks",
			opts: Options{FailOnDrift: true},
			mutate: func(ws *workspace, a, b string) {
				ws.committed[b][drift.LanguageRust] = []byte("pub struct b { old: u8 }\n")
			},
			wantOutcome: drift.OutcomeFail,
			wantReason:  drift.ReasonBlocked,
			wantDrift:   true,
			wantSummary: "### b (rust)",
		},
		{
			name: "modified artifact with override",
			opts: Options{FailOnDrift: true, IsPullRequest: true, OverrideGranted: true},
			mutate: func(ws *workspace, a, b string) {
				ws.committed[a][drift.LanguageTypeScript] = []byte("export interface a { old: string }\n")
			},
			wantOutcome: drift.OutcomeWarnPass,
			wantReason:  drift.ReasonOverride,
			wantDrift:   true,
			wantSummary: "### a (typescript)",
		},
		{
			name: "missing committed file is non-blocking when lenient",
			opts: Options{FailOnDrift: false},
			mutate: func(ws *workspace, a, b string) {
				delete(ws.committed[a], drift.LanguageTypeScript)
			},
			wantOutcome: drift.OutcomeWarnPass,
			wantReason:  drift.ReasonNonBlocking,
			wantDrift:   true,
		},
		{
			name: "generation error fails even with override",
			opts: Options{FailOnDrift: false, IsPullRequest: true, OverrideGranted: true},
			mutate: func(ws *workspace, a, b string) {
				ws.genErr[b] = &drift.GenerationError{Schema: schema.NewRef(b), Message: "unknown type Foo"}
			},
			wantOutcome: drift.OutcomeFail,
			wantReason:  drift.ReasonGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			a := ws.schema("schemas/a.lumos")
			b := ws.schema("schemas/b.lumos")
			tt.mutate(ws, a, b)
			deps, _ := ws.deps()

			opts := tt.opts
			opts.SchemaGlobs = []string{"schemas/*.lumos"}
			report, err := Run(context.Background(), opts, deps)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, report.Decision.Outcome)
			assert.Equal(t, tt.wantReason, report.Decision.Reason)
			assert.Equal(t, tt.wantDrift, report.DriftDetected)
			if tt.wantSummary != "" {
				assert.True(t, strings.HasPrefix(report.DiffSummary, tt.wantSummary), report.DiffSummary)
			}
		})
	}
}

func TestRunGenerationErrorCounts(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("schemas/a.lumos")
	bad := ws.schema("schemas/b.lumos")
	ws.genErr[bad] = &drift.GenerationError{Schema: schema.NewRef(bad), Message: "syntax error"}
	deps, logs := ws.deps()

	report, err := Run(context.Background(), Options{SchemaGlobs: []string{"schemas/*.lumos"}}, deps)
	require.NoError(t, err)

	assert.Equal(t, 2, report.SchemasValidated)
	assert.Equal(t, 1, report.SchemasGenerated)
	assert.Equal(t, []string{bad}, report.FailedSchemas())
	assert.True(t, report.Failed())
	assert.Contains(t, logs.String(), "schema generation failed")
}

func TestRunNoSchemasMatched(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("schemas/a.lumos")
	deps, _ := ws.deps()

	report, err := Run(context.Background(), Options{SchemaGlobs: []string{"nothing/**/*.lumos"}}, deps)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoSchemasMatched))
	assert.Zero(t, ws.generates, "generation must not start when no schema matched")
}

// collidingReader rejects every schema set
type collidingReader struct {
	*workspace
}

func (collidingReader) CheckRefs(refs []schema.Ref) error {
	return errors.NewOutputCollisionError(refs[0].Name, []string{refs[0].Path})
}

func TestRunOutputCollision(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("programs/a/user.lumos")
	ws.schema("programs/b/user.lumos")
	deps, _ := ws.deps()
	deps.Reader = collidingReader{ws}

	report, err := Run(context.Background(), Options{SchemaGlobs: []string{"programs/**/*.lumos"}}, deps)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.HasCode(err, errors.ErrCodeOutputCollision))
	assert.Zero(t, ws.generates, "generation must not start when outputs collide")
}

func TestRunCollaboratorUnavailable(t *testing.T) {
	ws := newWorkspace(t)
	a := ws.schema("schemas/a.lumos")
	ws.genErr[a] = stderrors.New("exec: \"lumos\": executable file not found in $PATH")
	deps, _ := ws.deps()

	report, err := Run(context.Background(), Options{SchemaGlobs: []string{"schemas/*.lumos"}}, deps)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCollaboratorUnavailable))
}

func TestRunCancelled(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("schemas/a.lumos")
	deps, _ := ws.deps()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	deps.Generator = drift.GeneratorFunc(func(ctx context.Context, _ schema.Ref) (map[drift.Language][]byte, error) {
		return nil, ctx.Err()
	})

	_, err := Run(ctx, Options{SchemaGlobs: []string{"schemas/*.lumos"}}, deps)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRequiresCollaborators(t *testing.T) {
	_, err := Run(context.Background(), Options{SchemaGlobs: []string{"*"}}, Deps{})
	require.Error(t, err)
}

func TestRunIsRepeatable(t *testing.T) {
	ws := newWorkspace(t)
	ws.schema("schemas/a.lumos")
	b := ws.schema("schemas/b.lumos")
	ws.committed[b][drift.LanguageRust] = []byte("stale\n")
	deps, _ := ws.deps()
	opts := Options{SchemaGlobs: []string{"schemas/*.lumos"}, FailOnDrift: true}

	first, err := Run(context.Background(), opts, deps)
	require.NoError(t, err)
	second, err := Run(context.Background(), opts, deps)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	second.RunID = first.RunID
	assert.Equal(t, first, second)
}
