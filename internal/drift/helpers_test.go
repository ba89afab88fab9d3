package drift

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getlumos/lumos-action/internal/schema"
)

// fakeRepo serves generated and committed content from maps keyed by schema path.
type fakeRepo struct {
	mu        sync.Mutex
	generated map[string]map[Language][]byte
	committed map[string]map[Language][]byte
	genErrs   map[string]error
	readErr   error
	delays    map[string]time.Duration
	calls     []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		generated: make(map[string]map[Language][]byte),
		committed: make(map[string]map[Language][]byte),
		genErrs:   make(map[string]error),
		delays:    make(map[string]time.Duration),
	}
}

// add registers a schema whose committed files match the generated ones.
func (f *fakeRepo) add(path string) schema.Ref {
	ref := schema.NewRef(path)
	f.generated[ref.Path] = map[Language][]byte{
		LanguageRust:       []byte(fmt.Sprintf("pub struct %s {}\n", ref.Name)),
		LanguageTypeScript: []byte(fmt.Sprintf("export interface %s {}\n", ref.Name)),
	}
	f.committed[ref.Path] = map[Language][]byte{
		LanguageRust:       []byte(fmt.Sprintf("pub struct %s {}\n", ref.Name)),
		LanguageTypeScript: []byte(fmt.Sprintf("export interface %s {}\n", ref.Name)),
	}
	return ref
}

func (f *fakeRepo) Generate(ctx context.Context, ref schema.Ref) (map[Language][]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref.Path)
	delay := f.delays[ref.Path]
	err := f.genErrs[ref.Path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return f.generated[ref.Path], nil
}

func (f *fakeRepo) Read(ref schema.Ref, lang Language) ([]byte, bool, error) {
	if f.readErr != nil {
		return nil, false, f.readErr
	}
	content, ok := f.committed[ref.Path][lang]
	return content, ok, nil
}
