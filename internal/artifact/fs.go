// Package artifact reads committed generated sources from the working tree.
package artifact

import (
	"os"
	"path/filepath"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/generate"
	"github.com/getlumos/lumos-action/internal/schema"
)

// Layout says where committed outputs live.
//
// By default each schema's outputs sit next to it as generated.rs and
// generated.ts. A language with an entry in OutputDirs is instead read from
// <dir>/<schema name>.<ext>, for repositories that move generated code into
// their crate or package trees.
type Layout struct {
	OutputDirs map[drift.Language]string `yaml:"output_dirs,omitempty"`
}

// FS reads committed artifacts from the filesystem
type FS struct {
	Root   string
	Layout Layout
}

// NewFS creates a reader. Root anchors Layout.OutputDirs; schema paths are used as given.
func NewFS(root string, layout Layout) *FS {
	return &FS{Root: root, Layout: layout}
}

// Path returns where the committed artifact for ref and lang is expected
func (f *FS) Path(ref schema.Ref, lang drift.Language) string {
	if dir := f.Layout.OutputDirs[lang]; dir != "" {
		if !filepath.IsAbs(dir) && f.Root != "" {
			dir = filepath.Join(f.Root, dir)
		}
		return filepath.Join(dir, ref.Name+"."+lang.Extension())
	}
	return filepath.Join(ref.Dir, generate.OutputFile(lang))
}

// CheckRefs rejects schemas whose outputs would land on the same committed
// file. Only output directories shared across schemas can collide.
func (f *FS) CheckRefs(refs []schema.Ref) error {
	if len(f.Layout.OutputDirs) == 0 {
		return nil
	}

	byName := make(map[string][]string)
	var order []string
	for _, ref := range refs {
		if _, ok := byName[ref.Name]; !ok {
			order = append(order, ref.Name)
		}
		byName[ref.Name] = append(byName[ref.Name], ref.Path)
	}
	for _, name := range order {
		if paths := byName[name]; len(paths) > 1 {
			return errors.NewOutputCollisionError(name, paths)
		}
	}
	return nil
}

// Read implements drift.CommittedReader
func (f *FS) Read(ref schema.Ref, lang drift.Language) ([]byte, bool, error) {
	path := f.Path(ref, lang)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.NewCollaboratorUnavailableError("committed artifact reader", err)
	}
	return content, true, nil
}
