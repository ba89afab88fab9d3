// Package generate runs the external lumos code generator for one schema at a time.
package generate

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/schema"
)

// DefaultBinary is the generator executable looked up on PATH
const DefaultBinary = "lumos"

const waitDelay = 500 * time.Millisecond

// OutputFile returns the file name the generator writes for a language
func OutputFile(lang drift.Language) string {
	return "generated." + lang.Extension()
}

// Exec generates code by invoking `<binary> generate <schema> --output <dir>`
// into a scratch directory and reading the per-language output files back.
type Exec struct {
	Binary  string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewExec creates an Exec generator. An empty binary selects DefaultBinary.
func NewExec(binary string, timeout time.Duration) *Exec {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Exec{
		Binary:  binary,
		Timeout: timeout,
		Logger:  log.DefaultLogger(),
	}
}

// Generate implements drift.Generator
func (e *Exec) Generate(ctx context.Context, ref schema.Ref) (map[drift.Language][]byte, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("code generator", err)
	}

	outDir, err := os.MkdirTemp("", "lumos-gen-*")
	if err != nil {
		return nil, errors.NewCollaboratorUnavailableError("code generator scratch directory", err)
	}
	defer os.RemoveAll(outDir) //nolint:errcheck // best-effort cleanup of scratch output

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, bin, "generate", ref.Path, "--output", outDir)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// grandchildren can hold the output pipes open after the generator is killed
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	e.logger().Debug("generator finished",
		"schema", ref.Path,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", runErr == nil,
	)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &drift.GenerationError{
				Schema:  ref,
				Message: fmt.Sprintf("generator timed out after %s", e.Timeout),
			}
		}
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			return nil, &drift.GenerationError{
				Schema:  ref,
				Message: failureMessage(stderr.String(), stdout.String(), exitErr),
			}
		}
		return nil, errors.NewCollaboratorUnavailableError("code generator", runErr)
	}

	artifacts := make(map[drift.Language][]byte, len(drift.Languages))
	for _, lang := range drift.Languages {
		path := filepath.Join(outDir, OutputFile(lang))
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &drift.GenerationError{
					Schema:  ref,
					Message: fmt.Sprintf("generator did not produce %s", OutputFile(lang)),
				}
			}
			return nil, errors.NewCollaboratorUnavailableError("code generator output", err)
		}
		artifacts[lang] = content
	}

	return artifacts, nil
}

func (e *Exec) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.DefaultLogger()
}

// failureMessage prefers the tool's stderr, then stdout, then the exit status.
func failureMessage(stderr, stdout string, exitErr *exec.ExitError) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(stdout); msg != "" {
		return msg
	}
	return exitErr.Error()
}
