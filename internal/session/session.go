// Package session assembles a bibliography module for one build session
// from the loaded configuration, standing in for the directives a host
// orchestrator would deliver from document macros.
package session

import (
	"context"
	"fmt"
	"io"

	"github.com/inkfell/bibcycle/internal/bib"
	"github.com/inkfell/bibcycle/internal/config"
)

// NewModule builds a Module from cfg. A nil runner selects the real
// bibtex subprocess runner with the configured program and flag.
func NewModule(cfg config.Config, host bib.Host, runner bib.Runner) *bib.Module {
	if runner == nil {
		runner = bib.BibTeXRunner{
			Program:      cfg.Tool.Program,
			MinCrossrefs: cfg.Tool.MinCrossrefs,
		}
	}
	m := bib.New(bib.Options{
		Base:     cfg.Document.Base,
		SrcBase:  cfg.Document.SrcBase,
		BaseDirs: []string{"."},
		Host:     host,
		Runner:   runner,
	})
	for _, d := range cfg.Bib.Paths {
		m.AddDatabasePath(d)
	}
	for _, d := range cfg.Bib.StylePaths {
		m.AddStylePath(d)
	}
	if cfg.Bib.HasSorted {
		m.SetSortedMode(cfg.Bib.Sorted)
	}
	if cfg.Bib.Style != "" {
		m.SetStyle(cfg.Bib.Style)
	}
	for _, name := range cfg.Bib.Databases {
		m.AddDatabase(name)
	}
	for _, p := range cfg.Document.RegistryFiles {
		m.AddRegistryFile(p)
	}
	return m
}

// RecordingHost collects the module's callbacks so a command can report
// them. Log lines double as the human-readable reasons for a decision.
type RecordingHost struct {
	Verbose bool
	Out     io.Writer

	Reasons   []string
	Deps      []string
	Recompile bool
}

func (h *RecordingHost) RegisterDependency(path string) {
	h.Deps = append(h.Deps, path)
}

func (h *RecordingHost) UnregisterDependency(path string) {
	for i, d := range h.Deps {
		if d == path {
			h.Deps = append(h.Deps[:i], h.Deps[i+1:]...)
			return
		}
	}
}

func (h *RecordingHost) RequestRecompilation() { h.Recompile = true }

func (h *RecordingHost) Log(format string, args ...any) {
	h.Reasons = append(h.Reasons, fmt.Sprintf(format, args...))
	if h.Verbose && h.Out != nil {
		fmt.Fprintf(h.Out, format+"\n", args...)
	}
}

func (h *RecordingHost) Info(format string, args ...any) {
	if h.Out != nil {
		fmt.Fprintf(h.Out, format+"\n", args...)
	}
}

// DryRunner pretends every tool invocation succeeds without executing
// anything. It lets check --dry-run report what a real evaluation would
// have done.
type DryRunner struct {
	Invocations int
}

func (r *DryRunner) Run(_ context.Context, _ string, _ map[string]string) (bib.ToolResult, error) {
	r.Invocations++
	return bib.ToolResult{ExitCode: 0}, nil
}
