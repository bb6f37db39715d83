package bib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/executor"
)

// ErrToolFailed reports a non-zero exit from the bibliography tool. The
// tool's own complaints are read later from its log, never from here.
var ErrToolFailed = errors.New("there were errors making the bibliography")

// ToolResult captures the outcome of one tool invocation.
type ToolResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner invokes the external citation-resolution tool.
type Runner interface {
	Run(ctx context.Context, base string, env map[string]string) (ToolResult, error)
}

// BibTeXRunner runs the real bibtex binary. The zero value uses the
// standard program name, flag and working directory.
type BibTeXRunner struct {
	Program      string
	MinCrossrefs int
	WorkingDir   string
}

// Run invokes bibtex on the given base name. Output is captured, not
// streamed; the exit code is the only signal inspected here.
func (r BibTeXRunner) Run(ctx context.Context, base string, env map[string]string) (ToolResult, error) {
	program := r.Program
	if program == "" {
		program = "bibtex"
	}
	minCrossrefs := r.MinCrossrefs
	if minCrossrefs <= 0 {
		minCrossrefs = 100
	}

	opts := []executor.Option{executor.SilentMode()}
	if r.WorkingDir != "" {
		opts = append(opts, executor.WithWorkingDir(r.WorkingDir))
	}
	if len(env) > 0 {
		opts = append(opts, executor.WithEnv(env))
	}

	cmd := executor.New(program, fmt.Sprintf("--min-crossrefs=%d", minCrossrefs), base)
	res, err := cmd.Execute(ctx, opts...)
	if res == nil {
		return ToolResult{ExitCode: -1}, err
	}
	out := ToolResult{ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	if err != nil && res.ExitCode < 0 {
		// Start failure or cancellation rather than a tool verdict.
		return out, err
	}
	return out, nil
}

// run invokes the tool with the search-path environment and translates
// the outcome into host signals.
func (m *Module) run(ctx context.Context) (Decision, error) {
	m.host.Info("running BibTeX on %s", m.base)

	env := map[string]string{}
	if dirs := m.paths.DatabaseDirs(); len(dirs) > 1 {
		env["BIBINPUTS"] = joinSearchPath(dirs, os.Getenv("BIBINPUTS"))
	}
	if dirs := m.paths.StyleDirs(); len(dirs) > 1 {
		env["BSTINPUTS"] = joinSearchPath(dirs, os.Getenv("BSTINPUTS"))
	}

	res, err := m.runner.Run(ctx, m.base, env)
	if err != nil {
		m.host.Info("There were errors making the bibliography.")
		return Decision{Ran: true}, err
	}
	if res.ExitCode != 0 {
		m.host.Info("There were errors making the bibliography.")
		return Decision{Ran: true}, fmt.Errorf("%w (exit %d)", ErrToolFailed, res.ExitCode)
	}

	m.state.RunNeeded = false
	m.host.RequestRecompilation()
	return Decision{Ran: true, Recompile: true}, nil
}

// joinSearchPath joins the registered directories and the parent
// process's value of the variable. The trailing entry is kept even when
// empty: an empty tail tells the tool to append its default path.
func joinSearchPath(dirs []string, parent string) string {
	parts := append(append([]string(nil), dirs...), parent)
	return strings.Join(parts, string(os.PathListSeparator))
}
