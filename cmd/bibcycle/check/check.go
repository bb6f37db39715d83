package check

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/inkfell/bibcycle/internal/bib"
	"github.com/inkfell/bibcycle/internal/config"
	"github.com/inkfell/bibcycle/internal/session"
	"github.com/spf13/cobra"
)

var (
	flagConfig      string
	flagPhase       string
	flagDryRun      bool
	flagWillCompile bool
	flagVerbose     bool
)

// verdict is the single-line JSON outcome. Field order is stable.
type verdict struct {
	Phase     string   `json:"phase"`
	Ok        bool     `json:"ok"`
	Ran       bool     `json:"ran"`
	Recompile bool     `json:"recompile"`
	DryRun    bool     `json:"dryRun,omitempty"`
	Reasons   []string `json:"reasons,omitempty"`
}

// Cmd implements `bibcycle check`: one staleness evaluation, before or
// after a typesetting pass.
var Cmd = &cobra.Command{
	Use:           "check",
	Short:         "Evaluate bibliography staleness for one build phase",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		host := &session.RecordingHost{Verbose: flagVerbose, Out: os.Stderr}
		var runner bib.Runner
		if flagDryRun {
			runner = &session.DryRunner{}
		}
		m := session.NewModule(cfg, host, runner)

		var d bib.Decision
		switch flagPhase {
		case "pre":
			d, err = m.PreCompile(cmd.Context(), flagWillCompile)
		case "post":
			d, err = m.PostCompile(cmd.Context())
		default:
			return fmt.Errorf("invalid --phase: %q (expected pre or post)", flagPhase)
		}

		toolFailed := errors.Is(err, bib.ErrToolFailed)
		if err != nil && !toolFailed {
			return err
		}

		out := verdict{
			Phase:     flagPhase,
			Ok:        err == nil,
			Ran:       d.Ran,
			Recompile: d.Recompile,
			DryRun:    flagDryRun,
			Reasons:   host.Reasons,
		}
		b, merr := json.Marshal(out)
		if merr != nil {
			return merr
		}
		fmt.Fprintln(os.Stdout, string(b))

		if toolFailed {
			return checkExitError{code: 1, msg: "errors making the bibliography"}
		}
		return nil
	},
}

type checkExitError struct {
	code int
	msg  string
}

func (e checkExitError) Error() string { return e.msg }
func (e checkExitError) ExitCode() int { return e.code }

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&flagPhase, "phase", "pre", "Build phase: pre|post")
	Cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Evaluate without invoking the tool")
	Cmd.Flags().BoolVar(&flagWillCompile, "will-compile", false, "Host has already decided to recompile (pre phase)")
	Cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Print decision reasons to stderr")
}
