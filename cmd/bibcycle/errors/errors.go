package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/inkfell/bibcycle/internal/bib"
	"github.com/inkfell/bibcycle/internal/config"
	"github.com/inkfell/bibcycle/internal/report"
	"github.com/inkfell/bibcycle/internal/session"
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagFormat string
)

// Cmd implements `bibcycle errors`: parse the tool log into structured
// diagnostics, apply the configured filter, and print them.
var Cmd = &cobra.Command{
	Use:           "errors",
	Short:         "Extract structured diagnostics from the tool log",
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

		m := session.NewModule(cfg, bib.NopHost{}, nil)
		diags, err := collectDiagnostics(m)
		if err != nil {
			return err
		}
		diags, err = bib.FilterDiagnostics(diags, cfg.Diagnostics.FilterInline)
		if err != nil {
			return err
		}

		switch flagFormat {
		case "json":
			return report.WriteJSONLines(os.Stdout, diags)
		case "yaml":
			b, err := report.MarshalYAML(diags)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		default:
			return fmt.Errorf("invalid --format: %q (expected json or yaml)", flagFormat)
		}
	},
}

// collectDiagnostics drains one lazy scan of the tool log. A missing log
// means the tool has not run yet: no diagnostics, not an error.
func collectDiagnostics(m *bib.Module) ([]bib.Diagnostic, error) {
	scan, err := m.ToolErrors()
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer scan.Close()

	var diags []bib.Diagnostic
	for {
		d, ok := scan.Next()
		if !ok {
			break
		}
		diags = append(diags, d)
	}
	return diags, nil
}

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&flagFormat, "format", "json", "Output format: json|yaml")
}
