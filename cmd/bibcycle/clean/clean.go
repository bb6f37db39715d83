package clean

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inkfell/bibcycle/internal/bib"
	"github.com/inkfell/bibcycle/internal/config"
	"github.com/inkfell/bibcycle/internal/session"
	"github.com/spf13/cobra"
)

var flagConfig string

// Cmd implements `bibcycle clean`: remove the outputs this module owns
// (compiled bibliography and tool log).
var Cmd = &cobra.Command{
	Use:           "clean",
	Short:         "Remove the module's generated outputs",
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
		removed := m.Clean()
		if removed == nil {
			removed = []string{}
		}
		out := map[string]any{"ok": true, "removed": removed}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue)")
}
