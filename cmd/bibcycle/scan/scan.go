package scan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inkfell/bibcycle/internal/discover"
	"github.com/spf13/cobra"
)

var (
	flagRoot  string
	flagNoGit bool
)

// Cmd implements `bibcycle scan`: list candidate .bib/.bst resources
// under a root so missing search-path registrations are easy to spot.
var Cmd = &cobra.Command{
	Use:           "scan",
	Short:         "Discover bibliography databases and styles under a root",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		resources, err := discover.FindResources(flagRoot, flagNoGit)
		if err != nil {
			return err
		}
		if resources == nil {
			resources = []discover.Resource{}
		}
		b, err := json.Marshal(resources)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	},
}

func init() {
	Cmd.Flags().StringVar(&flagRoot, "root", ".", "Discovery root")
	Cmd.Flags().BoolVar(&flagNoGit, "no-gitignore", false, "Disable .gitignore filtering")
}
