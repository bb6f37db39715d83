package root

import (
	"github.com/inkfell/bibcycle/cmd/bibcycle/check"
	"github.com/inkfell/bibcycle/cmd/bibcycle/clean"
	bcerrors "github.com/inkfell/bibcycle/cmd/bibcycle/errors"
	"github.com/inkfell/bibcycle/cmd/bibcycle/scan"
	"github.com/inkfell/bibcycle/cmd/bibcycle/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for bibcycle.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bibcycle",
		Short: "CLI: bibliography staleness checks and tool invocation for a document build loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(check.Cmd)
	cmd.AddCommand(bcerrors.Cmd)
	cmd.AddCommand(scan.Cmd)
	cmd.AddCommand(clean.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
