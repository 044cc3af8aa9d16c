package cmd

import (
	"context"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var csMapCmd = &cobra.Command{
	Use:   "cs:map ASSEMBLED COMPONENT",
	Short: "Declare a direct mapping between two coordinate systems",
	Long: `Declare that ASSEMBLED is built from COMPONENT and print the stored
declaration as JSON. Both references are resolved first and stored with their
versions pinned, so a later change of default version does not move the mapping.

"added" is false when the declaration already existed.

Examples:
  coordsys cs:map chromosome:GRCh38 contig
  coordsys cs:map clone contig`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
			decl, added, err := svc.DeclareMapping(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.DeclarationDTO{
				Declaration: decl,
				Added:       added,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(csMapCmd)
}
