package cmd

import (
	"context"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var csPathCmd = &cobra.Command{
	Use:   "cs:path FROM TO",
	Short: "Resolve the mapping path between two coordinate systems",
	Long: `Resolve the chain of coordinate systems that connects FROM and TO through
declared mappings, and print it as JSON.

"found" is false and "path" is empty when the systems are not connected. A cycle
in the declared mappings reachable from either system is an error.

Examples:
  coordsys cs:path chromosome contig
  coordsys cs:path chromosome:GRCh38 clone
  coordsys cs:path chromosome clone | jq -r '.path[].name'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
			path, err := svc.MappingPath(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FromDomainPath(args[0], args[1], path))
		})
	},
}

func init() {
	rootCmd.AddCommand(csPathCmd)
}
