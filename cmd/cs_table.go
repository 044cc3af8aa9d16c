package cmd

import (
	"context"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var csTableCmd = &cobra.Command{
	Use:   "cs:table TABLE [name[:version]...]",
	Short: "Link a feature table to coordinate systems, or list its systems",
	Long: `Associate a feature table with one or more coordinate systems, then print
every system the table has features in as JSON. With only TABLE, nothing is
changed. Table names are case-insensitive.

Examples:
  # Which systems hold genes?
  coordsys cs:table gene

  # Genes are annotated on GRCh38 chromosomes and on clones
  coordsys cs:table gene chromosome:GRCh38 clone`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]
		return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
			for _, ref := range args[1:] {
				if err := svc.AddFeatureTable(ctx, ref, table); err != nil {
					return err
				}
			}
			systems, err := svc.FeatureTableSystems(table)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FeatureTableDTO{
				Table:        table,
				CoordSystems: presentation.FromDomainCoordSystems(systems),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(csTableCmd)
}
