package cmd

import (
	"context"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var (
	listAttrib   string
	listMappings bool
)

var csListCmd = &cobra.Command{
	Use:   "cs:list",
	Short: "List stored coordinate systems",
	Long: `List stored coordinate systems as JSON, ordered by rank.

Use --attrib to list only systems carrying an attribute.
Use --mappings to list the declared direct mappings instead.

Examples:
  # List all coordinate systems
  coordsys cs:list

  # Only default versions
  coordsys cs:list --attrib default_version

  # Declared mappings, assembled side first
  coordsys cs:list --mappings

  # Parse specific fields with jq
  coordsys cs:list | jq '.[].name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(_ context.Context, svc *appcs.Service) error {
			formatter := presentation.NewFormatter(cmd.OutOrStdout())
			if listMappings {
				return formatter.FormatMappings(presentation.FromDomainMappings(svc.Mappings()))
			}

			var systems []*domain.CoordSystem
			if cmd.Flags().Changed("attrib") {
				var err error
				systems, err = svc.Registry().FetchAllByAttrib(listAttrib)
				if err != nil {
					return err
				}
			} else {
				systems = svc.Systems()
			}
			return formatter.FormatCoordSystems(presentation.FromDomainCoordSystems(systems))
		})
	},
}

func init() {
	csListCmd.Flags().StringVarP(&listAttrib, "attrib", "a", "", "Filter by attribute (sequence_level or default_version)")
	csListCmd.Flags().BoolVarP(&listMappings, "mappings", "m", false, "List declared mappings instead of systems")
	rootCmd.AddCommand(csListCmd)
}
