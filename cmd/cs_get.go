package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var (
	getRank int
	getID   int64
)

var csGetCmd = &cobra.Command{
	Use:   "cs:get [name[:version]]",
	Short: "Look up one coordinate system",
	Long: `Look up one coordinate system by reference, rank or id and print it as JSON.

A reference without a version resolves to the default version of the name. A
trailing colon ("contig:") selects the versionless system. "toplevel" and
"seqlevel" resolve to the top-level and sequence-level systems.

Examples:
  coordsys cs:get chromosome
  coordsys cs:get chromosome:GRCh38
  coordsys cs:get seqlevel
  coordsys cs:get --rank 1
  coordsys cs:get --id 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCSGet,
}

func runCSGet(cmd *cobra.Command, args []string) error {
	byRank := cmd.Flags().Changed("rank")
	byID := cmd.Flags().Changed("id")
	selectors := len(args)
	if byRank {
		selectors++
	}
	if byID {
		selectors++
	}
	if selectors != 1 {
		return fmt.Errorf("%w: give exactly one of a reference, --rank or --id", domain.ErrInvalidArgument)
	}

	return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
		var (
			cs  *domain.CoordSystem
			err error
		)
		switch {
		case byRank:
			cs, err = svc.SystemAtRank(getRank)
		case byID:
			var ok bool
			cs, ok = svc.Registry().FetchByDBID(getID)
			if !ok {
				err = fmt.Errorf("%w: no coord system with id %d", appcs.ErrNotFound, getID)
			}
		default:
			cs, err = svc.Resolve(ctx, args[0])
		}
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FromDomainCoordSystem(cs))
	})
}

func init() {
	csGetCmd.Flags().IntVarP(&getRank, "rank", "r", 0, "Look up by rank (0 is the top-level system)")
	csGetCmd.Flags().Int64Var(&getID, "id", 0, "Look up by database id")
	rootCmd.AddCommand(csGetCmd)
}
