package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
)

var (
	addVersion       string
	addRank          int
	addDefault       bool
	addSequenceLevel bool
)

var csAddCmd = &cobra.Command{
	Use:   "cs:add NAME",
	Short: "Store a new coordinate system",
	Long: `Store a new coordinate system and print it, with its assigned id, as JSON.

Adding a system whose name and version are already stored prints the stored
system and succeeds. Rank, default version and sequence level must not clash with
a stored system.

Examples:
  coordsys cs:add chromosome --version GRCh38 --rank 1 --default
  coordsys cs:add contig --rank 4 --default --sequence-level`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := domain.NewBuilder(args[0]).Version(addVersion).Rank(addRank)
		if addDefault {
			b = b.DefaultVersion()
		}
		if addSequenceLevel {
			b = b.SequenceLevel()
		}
		cs, err := b.Build()
		if err != nil {
			return err
		}

		return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
			stored, err := svc.Store(ctx, cs)
			if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FromDomainCoordSystem(stored))
		})
	},
}

func init() {
	csAddCmd.Flags().StringVar(&addVersion, "version", "", "Version (empty for a versionless system)")
	csAddCmd.Flags().IntVarP(&addRank, "rank", "r", 0, "Rank, unique and greater than zero (required)")
	csAddCmd.Flags().BoolVar(&addDefault, "default", false, "Mark as the default version of NAME")
	csAddCmd.Flags().BoolVar(&addSequenceLevel, "sequence-level", false, "Mark as the sequence level")
	_ = csAddCmd.MarkFlagRequired("rank")
	rootCmd.AddCommand(csAddCmd)
}
