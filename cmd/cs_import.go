package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/presentation"
	"github.com/zjrosen/coordsys/internal/pubsub"
)

var importVerbose bool

var csImportCmd = &cobra.Command{
	Use:   "cs:import FILE",
	Short: "Import coordinate systems, mappings and feature tables from a YAML seed",
	Long: `Import a YAML seed file and print a summary as JSON.

Systems already stored are skipped and repeated mappings are ignored, so the same
seed can be imported any number of times.

Seed format:
  coord_systems:
    - {name: chromosome, version: GRCh38, rank: 1, default_version: true}
    - {name: contig, rank: 2, default_version: true, sequence_level: true}
  mappings:
    - chromosome:GRCh38|contig
  feature_tables:
    - {table: gene, coord_systems: [chromosome:GRCh38]}

Examples:
  coordsys cs:import seed.yaml

  # Report every change on stderr as it happens
  coordsys cs:import seed.yaml --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runCSImport,
}

func runCSImport(cmd *cobra.Command, args []string) error {
	seed, err := appcs.LoadSeedFile(args[0])
	if err != nil {
		return err
	}

	return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
		if importVerbose {
			stop := reportChanges(ctx, cmd, svc)
			defer stop()
		}

		result, err := svc.Import(ctx, seed)
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(presentation.FromImportResult(result))
	})
}

// reportChanges prints registry changes to stderr until the returned stop is called.
// stop waits for buffered changes to be printed.
func reportChanges(ctx context.Context, cmd *cobra.Command, svc *appcs.Service) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	listener := pubsub.NewListener[appcs.Change](ctx, svc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.Drain(func(event pubsub.Event[appcs.Change]) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), describeChange(event))
		})
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func describeChange(event pubsub.Event[appcs.Change]) string {
	change := event.Payload
	switch event.Type {
	case pubsub.StoredEvent:
		return fmt.Sprintf("stored %s (rank %d)", change.System, change.System.Rank())
	case pubsub.LinkedEvent:
		return fmt.Sprintf("linked %s to %s", change.Table, change.System)
	case pubsub.DeclaredEvent:
		return fmt.Sprintf("declared %s", change.Declaration)
	default:
		return string(event.Type)
	}
}

func init() {
	csImportCmd.Flags().BoolVarP(&importVerbose, "verbose", "V", false, "Print each change to stderr")
	rootCmd.AddCommand(csImportCmd)
}
