package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/presentation"
	"github.com/zjrosen/coordsys/internal/watcher"
)

var watchFollowLog bool

var csWatchCmd = &cobra.Command{
	Use:   "cs:watch FILE",
	Short: "Import a YAML seed and import it again whenever it changes",
	Long: `Import a YAML seed file, then keep watching it and import it again every
time it is saved. Each import prints a summary as JSON and every change is
reported on stderr. Stop with Ctrl-C.

A seed that fails to load or import is reported on stderr and watching continues,
so mistakes can be fixed in place. --follow-log also streams log entries to stderr.

Examples:
  coordsys cs:watch seed.yaml
  coordsys cs:watch seed.yaml --follow-log`,
	Args: cobra.ExactArgs(1),
	RunE: runCSWatch,
}

func runCSWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	return withService(cmd, func(ctx context.Context, svc *appcs.Service) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := watcher.New(watcher.DefaultConfig(path))
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()
		changes, err := w.Start()
		if err != nil {
			return err
		}

		stopReport := reportChanges(ctx, cmd, svc)
		defer stopReport()
		if watchFollowLog {
			stopLog := followLog(ctx, cmd.ErrOrStderr())
			defer stopLog()
		}
		return watchSeed(ctx, svc, path, changes, cmd.OutOrStdout(), cmd.ErrOrStderr())
	})
}

// watchSeed imports path once, then again on every signal from changes, until ctx
// is done or changes is closed. Only the first import is fatal, and it is
// skipped when ctx is already done.
func watchSeed(ctx context.Context, svc *appcs.Service, path string, changes <-chan struct{}, stdout, stderr io.Writer) error {
	formatter := presentation.NewFormatter(stdout)
	importSeed := func() error {
		seed, err := appcs.LoadSeedFile(path)
		if err != nil {
			return err
		}
		result, err := svc.Import(ctx, seed)
		if err != nil {
			return err
		}
		return formatter.FormatResult(presentation.FromImportResult(result))
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := importSeed(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := importSeed(); err != nil {
				log.ErrorErr(log.CatCLI, "Seed re-import failed", err, "seed", path)
				_, _ = fmt.Fprintf(stderr, "import %s: %v\n", path, err)
			}
		}
	}
}

// followLog copies log entries to w until the returned stop is called. Without
// --debug no logger is installed, so one writing nowhere is put in place.
func followLog(ctx context.Context, w io.Writer) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	listener := log.NewListener(ctx)
	if listener == nil {
		log.InitWriter(io.Discard)
		listener = log.NewListener(ctx)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.Drain(func(event log.LogEvent) {
			_, _ = io.WriteString(w, event.Payload)
		})
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func init() {
	csWatchCmd.Flags().BoolVar(&watchFollowLog, "follow-log", false, "Stream log entries to stderr")
	rootCmd.AddCommand(csWatchCmd)
}
