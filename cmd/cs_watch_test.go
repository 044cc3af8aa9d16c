package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/coordsys/internal/config"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/presentation"
)

// syncBuffer is a bytes.Buffer safe to read while watchSeed writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchSeed_ReimportsOnChange(t *testing.T) {
	env := newCLIEnv(t)
	seedPath := env.writeSeed(t)
	c := config.Defaults()
	c.DBPath = env.db

	svc, cleanup, err := openService(context.Background(), c)
	require.NoError(t, err)
	defer cleanup()

	changes := make(chan struct{})
	var stdout, stderr syncBuffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- watchSeed(context.Background(), svc, seedPath, changes, &stdout, &stderr)
	}()
	summaries := func() int { return strings.Count(stdout.String(), "}\n") }
	require.Eventually(t, func() bool { return summaries() == 1 }, 5*time.Second, 10*time.Millisecond)

	// A broken save is reported and watching continues.
	require.NoError(t, os.WriteFile(seedPath, []byte("mappings:\n  - a|b|c\n"), 0600))
	changes <- struct{}{}
	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "malformed mapping")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(seedPath, []byte(testSeed+"  - {table: gene, coord_systems: [clone]}\n"), 0600))
	changes <- struct{}{}
	require.Eventually(t, func() bool { return summaries() == 2 }, 5*time.Second, 10*time.Millisecond)
	close(changes)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchSeed did not return after changes closed")
	}

	decoder := json.NewDecoder(strings.NewReader(stdout.String()))
	var first, second presentation.ImportDTO
	require.NoError(t, decoder.Decode(&first))
	require.NoError(t, decoder.Decode(&second))

	require.Equal(t, presentation.ImportDTO{SystemsStored: 3, MappingsAdded: 2, TablesLinked: 1}, first)
	require.Equal(t, presentation.ImportDTO{SystemsSkipped: 3, TablesLinked: 2}, second)

	genes, err := svc.FeatureTableSystems("gene")
	require.NoError(t, err)
	require.Len(t, genes, 2)
}

func TestWatchSeed_FirstImportIsFatal(t *testing.T) {
	env := newCLIEnv(t)
	c := config.Defaults()
	c.DBPath = env.db

	svc, cleanup, err := openService(context.Background(), c)
	require.NoError(t, err)
	defer cleanup()

	err = watchSeed(context.Background(), svc, env.dir+"/missing.yaml", make(chan struct{}), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestWatchSeed_StopsWithContext(t *testing.T) {
	env := newCLIEnv(t)
	seedPath := env.writeSeed(t)
	c := config.Defaults()
	c.DBPath = env.db

	svc, cleanup, err := openService(context.Background(), c)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout bytes.Buffer
	err = watchSeed(ctx, svc, seedPath, make(chan struct{}), &stdout, &bytes.Buffer{})
	require.NoError(t, err)
	require.Empty(t, stdout.String(), "nothing is imported once cancelled")
	require.Empty(t, svc.Systems())
}

func TestWatchSeed_StopsWithContextAfterImport(t *testing.T) {
	env := newCLIEnv(t)
	seedPath := env.writeSeed(t)
	c := config.Defaults()
	c.DBPath = env.db

	svc, cleanup, err := openService(context.Background(), c)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stdout syncBuffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- watchSeed(ctx, svc, seedPath, make(chan struct{}), &stdout, &bytes.Buffer{})
	}()
	require.Eventually(t, func() bool { return strings.Contains(stdout.String(), "}\n") }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchSeed did not return after cancel")
	}
	require.Len(t, svc.Systems(), 3)
}

func TestFollowLog(t *testing.T) {
	log.InitWriter(io.Discard)

	var stderr syncBuffer
	stop := followLog(context.Background(), &stderr)
	log.Warn(log.CatRegistry, "No default version, using lowest rank", "ref", "chromosome")
	stop()

	require.Contains(t, stderr.String(), "[WARN] [registry] No default version, using lowest rank ref=chromosome")
}
