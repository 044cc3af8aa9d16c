package coordsystem

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ConcurrentReadsAndWrites(t *testing.T) {
	src := &memSource{
		rows:     ensemblRows(),
		mappings: ensemblMappings(),
		tables:   []FeatureTableRow{{TableName: "gene", CoordSystemID: 1}},
	}
	reg := newTestRegistry(t, src)
	chromosome := mustFetch(t, reg, "chromosome")
	clone := mustFetch(t, reg, "clone")
	contig := mustFetch(t, reg, "contig")

	const readers, writers, rounds = 8, 4, 50
	var wg sync.WaitGroup

	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				path, err := reg.GetMappingPath(chromosome, clone)
				if assert.NoError(t, err) && assert.Len(t, path, 3) {
					assert.Same(t, contig, path[1])
				}

				direct, err := reg.GetMappingPath(contig, chromosome)
				assert.NoError(t, err)
				assert.Len(t, direct, 2)

				assert.GreaterOrEqual(t, len(reg.FetchAll()), 6)

				lookup, err := reg.FetchByName("clone")
				assert.NoError(t, err)
				assert.Same(t, clone, lookup.System)

				systems, err := reg.FetchAllByFeatureTable("gene")
				assert.NoError(t, err)
				assert.NotEmpty(t, systems)
			}
		}()
	}

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cs, err := NewBuilder(fmt.Sprintf("scaffold_%d", i)).Rank(100 + i).DefaultVersion().Build()
			if !assert.NoError(t, err) {
				return
			}
			stored, err := reg.Store(context.Background(), cs)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, reg.AddFeatureTable(context.Background(), stored, "gene"))
		}()
	}

	wg.Wait()

	require.Len(t, reg.FetchAll(), 6+writers)
	systems, err := reg.FetchAllByFeatureTable("gene")
	require.NoError(t, err)
	require.Len(t, systems, 1+writers)
	require.Len(t, src.insertedSystems, writers)
}
