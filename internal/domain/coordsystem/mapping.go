package coordsystem

import "fmt"

// pairKey identifies an unordered pair of coordinate systems, smaller id first.
type pairKey struct {
	lo, hi int64
}

func newPairKey(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Mapping is a declared direct relationship between two stored systems.
type Mapping struct {
	Assembled *CoordSystem
	Component *CoordSystem
}

// adjacency is the view of the declared mappings the path search works against.
type adjacency interface {
	// direct returns the assembled side of a declared mapping between a and b.
	direct(a, b int64) (asm *CoordSystem, ok bool)

	// components returns the systems a is declared to assemble from, in declaration order.
	components(a int64) []*CoordSystem
}

// mappingGraph holds the declared assembled -> component relationships.
// It is built once at load time and never mutated afterwards.
type mappingGraph struct {
	declared     []Mapping
	assembled    map[pairKey]*CoordSystem // both orders collapse to one key
	componentsOf map[int64][]*CoordSystem
}

func newMappingGraph() *mappingGraph {
	return &mappingGraph{
		assembled:    make(map[pairKey]*CoordSystem),
		componentsOf: make(map[int64][]*CoordSystem),
	}
}

// add records asm -> cmp. Repeating a declaration is a no-op; declaring the reverse
// direction keeps the first assembled side for direct lookups but still adds the
// edge, so detectCycle reports it.
func (g *mappingGraph) add(asm, cmp *CoordSystem) {
	key := newPairKey(asm.DBID(), cmp.DBID())
	if existing, exists := g.assembled[key]; exists {
		if existing == asm {
			return
		}
	} else {
		g.assembled[key] = asm
	}
	g.componentsOf[asm.DBID()] = append(g.componentsOf[asm.DBID()], cmp)
	g.declared = append(g.declared, Mapping{Assembled: asm, Component: cmp})
}

func (g *mappingGraph) direct(a, b int64) (*CoordSystem, bool) {
	asm, ok := g.assembled[newPairKey(a, b)]
	return asm, ok
}

func (g *mappingGraph) components(a int64) []*CoordSystem {
	return g.componentsOf[a]
}

// detectCycle runs a DFS with a recursion stack from each start system over the
// assembled -> component edges. Returns an error naming the closing edge if a
// cycle is reachable.
func detectCycle(g adjacency, starts ...*CoordSystem) error {
	visited := make(map[int64]bool)
	recStack := make(map[int64]bool)

	var dfs func(cs *CoordSystem) error
	dfs = func(cs *CoordSystem) error {
		id := cs.DBID()
		visited[id] = true
		recStack[id] = true

		for _, cmp := range g.components(id) {
			cmpID := cmp.DBID()
			if !visited[cmpID] {
				if err := dfs(cmp); err != nil {
					return err
				}
			} else if recStack[cmpID] {
				return fmt.Errorf("%w: %s -> %s", ErrCircularMapping, cs, cmp)
			}
		}

		recStack[id] = false
		return nil
	}

	for _, cs := range starts {
		if !visited[cs.DBID()] {
			if err := dfs(cs); err != nil {
				return err
			}
		}
	}
	return nil
}
