package coordsystem

import (
	"fmt"
	"maps"
	"slices"
)

// minIndirectLen is the length of the shortest possible path between two systems
// that are not directly related: both endpoints plus one shared neighbour.
const minIndirectLen = 3

// GetMappingPath returns the ordered chain of coordinate systems connecting a and b
// through declared direct mappings, or an empty slice when no chain exists.
//
// A direct mapping yields [assembled, component]. Longer paths run from an assembled
// system down through its components, except that two systems sharing a component
// may appear in either order around it. The shortest path wins; ties keep the path
// found with the lower ranked endpoint as the assembled side, then the earliest
// declared component. The tie-break never depends on argument order, so the result
// for a pair is the same whichever pairs were queried before it.
//
// Every result, including "no path", is cached for the unordered pair, so the
// same slice contents are returned for (a, b) and (b, a). Returns ErrCircularMapping,
// and caches nothing, when a cycle is reachable from either system.
func (r *Registry) GetMappingPath(a, b *CoordSystem) ([]*CoordSystem, error) {
	a, err := r.pathEndpoint(a)
	if err != nil {
		return nil, err
	}
	b, err = r.pathEndpoint(b)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, fmt.Errorf("%w: cannot map %s onto itself", ErrInvalidArgument, a)
	}

	r.pathMu.Lock()
	defer r.pathMu.Unlock()

	key := newPairKey(a.DBID(), b.DBID())
	if path, ok := r.paths[key]; ok {
		return slices.Clone(path), nil
	}

	if err := detectCycle(r.mappings, a, b); err != nil {
		return nil, fmt.Errorf("mapping path %s to %s: %w", a, b, err)
	}

	search := newPathSearch(r.mappings, r.paths)
	path, err := search.resolve(a, b)
	if err != nil {
		return nil, fmt.Errorf("mapping path %s to %s: %w", a, b, err)
	}

	// Only a completed search publishes its sub-results.
	maps.Copy(r.paths, search.found)
	return slices.Clone(path), nil
}

// pathEndpoint maps a caller's system onto this registry's stored instance.
func (r *Registry) pathEndpoint(cs *CoordSystem) (*CoordSystem, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: coord system cannot be nil", ErrInvalidArgument)
	}
	if cs.IsTopLevel() {
		return nil, fmt.Errorf("%w: the top-level coord system has no mapping path", ErrInvalidArgument)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.byID[cs.DBID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not stored in this registry", ErrInvalidArgument, cs)
	}
	return stored, nil
}

// pathSearch is the state of one GetMappingPath call. seen and found are scoped
// to the call and discarded if it fails.
type pathSearch struct {
	graph  adjacency
	cached map[pairKey][]*CoordSystem // registry cache, read only here
	found  map[pairKey][]*CoordSystem
	seen   map[pairKey]struct{}
}

func newPathSearch(graph adjacency, cached map[pairKey][]*CoordSystem) *pathSearch {
	return &pathSearch{
		graph:  graph,
		cached: cached,
		found:  make(map[pairKey][]*CoordSystem),
		seen:   make(map[pairKey]struct{}),
	}
}

func (s *pathSearch) lookup(key pairKey) ([]*CoordSystem, bool) {
	if path, ok := s.cached[key]; ok {
		return path, true
	}
	path, ok := s.found[key]
	return path, ok
}

// resolve finds the path between a and b, recording every completed sub-result.
func (s *pathSearch) resolve(a, b *CoordSystem) ([]*CoordSystem, error) {
	key := newPairKey(a.DBID(), b.DBID())
	if path, ok := s.lookup(key); ok {
		return path, nil
	}

	if asm, ok := s.graph.direct(a.DBID(), b.DBID()); ok {
		path := []*CoordSystem{a, b}
		if asm == b {
			path = []*CoordSystem{b, a}
		}
		s.found[key] = path
		return path, nil
	}

	if _, ok := s.seen[key]; ok {
		return nil, fmt.Errorf("%w: %s and %s revisited", ErrCircularMapping, a, b)
	}
	s.seen[key] = struct{}{}

	first, second := byRank(a, b)
	best, err := s.expand(first, second)
	if err != nil {
		return nil, err
	}
	if len(best) != minIndirectLen {
		other, err := s.expand(second, first)
		if err != nil {
			return nil, err
		}
		if len(other) > 0 && (len(best) == 0 || len(other) < len(best)) {
			best = other
		}
	}

	if best == nil {
		best = []*CoordSystem{}
	}
	s.found[key] = best
	return best, nil
}

// expand treats asm as the assembled side and returns the shortest path from one
// of its components to target, with asm spliced onto the component's end.
func (s *pathSearch) expand(asm, target *CoordSystem) ([]*CoordSystem, error) {
	var best []*CoordSystem
	for _, cmp := range s.graph.components(asm.DBID()) {
		sub, err := s.resolve(cmp, target)
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 || slices.Contains(sub, asm) {
			continue
		}

		candidate := splice(asm, cmp, sub)
		if best == nil || len(candidate) < len(best) {
			best = candidate
			if len(best) == minIndirectLen {
				break
			}
		}
	}
	return best, nil
}

// byRank orders two systems so the lower rank (then lower id) comes first.
func byRank(a, b *CoordSystem) (*CoordSystem, *CoordSystem) {
	if b.Rank() < a.Rank() || (b.Rank() == a.Rank() && b.DBID() < a.DBID()) {
		return b, a
	}
	return a, b
}

// splice attaches asm next to cmp: in front when sub starts at cmp, behind otherwise.
func splice(asm, cmp *CoordSystem, sub []*CoordSystem) []*CoordSystem {
	path := make([]*CoordSystem, 0, len(sub)+1)
	if sub[0] == cmp {
		path = append(path, asm)
		return append(path, sub...)
	}
	path = append(path, sub...)
	return append(path, asm)
}
