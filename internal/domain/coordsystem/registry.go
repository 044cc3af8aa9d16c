package coordsystem

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Registry holds every coordinate system loaded from a Source, the indices over
// them, the declared mappings and the mapping-path cache.
type Registry struct {
	mu  sync.RWMutex
	src Source

	byID     map[int64]*CoordSystem
	byName   map[string][]*CoordSystem // lower-cased name, load order
	byRank   map[int]*CoordSystem
	seqLevel []*CoordSystem
	defaults map[string]*CoordSystem // lower-cased name

	featureTables map[string][]*CoordSystem // lower-cased table name
	featurePairs  map[featureKey]struct{}

	topLevel   *CoordSystem
	mappings   adjacency
	declared   []Mapping
	advisories []LoadAdvisory

	pathMu sync.Mutex
	paths  map[pairKey][]*CoordSystem
}

type featureKey struct {
	table string
	csID  int64
}

// NewRegistry builds a Registry by eagerly loading everything from src.
// Construction fails as a whole on the first configuration, reference or
// mapping error; a partially loaded Registry is never returned.
func NewRegistry(ctx context.Context, src Source) (*Registry, error) {
	r := &Registry{
		src:           src,
		byID:          make(map[int64]*CoordSystem),
		byName:        make(map[string][]*CoordSystem),
		byRank:        make(map[int]*CoordSystem),
		defaults:      make(map[string]*CoordSystem),
		featureTables: make(map[string][]*CoordSystem),
		featurePairs:  make(map[featureKey]struct{}),
		paths:         make(map[pairKey][]*CoordSystem),
	}

	rows, err := src.LoadCoordSystems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coord systems: %w", err)
	}
	for _, row := range rows {
		r.index(FromRow(row))
	}

	tables, err := src.LoadFeatureTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feature tables: %w", err)
	}
	for _, row := range tables {
		cs, ok := r.byID[row.CoordSystemID]
		if !ok {
			return nil, fmt.Errorf("%w: table %s references coord system %d",
				ErrInvalidReference, row.TableName, row.CoordSystemID)
		}
		r.indexFeatureTable(cs, row.TableName)
	}

	decls, err := src.LoadMappingDeclarations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mapping declarations: %w", err)
	}
	graph, err := r.buildMappingGraph(decls)
	if err != nil {
		return nil, err
	}
	r.mappings = graph
	r.declared = graph.declared

	r.topLevel = newTopLevel()
	return r, nil
}

// buildMappingGraph parses and resolves every declaration against the loaded systems.
func (r *Registry) buildMappingGraph(decls []string) (*mappingGraph, error) {
	graph := newMappingGraph()
	for _, raw := range decls {
		decl, err := ParseMappingDeclaration(raw)
		if err != nil {
			return nil, err
		}
		asm, err := r.resolveDeclared(raw, decl.Assembled)
		if err != nil {
			return nil, err
		}
		cmp, err := r.resolveDeclared(raw, decl.Component)
		if err != nil {
			return nil, err
		}
		if asm == cmp {
			return nil, fmt.Errorf("%w: %q maps %s onto itself", ErrMalformedMapping, raw, asm)
		}
		graph.add(asm, cmp)
	}
	return graph, nil
}

// resolveDeclared resolves one side of a mapping declaration, recording an
// advisory when no default version exists for an unversioned reference.
func (r *Registry) resolveDeclared(raw string, ref SystemRef) (*CoordSystem, error) {
	if isReservedName(ref.Name) {
		return nil, fmt.Errorf("%w: %q uses reserved name %s", ErrMalformedMapping, raw, ref.Name)
	}
	lookup := r.lookupRef(ref)
	if !lookup.Found() {
		return nil, fmt.Errorf("%w: %q names unknown coord system %s", ErrInvalidReference, raw, ref)
	}
	if lookup.Advisory != AdvisoryNone {
		r.advisories = append(r.advisories, LoadAdvisory{
			Declaration: raw,
			Ref:         ref,
			Chosen:      lookup.System,
			Advisory:    lookup.Advisory,
		})
	}
	return lookup.System, nil
}

// index inserts cs into every index. Callers hold the write lock or are constructing.
func (r *Registry) index(cs *CoordSystem) {
	lower := strings.ToLower(cs.Name())
	r.byID[cs.DBID()] = cs
	r.byName[lower] = append(r.byName[lower], cs)
	r.byRank[cs.Rank()] = cs
	if cs.IsSequenceLevel() {
		r.seqLevel = append(r.seqLevel, cs)
	}
	if cs.IsDefaultVersion() {
		r.defaults[lower] = cs
	}
}

func (r *Registry) indexFeatureTable(cs *CoordSystem, table string) {
	lower := strings.ToLower(table)
	key := featureKey{table: lower, csID: cs.DBID()}
	if _, exists := r.featurePairs[key]; exists {
		return
	}
	r.featurePairs[key] = struct{}{}
	r.featureTables[lower] = append(r.featureTables[lower], cs)
}

// FetchAll returns all stored systems ordered by ascending rank.
// The top-level system is not included.
func (r *Registry) FetchAll() []*CoordSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*CoordSystem, 0, len(r.byID))
	for _, cs := range r.byID {
		result = append(result, cs)
	}
	sortByRank(result)
	return result
}

// FetchByRank returns the system at rank. Rank 0 is the top-level system.
// ok is false when no system holds the rank.
func (r *Registry) FetchByRank(rank int) (*CoordSystem, bool, error) {
	if rank < 0 {
		return nil, false, fmt.Errorf("%w: rank must be non-negative, got %d", ErrInvalidArgument, rank)
	}
	if rank == 0 {
		return r.topLevel, true, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.byRank[rank]
	return cs, ok, nil
}

// FetchByName returns the default version of the named system.
// "toplevel" and "seqlevel" resolve to the top-level and sequence-level systems.
// If no version of name is flagged default, the lowest ranked one is returned with
// AdvisoryNoDefaultVersion.
func (r *Registry) FetchByName(name string) (Lookup, error) {
	return r.fetchRef(SystemRef{Name: name})
}

// FetchByNameVersion returns the system with exactly this name and version.
// An empty version selects the versionless system.
func (r *Registry) FetchByNameVersion(name, version string) (Lookup, error) {
	return r.fetchRef(SystemRef{Name: name, Version: version, HasVersion: true})
}

// FetchByRef resolves a parsed name[:version] reference.
func (r *Registry) FetchByRef(ref SystemRef) (Lookup, error) {
	return r.fetchRef(ref)
}

func (r *Registry) fetchRef(ref SystemRef) (Lookup, error) {
	switch strings.ToLower(ref.Name) {
	case TopLevelName:
		return Lookup{System: r.topLevel}, nil
	case SeqLevelName:
		cs, err := r.FetchSequenceLevel()
		if err != nil {
			return Lookup{}, err
		}
		return Lookup{System: cs}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupRef(ref), nil
}

// lookupRef resolves a non-reserved reference. Callers hold the read lock or are constructing.
func (r *Registry) lookupRef(ref SystemRef) Lookup {
	lower := strings.ToLower(ref.Name)
	candidates := r.byName[lower]
	if len(candidates) == 0 {
		return Lookup{}
	}

	if ref.HasVersion {
		for _, cs := range candidates {
			if cs.Version() == ref.Version {
				return Lookup{System: cs}
			}
		}
		return Lookup{}
	}

	if cs, ok := r.defaults[lower]; ok {
		return Lookup{System: cs}
	}

	sorted := slices.Clone(candidates)
	sortByRank(sorted)
	return Lookup{System: sorted[0], Advisory: AdvisoryNoDefaultVersion}
}

// FetchAllByName returns every stored system with this name, in load order.
func (r *Registry) FetchAllByName(name string) []*CoordSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byName[strings.ToLower(name)])
}

// FetchByDBID returns the stored system with this identifier.
func (r *Registry) FetchByDBID(id int64) (*CoordSystem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.byID[id]
	return cs, ok
}

// FetchTopLevel returns the synthetic top-level system.
func (r *Registry) FetchTopLevel() *CoordSystem {
	return r.topLevel
}

// FetchSequenceLevel returns the single sequence-level system.
// Returns ErrConfiguration if none or more than one system is flagged.
func (r *Registry) FetchSequenceLevel() (*CoordSystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch len(r.seqLevel) {
	case 0:
		return nil, fmt.Errorf("%w: no sequence level coord system", ErrConfiguration)
	case 1:
		return r.seqLevel[0], nil
	default:
		return nil, fmt.Errorf("%w: %d sequence level coord systems, expected exactly one",
			ErrConfiguration, len(r.seqLevel))
	}
}

// FetchByAttrib returns the lowest ranked system carrying attrib
// ("sequence_level" or "default_version").
func (r *Registry) FetchByAttrib(attrib string) (*CoordSystem, bool, error) {
	all, err := r.FetchAllByAttrib(attrib)
	if err != nil || len(all) == 0 {
		return nil, false, err
	}
	return all[0], true, nil
}

// FetchAllByAttrib returns every system carrying attrib, ordered by rank.
func (r *Registry) FetchAllByAttrib(attrib string) ([]*CoordSystem, error) {
	var match func(*CoordSystem) bool
	switch strings.ToLower(attrib) {
	case AttribSequenceLevel:
		match = (*CoordSystem).IsSequenceLevel
	case AttribDefaultVersion:
		match = (*CoordSystem).IsDefaultVersion
	default:
		return nil, fmt.Errorf("%w: unknown attrib %q", ErrInvalidArgument, attrib)
	}

	var result []*CoordSystem
	for _, cs := range r.FetchAll() {
		if match(cs) {
			result = append(result, cs)
		}
	}
	return result, nil
}

// FetchAllByFeatureTable returns the systems a feature table has features in,
// ordered by rank. Returns ErrConfiguration when the table has no association.
func (r *Registry) FetchAllByFeatureTable(table string) ([]*CoordSystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	systems, ok := r.featureTables[strings.ToLower(table)]
	if !ok || len(systems) == 0 {
		return nil, fmt.Errorf("%w: feature table %s has no coord system association",
			ErrConfiguration, table)
	}
	result := slices.Clone(systems)
	sortByRank(result)
	return result, nil
}

// Mappings returns the declared direct mappings in declaration order.
func (r *Registry) Mappings() []Mapping {
	return slices.Clone(r.declared)
}

// Advisories returns the advisories raised while resolving mapping declarations.
func (r *Registry) Advisories() []LoadAdvisory {
	return slices.Clone(r.advisories)
}

func sortByRank(systems []*CoordSystem) {
	sort.SliceStable(systems, func(i, j int) bool {
		return systems[i].Rank() < systems[j].Rank()
	})
}
