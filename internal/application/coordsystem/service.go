package coordsystem

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/coordsys/internal/cachemanager"
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
	"github.com/zjrosen/coordsys/internal/flags"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/pubsub"
	"github.com/zjrosen/coordsys/internal/tracing"
)

// Store is the persistence a Service needs: everything a Registry loads from plus
// the ability to add mapping declarations.
type Store interface {
	domain.Source
	AddMappingDeclaration(ctx context.Context, decl string) (bool, error)
}

// pathKey is the cache key of a mapping path query.
type pathKey string

type pathQuery struct {
	from string
	to   string
}

// key quotes both references so no pair of inputs shares a key.
func (q pathQuery) key() pathKey {
	return pathKey(strconv.Quote(q.from) + strconv.Quote(q.to))
}

// Config configures a Service.
type Config struct {
	// Store is required.
	Store Store

	// Tracer creates spans. A no-op tracer is used when nil.
	Tracer trace.Tracer

	// Flags gates optional behaviour. A nil registry disables every flag.
	Flags *flags.Registry

	// CacheEnabled allows the path query cache; the path-cache flag must also be on.
	CacheEnabled bool

	// CacheTTL is how long a cached path query lives.
	// Default: cachemanager.DefaultExpiration
	CacheTTL time.Duration
}

// Service resolves references and mapping paths against a Registry loaded from a Store.
type Service struct {
	id     string
	store  Store
	tracer trace.Tracer
	flags  *flags.Registry

	mu       sync.RWMutex
	registry *domain.Registry

	paths  *cachemanager.ReadThrough[pathKey, []*domain.CoordSystem, pathQuery]
	events *pubsub.Broker[Change]
}

// NewService loads a Registry from cfg.Store and returns a Service over it.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: store is required", domain.ErrInvalidArgument)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}

	s := &Service{
		id:     uuid.NewString(),
		store:  cfg.Store,
		tracer: tracer,
		flags:  cfg.Flags,
		events: pubsub.NewBroker[Change](),
	}
	s.paths = cachemanager.NewReadThrough(cachemanager.ReadThroughConfig[pathKey, []*domain.CoordSystem, pathQuery]{
		Cache:    cachemanager.NewMemory[pathKey, []*domain.CoordSystem]("paths", ttl),
		Load:     s.resolvePath,
		TTL:      ttl,
		Disabled: !cfg.CacheEnabled || !cfg.Flags.Enabled(flags.FlagPathCache),
	})

	if err := s.Reload(ctx); err != nil {
		s.events.Close()
		return nil, err
	}
	return s, nil
}

// ID identifies this Service instance in logs and spans.
func (s *Service) ID() string {
	return s.id
}

// Registry returns the current Registry. It is replaced by Reload, DeclareMapping
// and Import.
func (s *Service) Registry() *domain.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// Reload rebuilds the Registry from the Store and drops cached path queries.
func (s *Service) Reload(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanRegistryLoad,
		attribute.String(tracing.AttrRegistryID, s.id))
	defer func() { tracing.End(span, err) }()

	reg, err := domain.NewRegistry(ctx, s.store)
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Failed to load registry", err, "registry", s.id)
		return err
	}

	advisories := reg.Advisories()
	for _, adv := range advisories {
		log.Warn(log.CatRegistry, "No default version for mapping reference",
			"registry", s.id,
			"declaration", adv.Declaration,
			"ref", adv.Ref.String(),
			"chosen", adv.Chosen.String())
		span.AddEvent(tracing.EventAdvisory, trace.WithAttributes(
			attribute.String("declaration", adv.Declaration),
			attribute.String("advisory", adv.Advisory.String()),
		))
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrSystemsLoaded, len(reg.FetchAll())),
		attribute.Int(tracing.AttrMappingsLoaded, len(reg.Mappings())),
		attribute.Int(tracing.AttrAdvisoryCount, len(advisories)),
	)

	s.mu.Lock()
	s.registry = reg
	s.mu.Unlock()
	if err := s.paths.Invalidate(ctx); err != nil {
		return err
	}

	log.Info(log.CatRegistry, "Loaded registry",
		"registry", s.id,
		"systems", len(reg.FetchAll()),
		"mappings", len(reg.Mappings()),
		"advisories", len(advisories))
	return nil
}

// Systems returns every stored system ordered by rank.
func (s *Service) Systems() []*domain.CoordSystem {
	return s.Registry().FetchAll()
}

// Mappings returns the declared direct mappings.
func (s *Service) Mappings() []domain.Mapping {
	return s.Registry().Mappings()
}

// Resolve resolves a name[:version] reference. "toplevel" and "seqlevel" resolve to
// the top-level and sequence-level systems.
func (s *Service) Resolve(ctx context.Context, ref string) (*domain.CoordSystem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(ctx, ref)
}

// resolve is Resolve for callers already holding s.mu.
func (s *Service) resolve(ctx context.Context, ref string) (*domain.CoordSystem, error) {
	parsed, err := domain.ParseSystemRef(ref)
	if err != nil {
		return nil, err
	}
	lookup, err := s.registry.FetchByRef(parsed)
	if err != nil {
		return nil, err
	}
	if !lookup.Found() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parsed)
	}
	if lookup.Advisory == domain.AdvisoryNoDefaultVersion {
		if s.flags.Enabled(flags.FlagStrictDefaults) {
			return nil, fmt.Errorf("%w: %s has versions but none is the default", ErrNoDefaultVersion, parsed.Name)
		}
		log.Warn(log.CatRegistry, "No default version, using lowest rank",
			"registry", s.id,
			"ref", parsed.String(),
			"chosen", lookup.System.String())
		trace.SpanFromContext(ctx).AddEvent(tracing.EventAdvisory, trace.WithAttributes(
			attribute.String(tracing.AttrCoordSystem, parsed.String()),
			attribute.String("advisory", lookup.Advisory.String()),
		))
	}
	return lookup.System, nil
}

// SystemAtRank returns the system with rank; rank 0 is the top-level system.
func (s *Service) SystemAtRank(rank int) (*domain.CoordSystem, error) {
	cs, ok, err := s.Registry().FetchByRank(rank)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no coord system at rank %d", ErrNotFound, rank)
	}
	return cs, nil
}

// SequenceLevel returns the single sequence-level system.
func (s *Service) SequenceLevel() (*domain.CoordSystem, error) {
	return s.Registry().FetchSequenceLevel()
}

// MappingPath resolves both references and returns the chain of systems connecting
// them. An empty result means no chain exists.
func (s *Service) MappingPath(ctx context.Context, from, to string) (path []*domain.CoordSystem, err error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanMappingPath,
		attribute.String(tracing.AttrRegistryID, s.id),
		attribute.String(tracing.AttrPathFrom, from),
		attribute.String(tracing.AttrPathTo, to),
	)
	defer func() { tracing.End(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	q := pathQuery{from: from, to: to}
	path, cached, err := s.paths.Get(ctx, q.key(), q)
	if err != nil {
		log.ErrorErr(log.CatPath, "Mapping path failed", err,
			"registry", s.id, "from", from, "to", to, "trace_id", tracing.TraceIDFromContext(ctx))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrPathLength, len(path)),
		attribute.Bool(tracing.AttrCacheHit, cached),
	)
	log.Debug(log.CatPath, "Resolved mapping path",
		"registry", s.id, "from", from, "to", to, "length", len(path), "cached", cached)
	return slices.Clone(path), nil
}

// resolvePath is the read-through loader for MappingPath. Callers hold s.mu.
func (s *Service) resolvePath(ctx context.Context, q pathQuery) ([]*domain.CoordSystem, error) {
	a, err := s.resolve(ctx, q.from)
	if err != nil {
		return nil, err
	}
	b, err := s.resolve(ctx, q.to)
	if err != nil {
		return nil, err
	}
	return s.registry.GetMappingPath(a, b)
}

// Store persists a new system. An already stored system is returned together with
// domain.ErrAlreadyExists.
func (s *Service) Store(ctx context.Context, cs *domain.CoordSystem) (stored *domain.CoordSystem, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanRegistryStore,
		attribute.String(tracing.AttrRegistryID, s.id))
	defer func() {
		if errors.Is(err, domain.ErrAlreadyExists) {
			tracing.End(span, nil)
			return
		}
		tracing.End(span, err)
	}()
	if cs != nil {
		span.SetAttributes(
			attribute.String(tracing.AttrCoordSystem, cs.String()),
			attribute.Int(tracing.AttrRank, cs.Rank()),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err = s.registry.Store(ctx, cs)
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info(log.CatRegistry, "Coord system already stored", "registry", s.id, "system", stored.String())
		return stored, err
	}
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Failed to store coord system", err, "registry", s.id)
		return nil, err
	}

	// name resolution may change with a new default version
	if err := s.paths.Invalidate(ctx); err != nil {
		return stored, err
	}
	log.Info(log.CatRegistry, "Stored coord system",
		"registry", s.id, "system", stored.String(), "id", stored.DBID(), "rank", stored.Rank())
	s.events.Publish(pubsub.StoredEvent, Change{RegistryID: s.id, System: stored})
	return stored, nil
}

// AddFeatureTable associates table with the system ref resolves to.
func (s *Service) AddFeatureTable(ctx context.Context, ref, table string) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanFeatureTable,
		attribute.String(tracing.AttrRegistryID, s.id),
		attribute.String(tracing.AttrCoordSystem, ref),
		attribute.String(tracing.AttrTableName, table),
	)
	defer func() { tracing.End(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.registry.AddFeatureTable(ctx, cs, table); err != nil {
		return err
	}

	log.Info(log.CatRegistry, "Linked feature table", "registry", s.id, "table", table, "system", cs.String())
	s.events.Publish(pubsub.LinkedEvent, Change{RegistryID: s.id, System: cs, Table: table})
	return nil
}

// FeatureTableSystems returns the systems table is associated with, ordered by rank.
func (s *Service) FeatureTableSystems(table string) ([]*domain.CoordSystem, error) {
	return s.Registry().FetchAllByFeatureTable(table)
}

// DeclareMapping persists a direct mapping from the assembled system to the
// component system and reloads the Registry. The stored declaration pins both
// versions. Reports whether the declaration was new.
func (s *Service) DeclareMapping(ctx context.Context, asmRef, cmpRef string) (decl string, added bool, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanMappingDeclared,
		attribute.String(tracing.AttrRegistryID, s.id),
		attribute.String(tracing.AttrPathFrom, asmRef),
		attribute.String(tracing.AttrPathTo, cmpRef),
	)
	defer func() { tracing.End(span, err) }()

	decl, err = s.canonicalDeclaration(ctx, asmRef, cmpRef)
	if err != nil {
		return "", false, err
	}
	added, err = s.declare(ctx, decl)
	if err != nil || !added {
		return decl, added, err
	}
	return decl, true, s.Reload(ctx)
}

func (s *Service) canonicalDeclaration(ctx context.Context, asmRef, cmpRef string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asm, err := s.resolve(ctx, asmRef)
	if err != nil {
		return "", err
	}
	cmp, err := s.resolve(ctx, cmpRef)
	if err != nil {
		return "", err
	}
	if asm.IsTopLevel() || cmp.IsTopLevel() {
		return "", fmt.Errorf("%w: the top-level coord system cannot be mapped", domain.ErrInvalidArgument)
	}
	if asm == cmp {
		return "", fmt.Errorf("%w: cannot map %s onto itself", domain.ErrInvalidArgument, asm)
	}
	return domain.BuildMappingDeclaration(asm, cmp), nil
}

// declare checks that both sides of decl resolve, then persists it.
func (s *Service) declare(ctx context.Context, decl string) (bool, error) {
	parsed, err := domain.ParseMappingDeclaration(decl)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	reg := s.registry
	s.mu.RUnlock()
	for _, ref := range []domain.SystemRef{parsed.Assembled, parsed.Component} {
		lookup, err := reg.FetchByRef(ref)
		if err != nil {
			return false, err
		}
		if !lookup.Found() || lookup.System.IsTopLevel() {
			return false, fmt.Errorf("%w: %q names unknown coord system %s", domain.ErrInvalidReference, decl, ref)
		}
	}

	added, err := s.store.AddMappingDeclaration(ctx, decl)
	if err != nil {
		return false, err
	}
	if added {
		log.Info(log.CatRegistry, "Declared mapping", "registry", s.id, "declaration", decl)
		s.events.Publish(pubsub.DeclaredEvent, Change{RegistryID: s.id, Declaration: decl})
	}
	return added, nil
}

// Subscribe returns a channel of registry changes of the given types, or of every
// type when none are given, until ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context, types ...pubsub.EventType) <-chan pubsub.Event[Change] {
	return s.events.Subscribe(ctx, types...)
}

// Close stops publishing changes.
func (s *Service) Close() {
	s.events.Close()
}
