package coordsystem

import (
	"context"
	"fmt"
	"strings"
)

// Store persists a new coordinate system through the Source and inserts it into
// every index. On rejection nothing is persisted or indexed.
//
// Re-storing a system that is already stored, or one whose name and version match
// a stored system, returns that stored system together with ErrAlreadyExists.
// Uniqueness violations for rank, sequence level or default version return
// ErrDuplicateConflict.
func (r *Registry) Store(ctx context.Context, cs *CoordSystem) (*CoordSystem, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: coord system cannot be nil", ErrInvalidArgument)
	}
	if cs.IsTopLevel() {
		return nil, fmt.Errorf("%w: the top-level coord system cannot be stored", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cs.DBID() != 0 {
		if existing, ok := r.byID[cs.DBID()]; ok {
			return existing, fmt.Errorf("%w: %s has id %d", ErrAlreadyExists, existing, existing.DBID())
		}
		return nil, fmt.Errorf("%w: %s carries id %d unknown to this registry",
			ErrInvalidArgument, cs, cs.DBID())
	}

	if existing := r.sameNameVersion(cs); existing != nil {
		return existing, fmt.Errorf("%w: %s has id %d", ErrAlreadyExists, existing, existing.DBID())
	}
	if err := r.validateNew(cs); err != nil {
		return nil, err
	}

	id, err := r.src.InsertCoordSystem(ctx, cs.Row())
	if err != nil {
		return nil, fmt.Errorf("store coord system %s: %w", cs, err)
	}
	cs.dbID = id
	r.index(cs)
	return cs, nil
}

// validateNew checks an unstored system against every uniqueness rule.
// Callers hold the write lock.
func (r *Registry) validateNew(cs *CoordSystem) error {
	if cs.Name() == "" {
		return ErrEmptyName
	}
	if isReservedName(cs.Name()) {
		return fmt.Errorf("%w: %s", ErrReservedName, cs.Name())
	}
	if err := checkSeparators(cs.Name(), cs.Version()); err != nil {
		return err
	}

	if cs.IsSequenceLevel() && len(r.seqLevel) > 0 {
		return fmt.Errorf("%w: %s is already the sequence level coord system",
			ErrDuplicateConflict, r.seqLevel[0])
	}

	if cs.IsDefaultVersion() {
		if existing, ok := r.defaults[strings.ToLower(cs.Name())]; ok {
			return fmt.Errorf("%w: %s is already the default version of %s",
				ErrDuplicateConflict, existing, cs.Name())
		}
	}

	if cs.Rank() <= 0 {
		return fmt.Errorf("%w: rank must be greater than zero, got %d", ErrInvalidArgument, cs.Rank())
	}
	if existing, ok := r.byRank[cs.Rank()]; ok {
		return fmt.Errorf("%w: rank %d is already used by %s", ErrDuplicateConflict, cs.Rank(), existing)
	}
	return nil
}

// sameNameVersion returns the stored system with cs's name and version, if any.
func (r *Registry) sameNameVersion(cs *CoordSystem) *CoordSystem {
	for _, existing := range r.byName[strings.ToLower(cs.Name())] {
		if existing.Version() == cs.Version() {
			return existing
		}
	}
	return nil
}

// AddFeatureTable associates a feature table with a stored coordinate system.
// cs may be any instance carrying a known id, such as one held from before a
// reload. It is a no-op if the association already exists.
func (r *Registry) AddFeatureTable(ctx context.Context, cs *CoordSystem, table string) error {
	if table == "" {
		return fmt.Errorf("%w: table name cannot be empty", ErrInvalidArgument)
	}
	if cs == nil || cs.IsTopLevel() {
		return fmt.Errorf("%w: feature tables need a stored coord system", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[cs.DBID()]
	if !ok {
		return fmt.Errorf("%w: %s is not stored in this registry", ErrInvalidArgument, cs)
	}

	lower := strings.ToLower(table)
	if _, exists := r.featurePairs[featureKey{table: lower, csID: stored.DBID()}]; exists {
		return nil
	}

	if err := r.src.InsertFeatureTable(ctx, FeatureTableRow{TableName: lower, CoordSystemID: stored.DBID()}); err != nil {
		return fmt.Errorf("add feature table %s: %w", table, err)
	}
	r.indexFeatureTable(stored, lower)
	return nil
}
