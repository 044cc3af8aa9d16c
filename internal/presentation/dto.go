package presentation

import (
	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
)

// CoordSystemDTO represents a coordinate system for presentation
type CoordSystemDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Version        string `json:"version"`
	Rank           int    `json:"rank"`
	DefaultVersion bool   `json:"default_version"`
	SequenceLevel  bool   `json:"sequence_level"`
	TopLevel       bool   `json:"top_level,omitempty"`
}

// MappingDTO represents a declared direct mapping
type MappingDTO struct {
	Assembled string `json:"assembled"`
	Component string `json:"component"`
}

// PathDTO is the result of a mapping path query. Path is empty, never null, when
// the two systems are not connected.
type PathDTO struct {
	From  string           `json:"from"`
	To    string           `json:"to"`
	Found bool             `json:"found"`
	Path  []CoordSystemDTO `json:"path"`
}

// FeatureTableDTO lists the systems a feature table has features in
type FeatureTableDTO struct {
	Table        string           `json:"table"`
	CoordSystems []CoordSystemDTO `json:"coord_systems"`
}

// DeclarationDTO is the result of declaring a mapping
type DeclarationDTO struct {
	Declaration string `json:"declaration"`
	Added       bool   `json:"added"`
}

// ImportDTO summarizes a seed import
type ImportDTO struct {
	SystemsStored  int `json:"systems_stored"`
	SystemsSkipped int `json:"systems_skipped"`
	MappingsAdded  int `json:"mappings_added"`
	TablesLinked   int `json:"tables_linked"`
}

// FromDomainCoordSystem converts a domain coordinate system to a DTO
func FromDomainCoordSystem(cs *domain.CoordSystem) CoordSystemDTO {
	return CoordSystemDTO{
		ID:             cs.DBID(),
		Name:           cs.Name(),
		Version:        cs.Version(),
		Rank:           cs.Rank(),
		DefaultVersion: cs.IsDefaultVersion(),
		SequenceLevel:  cs.IsSequenceLevel(),
		TopLevel:       cs.IsTopLevel(),
	}
}

// FromDomainCoordSystems converts a slice of domain coordinate systems to DTOs
func FromDomainCoordSystems(systems []*domain.CoordSystem) []CoordSystemDTO {
	dtos := make([]CoordSystemDTO, len(systems))
	for i, cs := range systems {
		dtos[i] = FromDomainCoordSystem(cs)
	}
	return dtos
}

// FromDomainMappings converts declared mappings to DTOs in declaration order
func FromDomainMappings(mappings []domain.Mapping) []MappingDTO {
	dtos := make([]MappingDTO, len(mappings))
	for i, m := range mappings {
		dtos[i] = MappingDTO{
			Assembled: m.Assembled.String(),
			Component: m.Component.String(),
		}
	}
	return dtos
}

// FromDomainPath converts a resolved mapping path
func FromDomainPath(from, to string, path []*domain.CoordSystem) PathDTO {
	return PathDTO{
		From:  from,
		To:    to,
		Found: len(path) > 0,
		Path:  FromDomainCoordSystems(path),
	}
}

// FromImportResult converts the outcome of a seed import
func FromImportResult(result appcs.ImportResult) ImportDTO {
	return ImportDTO{
		SystemsStored:  result.SystemsStored,
		SystemsSkipped: result.SystemsSkipped,
		MappingsAdded:  result.MappingsAdded,
		TablesLinked:   result.TablesLinked,
	}
}

// FlagDTO is one feature flag and its configured value
type FlagDTO struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}
