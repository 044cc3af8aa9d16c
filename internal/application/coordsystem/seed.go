package coordsystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/tracing"
)

// SeedFile is the root structure of a seed YAML file.
type SeedFile struct {
	CoordSystems  []CoordSystemDef  `yaml:"coord_systems"`
	Mappings      []string          `yaml:"mappings"`       // "asm|cmp" declarations
	FeatureTables []FeatureTableDef `yaml:"feature_tables"` // table to system links
}

// CoordSystemDef defines one coordinate system in a seed.
type CoordSystemDef struct {
	Name           string `yaml:"name"`
	Version        string `yaml:"version"`
	Rank           int    `yaml:"rank"`
	DefaultVersion bool   `yaml:"default_version"`
	SequenceLevel  bool   `yaml:"sequence_level"`
}

// FeatureTableDef links a feature table to one or more systems by reference.
type FeatureTableDef struct {
	Table        string   `yaml:"table"`
	CoordSystems []string `yaml:"coord_systems"`
}

// ImportResult counts what Import changed.
type ImportResult struct {
	SystemsStored  int
	SystemsSkipped int
	MappingsAdded  int
	TablesLinked   int
}

// LoadSeedFile reads and parses the seed at path.
func LoadSeedFile(path string) (*SeedFile, error) {
	return LoadSeed(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadSeed reads and parses the seed at name inside fsys.
func LoadSeed(fsys fs.FS, name string) (*SeedFile, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	seed, err := ParseSeed(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return seed, nil
}

// ParseSeed decodes seed YAML. Unknown keys are rejected, and every entry is checked
// for shape: names present, ranks positive, declarations well formed.
func ParseSeed(content []byte) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	for i, def := range seed.CoordSystems {
		if _, err := def.build(); err != nil {
			return nil, fmt.Errorf("coord_systems[%d]: %w", i, err)
		}
		if def.Rank <= 0 {
			return nil, fmt.Errorf("coord_systems[%d]: %w: rank must be greater than zero", i, domain.ErrInvalidArgument)
		}
	}
	for i, decl := range seed.Mappings {
		if _, err := domain.ParseMappingDeclaration(decl); err != nil {
			return nil, fmt.Errorf("mappings[%d]: %w", i, err)
		}
	}
	for i, ft := range seed.FeatureTables {
		if ft.Table == "" {
			return nil, fmt.Errorf("feature_tables[%d]: %w: table name cannot be empty", i, domain.ErrInvalidArgument)
		}
		if len(ft.CoordSystems) == 0 {
			return nil, fmt.Errorf("feature_tables[%d]: %w: %s lists no coord systems", i, domain.ErrInvalidArgument, ft.Table)
		}
	}
	return &seed, nil
}

func (d CoordSystemDef) build() (*domain.CoordSystem, error) {
	b := domain.NewBuilder(d.Name).Version(d.Version).Rank(d.Rank)
	if d.DefaultVersion {
		b = b.DefaultVersion()
	}
	if d.SequenceLevel {
		b = b.SequenceLevel()
	}
	return b.Build()
}

// Import applies seed in order: systems, then mappings, then feature tables.
// Systems that already exist are skipped, so a seed can be imported repeatedly.
// The Registry is reloaded when new mappings were declared.
func (s *Service) Import(ctx context.Context, seed *SeedFile) (result ImportResult, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanSeedImport,
		attribute.String(tracing.AttrRegistryID, s.id))
	defer func() {
		span.SetAttributes(
			attribute.Int("import.systems_stored", result.SystemsStored),
			attribute.Int("import.systems_skipped", result.SystemsSkipped),
			attribute.Int("import.mappings_added", result.MappingsAdded),
			attribute.Int("import.tables_linked", result.TablesLinked),
		)
		tracing.End(span, err)
	}()

	for _, def := range seed.CoordSystems {
		cs, err := def.build()
		if err != nil {
			return result, err
		}
		_, err = s.Store(ctx, cs)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			result.SystemsSkipped++
		case err != nil:
			return result, fmt.Errorf("import %s: %w", cs, err)
		default:
			result.SystemsStored++
		}
	}

	var declErr error
	for _, decl := range seed.Mappings {
		added, err := s.declare(ctx, decl)
		if err != nil {
			declErr = fmt.Errorf("import mapping %q: %w", decl, err)
			break
		}
		if added {
			result.MappingsAdded++
		}
	}
	// declarations already persisted must be visible even if a later one failed
	if result.MappingsAdded > 0 {
		if err := s.Reload(ctx); err != nil {
			return result, errors.Join(declErr, err)
		}
	}
	if declErr != nil {
		return result, declErr
	}

	for _, ft := range seed.FeatureTables {
		for _, ref := range ft.CoordSystems {
			if err := s.AddFeatureTable(ctx, ref, ft.Table); err != nil {
				return result, fmt.Errorf("import feature table %s: %w", ft.Table, err)
			}
			result.TablesLinked++
		}
	}

	log.Info(log.CatRegistry, "Imported seed",
		"registry", s.id,
		"stored", result.SystemsStored,
		"skipped", result.SystemsSkipped,
		"mappings", result.MappingsAdded,
		"tables", result.TablesLinked)
	return result, nil
}
