package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"

	"github.com/zjrosen/coordsys/internal/domain/coordsystem"
)

// MetaKeyAssemblyMapping is the meta_key under which mapping declarations are stored.
const MetaKeyAssemblyMapping = "assembly.mapping"

// coordSystemColumns is the list of columns to select for coord system queries.
const coordSystemColumns = `coord_system_id, name, version, rank, attrib`

// CoordSystemRepository implements coordsystem.Source using SQLite.
type CoordSystemRepository struct {
	db *sql.DB
}

func newCoordSystemRepository(db *sql.DB) *CoordSystemRepository {
	return &CoordSystemRepository{db: db}
}

// Ensure CoordSystemRepository implements coordsystem.Source.
var _ coordsystem.Source = (*CoordSystemRepository)(nil)

func scanCoordSystem(scanner interface{ Scan(...any) error }) (*CoordSystemModel, error) {
	var model CoordSystemModel
	err := scanner.Scan(&model.ID, &model.Name, &model.Version, &model.Rank, &model.Attrib)
	return &model, err
}

// LoadCoordSystems returns every coord system row in insertion order.
func (r *CoordSystemRepository) LoadCoordSystems(ctx context.Context) ([]coordsystem.Row, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+coordSystemColumns+` FROM coord_system ORDER BY coord_system_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query coord systems: %w", err)
	}
	defer rows.Close()

	result := make([]coordsystem.Row, 0)
	for rows.Next() {
		model, err := scanCoordSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coord system: %w", err)
		}
		result = append(result, model.toRow())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coord systems: %w", err)
	}
	return result, nil
}

// LoadFeatureTables returns every table to coord system association.
func (r *CoordSystemRepository) LoadFeatureTables(ctx context.Context) ([]coordsystem.FeatureTableRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT table_name, coord_system_id FROM meta_coord ORDER BY table_name, coord_system_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature tables: %w", err)
	}
	defer rows.Close()

	result := make([]coordsystem.FeatureTableRow, 0)
	for rows.Next() {
		var model FeatureTableModel
		if err := rows.Scan(&model.TableName, &model.CoordSystemID); err != nil {
			return nil, fmt.Errorf("failed to scan feature table: %w", err)
		}
		result = append(result, model.toRow())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feature tables: %w", err)
	}
	return result, nil
}

// LoadMappingDeclarations returns the stored "asm|cmp" declarations in the order
// they were added.
func (r *CoordSystemRepository) LoadMappingDeclarations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT meta_value FROM meta WHERE meta_key = ? ORDER BY meta_id`, MetaKeyAssemblyMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping declarations: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var decl string
		if err := rows.Scan(&decl); err != nil {
			return nil, fmt.Errorf("failed to scan mapping declaration: %w", err)
		}
		result = append(result, decl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mapping declarations: %w", err)
	}
	return result, nil
}

// InsertCoordSystem inserts a new row and returns its assigned identifier.
// Uniqueness violations are reported as coordsystem.ErrDuplicateConflict.
func (r *CoordSystemRepository) InsertCoordSystem(ctx context.Context, row coordsystem.Row) (int64, error) {
	model := toCoordSystemModel(row)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO coord_system (name, version, rank, attrib) VALUES (?, ?, ?, ?)`,
		model.Name, model.Version, model.Rank, model.Attrib,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert coord system: %w", constraintError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// InsertFeatureTable stores a table association. Re-inserting an existing
// association is a no-op.
func (r *CoordSystemRepository) InsertFeatureTable(ctx context.Context, row coordsystem.FeatureTableRow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta_coord (table_name, coord_system_id) VALUES (?, ?)`,
		row.TableName, row.CoordSystemID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature table: %w", constraintError(err))
	}
	return nil
}

// AddMappingDeclaration stores an "asm|cmp" declaration after checking its syntax.
// Declarations only take effect for registries built afterwards.
// Reports whether a new row was written.
func (r *CoordSystemRepository) AddMappingDeclaration(ctx context.Context, decl string) (bool, error) {
	if _, err := coordsystem.ParseMappingDeclaration(decl); err != nil {
		return false, err
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (meta_key, meta_value) VALUES (?, ?)`,
		MetaKeyAssemblyMapping, decl,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert mapping declaration: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// constraintError tags SQLite constraint violations with the matching domain
// sentinel so callers can use errors.Is.
func constraintError(err error) error {
	if errors.Is(err, sqlite3.CONSTRAINT_FOREIGNKEY) {
		return fmt.Errorf("%w: %w", coordsystem.ErrInvalidReference, err)
	}
	if errors.Is(err, sqlite3.CONSTRAINT_CHECK) {
		return fmt.Errorf("%w: %w", coordsystem.ErrInvalidArgument, err)
	}
	if errors.Is(err, sqlite3.CONSTRAINT) {
		return fmt.Errorf("%w: %w", coordsystem.ErrDuplicateConflict, err)
	}
	return err
}
