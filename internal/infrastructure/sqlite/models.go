package sqlite

import "github.com/zjrosen/coordsys/internal/domain/coordsystem"

// CoordSystemModel represents a row of the coord_system table.
type CoordSystemModel struct {
	ID      int64
	Name    string
	Version string // '' for versionless systems
	Rank    int
	Attrib  *string // nullable, comma separated
}

// toCoordSystemModel converts a domain row to a database model.
func toCoordSystemModel(row coordsystem.Row) *CoordSystemModel {
	m := &CoordSystemModel{
		ID:      row.ID,
		Name:    row.Name,
		Version: row.Version,
		Rank:    row.Rank,
	}
	if row.Attrib != "" {
		attrib := row.Attrib
		m.Attrib = &attrib
	}
	return m
}

// toRow converts the model to the row shape the registry loads.
func (m *CoordSystemModel) toRow() coordsystem.Row {
	var attrib string
	if m.Attrib != nil {
		attrib = *m.Attrib
	}
	return coordsystem.Row{
		ID:      m.ID,
		Name:    m.Name,
		Rank:    m.Rank,
		Version: m.Version,
		Attrib:  attrib,
	}
}

// FeatureTableModel represents a row of the meta_coord table.
type FeatureTableModel struct {
	TableName     string
	CoordSystemID int64
}

func (m *FeatureTableModel) toRow() coordsystem.FeatureTableRow {
	return coordsystem.FeatureTableRow{TableName: m.TableName, CoordSystemID: m.CoordSystemID}
}
