package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatCoordSystems formats a list of coordinate systems as JSON
func (f *Formatter) FormatCoordSystems(systems []CoordSystemDTO) error {
	return f.encode(systems)
}

// FormatMappings formats declared mappings as JSON
func (f *Formatter) FormatMappings(mappings []MappingDTO) error {
	return f.encode(mappings)
}

// FormatResult formats any single command result as JSON
func (f *Formatter) FormatResult(result any) error {
	return f.encode(result)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
