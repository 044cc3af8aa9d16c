package testutil

import "strings"

// systemData holds a coord_system row to be inserted.
type systemData struct {
	name           string
	version        string
	rank           int
	defaultVersion bool
	sequenceLevel  bool
}

func (s systemData) ref() string {
	return s.name + ":" + s.version
}

func (s systemData) attrib() *string {
	var flags []string
	if s.defaultVersion {
		flags = append(flags, "default_version")
	}
	if s.sequenceLevel {
		flags = append(flags, "sequence_level")
	}
	if len(flags) == 0 {
		return nil
	}
	attrib := strings.Join(flags, ",")
	return &attrib
}

// SystemOption configures a coord system during builder setup.
type SystemOption func(*systemData)

// Version sets the system version. Systems are versionless by default.
func Version(v string) SystemOption {
	return func(s *systemData) { s.version = v }
}

// Default flags the system as the default version of its name.
func Default() SystemOption {
	return func(s *systemData) { s.defaultVersion = true }
}

// SequenceLevel flags the system as the sequence level.
func SequenceLevel() SystemOption {
	return func(s *systemData) { s.sequenceLevel = true }
}
