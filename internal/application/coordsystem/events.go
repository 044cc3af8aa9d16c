package coordsystem

import (
	domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
)

// Change is the payload published for every registry mutation. Which fields are set
// depends on the event type: System for stored and linked, Table for linked,
// Declaration for declared.
type Change struct {
	RegistryID  string
	System      *domain.CoordSystem
	Table       string
	Declaration string
}
