// Package coordsystem implements the application layer over the coordinate-system
// registry.
//
// Service is the entry point used by the CLI. It owns a domain Registry built from a
// persistent Store and adds the concerns the domain leaves out:
//   - Name references ("chromosome", "chromosome:GRCh38", "contig:") are parsed and
//     resolved, and "no default version" advisories are logged or, with the
//     strict-defaults flag, rejected
//   - Mapping path queries go through a read-through cache keyed by the query, gated
//     by the path-cache flag
//   - Registry loads, stores and path queries are traced
//   - Stored systems, feature table links and mapping declarations are published to
//     subscribers
//
// Mapping declarations are fixed for the lifetime of a domain Registry. DeclareMapping
// and Import persist new declarations and then rebuild the Registry from the Store.
//
// # Seed Files
//
// LoadSeedFile reads a YAML seed describing coordinate systems, mappings and feature
// tables:
//
//	coord_systems:
//	  - {name: chromosome, version: GRCh38, rank: 1, default_version: true}
//	  - {name: contig, rank: 2, default_version: true, sequence_level: true}
//	mappings:
//	  - chromosome:GRCh38|contig
//	feature_tables:
//	  - {table: gene, coord_systems: [chromosome:GRCh38]}
//
// Import applies a seed idempotently: systems that already exist are skipped.
//
// # Import Aliasing
//
// This package has the same name as the domain package. Import the domain package
// under an alias when both are needed:
//
//	import (
//	    domain "github.com/zjrosen/coordsys/internal/domain/coordsystem"
//	    appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
//	)
package coordsystem
