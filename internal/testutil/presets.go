package testutil

// WithStandardSystems adds a small human-like configuration:
//
//	chromosome:NCBI33 (default)  rank 1
//	chromosome:NCBI34            rank 2
//	supercontig                  rank 3
//	clone                        rank 4
//	contig (sequence level)      rank 5
//	est                          rank 6
//
// with chromosome:NCBI33, clone and supercontig each assembled from contig, and
// gene features on chromosome:NCBI33 and clone.
func (b *Builder) WithStandardSystems() *Builder {
	return b.
		WithSystem("chromosome", 1, Version("NCBI33"), Default()).
		WithSystem("chromosome", 2, Version("NCBI34")).
		WithSystem("supercontig", 3, Default()).
		WithSystem("clone", 4, Default()).
		WithSystem("contig", 5, Default(), SequenceLevel()).
		WithSystem("est", 6, Default()).
		WithMapping(
			"chromosome:NCBI33|contig",
			"clone|contig",
			"supercontig|contig",
		).
		WithFeatureTable("gene", "chromosome", "NCBI33").
		WithFeatureTable("gene", "clone", "")
}
