package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRegistryID     = "registry.id"
	AttrSystemsLoaded  = "registry.systems"
	AttrMappingsLoaded = "registry.mappings"
	AttrAdvisoryCount  = "registry.advisories"

	AttrCoordSystem = "coord_system.ref"
	AttrRank        = "coord_system.rank"
	AttrTableName   = "feature_table.name"

	AttrPathFrom   = "path.from"
	AttrPathTo     = "path.to"
	AttrPathLength = "path.length"
	AttrCacheHit   = "cache.hit"

	AttrErrorType = "error.type"
)

// Span names.
const (
	SpanRegistryLoad    = "registry.load"
	SpanRegistryStore   = "registry.store"
	SpanFeatureTable    = "registry.feature_table"
	SpanMappingPath     = "path.resolve"
	SpanSeedImport      = "seed.import"
	SpanMappingDeclared = "mapping.declare"
)

// Event names.
const (
	EventAdvisory = "registry.advisory"
)

// Start opens an internal span named name.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records the outcome of the operation and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceIDFromContext returns the hex trace id of the span in ctx, or an empty
// string when ctx carries no valid span.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
