// Package telemetry holds the process-wide metrics and tracer used by the
// cache and the orchestrators.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Fetch outcomes recorded by RuleFetches.
const (
	OutcomeHit        = "hit"
	OutcomeDownloaded = "downloaded"
	OutcomeNotFound   = "not_found"
	OutcomeMemoized   = "memoized"
	OutcomeError      = "error"
)

// Registry collects every portcore metric. It is separate from the default
// registry so the textfile export only contains our own series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// RuleFetches counts fetch protocol outcomes per namespace.
	RuleFetches = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "portcore_rule_fetches_total",
		Help: "Rule fetch attempts by outcome",
	}, []string{"outcome"})

	// CacheResets counts TTL evaluations of the rule cache.
	CacheResets = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "portcore_cache_resets_total",
		Help: "Rule cache reset evaluations by result",
	}, []string{"result"})

	// ProjectsProcessed counts project orchestrator phases by project type.
	ProjectsProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "portcore_projects_total",
		Help: "Projects processed by phase and project type",
	}, []string{"phase", "project_type"})

	// PhaseDuration observes solution phase latency.
	PhaseDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portcore_phase_duration_seconds",
		Help:    "Duration of solution phases",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
)

var tracer = otel.Tracer("portcore")

// StartSpan starts a span on the portcore tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, sets its status and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
