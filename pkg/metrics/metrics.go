// Package metrics records per-run counters for the integration pipeline and
// pushes them to a Prometheus Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job the run metrics are grouped under.
const JobName = "tramita_integration"

// Metrics provides observability for one pipeline run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Proposal rows by outcome: loaded, incomplete, duplicate, before_year, bad_year, kept.
	ProposalRows *prometheus.CounterVec

	// Law rows by outcome: loaded, keyed, keyless.
	LawRows *prometheus.CounterVec

	// Proposal links by outcome: matched, unmatched, ambiguous.
	Links *prometheus.CounterVec

	// Author names by outcome: resolved, unresolved.
	Authors *prometheus.CounterVec

	PersistedRows prometheus.Counter

	StageDuration *prometheus.HistogramVec
}

// New creates a Metrics instance on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ProposalRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_proposal_rows_total",
			Help: "Proposal rows seen by the pipeline, by preparation outcome",
		}, []string{"outcome"}),

		LawRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_law_rows_total",
			Help: "Law rows seen by the pipeline, by citation extraction outcome",
		}, []string{"outcome"}),

		Links: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_links_total",
			Help: "Proposals joined to laws, by outcome",
		}, []string{"outcome"}),

		Authors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tramita_author_names_total",
			Help: "Author names looked up in the council-member table, by outcome",
		}, []string{"outcome"}),

		PersistedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "tramita_persisted_rows_total",
			Help: "Merged rows written to the destination table",
		}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tramita_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"stage"}),
	}
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddProposals adds count proposal rows with the given outcome.
func (m *Metrics) AddProposals(outcome string, count int) {
	if m != nil {
		m.ProposalRows.WithLabelValues(outcome).Add(float64(count))
	}
}

// AddLaws adds count law rows with the given outcome.
func (m *Metrics) AddLaws(outcome string, count int) {
	if m != nil {
		m.LawRows.WithLabelValues(outcome).Add(float64(count))
	}
}

// AddLinks adds count link outcomes.
func (m *Metrics) AddLinks(outcome string, count int) {
	if m != nil {
		m.Links.WithLabelValues(outcome).Add(float64(count))
	}
}

// AddAuthors adds count author lookups with the given outcome.
func (m *Metrics) AddAuthors(outcome string, count int) {
	if m != nil {
		m.Authors.WithLabelValues(outcome).Add(float64(count))
	}
}

// AddPersisted adds count written rows.
func (m *Metrics) AddPersisted(count int) {
	if m != nil {
		m.PersistedRows.Add(float64(count))
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// Push sends the run metrics to a Pushgateway, grouped by document type.
func (m *Metrics) Push(ctx context.Context, gatewayURL, documentType string) error {
	if m == nil {
		return nil
	}
	err := push.New(gatewayURL, JobName).
		Gatherer(m.registry).
		Grouping("document_type", documentType).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
