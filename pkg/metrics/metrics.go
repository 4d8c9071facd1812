// Package metrics exposes prometheus collectors for request, token and
// cost accounting, one instance per process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyBuckets covers the usual p50..p99 range in milliseconds.
var latencyBuckets = []float64{50, 100, 200, 300, 500, 750, 1000, 1500, 2500, 5000}

// Metrics bundles all collectors on a dedicated registry so tests can run
// isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestLatencyMS   *prometheus.HistogramVec
	RetrievalLatencyMS *prometheus.HistogramVec
	LLMLatencyMS       *prometheus.HistogramVec
	RequestsTotal      *prometheus.CounterVec
	LLMTokensTotal     *prometheus.CounterVec
	CostUSDTotal       *prometheus.CounterVec
	IngestedChunks     *prometheus.CounterVec
	DuplicatesTotal    *prometheus.CounterVec
	FeedbackTotal      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_request_latency_ms",
			Help:    "Request latency (ms)",
			Buckets: latencyBuckets,
		}, []string{"route", "tenant_id"}),
		RetrievalLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_retrieval_latency_ms",
			Help:    "Retrieval latency (ms)",
			Buckets: latencyBuckets,
		}, []string{"tenant_id"}),
		LLMLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_llm_latency_ms",
			Help:    "LLM latency (ms)",
			Buckets: latencyBuckets,
		}, []string{"tenant_id", "model"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_requests_total",
			Help: "Requests count",
		}, []string{"route", "tenant_id", "status"}),
		LLMTokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_llm_tokens_total",
			Help: "LLM tokens",
		}, []string{"tenant_id", "model", "io"}),
		CostUSDTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_cost_usd_total",
			Help: "Accumulated LLM cost (USD)",
		}, []string{"tenant_id", "model"}),
		IngestedChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_ingested_chunks_total",
			Help: "Chunks ingested",
		}, []string{"tenant_id"}),
		DuplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_duplicates_total",
			Help: "Duplicate chunks/documents",
		}, []string{"tenant_id"}),
		FeedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_feedback_total",
			Help: "User feedback",
		}, []string{"tenant_id", "label"}),
	}

	m.registry.MustRegister(
		m.RequestLatencyMS,
		m.RetrievalLatencyMS,
		m.LLMLatencyMS,
		m.RequestsTotal,
		m.LLMTokensTotal,
		m.CostUSDTotal,
		m.IngestedChunks,
		m.DuplicatesTotal,
		m.FeedbackTotal,
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTokens records token usage split by direction.
func (m *Metrics) ObserveTokens(tenantID, model string, prompt, completion int) {
	m.LLMTokensTotal.WithLabelValues(tenantID, model, "in").Add(float64(prompt))
	m.LLMTokensTotal.WithLabelValues(tenantID, model, "out").Add(float64(completion))
	m.LLMTokensTotal.WithLabelValues(tenantID, model, "total").Add(float64(prompt + completion))
}
