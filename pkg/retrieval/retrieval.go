// Package retrieval answers queries from indexed chunks, grounding the
// generation model in firewalled context and reporting cost and latency.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"atlas/pkg/answerer"
	"atlas/pkg/log"
	"atlas/pkg/metrics"
	"atlas/pkg/models"
	"atlas/pkg/pricing"
	"atlas/pkg/vectorindex"
)

const (
	// FallbackAnswer is returned when no usable context survives; the
	// generation model is not called at all in that case.
	FallbackAnswer = "No encuentro esa información en la base."

	// systemPrompt pins the model to the provided context.
	systemPrompt = "Eres un asistente técnico. Usa EXCLUSIVAMENTE el CONTEXTO para responder en español. " +
		"Si la respuesta no está en el contexto, responde: 'No encuentro esa información en la base.'"

	contextSnippetLen  = 400
	citationSnippetLen = 220
)

// Options tunes retrieval behavior.
type Options struct {
	// MaxDistance, when positive, drops hits farther than this.
	MaxDistance float64
}

// Orchestrator coordinates vector search, context assembly and generation.
type Orchestrator struct {
	provider *vectorindex.Provider
	answerer answerer.Answerer
	pricing  pricing.Table
	metrics  *metrics.Metrics
	opts     Options
}

// New creates a retrieval orchestrator. Metrics may be nil.
func New(provider *vectorindex.Provider, a answerer.Answerer, table pricing.Table, m *metrics.Metrics, opts Options) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		answerer: a,
		pricing:  table,
		metrics:  m,
		opts:     opts,
	}
}

// Answer retrieves the k nearest chunks for the query and produces a
// grounded answer with one citation per surviving chunk. When the
// firewalled context is empty the fixed fallback answer is returned
// without calling the generation model.
func (o *Orchestrator) Answer(ctx context.Context, tenantID, query string, k int) (*models.AskResult, error) {
	start := time.Now()
	logger := log.WithTenant(tenantID)

	index, err := o.provider.For(tenantID)
	if err != nil {
		return nil, err
	}

	searchStart := time.Now()
	hits, err := index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if o.metrics != nil {
		o.metrics.RetrievalLatencyMS.WithLabelValues(tenantID).Observe(float64(time.Since(searchStart).Milliseconds()))
	}

	if o.opts.MaxDistance > 0 {
		kept := hits[:0]
		for _, h := range hits {
			if h.Distance <= o.opts.MaxDistance {
				kept = append(kept, h)
			}
		}
		hits = kept
	}

	contextBlock := Firewall(buildContext(hits))

	result := &models.AskResult{
		Citations: buildCitations(hits),
		Metrics: models.AskMetrics{
			K:    k,
			Hits: len(hits),
		},
	}

	if strings.TrimSpace(contextBlock) == "" {
		// Nothing usable survived; degrade to the fixed answer instead of
		// sending the model an empty context.
		result.Answer = FallbackAnswer
		result.Citations = []models.Citation{}
		result.Metrics.LatencyMS = time.Since(start).Milliseconds()
		logger.Info().Int("hits", len(hits)).Msg("No context found, returning fallback answer")
		return result, nil
	}

	llmStart := time.Now()
	generation, err := o.answerer.Generate(ctx, systemPrompt, contextBlock, query)
	if err != nil {
		return nil, err
	}

	usage := generation.Usage
	cost := o.pricing.EstimateUSD(generation.Model, usage.PromptTokens, usage.CompletionTokens)

	result.Answer = generation.Text
	result.Metrics.LatencyMS = time.Since(start).Milliseconds()
	result.Metrics.TokensIn = usage.PromptTokens
	result.Metrics.TokensOut = usage.CompletionTokens
	result.Metrics.TokensTotal = usage.TotalTokens
	result.Metrics.Model = generation.Model
	result.Metrics.CostUSD = cost

	if o.metrics != nil {
		o.metrics.LLMLatencyMS.WithLabelValues(tenantID, generation.Model).Observe(float64(time.Since(llmStart).Milliseconds()))
		o.metrics.ObserveTokens(tenantID, generation.Model, usage.PromptTokens, usage.CompletionTokens)
		o.metrics.CostUSDTotal.WithLabelValues(tenantID, generation.Model).Add(cost)
	}

	logger.Info().
		Int("hits", len(hits)).
		Str("model", generation.Model).
		Float64("cost_usd", cost).
		Int64("latency_ms", result.Metrics.LatencyMS).
		Msg("Query answered")
	return result, nil
}

// buildContext renders surviving hits as source-tagged snippet lines.
func buildContext(hits []vectorindex.Hit) string {
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, fmt.Sprintf("- [%s] %s", metaString(h.Metadata, "source"), truncate(h.Text, contextSnippetLen)))
	}
	return strings.Join(lines, "\n\n")
}

// buildCitations maps hits to citations with a bounded snippet and the
// relevance transform 1/(1+max(distance,0)).
func buildCitations(hits []vectorindex.Hit) []models.Citation {
	citations := make([]models.Citation, 0, len(hits))
	for _, h := range hits {
		snippet := truncate(h.Text, citationSnippetLen)
		if utf8.RuneCountInString(h.Text) > citationSnippetLen {
			snippet += "..."
		}
		distance := h.Distance
		clamped := distance
		if clamped < 0 {
			clamped = 0
		}
		docID, _ := h.Metadata["doc_id"].(string)
		citations = append(citations, models.Citation{
			Source:    metaString(h.Metadata, "source"),
			Distance:  distance,
			Relevance: 1.0 / (1.0 + clamped),
			Snippet:   snippet,
			ChunkID:   h.ID,
			DocID:     docID,
		})
	}
	return citations
}

func metaString(meta models.Metadata, key string) string {
	if meta == nil {
		return "unknown"
	}
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// truncate bounds text to limit characters, never splitting a rune.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
