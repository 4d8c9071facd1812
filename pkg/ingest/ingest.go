// Package ingest turns submitted documents into durable raw records and
// indexed chunks.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"atlas/pkg/chunker"
	"atlas/pkg/log"
	"atlas/pkg/metrics"
	"atlas/pkg/models"
	"atlas/pkg/rawstore"
	"atlas/pkg/vectorindex"
)

const (
	// DefaultChunkSize and DefaultOverlap apply when the caller does not
	// choose a chunking geometry.
	DefaultChunkSize = 1200
	DefaultOverlap   = 200
)

// Document is one submitted text.
type Document struct {
	Text     string          `json:"text"`
	Source   string          `json:"source"`
	Metadata models.Metadata `json:"metadata"`
}

// Request is one ingestion batch.
type Request struct {
	Documents    []Document `json:"documents"`
	ChunkSize    int        `json:"chunk_size"`
	Overlap      int        `json:"overlap"`
	ForceReindex bool       `json:"force_reindex"`
}

// Orchestrator coordinates raw persistence, chunking and vector indexing.
type Orchestrator struct {
	raw      rawstore.Store
	provider *vectorindex.Provider
	metrics  *metrics.Metrics
}

// New creates an ingestion orchestrator. Metrics may be nil.
func New(raw rawstore.Store, provider *vectorindex.Provider, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{raw: raw, provider: provider, metrics: m}
}

// Ingest processes a batch of documents for a tenant.
//
// Each document is normalized (empty ones are skipped silently) and
// persisted through the raw store. Unless it deduplicated against an
// existing record, it is then chunked and staged for the vector index. The
// staged chunks go
// out in one batch upsert; if that fails, chunks are retried one at a time
// so id collisions can be told apart from upstream failures. A summary is
// always returned, even when individual items failed.
func (o *Orchestrator) Ingest(ctx context.Context, tenantID string, req Request) (*models.IngestResult, error) {
	start := time.Now()
	logger := log.WithTenant(tenantID)

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := req.Overlap
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	index, err := o.provider.For(tenantID)
	if err != nil {
		return nil, err
	}

	result := &models.IngestResult{TenantID: tenantID, DocIDs: []string{}}

	var stagedIDs []string
	var stagedTexts []string
	var stagedMetas []models.Metadata

	for _, doc := range req.Documents {
		normalized := chunker.Normalize(doc.Text)
		if normalized == "" {
			continue
		}
		source := doc.Source
		if source == "" {
			source = "unknown"
		}

		saved, err := o.raw.Save(tenantID, rawstore.SaveRequest{
			Text:         doc.Text,
			Source:       source,
			Metadata:     doc.Metadata,
			ForceReindex: req.ForceReindex,
		})
		if err != nil {
			logger.Error().Err(err).Str("source", source).Msg("Failed to save raw document")
			result.Errors++
			continue
		}

		result.DocIDs = append(result.DocIDs, saved.DocID)
		if saved.Saved {
			result.RawSaved++
			result.RawBytes += saved.Bytes
		}
		if saved.Duplicate && !req.ForceReindex {
			// Known content from the same source: no chunking, no upsert.
			result.DuplicatesSkipped++
			continue
		}

		chunks := chunker.Split(normalized, chunkSize, overlap)
		for i, text := range chunks {
			chunkID := chunker.ChunkID(tenantID, source, i, text)

			// Caller metadata first; system fields win on collision.
			meta := models.Metadata{}
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["tenant_id"] = tenantID
			meta["source"] = source
			meta["doc_id"] = saved.DocID
			meta["chunk_index"] = i
			meta["total_chunks_hint"] = len(chunks)
			meta["id"] = chunkID

			stagedIDs = append(stagedIDs, chunkID)
			stagedTexts = append(stagedTexts, text)
			stagedMetas = append(stagedMetas, meta)
		}
		result.ChunksTotal += len(chunks)
	}

	if len(stagedIDs) > 0 {
		if err := index.Upsert(ctx, stagedIDs, stagedTexts, stagedMetas); err != nil {
			logger.Warn().Err(err).Int("chunks", len(stagedIDs)).Msg("Batch upsert failed, retrying per chunk")
			o.upsertIndividually(ctx, index, stagedIDs, stagedTexts, stagedMetas, result, logger)
		} else {
			result.Ingested = len(stagedIDs)
		}
	}

	result.Metrics.LatencyMS = time.Since(start).Milliseconds()

	if o.metrics != nil {
		o.metrics.IngestedChunks.WithLabelValues(tenantID).Add(float64(result.Ingested))
		o.metrics.DuplicatesTotal.WithLabelValues(tenantID).Add(float64(result.DuplicatesSkipped))
	}

	logger.Info().
		Int("ingested", result.Ingested).
		Int("duplicates_skipped", result.DuplicatesSkipped).
		Int("errors", result.Errors).
		Int("chunks_total", result.ChunksTotal).
		Int64("latency_ms", result.Metrics.LatencyMS).
		Msg("Ingestion batch finished")
	return result, nil
}

// upsertIndividually retries staged chunks one by one, distinguishing id
// collisions (duplicates) from genuine upstream failures (errors).
func (o *Orchestrator) upsertIndividually(
	ctx context.Context,
	index vectorindex.Index,
	ids, texts []string,
	metas []models.Metadata,
	result *models.IngestResult,
	logger zerolog.Logger,
) {
	for i := range ids {
		err := index.Upsert(ctx, ids[i:i+1], texts[i:i+1], metas[i:i+1])
		switch {
		case err == nil:
			result.Ingested++
		case isDuplicateID(err):
			result.DuplicatesSkipped++
		default:
			logger.Error().Err(err).Str("chunk_id", ids[i]).Msg("Chunk upsert failed")
			result.Errors++
		}
	}
}

func isDuplicateID(err error) bool {
	var dup vectorindex.DuplicateIDError
	return errors.As(err, &dup)
}
