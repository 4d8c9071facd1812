// Package remote implements vectorindex.Index as a JSON REST client to an
// external vector search service. The service owns embedding and
// similarity; this client only ships chunks and queries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"atlas/pkg/models"
	"atlas/pkg/vectorindex"
)

const (
	defaultTimeout = 15 * time.Second
	retryMax       = 2
)

// Config holds the connection details for the vector service.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:6333.
	BaseURL string
	// APIKey, when set, is sent as the api-key header.
	APIKey string
	// Timeout bounds each request including retries' individual attempts.
	Timeout time.Duration
}

// Index is a REST client bound to one collection.
type Index struct {
	cfg        Config
	collection string
	client     *retryablehttp.Client
}

// New creates a client for the given collection and verifies nothing; the
// collection is created lazily on first use.
func New(cfg Config, collection string) *Index {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &Index{
		cfg:        cfg,
		collection: collection,
		client:     client,
	}
}

// EnsureCollection creates the collection if it does not exist yet.
func (ix *Index) EnsureCollection(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", ix.cfg.BaseURL, ix.collection)
	return ix.do(ctx, http.MethodPut, url, map[string]any{"name": ix.collection}, nil)
}

type upsertRequest struct {
	IDs       []string          `json:"ids"`
	Texts     []string          `json:"texts"`
	Metadatas []models.Metadata `json:"metadatas"`
}

// Upsert ships a batch of chunks. A 409 from the service is surfaced as a
// DuplicateIDError so ingestion can count collisions instead of failing.
func (ix *Index) Upsert(ctx context.Context, ids, texts []string, metadatas []models.Metadata) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched upsert slices: %d ids, %d texts, %d metadatas", len(ids), len(texts), len(metadatas))
	}
	if err := ix.EnsureCollection(ctx); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/collections/%s/points", ix.cfg.BaseURL, ix.collection)
	return ix.do(ctx, http.MethodPost, url, upsertRequest{IDs: ids, Texts: texts, Metadatas: metadatas}, nil)
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	Results []struct {
		ID       string          `json:"id"`
		Text     string          `json:"text"`
		Metadata models.Metadata `json:"metadata"`
		Distance float64         `json:"distance"`
	} `json:"results"`
}

// Search asks the service for the k nearest chunks.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]vectorindex.Hit, error) {
	url := fmt.Sprintf("%s/collections/%s/search", ix.cfg.BaseURL, ix.collection)

	var resp searchResponse
	if err := ix.do(ctx, http.MethodPost, url, searchRequest{Query: query, K: k}, &resp); err != nil {
		return nil, err
	}

	hits := make([]vectorindex.Hit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, vectorindex.Hit{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: r.Distance,
		})
	}
	return hits, nil
}

// do sends one JSON request and decodes the response into out when non-nil.
func (ix *Index) do(ctx context.Context, method, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ix.cfg.APIKey != "" {
		req.Header.Set("api-key", ix.cfg.APIKey)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", vectorindex.ErrUnavailable, method, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusConflict {
		var conflict struct {
			ID string `json:"id"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(respBody, &conflict)
		return vectorindex.DuplicateIDError{ID: conflict.ID}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s returned %d: %s", vectorindex.ErrUnavailable, method, url, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", url, err)
		}
	}
	return nil
}
