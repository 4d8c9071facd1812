package models

// IngestMetrics reports timing for a whole ingestion batch.
type IngestMetrics struct {
	LatencyMS int64 `json:"latency_ms"`
}

// IngestResult summarizes one ingestion batch. Duplicate documents and
// upstream insertion failures are counted separately.
type IngestResult struct {
	TenantID          string        `json:"tenant_id"`
	Ingested          int           `json:"ingested"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	Errors            int           `json:"errors"`
	ChunksTotal       int           `json:"chunks_total"`
	RawSaved          int           `json:"raw_saved"`
	RawBytes          int           `json:"raw_bytes"`
	DocIDs            []string      `json:"doc_ids"`
	Metrics           IngestMetrics `json:"metrics"`
}

// Citation points an answer back at one retrieved chunk.
type Citation struct {
	Source    string  `json:"source"`
	Distance  float64 `json:"distance"`
	Relevance float64 `json:"relevance"`
	Snippet   string  `json:"snippet"`
	ChunkID   string  `json:"chunk_id"`
	DocID     string  `json:"doc_id"`
}

// AskMetrics reports latency, token usage and estimated cost for one answer.
type AskMetrics struct {
	LatencyMS   int64   `json:"latency_ms"`
	TokensIn    int     `json:"tokens_in"`
	TokensOut   int     `json:"tokens_out"`
	TokensTotal int     `json:"tokens_total"`
	Model       string  `json:"model,omitempty"`
	CostUSD     float64 `json:"cost_usd"`
	K           int     `json:"k"`
	Hits        int     `json:"hits"`
}

// AskResult is the grounded answer returned for a query.
type AskResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Metrics   AskMetrics `json:"metrics"`
}

// TokenUsage is the token accounting reported by a generation model.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generation is the output of one call to the generation model.
type Generation struct {
	Text  string     `json:"text"`
	Model string     `json:"model"`
	Usage TokenUsage `json:"usage"`
}
